package application

import (
	"context"

	"tourney/application/dto"
	"tourney/domain/events"
)

// Notifier posts tournament updates to a guild channel
type Notifier interface {
	PostNotification(ctx context.Context, notification dto.NotificationDTO) error
}

// UserResolver turns participant ids into display names
type UserResolver interface {
	DisplayName(ctx context.Context, guildID, userID int64) string
}

// EventSubscriber registers in-process event handlers
type EventSubscriber interface {
	RegisterLocalHandler(eventType events.EventType, handler events.Handler)
}
