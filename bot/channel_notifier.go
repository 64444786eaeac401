package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tourney/application"
	"tourney/application/dto"
	"tourney/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// embedSender is the part of the discord session the notifier needs
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChannelNotifier posts tournament notifications as embeds in the tournament channel
type ChannelNotifier struct {
	sender embedSender
}

// NewChannelNotifier creates a new channel notifier
func NewChannelNotifier(sender embedSender) *ChannelNotifier {
	return &ChannelNotifier{sender: sender}
}

var _ application.Notifier = (*ChannelNotifier)(nil)

// PostNotification sends the notification to its channel
func (n *ChannelNotifier) PostNotification(ctx context.Context, notification dto.NotificationDTO) error {
	if notification.ChannelID == 0 {
		return fmt.Errorf("notification %s has no channel", notification.Kind)
	}

	channelID := strconv.FormatInt(notification.ChannelID, 10)
	msg, err := n.sender.ChannelMessageSendEmbed(channelID, NotificationEmbed(notification), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post %s notification to channel %s: %w", notification.Kind, channelID, err)
	}

	log.WithFields(log.Fields{
		"guild_id":   notification.GuildID,
		"channel_id": channelID,
		"message_id": msg.ID,
		"kind":       notification.Kind,
	}).Debug("Posted notification")
	return nil
}

// NotificationEmbed renders a notification as a discord embed
func NotificationEmbed(notification dto.NotificationDTO) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       common.Truncate(notification.Title, 256),
		Description: common.Truncate(strings.Join(notification.Lines, "\n"), common.MaxEmbedDescription),
		Color:       notificationColor(notification.Kind),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if notification.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: notification.Footer}
	}
	return embed
}

func notificationColor(kind dto.NotificationKind) int {
	switch kind {
	case dto.NotificationTournamentStarted:
		return common.ColorPrimary
	case dto.NotificationTournamentFinished:
		return common.ColorGold
	case dto.NotificationOddsPublished:
		return common.ColorInfo
	case dto.NotificationBetsSettled:
		return common.ColorSuccess
	default:
		return common.ColorWarning
	}
}
