package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tourney/application/dto"
	"tourney/domain/entities"
	"tourney/domain/events"

	log "github.com/sirupsen/logrus"
)

// NotificationHandler turns committed domain events into channel posts
type NotificationHandler struct {
	uowFactory UnitOfWorkFactory
	notifier   Notifier
	users      UserResolver
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(uowFactory UnitOfWorkFactory, notifier Notifier, users UserResolver) *NotificationHandler {
	return &NotificationHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		users:      users,
	}
}

// RegisterApplicationSubscriptions wires the notification handler to the event subscriber
func RegisterApplicationSubscriptions(subscriber EventSubscriber, handler *NotificationHandler) {
	subscriber.RegisterLocalHandler(events.EventTypeTournamentStarted, handler.HandleTournamentStarted)
	subscriber.RegisterLocalHandler(events.EventTypeMatchCompleted, handler.HandleMatchCompleted)
	subscriber.RegisterLocalHandler(events.EventTypeTournamentFinished, handler.HandleTournamentFinished)
	subscriber.RegisterLocalHandler(events.EventTypeOddsPublished, handler.HandleOddsPublished)
	subscriber.RegisterLocalHandler(events.EventTypeBetGameSettled, handler.HandleBetGameSettled)
}

// HandleTournamentStarted announces the seeded bracket
func (h *NotificationHandler) HandleTournamentStarted(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.TournamentStartedEvent](event)
	if err != nil {
		return err
	}

	lines := []string{
		fmt.Sprintf("Bracket of %d", e.BracketSize),
		"Playing: " + h.names(ctx, e.GuildID, e.Admitted),
	}
	if len(e.Excluded) > 0 {
		lines = append(lines, "Left out: "+h.names(ctx, e.GuildID, e.Excluded))
	}

	return h.post(ctx, e.GuildID, e.TournamentID, dto.NotificationDTO{
		Kind:  dto.NotificationTournamentStarted,
		Title: fmt.Sprintf("%s has started", e.Name),
		Lines: lines,
	})
}

// HandleMatchCompleted announces a reported result
func (h *NotificationHandler) HandleMatchCompleted(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.MatchCompletedEvent](event)
	if err != nil {
		return err
	}

	winner := h.users.DisplayName(ctx, e.GuildID, e.WinnerID)
	loser := h.users.DisplayName(ctx, e.GuildID, e.LoserID)
	title := fmt.Sprintf("%s defeated %s", winner, loser)
	if e.IsFinal {
		title = fmt.Sprintf("%s won the final against %s", winner, loser)
	}

	return h.post(ctx, e.GuildID, e.TournamentID, dto.NotificationDTO{
		Kind:   dto.NotificationMatchCompleted,
		Title:  title,
		Lines:  []string{"Score: " + e.Score},
		Footer: fmt.Sprintf("Match #%d", e.MatchID),
	})
}

// HandleTournamentFinished announces the podium
func (h *NotificationHandler) HandleTournamentFinished(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.TournamentFinishedEvent](event)
	if err != nil {
		return err
	}

	lines := []string{
		"🥇 " + h.users.DisplayName(ctx, e.GuildID, e.First),
		"🥈 " + h.users.DisplayName(ctx, e.GuildID, e.Second),
	}
	for _, third := range e.Third {
		if third != 0 {
			lines = append(lines, "🥉 "+h.users.DisplayName(ctx, e.GuildID, third))
		}
	}

	return h.post(ctx, e.GuildID, e.TournamentID, dto.NotificationDTO{
		Kind:  dto.NotificationTournamentFinished,
		Title: fmt.Sprintf("%s is over", e.Name),
		Lines: lines,
	})
}

// HandleOddsPublished announces a match open to betting
func (h *NotificationHandler) HandleOddsPublished(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.OddsPublishedEvent](event)
	if err != nil {
		return err
	}

	user1 := h.users.DisplayName(ctx, e.GuildID, e.User1ID)
	user2 := h.users.DisplayName(ctx, e.GuildID, e.User2ID)

	return h.post(ctx, e.GuildID, e.TournamentID, dto.NotificationDTO{
		Kind:  dto.NotificationOddsPublished,
		Title: fmt.Sprintf("Bets open: %s vs %s", user1, user2),
		Lines: []string{
			fmt.Sprintf("%s %s", user1, FormatMoneyline(e.Probability1)),
			fmt.Sprintf("%s %s", user2, FormatMoneyline(e.Probability2)),
		},
		Footer: fmt.Sprintf("Bet game #%d", e.BetGameID),
	})
}

// HandleBetGameSettled announces payouts of a settled match
func (h *NotificationHandler) HandleBetGameSettled(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.BetGameSettledEvent](event)
	if err != nil {
		return err
	}
	if e.WagerCount == 0 {
		return nil
	}

	winners := make([]int64, 0, len(e.Payouts))
	for userID := range e.Payouts {
		winners = append(winners, userID)
	}
	sort.Slice(winners, func(i, j int) bool {
		if e.Payouts[winners[i]] != e.Payouts[winners[j]] {
			return e.Payouts[winners[i]] > e.Payouts[winners[j]]
		}
		return winners[i] < winners[j]
	})

	lines := make([]string, 0, len(winners)+1)
	for _, userID := range winners {
		lines = append(lines, fmt.Sprintf("%s +%.2f", h.users.DisplayName(ctx, e.GuildID, userID), e.Payouts[userID]))
	}
	if len(lines) == 0 {
		lines = append(lines, "Nobody backed the winner")
	}

	return h.post(ctx, e.GuildID, e.TournamentID, dto.NotificationDTO{
		Kind:   dto.NotificationBetsSettled,
		Title:  fmt.Sprintf("Bets settled, %s won", h.users.DisplayName(ctx, e.GuildID, e.WinnerID)),
		Lines:  lines,
		Footer: fmt.Sprintf("%d wagers, %.2f staked, %.2f paid", e.WagerCount, e.TotalStaked, e.TotalPaid),
	})
}

// post sends the notification to the tournament's channel, if it has one
func (h *NotificationHandler) post(ctx context.Context, guildID, tournamentID int64, notification dto.NotificationDTO) error {
	channelID, err := h.channelFor(ctx, guildID, tournamentID)
	if err != nil {
		return err
	}
	if channelID == 0 {
		log.WithFields(log.Fields{
			"guild_id":      guildID,
			"tournament_id": tournamentID,
			"kind":          notification.Kind,
		}).Debug("Tournament has no channel, skipping notification")
		return nil
	}

	notification.GuildID = guildID
	notification.ChannelID = channelID
	return h.notifier.PostNotification(ctx, notification)
}

func (h *NotificationHandler) channelFor(ctx context.Context, guildID, tournamentID int64) (int64, error) {
	uow := h.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tournament, err := uow.TournamentRepository().GetByID(ctx, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if tournament == nil || tournament.ChannelID == nil {
		return 0, nil
	}
	return *tournament.ChannelID, nil
}

func (h *NotificationHandler) names(ctx context.Context, guildID int64, userIDs []int64) string {
	names := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		names = append(names, h.users.DisplayName(ctx, guildID, id))
	}
	return strings.Join(names, ", ")
}

// FormatMoneyline renders a probability as signed moneyline odds
func FormatMoneyline(probability float64) string {
	odd := entities.MoneylineOdd(probability)
	if odd > 0 {
		return fmt.Sprintf("+%d", odd)
	}
	return fmt.Sprintf("%d", odd)
}
