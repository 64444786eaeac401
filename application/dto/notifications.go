package dto

// NotificationKind tells the notifier how to style a post
type NotificationKind string

const (
	NotificationTournamentStarted  NotificationKind = "tournament_started"
	NotificationMatchCompleted     NotificationKind = "match_completed"
	NotificationTournamentFinished NotificationKind = "tournament_finished"
	NotificationOddsPublished      NotificationKind = "odds_published"
	NotificationBetsSettled        NotificationKind = "bets_settled"
)

// NotificationDTO contains everything needed to post a tournament update to Discord
type NotificationDTO struct {
	GuildID   int64
	ChannelID int64
	Kind      NotificationKind
	Title     string
	Lines     []string
	Footer    string
}
