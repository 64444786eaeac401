package tournament

import (
	"context"
	"fmt"

	"tourney/application"
	"tourney/bot/common"
	"tourney/config"
	"tourney/domain/interfaces"
	"tourney/domain/services"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /tournament command
type Feature struct {
	uowFactory application.UnitOfWorkFactory
	manager    *application.TournamentManager
	users      application.UserResolver
	config     *config.Config
}

// NewFeature creates a new tournament feature instance
func NewFeature(uowFactory application.UnitOfWorkFactory, manager *application.TournamentManager, users application.UserResolver) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		manager:    manager,
		users:      users,
		config:     config.Get(),
	}
}

// HandleCommand handles the /tournament command and its subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := common.SubcommandOptions(i)

	var err error
	deferred := false
	switch sub {
	case "create":
		err = f.handleCreate(s, i, opts)
	case "list":
		err = f.handleList(s, i)
	case "register":
		err = f.handleRegister(s, i, opts)
	case "unregister":
		err = f.handleUnregister(s, i, opts)
	case "start":
		deferred = true
		err = f.handleStart(s, i, opts)
	case "report":
		deferred = true
		err = f.handleReport(s, i, opts)
	case "bracket":
		err = f.handleBracket(s, i, opts)
	case "teams":
		err = f.handleTeams(s, i, opts)
	default:
		common.RespondWithError(s, i, "Unknown subcommand")
		return
	}

	if err != nil {
		common.HandleError(s, i, err, deferred)
	}
}

// isAdmin reports whether the invoker may manage tournaments
func (f *Feature) isAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if common.IsUserAdmin(s, i) {
		return true
	}
	userID, err := common.InvokerID(i)
	return err == nil && f.config.IsAdmin(userID)
}

// read runs fn against a read-only tournament service of the guild
func (f *Feature) read(ctx context.Context, guildID int64, fn func(svc interfaces.TournamentService) error) error {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// seeding randomness is never used on read paths
	svc := services.NewTournamentService(uow.TournamentRepository(), uow.MatchRepository(), uow.EventBus(), nil)
	return fn(svc)
}

func (f *Feature) namer(ctx context.Context, guildID int64) func(int64) string {
	return func(userID int64) string {
		return f.users.DisplayName(ctx, guildID, userID)
	}
}
