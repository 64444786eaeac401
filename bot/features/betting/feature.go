package betting

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

// Feature handles the /bet command
type Feature struct {
	uowFactory application.UnitOfWorkFactory
	manager    *application.TournamentManager
	users      application.UserResolver
	config     *config.Config
}

// New creates a new betting feature instance
func New(uowFactory application.UnitOfWorkFactory, manager *application.TournamentManager, users application.UserResolver) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		manager:    manager,
		users:      users,
		config:     config.Get(),
	}
}

// HandleCommand handles the /bet command and its subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := common.SubcommandOptions(i)

	var err error
	switch sub {
	case "place":
		err = f.handlePlace(s, i, opts)
	case "wallet":
		err = f.handleWallet(s, i, opts)
	case "odds":
		err = f.handleOdds(s, i, opts)
	case "wagers":
		err = f.handleWagers(s, i, opts)
	case "leaderboard":
		err = f.handleLeaderboard(s, i, opts)
	case "settle":
		err = f.handleSettle(s, i, opts)
	default:
		common.RespondWithError(s, i, "Unknown subcommand")
		return
	}

	if err != nil {
		common.HandleError(s, i, err, false)
	}
}

// withBetService runs fn against a bet service of the guild and commits when fn succeeds
func (f *Feature) withBetService(ctx context.Context, guildID int64, fn func(svc interfaces.BetService) error) error {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	svc := services.NewBetService(
		uow.TournamentRepository(),
		uow.MatchRepository(),
		uow.WalletRepository(),
		uow.BetGameRepository(),
		uow.WagerRepository(),
		uow.EventBus(),
	)
	if err := fn(svc); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (f *Feature) namer(ctx context.Context, guildID int64) func(int64) string {
	return func(userID int64) string {
		return f.users.DisplayName(ctx, guildID, userID)
	}
}
