package betting

import (
	"context"

	"tourney/bot/common"
	"tourney/domain/entities"
	"tourney/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handlePlace(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}
	bettorID, err := common.InvokerID(i)
	if err != nil {
		return err
	}

	amount := opts.Float("amount", 0)
	if amount <= 0 {
		return common.NewInvalidInput("Amount must be positive")
	}
	targetID := opts.UserID("on")
	if targetID == 0 {
		return common.NewInvalidInput("Pick the player you are betting on")
	}

	ctx := context.Background()
	tournamentID := opts.Int("tournament", 0)
	wager, err := f.manager.PlaceBet(ctx, guildID, tournamentID, opts.Int("game", 0), bettorID, amount, targetID)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"guild_id":      guildID,
		"tournament_id": tournamentID,
		"wager_id":      wager.ID,
		"amount":        amount,
	}).Info("Bet placed")

	common.RespondWithSuccess(s, i, betPlacedMessage(wager, f.namer(ctx, guildID)), true)
	return nil
}

func (f *Feature) handleWallet(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}
	userID, err := common.InvokerID(i)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tournamentID := opts.Int("tournament", 0)
	var wallet *entities.Wallet
	err = f.withBetService(ctx, guildID, func(svc interfaces.BetService) error {
		var err error
		wallet, err = svc.GetOrCreateWallet(ctx, tournamentID, userID)
		return err
	})
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, walletEmbed(wallet), true)
}

func (f *Feature) handleOdds(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tournamentID := opts.Int("tournament", 0)
	var open []*interfaces.OpenBetGame
	err = f.withBetService(ctx, guildID, func(svc interfaces.BetService) error {
		var err error
		open, err = svc.ListOpenBetGames(ctx, tournamentID)
		return err
	})
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, oddsEmbed(tournamentID, open, f.namer(ctx, guildID)), false)
}

func (f *Feature) handleWagers(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}
	userID, err := common.InvokerID(i)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tournamentID := opts.Int("tournament", 0)
	var wagers []*entities.Wager
	err = f.withBetService(ctx, guildID, func(svc interfaces.BetService) error {
		var err error
		wagers, err = svc.ListWagers(ctx, tournamentID, userID)
		return err
	})
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, wagersEmbed(wagers, f.namer(ctx, guildID)), true)
}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tournamentID := opts.Int("tournament", 0)
	var wallets []*entities.Wallet
	err = f.withBetService(ctx, guildID, func(svc interfaces.BetService) error {
		var err error
		wallets, err = svc.GetLeaderboard(ctx, tournamentID)
		return err
	})
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, leaderboardEmbed(wallets, f.config.DefaultWalletStake, f.namer(ctx, guildID)), false)
}

func (f *Feature) handleSettle(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	userID, err := common.InvokerID(i)
	if err != nil {
		return err
	}
	if !common.IsUserAdmin(s, i) && !f.config.IsAdmin(userID) {
		return common.NewInvalidInput("Only tournament admins can do that")
	}
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}

	summary, err := f.manager.SettlePending(context.Background(), guildID, opts.Int("tournament", 0))
	if summary == nil {
		return err
	}
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Warn("Manual settlement left games unsettled")
	}

	common.RespondWithSuccess(s, i, settleMessage(summary), true)
	return nil
}
