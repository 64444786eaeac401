package tournament

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tourney/bot/common"
	"tourney/domain/bracket"
	"tourney/domain/entities"
	"tourney/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var errAdminOnly = common.NewInvalidInput("Only tournament admins can do that")

func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	if !f.isAdmin(s, i) {
		return errAdminOnly
	}
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	registration, err := opts.Time("registration", now)
	if err != nil {
		return err
	}
	start, err := opts.Time("start", registration.Add(24*time.Hour))
	if err != nil {
		return err
	}
	end, err := opts.Time("end", start.Add(7*24*time.Hour))
	if err != nil {
		return err
	}

	channelID := opts.ChannelID("channel")
	if channelID == 0 {
		if channelID, err = common.ParseID(i.ChannelID); err != nil {
			return fmt.Errorf("failed to parse channel id %s: %w", i.ChannelID, err)
		}
	}

	t := &entities.Tournament{
		Name:             strings.TrimSpace(opts.String("name", "")),
		RegistrationDate: registration,
		StartDate:        start,
		EndDate:          end,
		BestOf:           int(opts.Int("best_of", 1)),
		MaxPlayers:       int(opts.Int("max_players", 8)),
		Maps:             ParseMaps(opts.String("maps", "")),
		TeamSize:         int(opts.Int("team_size", 1)),
		ChannelID:        &channelID,
	}
	if err := t.Validate(); err != nil {
		return common.NewInvalidInput(err.Error())
	}

	if err := f.manager.CreateTournament(context.Background(), guildID, t); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"guild_id":      guildID,
		"tournament_id": t.ID,
		"name":          t.Name,
	}).Info("Tournament created")

	return common.RespondWithEmbed(s, i, createdEmbed(t), false)
}

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}

	var tournaments []*entities.Tournament
	err = f.read(context.Background(), guildID, func(svc interfaces.TournamentService) error {
		tournaments, err = svc.ListActiveTournaments(context.Background())
		return err
	})
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, listEmbed(tournaments, time.Now()), true)
}

func (f *Feature) handleRegister(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}
	userID, err := common.InvokerID(i)
	if err != nil {
		return err
	}
	tournamentID := opts.Int("id", 0)

	if err := f.manager.Register(context.Background(), guildID, tournamentID, userID); err != nil {
		return err
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("You are registered for tournament #%d", tournamentID), true)
	return nil
}

func (f *Feature) handleUnregister(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}
	userID, err := common.InvokerID(i)
	if err != nil {
		return err
	}
	tournamentID := opts.Int("id", 0)

	if err := f.manager.Unregister(context.Background(), guildID, tournamentID, userID); err != nil {
		return err
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("You left tournament #%d", tournamentID), true)
	return nil
}

func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	if !f.isAdmin(s, i) {
		common.RespondWithError(s, i, errAdminOnly.Error())
		return nil
	}
	guildID, err := common.GuildID(i)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return nil
	}
	if err := common.DeferResponse(s, i, false); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	ctx := context.Background()
	result, err := f.manager.Start(ctx, guildID, opts.Int("id", 0))
	if err != nil {
		return err
	}

	common.FollowUpWithEmbed(s, i, startEmbed(result, f.namer(ctx, guildID)), false)
	return nil
}

func (f *Feature) handleReport(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return nil
	}
	invokerID, err := common.InvokerID(i)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return nil
	}

	loserID := opts.UserID("loser")
	if loserID == 0 {
		loserID = invokerID
	}
	if loserID != invokerID && !f.isAdmin(s, i) {
		common.RespondWithError(s, i, "Only tournament admins can report for someone else")
		return nil
	}

	score := strings.TrimSpace(opts.String("score", ""))
	if score == "" {
		common.RespondWithError(s, i, "Score cannot be empty")
		return nil
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	ctx := context.Background()
	result, err := f.manager.ReportLoss(ctx, guildID, opts.Int("id", 0), loserID, score)
	if err != nil {
		return err
	}

	common.FollowUpWithEmbed(s, i, reportEmbed(result, f.namer(ctx, guildID)), false)
	return nil
}

func (f *Feature) handleBracket(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tournamentID := opts.Int("id", 0)
	var (
		t    *entities.Tournament
		root *bracket.Node
	)
	err = f.read(ctx, guildID, func(svc interfaces.TournamentService) error {
		var err error
		if t, err = svc.GetTournament(ctx, tournamentID); err != nil {
			return err
		}
		root, err = svc.GetBracket(ctx, tournamentID)
		return err
	})
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, bracketEmbed(t, root, f.namer(ctx, guildID)), false)
}

func (f *Feature) handleTeams(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) error {
	guildID, err := common.GuildID(i)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tournamentID := opts.Int("id", 0)
	var (
		t     *entities.Tournament
		teams map[int64][]int64
	)
	err = f.read(ctx, guildID, func(svc interfaces.TournamentService) error {
		var err error
		if t, err = svc.GetTournament(ctx, tournamentID); err != nil {
			return err
		}
		teams, err = svc.GetTeams(ctx, tournamentID)
		return err
	})
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, teamsEmbed(t, teams, f.namer(ctx, guildID)), false)
}

// ParseMaps splits a comma separated map pool, dropping blanks and duplicates
func ParseMaps(raw string) []string {
	var maps []string
	seen := make(map[string]bool)
	for _, m := range strings.Split(raw, ",") {
		m = strings.TrimSpace(m)
		key := strings.ToLower(m)
		if m == "" || seen[key] {
			continue
		}
		seen[key] = true
		maps = append(maps, m)
	}
	return maps
}
