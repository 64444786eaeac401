package bot

import (
	"fmt"

	"tourney/bot/common"
	"tourney/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func tournamentIDOption(name string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: "Tournament ID",
		Required:    true,
		MinValue:    ptrFloat(1),
	}
}

func ptrFloat(v float64) *float64 {
	return &v
}

// Commands returns the slash commands the bot serves
func Commands() []*discordgo.ApplicationCommand {
	dateHint := fmt.Sprintf("UTC, formatted %s", common.DateLayout)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "tournament",
			Description: "Run single elimination tournaments",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a tournament (admins only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Tournament name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "maps",
							Description: "Comma separated map pool",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "max_players",
							Description: "Bracket size, a power of two",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "2", Value: 2},
								{Name: "4", Value: 4},
								{Name: "8", Value: 8},
								{Name: "16", Value: 16},
								{Name: "32", Value: 32},
								{Name: "64", Value: 64},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "best_of",
							Description: "Games per match, odd",
							MinValue:    ptrFloat(1),
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "team_size",
							Description: "Players per team",
							MinValue:    ptrFloat(1),
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "registration",
							Description: "Registration opens, " + dateHint,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "start",
							Description: "Start date, " + dateHint,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "end",
							Description: "End date, " + dateHint,
						},
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "Channel for announcements, defaults to this one",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List running tournaments",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "register",
					Description: "Register for a tournament",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("id")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unregister",
					Description: "Leave a tournament before it starts",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("id")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Seed the bracket and start (admins only)",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("id")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "report",
					Description: "Report a lost match",
					Options: []*discordgo.ApplicationCommandOption{
						tournamentIDOption("id"),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "score",
							Description: "Final score, for example 1-2",
							Required:    true,
							MaxLength:   entities.MaxScoreLength,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "loser",
							Description: "Player who lost (admins only, defaults to you)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "bracket",
					Description: "Show the bracket",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("id")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "teams",
					Description: "Show the teams",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("id")},
				},
			},
		},
		{
			Name:        "bet",
			Description: "Bet play money on tournament matches",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "place",
					Description: "Bet on a player of an open match",
					Options: []*discordgo.ApplicationCommandOption{
						tournamentIDOption("tournament"),
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "game",
							Description: "Bet game ID from /bet odds",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "on",
							Description: "Player you bet on",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "amount",
							Description: "Stake",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "wallet",
					Description: "Show your wallet",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("tournament")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "odds",
					Description: "Show matches open for betting",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("tournament")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "wagers",
					Description: "Show your bets",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("tournament")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "Show the richest bettors",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("tournament")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "settle",
					Description: "Pay out decided matches now (admins only)",
					Options:     []*discordgo.ApplicationCommandOption{tournamentIDOption("tournament")},
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range Commands() {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create command %s: %w", cmd.Name, err)
		}
		b.commands = append(b.commands, created)
		log.Infof("Registered command: %s", cmd.Name)
	}
	return nil
}
