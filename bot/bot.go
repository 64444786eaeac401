package bot

import (
	"context"
	"fmt"
	"strconv"

	"tourney/application"
	"tourney/bot/features/betting"
	"tourney/bot/features/tournament"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string // Guild for command registration, empty registers globally
}

// Bot manages the Discord session and the feature modules
type Bot struct {
	config     Config
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory

	userResolver *UserResolverImpl
	notifier     *ChannelNotifier

	tournament *tournament.Feature
	betting    *betting.Feature

	commands []*discordgo.ApplicationCommand
}

// New creates the bot, opens the gateway connection and registers the slash commands
func New(config Config, uowFactory application.UnitOfWorkFactory, manager *application.TournamentManager) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	userResolver := NewUserResolver(dg)

	bot := &Bot{
		config:       config,
		session:      dg,
		uowFactory:   uowFactory,
		userResolver: userResolver,
		notifier:     NewChannelNotifier(dg),
		tournament:   tournament.NewFeature(uowFactory, manager, userResolver),
		betting:      betting.New(uowFactory, manager, userResolver),
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleMemberUpdate)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Notifier returns the notifier posting into tournament channels
func (b *Bot) Notifier() application.Notifier {
	return b.notifier
}

// UserResolver returns the guild member name resolver
func (b *Bot) UserResolver() application.UserResolver {
	return b.userResolver
}

// Close removes guild scoped commands and closes the gateway connection
func (b *Bot) Close() error {
	if b.config.GuildID != "" {
		for _, cmd := range b.commands {
			if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.config.GuildID, cmd.ID); err != nil {
				log.Warnf("Failed to delete command %s: %v", cmd.Name, err)
			}
		}
	}
	return b.session.Close()
}

// handleCommands routes slash commands to the feature modules
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "tournament":
		b.tournament.HandleCommand(s, i)
	case "bet":
		b.betting.HandleCommand(s, i)
	}
}

// handleGuildCreate logs guilds the bot joins or reconnects to
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}

	ctx := context.Background()
	uow := b.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Failed to begin transaction: %v", err)
		return
	}
	defer uow.Rollback()

	active, err := uow.TournamentRepository().GetActive(ctx)
	if err != nil {
		log.Errorf("Failed to list tournaments of guild %s: %v", g.ID, err)
		return
	}

	log.WithFields(log.Fields{
		"guild_id":           guildID,
		"guild_name":         g.Name,
		"active_tournaments": len(active),
	}).Info("Connected to guild")
}

// handleMemberUpdate drops cached names when a member changes nickname
func (b *Bot) handleMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.Member == nil || m.User == nil {
		return
	}
	guildID, err := strconv.ParseInt(m.GuildID, 10, 64)
	if err != nil {
		return
	}
	userID, err := strconv.ParseInt(m.User.ID, 10, 64)
	if err != nil {
		return
	}
	b.userResolver.Invalidate(guildID, userID)
}
