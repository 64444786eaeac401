package cmd

import (
	"context"
	"fmt"
	"time"

	"tourney/application"
	"tourney/bot"
	"tourney/config"
	"tourney/database"
	"tourney/infrastructure"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg.LogLevel)
	log.Info("Starting tourney bot...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	eventPublisher, natsClient := initEventPublisher(ctx, cfg)
	if natsClient != nil {
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.Errorf("Error closing NATS connection: %v", err)
			}
		}()
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	manager := application.NewTournamentManager(uowFactory)

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.GuildID,
	}, uowFactory, manager)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	notificationHandler := application.NewNotificationHandler(uowFactory, discordBot.Notifier(), discordBot.UserResolver())
	application.RegisterApplicationSubscriptions(eventPublisher, notificationHandler)

	worker := application.NewSettlementWorker(uowFactory, manager)
	stopWorker, err := worker.Start(ctx, cfg.SettlementSchedule)
	if err != nil {
		discordBot.Close()
		return err
	}

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		stopWorker()
		close(stopped)
	}()
	select {
	case <-stopped:
		log.Info("Shutdown completed")
	case <-time.After(10 * time.Second):
		log.Warn("Shutdown timeout exceeded, settlement sweep still running")
	}

	return nil
}

// initEventPublisher connects to NATS when configured and falls back to in-process delivery
func initEventPublisher(ctx context.Context, cfg *config.Config) (*infrastructure.NATSEventPublisher, *infrastructure.NATSClient) {
	servers := cfg.NATSServerList()
	if len(servers) == 0 {
		log.Info("NATS disabled, domain events stay in process")
		return infrastructure.NewLocalEventPublisher(), nil
	}

	client := infrastructure.NewNATSClient(servers)
	if err := client.Connect(ctx); err != nil {
		log.WithError(err).Warn("Failed to connect to NATS, domain events stay in process")
		return infrastructure.NewLocalEventPublisher(), nil
	}

	publisher := infrastructure.NewNATSEventPublisher(client, infrastructure.NewEventSubjectMapper())
	if err := publisher.EnsureDomainEventStream(client); err != nil {
		log.WithError(err).Warn("Failed to ensure domain event stream, publishing without persistence")
	}
	return publisher, client
}

func configureLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
