package application

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Settler settles the decided bet games of a tournament
type Settler interface {
	SettlePending(ctx context.Context, guildID, tournamentID int64) (*SettlementSummary, error)
}

// SettlementWorker periodically retries settlements that did not complete after a result
type SettlementWorker struct {
	uowFactory UnitOfWorkFactory
	settler    Settler
}

// NewSettlementWorker creates a new settlement worker
func NewSettlementWorker(uowFactory UnitOfWorkFactory, settler Settler) *SettlementWorker {
	return &SettlementWorker{
		uowFactory: uowFactory,
		settler:    settler,
	}
}

// Start schedules the sweep with a cron spec such as "@every 5m" and returns a stop function
func (w *SettlementWorker) Start(ctx context.Context, schedule string) (func(), error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		if err := w.RunOnce(ctx); err != nil {
			log.WithError(err).Error("Settlement sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid settlement schedule %q: %w", schedule, err)
	}

	c.Start()
	log.WithField("schedule", schedule).Info("Settlement worker started")

	return func() {
		<-c.Stop().Done()
		log.Info("Settlement worker stopped")
	}, nil
}

// RunOnce settles every pending bet game across all guilds
func (w *SettlementWorker) RunOnce(ctx context.Context) error {
	guilds, err := w.pendingGuilds(ctx)
	if err != nil {
		return err
	}

	var settled, failed int
	for _, guildID := range guilds {
		tournaments, err := w.pendingTournaments(ctx, guildID)
		if err != nil {
			log.WithFields(log.Fields{
				"guild_id": guildID,
				"error":    err,
			}).Error("Failed to list tournaments with pending settlements")
			failed++
			continue
		}

		for _, tournamentID := range tournaments {
			summary, err := w.settler.SettlePending(ctx, guildID, tournamentID)
			if summary != nil {
				settled += len(summary.Settled)
				failed += summary.Failed
			}
			if err != nil {
				log.WithFields(log.Fields{
					"guild_id":      guildID,
					"tournament_id": tournamentID,
					"error":         err,
				}).Warn("Settlement sweep left games unsettled")
			}
		}
	}

	if len(guilds) > 0 {
		log.WithFields(log.Fields{
			"guilds":  len(guilds),
			"settled": settled,
			"failed":  failed,
		}).Info("Completed settlement sweep")
	}
	return nil
}

func (w *SettlementWorker) pendingGuilds(ctx context.Context) ([]int64, error) {
	uow := w.uowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	guilds, err := uow.BetGameRepository().GetGuildsWithPendingSettlement(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds with pending settlements: %w", err)
	}
	return guilds, nil
}

func (w *SettlementWorker) pendingTournaments(ctx context.Context, guildID int64) ([]int64, error) {
	uow := w.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.BetGameRepository().GetTournamentsWithPendingSettlement(ctx)
}
