// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package maintenance runs scheduled housekeeping: pruning old activity
// rows and finished webhook deliveries.
package maintenance

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shomiti/shomiti-go/internal/store"
)

// Retention windows for housekeeping.
const (
	ActivityRetention  = 90 * 24 * time.Hour
	DeliveryRetention  = 30 * 24 * time.Hour
	PendingGracePeriod = 24 * time.Hour
)

// Scheduler owns the cron instance running the housekeeping jobs.
type Scheduler struct {
	queries *store.Queries
	cron    *cron.Cron
	logger  *slog.Logger
}

// New creates a scheduler. It does not start any jobs.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		queries: store.New(db),
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the nightly housekeeping job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("30 3 * * *", func() {
		if err := s.RunHousekeeping(context.Background()); err != nil {
			s.logger.Error("housekeeping failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("maintenance scheduler stopped")
}

// RunHousekeeping performs one pruning pass. Exported so the job can be
// triggered outside the schedule.
func (s *Scheduler) RunHousekeeping(ctx context.Context) error {
	now := time.Now()

	stale, err := s.queries.MarkStalePendingDead(ctx, now.Add(-PendingGracePeriod))
	if err != nil {
		return err
	}

	purgedDeliveries, err := s.queries.PurgeDeliveriesBefore(ctx, now.Add(-DeliveryRetention))
	if err != nil {
		return err
	}

	purgedActivities, err := s.queries.PurgeActivitiesBefore(ctx, now.Add(-ActivityRetention))
	if err != nil {
		return err
	}

	s.logger.Info("housekeeping pass complete",
		"stale_deliveries", stale,
		"purged_deliveries", purgedDeliveries,
		"purged_activities", purgedActivities,
	)
	return nil
}
