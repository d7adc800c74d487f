// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package maintenance

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shomiti/shomiti-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "shomiti-maintenance-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	})
	return db
}

func TestRunHousekeeping(t *testing.T) {
	db := testDB(t)
	queries := store.New(db)
	ctx := context.Background()
	now := time.Now()

	// Old finished delivery, old pending delivery, and a fresh one.
	oldID, err := queries.CreateWebhookDelivery(ctx, store.CreateWebhookDeliveryParams{
		Event:     "membership.created",
		URL:       "https://hooks.example.com/sheet",
		Payload:   []byte(`{}`),
		CreatedAt: now.Add(-60 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateWebhookDelivery: %v", err)
	}
	if err := queries.UpdateDeliverySuccess(ctx, store.UpdateDeliverySuccessParams{
		ID:          oldID,
		Attempts:    1,
		DeliveredAt: sql.NullTime{Time: now.Add(-60 * 24 * time.Hour), Valid: true},
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("UpdateDeliverySuccess: %v", err)
	}

	staleID, err := queries.CreateWebhookDelivery(ctx, store.CreateWebhookDeliveryParams{
		Event:     "contact.submitted",
		URL:       "https://hooks.example.com/sheet",
		Payload:   []byte(`{}`),
		CreatedAt: now.Add(-48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateWebhookDelivery: %v", err)
	}

	freshID, err := queries.CreateWebhookDelivery(ctx, store.CreateWebhookDeliveryParams{
		Event:     "membership.created",
		URL:       "https://hooks.example.com/sheet",
		Payload:   []byte(`{}`),
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateWebhookDelivery: %v", err)
	}

	// Old and fresh activity rows.
	for _, age := range []time.Duration{100 * 24 * time.Hour, time.Hour} {
		if _, err := queries.CreateActivity(ctx, store.CreateActivityParams{
			Level:     "info",
			Category:  "system",
			Message:   "seeded",
			Metadata:  "{}",
			CreatedAt: now.Add(-age),
		}); err != nil {
			t.Fatalf("CreateActivity: %v", err)
		}
	}

	s := New(db, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	if err := s.RunHousekeeping(ctx); err != nil {
		t.Fatalf("RunHousekeeping: %v", err)
	}

	if _, err := queries.GetWebhookDelivery(ctx, oldID); err == nil {
		t.Error("old finished delivery survived the purge")
	}

	stale, err := queries.GetWebhookDelivery(ctx, staleID)
	if err != nil {
		t.Fatalf("GetWebhookDelivery(stale): %v", err)
	}
	if stale.Status != store.DeliveryStatusDead {
		t.Errorf("stale pending status = %q, want %q", stale.Status, store.DeliveryStatusDead)
	}

	fresh, err := queries.GetWebhookDelivery(ctx, freshID)
	if err != nil {
		t.Fatalf("GetWebhookDelivery(fresh): %v", err)
	}
	if fresh.Status != store.DeliveryStatusPending {
		t.Errorf("fresh status = %q, want pending", fresh.Status)
	}

	activities, err := queries.ListRecentActivities(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentActivities: %v", err)
	}
	if len(activities) != 1 {
		t.Errorf("activities after purge = %d, want 1", len(activities))
	}
}

func TestSchedulerStartStop(t *testing.T) {
	db := testDB(t)

	s := New(db, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
