// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/shomiti/shomiti-go/internal/model"
	"github.com/shomiti/shomiti-go/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "shomiti-logging-test-*.db")
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

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func lastActivity(t *testing.T, db *sql.DB) model.Activity {
	t.Helper()

	activities, err := store.New(db).ListRecentActivities(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRecentActivities: %v", err)
	}
	if len(activities) == 0 {
		t.Fatal("no activity recorded")
	}
	return activities[0]
}

func TestActivityLogHandlerErrorLevel(t *testing.T) {
	db := testDB(t)

	logger := slog.New(NewActivityLogHandler(discardHandler{}, db))
	logger.Error("membership webhook delivery failed", "delivery_id", 7)

	a := lastActivity(t, db)
	if a.Level != model.ActivityLevelError {
		t.Errorf("Level = %q, want %q", a.Level, model.ActivityLevelError)
	}
	if a.Category != model.ActivityCategoryMembership {
		t.Errorf("Category = %q, want %q", a.Category, model.ActivityCategoryMembership)
	}
	if a.Message != "membership webhook delivery failed" {
		t.Errorf("Message = %q", a.Message)
	}
}

func TestActivityLogHandlerExplicitCategory(t *testing.T) {
	db := testDB(t)

	logger := slog.New(NewActivityLogHandler(discardHandler{}, db))
	logger.Warn("rate limiter cache reset", "category", model.ActivityCategorySystem)

	a := lastActivity(t, db)
	if a.Level != model.ActivityLevelWarning {
		t.Errorf("Level = %q, want %q", a.Level, model.ActivityLevelWarning)
	}
	if a.Category != model.ActivityCategorySystem {
		t.Errorf("Category = %q, want %q", a.Category, model.ActivityCategorySystem)
	}
}

func TestActivityLogHandlerInfoNotPersisted(t *testing.T) {
	db := testDB(t)

	logger := slog.New(NewActivityLogHandler(discardHandler{}, db))
	logger.Info("server started")

	activities, err := store.New(db).ListRecentActivities(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentActivities: %v", err)
	}
	if len(activities) != 0 {
		t.Errorf("INFO record persisted: %+v", activities)
	}
}

func TestActivityLogHandlerUserID(t *testing.T) {
	db := testDB(t)

	logger := slog.New(NewActivityLogHandler(discardHandler{}, db))
	logger.Warn("failed login attempt", "user_id", int64(42))

	a := lastActivity(t, db)
	if !a.UserID.Valid || a.UserID.Int64 != 42 {
		t.Errorf("UserID = %+v, want 42", a.UserID)
	}
	if a.Category != model.ActivityCategoryAuth {
		t.Errorf("Category = %q, want %q", a.Category, model.ActivityCategoryAuth)
	}
}
