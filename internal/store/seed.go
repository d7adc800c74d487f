// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shomiti/shomiti-go/internal/auth"
	"github.com/shomiti/shomiti-go/internal/model"
)

// Default admin credentials, created on first run.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Seed creates initial data in the database: the default admin account and,
// when demo seeding is enabled, a handful of content rows so the public
// site is not empty on a fresh install.
func Seed(ctx context.Context, db *sql.DB, demo bool) error {
	queries := New(db)

	if err := seedAdminUser(ctx, queries); err != nil {
		return err
	}

	if demo {
		if err := seedDemoContent(ctx, queries); err != nil {
			return err
		}
	}

	return nil
}

func seedAdminUser(ctx context.Context, queries *Queries) error {
	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	return nil
}

func seedDemoContent(ctx context.Context, queries *Queries) error {
	n, err := queries.CountContent(ctx, model.CollectionNotices)
	if err != nil {
		return fmt.Errorf("counting notices: %w", err)
	}
	if n > 0 {
		slog.Info("content already present, skipping demo seed")
		return nil
	}

	now := time.Now()
	demo := []CreateContentParams{
		{
			Collection:  model.CollectionNotices,
			Title:       "সাধারণ সভার বিজ্ঞপ্তি",
			Description: "আগামী মাসের সাধারণ সভা সংক্রান্ত ঘোষণা।",
			Category:    sql.NullString{String: "সভা", Valid: true},
			Date:        sql.NullTime{Time: now.AddDate(0, 0, 7), Valid: true},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Collection:  model.CollectionEvents,
			Title:       "শিশুদের চিত্রাঙ্কন প্রতিযোগিতা",
			Description: "বার্ষিক চিত্রাঙ্কন প্রতিযোগিতা।",
			Category:    sql.NullString{String: "প্রতিযোগিতা", Valid: true},
			Date:        sql.NullTime{Time: now.AddDate(0, 0, 20), Valid: true},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Collection:  model.CollectionBlogs,
			Title:       "শিশুদের নৈতিক শিক্ষা",
			Description: "নৈতিক শিক্ষার গুরুত্ব নিয়ে আলোচনা।",
			Content:     "বিস্তারিত আসছে।",
			Category:    sql.NullString{String: "শিক্ষা", Valid: true},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	for _, p := range demo {
		if _, err := queries.CreateContent(ctx, p); err != nil {
			return fmt.Errorf("seeding %s: %w", p.Collection, err)
		}
	}

	slog.Info("seeded demo content", "items", len(demo))
	return nil
}
