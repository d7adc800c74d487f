// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shomiti/shomiti-go/internal/model"
)

const heroColumns = `id, placement, image, title, subtitle, cta_text, cta_link,
	display_order, is_active, created_at, updated_at`

// Hero rows use one deterministic ordering everywhere: display_order
// ascending, ties broken by created_at descending.
const heroOrderBy = ` ORDER BY display_order ASC, created_at DESC, id DESC`

func scanHeroRow(s interface{ Scan(...any) error }) (model.Hero, error) {
	var h model.Hero
	err := s.Scan(&h.ID, &h.Placement, &h.Image, &h.Title, &h.Subtitle, &h.CTAText,
		&h.CTALink, &h.DisplayOrder, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (q *Queries) queryHeroes(ctx context.Context, query string, args ...any) ([]model.Hero, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Hero
	for rows.Next() {
		h, err := scanHeroRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ListActiveHeroes returns the active rows for a placement in display order.
// Only is_active rows are eligible for display.
func (q *Queries) ListActiveHeroes(ctx context.Context, placement string) ([]model.Hero, error) {
	if !model.IsHeroPlacement(placement) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, placement)
	}
	return q.queryHeroes(ctx,
		`SELECT `+heroColumns+` FROM hero_content WHERE placement = ? AND is_active = 1`+heroOrderBy,
		placement)
}

// ListHeroes returns all rows for a placement, active or not, in display order.
func (q *Queries) ListHeroes(ctx context.Context, placement string) ([]model.Hero, error) {
	if !model.IsHeroPlacement(placement) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, placement)
	}
	return q.queryHeroes(ctx,
		`SELECT `+heroColumns+` FROM hero_content WHERE placement = ?`+heroOrderBy, placement)
}

// GetHero fetches a hero row by placement and id.
func (q *Queries) GetHero(ctx context.Context, placement string, id int64) (model.Hero, error) {
	if !model.IsHeroPlacement(placement) {
		return model.Hero{}, fmt.Errorf("%w: %s", ErrUnknownCollection, placement)
	}
	return scanHeroRow(q.db.QueryRowContext(ctx,
		`SELECT `+heroColumns+` FROM hero_content WHERE placement = ? AND id = ?`,
		placement, id))
}

// CreateHeroParams holds the writable fields of a hero row.
type CreateHeroParams struct {
	Placement    string
	Image        string
	Title        string
	Subtitle     string
	CTAText      string
	CTALink      string
	DisplayOrder int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateHero inserts a hero row and returns the stored row.
func (q *Queries) CreateHero(ctx context.Context, arg CreateHeroParams) (model.Hero, error) {
	if !model.IsHeroPlacement(arg.Placement) {
		return model.Hero{}, fmt.Errorf("%w: %s", ErrUnknownCollection, arg.Placement)
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO hero_content
		 (placement, image, title, subtitle, cta_text, cta_link, display_order, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Placement, arg.Image, arg.Title, arg.Subtitle, arg.CTAText, arg.CTALink,
		arg.DisplayOrder, arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Hero{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Hero{}, err
	}
	return q.GetHero(ctx, arg.Placement, id)
}

// UpdateHeroParams holds the fields for UpdateHero.
type UpdateHeroParams struct {
	Placement    string
	ID           int64
	Image        string
	Title        string
	Subtitle     string
	CTAText      string
	CTALink      string
	DisplayOrder int64
	IsActive     bool
	UpdatedAt    time.Time
}

// UpdateHero updates a hero row in place. Returns sql.ErrNoRows if absent.
func (q *Queries) UpdateHero(ctx context.Context, arg UpdateHeroParams) error {
	if !model.IsHeroPlacement(arg.Placement) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, arg.Placement)
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE hero_content SET
		 image = ?, title = ?, subtitle = ?, cta_text = ?, cta_link = ?,
		 display_order = ?, is_active = ?, updated_at = ?
		 WHERE placement = ? AND id = ?`,
		arg.Image, arg.Title, arg.Subtitle, arg.CTAText, arg.CTALink,
		arg.DisplayOrder, arg.IsActive, arg.UpdatedAt, arg.Placement, arg.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteHero removes a hero row. Idempotent: deleting an absent id succeeds.
func (q *Queries) DeleteHero(ctx context.Context, placement string, id int64) error {
	if !model.IsHeroPlacement(placement) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, placement)
	}
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM hero_content WHERE placement = ? AND id = ?`, placement, id)
	return err
}
