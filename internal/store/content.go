// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shomiti/shomiti-go/internal/model"
)

// ErrUnknownCollection is returned for collection names outside the fixed
// set. The historic behavior of the system was to silently return an empty
// list; callers that want to preserve that tolerance check for this
// sentinel explicitly instead of receiving an unannotated empty result.
var ErrUnknownCollection = errors.New("unknown collection")

const contentColumns = `id, collection, title, slug, description, content, category,
	date, thumbnail, url, tags, urgent, extra, created_at, updated_at`

func scanContentRow(s interface{ Scan(...any) error }) (model.ContentItem, error) {
	var c model.ContentItem
	err := s.Scan(&c.ID, &c.Collection, &c.Title, &c.Slug, &c.Description, &c.Content,
		&c.Category, &c.Date, &c.Thumbnail, &c.URL, &c.Tags, &c.Urgent, &c.Extra,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListContent returns all items in a collection, newest date first (items
// without a date sort last), ties broken by creation time descending.
func (q *Queries) ListContent(ctx context.Context, collection string) ([]model.ContentItem, error) {
	if !model.IsContentCollection(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM content_items
		 WHERE collection = ?
		 ORDER BY date IS NULL, date DESC, created_at DESC, id DESC`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ContentItem
	for rows.Next() {
		c, err := scanContentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetContent fetches a single item by collection and id. Returns
// sql.ErrNoRows when no row matches.
func (q *Queries) GetContent(ctx context.Context, collection string, id int64) (model.ContentItem, error) {
	if !model.IsContentCollection(collection) {
		return model.ContentItem{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return scanContentRow(q.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_items WHERE collection = ? AND id = ?`,
		collection, id))
}

// CreateContentParams holds the writable fields of a content item.
type CreateContentParams struct {
	Collection  string
	Title       string
	Slug        sql.NullString
	Description string
	Content     string
	Category    sql.NullString
	Date        sql.NullTime
	Thumbnail   sql.NullString
	URL         sql.NullString
	Tags        sql.NullString
	Urgent      bool
	Extra       sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateContent inserts an item and returns the stored row including its
// store-assigned id. Ids are never supplied by callers.
func (q *Queries) CreateContent(ctx context.Context, arg CreateContentParams) (model.ContentItem, error) {
	if !model.IsContentCollection(arg.Collection) {
		return model.ContentItem{}, fmt.Errorf("%w: %s", ErrUnknownCollection, arg.Collection)
	}

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO content_items
		 (collection, title, slug, description, content, category, date, thumbnail, url, tags, urgent, extra, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Collection, arg.Title, arg.Slug, arg.Description, arg.Content, arg.Category,
		arg.Date, arg.Thumbnail, arg.URL, arg.Tags, arg.Urgent, arg.Extra,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.ContentItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ContentItem{}, err
	}
	return q.GetContent(ctx, arg.Collection, id)
}

// UpdateContentParams holds the fields for UpdateContent.
type UpdateContentParams struct {
	Collection  string
	ID          int64
	Title       string
	Slug        sql.NullString
	Description string
	Content     string
	Category    sql.NullString
	Date        sql.NullTime
	Thumbnail   sql.NullString
	URL         sql.NullString
	Tags        sql.NullString
	Urgent      bool
	Extra       sql.NullString
	UpdatedAt   time.Time
}

// UpdateContent updates an item in place by id. Returns sql.ErrNoRows if the
// item does not exist in the collection.
func (q *Queries) UpdateContent(ctx context.Context, arg UpdateContentParams) error {
	if !model.IsContentCollection(arg.Collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, arg.Collection)
	}

	res, err := q.db.ExecContext(ctx,
		`UPDATE content_items SET
		 title = ?, slug = ?, description = ?, content = ?, category = ?, date = ?,
		 thumbnail = ?, url = ?, tags = ?, urgent = ?, extra = ?, updated_at = ?
		 WHERE collection = ? AND id = ?`,
		arg.Title, arg.Slug, arg.Description, arg.Content, arg.Category, arg.Date,
		arg.Thumbnail, arg.URL, arg.Tags, arg.Urgent, arg.Extra, arg.UpdatedAt,
		arg.Collection, arg.ID)
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

// DeleteContent removes an item by id. Deleting an absent id is not an
// error; the operation is idempotent from the caller's perspective.
func (q *Queries) DeleteContent(ctx context.Context, collection string, id int64) error {
	if !model.IsContentCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM content_items WHERE collection = ? AND id = ?`, collection, id)
	return err
}

// CountContent returns the number of items in a collection.
func (q *Queries) CountContent(ctx context.Context, collection string) (int64, error) {
	if !model.IsContentCollection(collection) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM content_items WHERE collection = ?`, collection).Scan(&n)
	return n, err
}

// CountContentBySlug reports how many items in a collection carry the slug.
// Used for slug uniqueness checks before insert.
func (q *Queries) CountContentBySlug(ctx context.Context, collection, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM content_items WHERE collection = ? AND slug = ?`,
		collection, slug).Scan(&n)
	return n, err
}
