// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Webhook delivery statuses.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusDead      = "dead"
)

// WebhookDelivery is a queued or completed outbound notification.
type WebhookDelivery struct {
	ID           int64
	Event        string
	URL          string
	Payload      []byte
	Status       string
	Attempts     int64
	ResponseCode sql.NullInt64
	ResponseBody sql.NullString
	DeliveredAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateWebhookDeliveryParams holds the fields for CreateWebhookDelivery.
type CreateWebhookDeliveryParams struct {
	Event     string
	URL       string
	Payload   []byte
	CreatedAt time.Time
}

// CreateWebhookDelivery enqueues a delivery in pending state.
func (q *Queries) CreateWebhookDelivery(ctx context.Context, arg CreateWebhookDeliveryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO webhook_deliveries (event, url, payload, status, attempts, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		arg.Event, arg.URL, arg.Payload, DeliveryStatusPending, arg.CreatedAt, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const deliveryColumns = `id, event, url, payload, status, attempts,
	response_code, response_body, delivered_at, created_at, updated_at`

// GetWebhookDelivery fetches a delivery by id.
func (q *Queries) GetWebhookDelivery(ctx context.Context, id int64) (WebhookDelivery, error) {
	var d WebhookDelivery
	err := q.db.QueryRowContext(ctx,
		`SELECT `+deliveryColumns+` FROM webhook_deliveries WHERE id = ?`, id).
		Scan(&d.ID, &d.Event, &d.URL, &d.Payload, &d.Status, &d.Attempts,
			&d.ResponseCode, &d.ResponseBody, &d.DeliveredAt, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// UpdateDeliverySuccessParams holds the fields for UpdateDeliverySuccess.
type UpdateDeliverySuccessParams struct {
	ID           int64
	Attempts     int64
	ResponseCode sql.NullInt64
	ResponseBody sql.NullString
	DeliveredAt  sql.NullTime
	UpdatedAt    time.Time
}

// UpdateDeliverySuccess marks a delivery as delivered.
func (q *Queries) UpdateDeliverySuccess(ctx context.Context, arg UpdateDeliverySuccessParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET status = ?, attempts = ?, response_code = ?, response_body = ?, delivered_at = ?, updated_at = ?
		 WHERE id = ?`,
		DeliveryStatusDelivered, arg.Attempts, arg.ResponseCode, arg.ResponseBody,
		arg.DeliveredAt, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateDeliveryFailureParams holds the fields for UpdateDeliveryFailure.
type UpdateDeliveryFailureParams struct {
	ID           int64
	Status       string // pending (will retry) or dead
	Attempts     int64
	ResponseCode sql.NullInt64
	ResponseBody sql.NullString
	UpdatedAt    time.Time
}

// UpdateDeliveryFailure records a failed attempt.
func (q *Queries) UpdateDeliveryFailure(ctx context.Context, arg UpdateDeliveryFailureParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET status = ?, attempts = ?, response_code = ?, response_body = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Status, arg.Attempts, arg.ResponseCode, arg.ResponseBody, arg.UpdatedAt, arg.ID)
	return err
}

// MarkStalePendingDead moves pending deliveries older than cutoff to
// dead. Covers deliveries lost to a full queue or a shutdown.
func (q *Queries) MarkStalePendingDead(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET status = ?, updated_at = ?
		 WHERE status = ? AND created_at < ?`,
		DeliveryStatusDead, time.Now(), DeliveryStatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PurgeDeliveriesBefore deletes finished deliveries older than cutoff and
// returns the number of rows removed. Pending deliveries are kept.
func (q *Queries) PurgeDeliveriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM webhook_deliveries WHERE status != ? AND created_at < ?`,
		DeliveryStatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
