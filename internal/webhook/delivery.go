// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"

	"github.com/shomiti/shomiti-go/internal/store"
)

// Delivery configuration constants
const (
	MaxAttempts    = 5
	RequestTimeout = 30 * time.Second
	MaxResponseLen = 10 * 1024
	UserAgent      = "shomiti/1.0"
)

type deliveryResult struct {
	success      bool
	statusCode   int
	responseBody string
	err          error
	shouldRetry  bool
}

var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// processDelivery attempts the HTTP delivery with jittered exponential
// backoff between attempts, then records the terminal state.
func (d *Dispatcher) processDelivery(ctx context.Context, delivery *queuedDelivery) {
	record, err := d.queries.GetWebhookDelivery(ctx, delivery.deliveryID)
	if err != nil {
		d.logger.Error("failed to load delivery record",
			"error", err, "delivery_id", delivery.deliveryID)
		return
	}
	if record.Status != store.DeliveryStatusPending {
		return
	}

	retry := &backoff.Backoff{
		Min:    time.Second,
		Max:    time.Minute,
		Factor: 2,
		Jitter: true,
	}

	var result deliveryResult
	attempts := record.Attempts
	for attempts < MaxAttempts {
		result = d.attemptDelivery(ctx, delivery)
		attempts++

		if result.success || !result.shouldRetry {
			break
		}

		select {
		case <-d.done:
			// Shutting down, leave the delivery pending for the sweeper.
			d.recordFailure(ctx, delivery.deliveryID, store.DeliveryStatusPending, attempts, result)
			return
		case <-ctx.Done():
			d.recordFailure(ctx, delivery.deliveryID, store.DeliveryStatusPending, attempts, result)
			return
		case <-time.After(retry.Duration()):
		}
	}

	now := time.Now()
	if result.success {
		err = d.queries.UpdateDeliverySuccess(ctx, store.UpdateDeliverySuccessParams{
			ID:           delivery.deliveryID,
			Attempts:     attempts,
			ResponseCode: sql.NullInt64{Int64: int64(result.statusCode), Valid: true},
			ResponseBody: sql.NullString{String: result.responseBody, Valid: true},
			DeliveredAt:  sql.NullTime{Time: now, Valid: true},
			UpdatedAt:    now,
		})
		if err != nil {
			d.logger.Error("failed to record delivery success",
				"error", err, "delivery_id", delivery.deliveryID)
			return
		}
		d.logger.Info("webhook delivered",
			"delivery_id", delivery.deliveryID,
			"event", delivery.event,
			"status_code", result.statusCode,
			"attempts", attempts)
		return
	}

	d.recordFailure(ctx, delivery.deliveryID, store.DeliveryStatusDead, attempts, result)
	d.logger.Warn("webhook delivery dead",
		"delivery_id", delivery.deliveryID,
		"event", delivery.event,
		"attempts", attempts,
		"error", result.err)
}

func (d *Dispatcher) recordFailure(ctx context.Context, id int64, status string, attempts int64, result deliveryResult) {
	err := d.queries.UpdateDeliveryFailure(ctx, store.UpdateDeliveryFailureParams{
		ID:           id,
		Status:       status,
		Attempts:     attempts,
		ResponseCode: sql.NullInt64{Int64: int64(result.statusCode), Valid: result.statusCode > 0},
		ResponseBody: sql.NullString{String: result.responseBody, Valid: result.responseBody != ""},
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		d.logger.Error("failed to record delivery failure", "error", err, "delivery_id", id)
	}
}

// attemptDelivery performs one signed HTTP POST.
func (d *Dispatcher) attemptDelivery(ctx context.Context, delivery *queuedDelivery) deliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, delivery.url, bytes.NewReader(delivery.payload))
	if err != nil {
		return deliveryResult{
			err:         fmt.Errorf("creating request: %w", err),
			shouldRetry: false,
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Webhook-Signature", GenerateSignature(delivery.payload, d.secret))
	req.Header.Set("X-Webhook-Event", delivery.event)
	req.Header.Set("X-Webhook-Delivery-ID", fmt.Sprintf("%d", delivery.deliveryID))

	resp, err := httpClient.Do(req)
	if err != nil {
		return deliveryResult{
			err:         fmt.Errorf("request failed: %w", err),
			shouldRetry: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	responseBody := string(body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return deliveryResult{
			success:      true,
			statusCode:   resp.StatusCode,
			responseBody: responseBody,
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Client errors are terminal except timeout and throttling.
		return deliveryResult{
			statusCode:   resp.StatusCode,
			responseBody: responseBody,
			err:          fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			shouldRetry:  resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests,
		}
	default:
		return deliveryResult{
			statusCode:   resp.StatusCode,
			responseBody: responseBody,
			err:          fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			shouldRetry:  true,
		}
	}
}
