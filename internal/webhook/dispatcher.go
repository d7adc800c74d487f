// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/shomiti/shomiti-go/internal/store"
)

// Dispatcher queues events and delivers them on worker goroutines.
// Every dispatched event first gets a persistent delivery row, so an
// audit trail survives restarts even when the queue does not.
type Dispatcher struct {
	queries *store.Queries
	logger  *slog.Logger
	secret  string
	queue   chan *queuedDelivery
	workers int
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

type queuedDelivery struct {
	deliveryID int64
	event      string
	payload    []byte
	url        string
}

// Config holds dispatcher configuration.
type Config struct {
	Workers int
	Secret  string
}

// NewDispatcher creates a dispatcher. It does not start workers.
func NewDispatcher(db *sql.DB, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		queries: store.New(db),
		logger:  logger,
		secret:  cfg.Secret,
		queue:   make(chan *queuedDelivery, 100),
		workers: cfg.Workers,
		done:    make(chan struct{}),
	}
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting webhook dispatcher", "workers", d.workers)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop signals the workers and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case delivery := <-d.queue:
			d.logger.Debug("processing webhook delivery",
				"worker_id", id,
				"delivery_id", delivery.deliveryID,
				"event", delivery.event)
			d.processDelivery(ctx, delivery)
		}
	}
}

// Dispatch records and enqueues an event for the given endpoint.
// An empty url drops the event silently so deployments without a
// configured receiver need no special casing.
func (d *Dispatcher) Dispatch(ctx context.Context, url string, event *Event) error {
	if url == "" {
		return nil
	}

	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()
	if !running {
		d.logger.Warn("dispatcher not running, dropping event", "event_type", event.Type)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	deliveryID, err := d.queries.CreateWebhookDelivery(ctx, store.CreateWebhookDeliveryParams{
		Event:     event.Type,
		URL:       url,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	qd := &queuedDelivery{
		deliveryID: deliveryID,
		event:      event.Type,
		payload:    payload,
		url:        url,
	}

	select {
	case d.queue <- qd:
	default:
		d.logger.Warn("webhook queue full, delivery left pending", "delivery_id", deliveryID)
	}
	return nil
}

// DispatchEvent wraps data in an Event and dispatches it.
func (d *Dispatcher) DispatchEvent(ctx context.Context, url, eventType string, data any) error {
	return d.Dispatch(ctx, url, NewEvent(eventType, data))
}

// GenerateSignature computes the HMAC-SHA256 signature for a payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a payload signature in constant time.
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
