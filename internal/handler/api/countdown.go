// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shomiti/shomiti-go/internal/countdown"
	"github.com/shomiti/shomiti-go/internal/model"
)

// CountdownView is the countdown snapshot for one event.
type CountdownView struct {
	EventID   int64               `json:"event_id"`
	Target    *time.Time          `json:"target,omitempty"`
	State     countdown.State     `json:"state"`
	Remaining countdown.Breakdown `json:"remaining"`
}

func (h *Handler) eventTarget(r *http.Request) (model.ContentItem, time.Time, error) {
	id, ok := contentID(r)
	if !ok {
		return model.ContentItem{}, time.Time{}, sql.ErrNoRows
	}

	item, err := h.queries.GetContent(r.Context(), model.CollectionEvents, id)
	if err != nil {
		return model.ContentItem{}, time.Time{}, err
	}

	var target time.Time
	if item.Date.Valid {
		target = item.Date.Time
	}
	return item, target, nil
}

// EventCountdown returns the countdown snapshot for an event. Events
// without a date report the idle state.
func (h *Handler) EventCountdown(w http.ResponseWriter, r *http.Request) {
	item, target, err := h.eventTarget(r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Event not found")
			return
		}
		slog.Error("fetching event for countdown failed", "error", err)
		WriteInternalError(w, "Failed to fetch event")
		return
	}

	snap := countdown.SnapshotAt(target, time.Now())
	view := CountdownView{
		EventID:   item.ID,
		State:     snap.State,
		Remaining: snap.Remaining,
	}
	if !target.IsZero() {
		view.Target = &target
	}
	WriteSuccess(w, view, nil)
}

// EventCountdownStream streams countdown frames over SSE, one per
// second, until the target expires or the client disconnects.
func (h *Handler) EventCountdownStream(w http.ResponseWriter, r *http.Request) {
	_, target, err := h.eventTarget(r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Event not found")
			return
		}
		slog.Error("fetching event for countdown failed", "error", err)
		WriteInternalError(w, "Failed to fetch event")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// ResponseController reaches through the session middleware's
	// writer wrapper; a bare Flusher assertion would not.
	rc := http.NewResponseController(w)

	cd := countdown.New(target)
	defer cd.Stop()

	writeFrame := func(snap countdown.Snapshot) bool {
		payload, err := json.Marshal(snap)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return false
		}
		if err := rc.Flush(); err != nil {
			return false
		}
		return snap.State == countdown.StateCounting
	}

	// First frame immediately, then one per tick. The final expired
	// frame is delivered even when earlier frames were dropped, so the
	// loop always sees it and ends the stream.
	if !writeFrame(cd.Snapshot()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-cd.C():
			if !writeFrame(snap) {
				return
			}
		}
	}
}
