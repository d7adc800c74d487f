// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shomiti/shomiti-go/internal/model"
)

// SummaryView is the admin dashboard payload: per-collection counts plus
// recent activity. Sections that fail to load report zero instead of
// failing the whole dashboard.
type SummaryView struct {
	Collections map[string]int64 `json:"collections"`
	Memberships int64            `json:"memberships"`
	Users       int64            `json:"users"`
	Activities  []ActivityView   `json:"activities"`
}

// ActivityView is the JSON shape of an activity log row.
type ActivityView struct {
	ID        int64  `json:"id"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// Summary assembles the dashboard, fetching every section concurrently.
// A failed section logs and degrades to empty; the dashboard shell always
// renders.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	view := SummaryView{
		Collections: make(map[string]int64, len(model.ContentCollections)),
		Activities:  []ActivityView{},
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(r.Context())

	for _, collection := range model.ContentCollections {
		g.Go(func() error {
			n, err := h.queries.CountContent(ctx, collection)
			if err != nil {
				slog.Error("dashboard section failed", "section", collection, "error", err)
				n = 0
			}
			mu.Lock()
			view.Collections[collection] = n
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		n, err := h.queries.CountMemberships(ctx)
		if err != nil {
			slog.Error("dashboard section failed", "section", "memberships", "error", err)
			n = 0
		}
		mu.Lock()
		view.Memberships = n
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		n, err := h.queries.CountUsers(ctx)
		if err != nil {
			slog.Error("dashboard section failed", "section", "users", "error", err)
			n = 0
		}
		mu.Lock()
		view.Users = n
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		activities, err := h.queries.ListRecentActivities(ctx, 20)
		if err != nil {
			slog.Error("dashboard section failed", "section", "activities", "error", err)
			return nil
		}
		views := make([]ActivityView, 0, len(activities))
		for _, a := range activities {
			views = append(views, ActivityView{
				ID:        a.ID,
				Level:     a.Level,
				Category:  a.Category,
				Message:   a.Message,
				CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		mu.Lock()
		view.Activities = views
		mu.Unlock()
		return nil
	})

	// Sections swallow their own errors; Wait only propagates context
	// cancellation.
	if err := g.Wait(); err != nil {
		WriteInternalError(w, "Failed to assemble summary")
		return
	}

	WriteSuccess(w, view, nil)
}
