// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shomiti/shomiti-go/internal/model"
	"github.com/shomiti/shomiti-go/internal/store"
)

// HeroInput is the writable shape of a hero entry.
type HeroInput struct {
	Image        string `json:"image"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	CTAText      string `json:"cta_text"`
	CTALink      string `json:"cta_link"`
	DisplayOrder int64  `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

func validateHero(in *HeroInput) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(in.Image) == "" {
		errs["image"] = "Image is required"
	}
	return errs
}

func heroCacheKey(placement string) string {
	return "hero:" + placement
}

// GetHeroes returns the active entries of a placement in display order.
// Served from the cache when warm; hero rows change rarely and render on
// every page load.
func (h *Handler) GetHeroes(w http.ResponseWriter, r *http.Request) {
	placement := chi.URLParam(r, "placement")
	if !model.IsHeroPlacement(placement) {
		WriteNotFound(w, "Unknown placement")
		return
	}

	heroes, err := h.heroCache.GetOrSet(r.Context(), heroCacheKey(placement), func() (*[]model.Hero, error) {
		rows, err := h.queries.ListActiveHeroes(r.Context(), placement)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []model.Hero{}
		}
		return &rows, nil
	})
	if err != nil {
		slog.Error("listing hero content failed", "placement", placement, "error", err)
		WriteSuccess(w, []model.Hero{}, nil)
		return
	}

	// Cache entries round-trip through JSON, so reassert the ordering
	// rule on the way out instead of trusting the stored bytes.
	model.SortHero(*heroes)
	WriteSuccess(w, *heroes, nil)
}

// ListHeroesAdmin returns all entries of a placement, inactive included.
func (h *Handler) ListHeroesAdmin(w http.ResponseWriter, r *http.Request) {
	placement := chi.URLParam(r, "placement")
	if !model.IsHeroPlacement(placement) {
		WriteNotFound(w, "Unknown placement")
		return
	}

	heroes, err := h.queries.ListHeroes(r.Context(), placement)
	if err != nil {
		slog.Error("listing hero content failed", "placement", placement, "error", err)
		WriteInternalError(w, "Failed to list hero content")
		return
	}
	if heroes == nil {
		heroes = []model.Hero{}
	}
	WriteSuccess(w, heroes, nil)
}

// CreateHero inserts a hero entry and invalidates the placement cache.
func (h *Handler) CreateHero(w http.ResponseWriter, r *http.Request) {
	placement := chi.URLParam(r, "placement")
	if !model.IsHeroPlacement(placement) {
		WriteNotFound(w, "Unknown placement")
		return
	}

	var in HeroInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if errs := validateHero(&in); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	now := time.Now()
	hero, err := h.queries.CreateHero(r.Context(), store.CreateHeroParams{
		Placement:    placement,
		Image:        in.Image,
		Title:        in.Title,
		Subtitle:     in.Subtitle,
		CTAText:      in.CTAText,
		CTALink:      in.CTALink,
		DisplayOrder: in.DisplayOrder,
		IsActive:     in.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("creating hero content failed", "placement", placement, "error", err)
		WriteInternalError(w, "Failed to create hero content")
		return
	}

	_ = h.heroCache.Delete(r.Context(), heroCacheKey(placement))
	slog.Info("hero content created",
		"category", model.ActivityCategoryContent,
		"placement", placement,
		"hero_id", hero.ID,
		"user_id", userIDValue(r))
	WriteCreated(w, hero)
}

// UpdateHero replaces the writable fields of a hero entry.
func (h *Handler) UpdateHero(w http.ResponseWriter, r *http.Request) {
	placement := chi.URLParam(r, "placement")
	if !model.IsHeroPlacement(placement) {
		WriteNotFound(w, "Unknown placement")
		return
	}
	id, ok := contentID(r)
	if !ok {
		WriteNotFound(w, "Hero content not found")
		return
	}

	var in HeroInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if errs := validateHero(&in); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	err := h.queries.UpdateHero(r.Context(), store.UpdateHeroParams{
		Placement:    placement,
		ID:           id,
		Image:        in.Image,
		Title:        in.Title,
		Subtitle:     in.Subtitle,
		CTAText:      in.CTAText,
		CTALink:      in.CTALink,
		DisplayOrder: in.DisplayOrder,
		IsActive:     in.IsActive,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Hero content not found")
			return
		}
		slog.Error("updating hero content failed", "placement", placement, "id", id, "error", err)
		WriteInternalError(w, "Failed to update hero content")
		return
	}

	hero, err := h.queries.GetHero(r.Context(), placement, id)
	if err != nil {
		WriteInternalError(w, "Failed to fetch updated hero content")
		return
	}

	_ = h.heroCache.Delete(r.Context(), heroCacheKey(placement))
	WriteSuccess(w, hero, nil)
}

// DeleteHero removes a hero entry. Idempotent.
func (h *Handler) DeleteHero(w http.ResponseWriter, r *http.Request) {
	placement := chi.URLParam(r, "placement")
	if !model.IsHeroPlacement(placement) {
		WriteNotFound(w, "Unknown placement")
		return
	}
	id, ok := contentID(r)
	if !ok {
		WriteNotFound(w, "Hero content not found")
		return
	}

	if err := h.queries.DeleteHero(r.Context(), placement, id); err != nil {
		slog.Error("deleting hero content failed", "placement", placement, "id", id, "error", err)
		WriteInternalError(w, "Failed to delete hero content")
		return
	}

	_ = h.heroCache.Delete(r.Context(), heroCacheKey(placement))
	w.WriteHeader(http.StatusNoContent)
}
