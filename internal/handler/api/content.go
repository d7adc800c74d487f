// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shomiti/shomiti-go/internal/countdown"
	"github.com/shomiti/shomiti-go/internal/middleware"
	"github.com/shomiti/shomiti-go/internal/model"
	"github.com/shomiti/shomiti-go/internal/render"
	"github.com/shomiti/shomiti-go/internal/store"
	"github.com/shomiti/shomiti-go/internal/util"
)

// ContentView is the JSON shape of a content item.
type ContentView struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug,omitempty"`
	Description     string     `json:"description"`
	Content         string     `json:"content,omitempty"`
	RenderedContent string     `json:"rendered_content,omitempty"`
	Category        string     `json:"category,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	Thumbnail       string     `json:"thumbnail,omitempty"`
	URL             string     `json:"url,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Urgent          bool       `json:"urgent"`
	Extra           string     `json:"extra,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func contentView(item model.ContentItem) ContentView {
	v := ContentView{
		ID:          item.ID,
		Title:       item.Title,
		Slug:        item.Slug.String,
		Description: item.Description,
		Content:     item.Content,
		Category:    item.Category.String,
		Thumbnail:   item.Thumbnail.String,
		URL:         item.URL.String,
		Tags:        item.TagList(),
		Urgent:      item.Urgent,
		Extra:       item.Extra.String,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.Date.Valid {
		d := item.Date.Time
		v.Date = &d
	}
	return v
}

func contentViews(items []model.ContentItem) []ContentView {
	out := make([]ContentView, 0, len(items))
	for _, item := range items {
		out = append(out, contentView(item))
	}
	return out
}

// ContentInput is the writable shape accepted on create and update.
// Dates arrive in any of the timestamp shapes content rows historically
// carried; countdown.Target normalizes them.
type ContentInput struct {
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Content     string           `json:"content"`
	Category    string           `json:"category"`
	Date        countdown.Target `json:"date"`
	Thumbnail   string           `json:"thumbnail"`
	URL         string           `json:"url"`
	Tags        []string         `json:"tags"`
	Urgent      bool             `json:"urgent"`
	Extra       string           `json:"extra"`
}

// validateContent applies the per-collection rules: title everywhere, a
// URL for library entries, a date for events and notices, a body for
// blog posts.
func validateContent(collection string, in *ContentInput) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Title is required"
	}

	switch collection {
	case model.CollectionLibrary:
		if strings.TrimSpace(in.URL) == "" {
			errs["url"] = "URL is required"
		} else if u, err := url.Parse(in.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs["url"] = "URL must be a valid http(s) address"
		}
	case model.CollectionEvents, model.CollectionNotices:
		if in.Date.IsZero() {
			errs["date"] = "Date is required"
		}
	case model.CollectionBlogs:
		if strings.TrimSpace(in.Content) == "" {
			errs["content"] = "Content is required"
		}
	}

	return errs
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// ensureSlug fills in a transliterated slug for blogs and library entries
// when the caller supplied none, suffixing on collision.
func (h *Handler) ensureSlug(r *http.Request, collection string, in *ContentInput) {
	if collection != model.CollectionBlogs && collection != model.CollectionLibrary {
		return
	}
	if in.Slug != "" {
		return
	}

	slug := util.Slugify(in.Title)
	if slug == "" {
		return
	}

	n, err := h.queries.CountContentBySlug(r.Context(), collection, slug)
	if err == nil && n > 0 {
		slug = slug + "-" + strconv.FormatInt(n+1, 10)
	}
	in.Slug = slug
}

func contentID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ListContent returns the items of a collection, newest first. An unknown
// collection yields an empty list rather than an error; old clients probe
// collections that may not exist.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	items, err := h.queries.ListContent(r.Context(), collection)
	if err != nil {
		if !errors.Is(err, store.ErrUnknownCollection) {
			slog.Error("listing content failed", "collection", collection, "error", err)
		}
		WriteSuccess(w, []ContentView{}, nil)
		return
	}

	items = filterContent(items, r.URL.Query())
	WriteSuccess(w, contentViews(items), &Meta{Total: int64(len(items))})
}

// filterContent applies the optional category and free-text filters.
func filterContent(items []model.ContentItem, q url.Values) []model.ContentItem {
	category := q.Get("category")
	if category == "" {
		category = q.Get("type")
	}
	search := strings.ToLower(strings.TrimSpace(q.Get("q")))

	if category == "" && search == "" {
		return items
	}

	out := items[:0]
	for _, item := range items {
		if category != "" && item.Category.String != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Title), search) &&
			!strings.Contains(strings.ToLower(item.Description), search) &&
			!strings.Contains(strings.ToLower(item.Extra.String), search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ContentFacets returns the distinct non-empty categories of a collection
// in list order. The client prepends its own "all" facet.
func (h *Handler) ContentFacets(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	items, err := h.queries.ListContent(r.Context(), collection)
	if err != nil {
		if !errors.Is(err, store.ErrUnknownCollection) {
			slog.Error("listing content for facets failed", "collection", collection, "error", err)
		}
		WriteSuccess(w, []string{}, nil)
		return
	}

	facets := model.Facets(items)
	if facets == nil {
		facets = []string{}
	}
	WriteSuccess(w, facets, nil)
}

// GetContent returns one item by id. Blog posts include the rendered
// body.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id, ok := contentID(r)
	if !ok {
		WriteNotFound(w, "Content not found")
		return
	}

	item, err := h.queries.GetContent(r.Context(), collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrUnknownCollection) {
			WriteNotFound(w, "Content not found")
			return
		}
		slog.Error("fetching content failed", "collection", collection, "id", id, "error", err)
		WriteInternalError(w, "Failed to fetch content")
		return
	}

	view := contentView(item)
	if collection == model.CollectionBlogs && item.Content != "" {
		html, err := render.Markdown(item.Content)
		if err != nil {
			slog.Error("rendering blog content failed", "id", id, "error", err)
		} else {
			view.RenderedContent = html
		}
	}
	WriteSuccess(w, view, nil)
}

// CreateContent inserts an item. The id is store-assigned; the created
// row is returned so the client can re-read without a second request.
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if !model.IsContentCollection(collection) {
		WriteNotFound(w, "Unknown collection")
		return
	}

	var in ContentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if errs := validateContent(collection, &in); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}
	h.ensureSlug(r, collection, &in)

	now := time.Now()
	item, err := h.queries.CreateContent(r.Context(), store.CreateContentParams{
		Collection:  collection,
		Title:       in.Title,
		Slug:        nullString(in.Slug),
		Description: in.Description,
		Content:     in.Content,
		Category:    nullString(in.Category),
		Date:        nullTime(in.Date.Time),
		Thumbnail:   nullString(in.Thumbnail),
		URL:         nullString(in.URL),
		Tags:        nullString(strings.Join(in.Tags, ",")),
		Urgent:      in.Urgent,
		Extra:       nullString(in.Extra),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Error("creating content failed", "collection", collection, "error", err)
		WriteInternalError(w, "Failed to create content")
		return
	}

	slog.Info("content created",
		"category", model.ActivityCategoryContent,
		"collection", collection,
		"content_id", item.ID,
		"user_id", userIDValue(r))
	WriteCreated(w, contentView(item))
}

// UpdateContent replaces the writable fields of an item.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if !model.IsContentCollection(collection) {
		WriteNotFound(w, "Unknown collection")
		return
	}
	id, ok := contentID(r)
	if !ok {
		WriteNotFound(w, "Content not found")
		return
	}

	var in ContentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if errs := validateContent(collection, &in); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}
	h.ensureSlug(r, collection, &in)

	err := h.queries.UpdateContent(r.Context(), store.UpdateContentParams{
		Collection:  collection,
		ID:          id,
		Title:       in.Title,
		Slug:        nullString(in.Slug),
		Description: in.Description,
		Content:     in.Content,
		Category:    nullString(in.Category),
		Date:        nullTime(in.Date.Time),
		Thumbnail:   nullString(in.Thumbnail),
		URL:         nullString(in.URL),
		Tags:        nullString(strings.Join(in.Tags, ",")),
		Urgent:      in.Urgent,
		Extra:       nullString(in.Extra),
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Content not found")
			return
		}
		slog.Error("updating content failed", "collection", collection, "id", id, "error", err)
		WriteInternalError(w, "Failed to update content")
		return
	}

	item, err := h.queries.GetContent(r.Context(), collection, id)
	if err != nil {
		WriteInternalError(w, "Failed to fetch updated content")
		return
	}

	slog.Info("content updated",
		"category", model.ActivityCategoryContent,
		"collection", collection,
		"content_id", id,
		"user_id", userIDValue(r))
	WriteSuccess(w, contentView(item), nil)
}

// DeleteContent removes an item. Deleting an absent id succeeds; the
// operation is idempotent from the caller's view.
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if !model.IsContentCollection(collection) {
		WriteNotFound(w, "Unknown collection")
		return
	}
	id, ok := contentID(r)
	if !ok {
		WriteNotFound(w, "Content not found")
		return
	}

	if err := h.queries.DeleteContent(r.Context(), collection, id); err != nil {
		slog.Error("deleting content failed", "collection", collection, "id", id, "error", err)
		WriteInternalError(w, "Failed to delete content")
		return
	}

	slog.Info("content deleted",
		"category", model.ActivityCategoryContent,
		"collection", collection,
		"content_id", id,
		"user_id", userIDValue(r))
	w.WriteHeader(http.StatusNoContent)
}

// userIDValue returns the signed-in user id for log attributes, 0 when
// anonymous.
func userIDValue(r *http.Request) int64 {
	if id := middleware.GetUserIDPtr(r); id != nil {
		return *id
	}
	return 0
}
