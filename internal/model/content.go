// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"strings"
	"time"
)

// Content collections backed by the shared content_items table.
const (
	CollectionEvents  = "events"
	CollectionNotices = "notices"
	CollectionBlogs   = "blogs"
	CollectionLibrary = "library"
	CollectionMedia   = "media"
)

// Collections handled outside the content_items table.
const (
	CollectionMemberships = "memberships"
	CollectionMainHero    = "main_hero"
	CollectionHeroSlider  = "hero_slider"
)

// ContentCollections lists the collections stored as ContentItem rows,
// in the order the admin panel presents them.
var ContentCollections = []string{
	CollectionEvents,
	CollectionNotices,
	CollectionBlogs,
	CollectionLibrary,
	CollectionMedia,
}

// IsContentCollection reports whether name is a ContentItem-backed collection.
func IsContentCollection(name string) bool {
	for _, c := range ContentCollections {
		if c == name {
			return true
		}
	}
	return false
}

// ContentItem is the unified row shape shared by events, notices, blogs,
// library entries and media. Which optional fields are meaningful depends
// on the collection.
type ContentItem struct {
	ID          int64          `json:"id"`
	Collection  string         `json:"-"`
	Title       string         `json:"title"`
	Slug        sql.NullString `json:"slug,omitempty"`
	Description string         `json:"description"`
	Content     string         `json:"content,omitempty"`
	Category    sql.NullString `json:"category,omitempty"`
	Date        sql.NullTime   `json:"date,omitempty"`
	Thumbnail   sql.NullString `json:"thumbnail,omitempty"`
	URL         sql.NullString `json:"url,omitempty"`
	Tags        sql.NullString `json:"tags,omitempty"` // Comma-separated
	Urgent      bool           `json:"urgent"`
	Extra       sql.NullString `json:"extra,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// HasFutureDate reports whether the item's date is set and after now.
// Events with a future date get a countdown on the public site.
func (c *ContentItem) HasFutureDate(now time.Time) bool {
	return c.Date.Valid && c.Date.Time.After(now)
}

// TagList splits the comma-separated tags field into trimmed, non-empty tags.
func (c *ContentItem) TagList() []string {
	if !c.Tags.Valid {
		return nil
	}
	var out []string
	for _, t := range strings.Split(c.Tags.String, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Facets derives the distinct set of non-empty category values from items,
// in first-seen order. The UI prepends its own "all" facet.
func Facets(items []ContentItem) []string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range items {
		if !it.Category.Valid {
			continue
		}
		c := strings.TrimSpace(it.Category.String)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
