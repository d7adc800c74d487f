// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"reflect"
	"testing"
	"time"
)

func cat(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestFacets(t *testing.T) {
	tests := []struct {
		name  string
		items []ContentItem
		want  []string
	}{
		{
			name: "first-seen order, duplicates collapsed",
			items: []ContentItem{
				{Category: cat("শিক্ষা")},
				{Category: cat("সৃজনশীলতা")},
				{Category: cat("শিক্ষা")},
			},
			want: []string{"শিক্ষা", "সৃজনশীলতা"},
		},
		{
			name: "blank and missing categories skipped",
			items: []ContentItem{
				{Category: cat("  ")},
				{},
				{Category: cat("books")},
			},
			want: []string{"books"},
		},
		{
			name: "whitespace trimmed before dedup",
			items: []ContentItem{
				{Category: cat("news ")},
				{Category: cat(" news")},
			},
			want: []string{"news"},
		},
		{name: "empty input", items: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Facets(tt.items)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Facets() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTagList(t *testing.T) {
	tests := []struct {
		name string
		tags sql.NullString
		want []string
	}{
		{"comma separated", cat("go, sqlite ,web"), []string{"go", "sqlite", "web"}},
		{"empty entries dropped", cat("a,,b,"), []string{"a", "b"}},
		{"null tags", sql.NullString{}, nil},
		{"blank string", cat("   "), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := ContentItem{Tags: tt.tags}
			if got := item.TagList(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TagList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasFutureDate(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	future := ContentItem{Date: sql.NullTime{Time: now.Add(time.Hour), Valid: true}}
	if !future.HasFutureDate(now) {
		t.Error("future date should report true")
	}

	past := ContentItem{Date: sql.NullTime{Time: now.Add(-time.Hour), Valid: true}}
	if past.HasFutureDate(now) {
		t.Error("past date should report false")
	}

	unset := ContentItem{}
	if unset.HasFutureDate(now) {
		t.Error("absent date should report false")
	}
}

func TestIsContentCollection(t *testing.T) {
	for _, c := range ContentCollections {
		if !IsContentCollection(c) {
			t.Errorf("IsContentCollection(%q) = false, want true", c)
		}
	}
	for _, c := range []string{"memberships", "main_hero", "unknown", ""} {
		if IsContentCollection(c) {
			t.Errorf("IsContentCollection(%q) = true, want false", c)
		}
	}
}
