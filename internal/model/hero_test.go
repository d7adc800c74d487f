// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestSortHero(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	heroes := []Hero{
		{ID: 1, DisplayOrder: 2, CreatedAt: base},
		{ID: 2, DisplayOrder: 1, CreatedAt: base},
		{ID: 3, DisplayOrder: 1, CreatedAt: base.Add(time.Hour)},
		{ID: 4, DisplayOrder: 3, CreatedAt: base},
	}

	SortHero(heroes)

	// display_order ascending; within order 1 the newer row (id 3) wins.
	wantOrder := []int64{3, 2, 1, 4}
	for i, want := range wantOrder {
		if heroes[i].ID != want {
			t.Fatalf("position %d: got id %d, want %d (full: %+v)", i, heroes[i].ID, want, heroes)
		}
	}
}

func TestIsHeroPlacement(t *testing.T) {
	if !IsHeroPlacement(HeroPlacementMain) || !IsHeroPlacement(HeroPlacementSlider) {
		t.Error("known placements should be accepted")
	}
	if IsHeroPlacement("events") || IsHeroPlacement("") {
		t.Error("unknown placements should be rejected")
	}
}
