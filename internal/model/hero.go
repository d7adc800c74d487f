// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"sort"
	"time"
)

// Hero placements.
const (
	HeroPlacementMain   = "main_hero"
	HeroPlacementSlider = "hero_slider"
)

// IsHeroPlacement reports whether name is a known hero placement.
func IsHeroPlacement(name string) bool {
	return name == HeroPlacementMain || name == HeroPlacementSlider
}

// Hero represents a hero/slider banner entry.
type Hero struct {
	ID           int64     `json:"id"`
	Placement    string    `json:"-"`
	Image        string    `json:"image"`
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle"`
	CTAText      string    `json:"cta_text"`
	CTALink      string    `json:"cta_link"`
	DisplayOrder int64     `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SortHero orders heroes by display_order ascending, ties broken by
// created_at descending. This is the single ordering rule for both
// placements; the store queries apply the same ORDER BY.
func SortHero(heroes []Hero) {
	sort.SliceStable(heroes, func(i, j int) bool {
		if heroes[i].DisplayOrder != heroes[j].DisplayOrder {
			return heroes[i].DisplayOrder < heroes[j].DisplayOrder
		}
		return heroes[i].CreatedAt.After(heroes[j].CreatedAt)
	})
}
