// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shomiti/shomiti-go/internal/model"
)

func TestContentCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	now := time.Now()
	created, err := q.CreateContent(ctx, CreateContentParams{
		Collection:  model.CollectionNotices,
		Title:       "পরীক্ষার সময়সূচি",
		Description: "বার্ষিক পরীক্ষার সময়সূচি প্রকাশিত হয়েছে",
		Category:    sql.NullString{String: "পরীক্ষা", Valid: true},
		Date:        sql.NullTime{Time: now.AddDate(0, 0, 3), Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected store-assigned id")
	}

	// Create followed by list: the id appears exactly once.
	list, err := q.ListContent(ctx, model.CollectionNotices)
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	count := 0
	for _, it := range list {
		if it.ID == created.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("created id appears %d times in list, want 1", count)
	}

	// Update in place
	err = q.UpdateContent(ctx, UpdateContentParams{
		Collection:  model.CollectionNotices,
		ID:          created.ID,
		Title:       "সংশোধিত সময়সূচি",
		Description: created.Description,
		Category:    created.Category,
		Date:        created.Date,
		Urgent:      true,
		UpdatedAt:   now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	got, err := q.GetContent(ctx, model.CollectionNotices, created.ID)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if got.Title != "সংশোধিত সময়সূচি" || !got.Urgent {
		t.Errorf("update not applied: %+v", got)
	}

	// Delete, then list no longer contains the id.
	if err := q.DeleteContent(ctx, model.CollectionNotices, created.ID); err != nil {
		t.Fatalf("DeleteContent: %v", err)
	}
	list, err = q.ListContent(ctx, model.CollectionNotices)
	if err != nil {
		t.Fatalf("ListContent after delete: %v", err)
	}
	for _, it := range list {
		if it.ID == created.ID {
			t.Error("deleted id still present in list")
		}
	}

	// Idempotent delete
	if err := q.DeleteContent(ctx, model.CollectionNotices, created.ID); err != nil {
		t.Errorf("repeat delete should succeed, got %v", err)
	}
}

func TestListContent_Ordering(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	now := time.Now()
	dates := []sql.NullTime{
		{Time: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		{Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		{}, // No date sorts last
	}
	var ids []int64
	for i, d := range dates {
		c, err := q.CreateContent(ctx, CreateContentParams{
			Collection:  model.CollectionNotices,
			Title:       "notice",
			Description: "",
			Date:        d,
			CreatedAt:   now.Add(time.Duration(i) * time.Second),
			UpdatedAt:   now,
		})
		if err != nil {
			t.Fatalf("CreateContent: %v", err)
		}
		ids = append(ids, c.ID)
	}

	list, err := q.ListContent(ctx, model.CollectionNotices)
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d items, want 3", len(list))
	}
	// Newest date first, undated last.
	if list[0].ID != ids[1] || list[1].ID != ids[0] || list[2].ID != ids[2] {
		t.Errorf("order = [%d %d %d], want [%d %d %d]",
			list[0].ID, list[1].ID, list[2].ID, ids[1], ids[0], ids[2])
	}
}

func TestContent_CollectionIsolation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	now := time.Now()
	blog, err := q.CreateContent(ctx, CreateContentParams{
		Collection: model.CollectionBlogs,
		Title:      "post",
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}

	// The same id must not resolve through a different collection.
	_, err = q.GetContent(ctx, model.CollectionEvents, blog.ID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("cross-collection lookup: expected sql.ErrNoRows, got %v", err)
	}
}

func TestContent_UnknownCollection(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	_, err := q.ListContent(ctx, "bogus")
	if !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("ListContent: expected ErrUnknownCollection, got %v", err)
	}

	_, err = q.CreateContent(ctx, CreateContentParams{Collection: "memberships"})
	if !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("CreateContent: memberships is not a content collection, got %v", err)
	}
}

func TestMembershipCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	now := time.Now()
	m, err := q.CreateMembership(ctx, CreateMembershipParams{
		Name:      "Rahim Uddin",
		Email:     "rahim@example.com",
		Phone:     sql.NullString{String: "01712345678", Valid: true},
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("expected store-assigned id")
	}

	list, err := q.ListMemberships(ctx)
	if err != nil {
		t.Fatalf("ListMemberships: %v", err)
	}
	if len(list) != 1 || list[0].Email != "rahim@example.com" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestHeroOrdering(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []CreateHeroParams{
		{Placement: model.HeroPlacementSlider, Image: "a.jpg", DisplayOrder: 2, IsActive: true, CreatedAt: base, UpdatedAt: base},
		{Placement: model.HeroPlacementSlider, Image: "b.jpg", DisplayOrder: 1, IsActive: true, CreatedAt: base, UpdatedAt: base},
		{Placement: model.HeroPlacementSlider, Image: "c.jpg", DisplayOrder: 1, IsActive: true, CreatedAt: base.Add(time.Hour), UpdatedAt: base},
		{Placement: model.HeroPlacementSlider, Image: "d.jpg", DisplayOrder: 0, IsActive: false, CreatedAt: base, UpdatedAt: base},
		{Placement: model.HeroPlacementMain, Image: "other.jpg", DisplayOrder: 0, IsActive: true, CreatedAt: base, UpdatedAt: base},
	}
	for _, r := range rows {
		if _, err := q.CreateHero(ctx, r); err != nil {
			t.Fatalf("CreateHero: %v", err)
		}
	}

	active, err := q.ListActiveHeroes(ctx, model.HeroPlacementSlider)
	if err != nil {
		t.Fatalf("ListActiveHeroes: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("got %d active heroes, want 3 (inactive and other placement excluded)", len(active))
	}
	// display_order ASC, created_at DESC tie-break: c before b, then a.
	want := []string{"c.jpg", "b.jpg", "a.jpg"}
	for i, w := range want {
		if active[i].Image != w {
			t.Errorf("position %d: got %q, want %q", i, active[i].Image, w)
		}
	}
}

func TestWebhookDeliveryLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	now := time.Now()
	id, err := q.CreateWebhookDelivery(ctx, CreateWebhookDeliveryParams{
		Event:     "membership.created",
		URL:       "https://hooks.example.com/m",
		Payload:   []byte(`{"name":"Rahim"}`),
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateWebhookDelivery: %v", err)
	}

	d, err := q.GetWebhookDelivery(ctx, id)
	if err != nil {
		t.Fatalf("GetWebhookDelivery: %v", err)
	}
	if d.Status != DeliveryStatusPending || d.Attempts != 0 {
		t.Errorf("fresh delivery: status=%q attempts=%d", d.Status, d.Attempts)
	}

	err = q.UpdateDeliverySuccess(ctx, UpdateDeliverySuccessParams{
		ID:           id,
		Attempts:     1,
		ResponseCode: sql.NullInt64{Int64: 200, Valid: true},
		DeliveredAt:  sql.NullTime{Time: now, Valid: true},
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("UpdateDeliverySuccess: %v", err)
	}

	d, err = q.GetWebhookDelivery(ctx, id)
	if err != nil {
		t.Fatalf("GetWebhookDelivery: %v", err)
	}
	if d.Status != DeliveryStatusDelivered {
		t.Errorf("status = %q, want delivered", d.Status)
	}

	// Delivered rows are purgeable.
	purged, err := q.PurgeDeliveriesBefore(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("PurgeDeliveriesBefore: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged %d rows, want 1", purged)
	}
}
