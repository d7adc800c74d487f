// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(missing) error = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "hero", []byte(`{"placement":"main_hero"}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "hero")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"placement":"main_hero"}` {
		t.Errorf("Get = %q", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired Get error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete error = %v, want ErrCacheMiss", err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := c.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Clear error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	_ = c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close error = %v, want ErrCacheClosed", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close error = %v, want ErrCacheClosed", err)
	}
	// Close is idempotent.
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	src := []byte("original")
	_ = c.Set(ctx, "k", src, 0)
	src[0] = 'X'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("stored value mutated: %q", got)
	}

	got[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("returned value aliased the store: %q", again)
	}
}

type heroView struct {
	Title string `json:"title"`
	Order int    `json:"display_order"`
}

func TestTypedCache(t *testing.T) {
	mem := NewMemoryCache(time.Minute)
	defer mem.Close()
	tc := NewTypedCache[heroView](mem, time.Minute)
	ctx := context.Background()

	if _, ok := tc.Get(ctx, "hero:main"); ok {
		t.Error("Get on empty cache returned ok")
	}

	want := &heroView{Title: "Boishakhi Mela", Order: 1}
	if err := tc.Set(ctx, "hero:main", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := tc.Get(ctx, "hero:main")
	if !ok {
		t.Fatal("Get returned miss after Set")
	}
	if *got != *want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestTypedCacheGetOrSet(t *testing.T) {
	mem := NewMemoryCache(time.Minute)
	defer mem.Close()
	tc := NewTypedCache[heroView](mem, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*heroView, error) {
		calls++
		return &heroView{Title: "Pitha Utshob"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := tc.GetOrSet(ctx, "hero:slider", load)
		if err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}
		if got.Title != "Pitha Utshob" {
			t.Errorf("GetOrSet = %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestTypedCacheGetOrSetError(t *testing.T) {
	mem := NewMemoryCache(time.Minute)
	defer mem.Close()
	tc := NewTypedCache[heroView](mem, time.Minute)

	wantErr := errors.New("db down")
	_, err := tc.GetOrSet(context.Background(), "k", func() (*heroView, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet error = %v, want %v", err, wantErr)
	}
}

func TestNewFallsBackToMemory(t *testing.T) {
	c := New("redis://127.0.0.1:1/0", "", time.Minute)
	defer c.Close()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New with unreachable redis = %T, want *MemoryCache", c)
	}
}

func TestNormalizePrefix(t *testing.T) {
	if got := normalizePrefix(""); got != defaultKeyPrefix {
		t.Errorf("normalizePrefix(\"\") = %q, want %q", got, defaultKeyPrefix)
	}
	if got := normalizePrefix("staging:"); got != "staging:" {
		t.Errorf("normalizePrefix(\"staging:\") = %q, want it kept", got)
	}
}
