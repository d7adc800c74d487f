// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching layer for published content.
// Hot read paths (hero placements, collection facets, countdown targets)
// are served from here in front of the database.
package cache

import (
	"context"
	"time"
)

// Cache is the interface shared by the in-memory and Redis backends.
// Implementations must be safe for concurrent use. Values are []byte so
// both backends share one serialization format.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means the default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// Error is the error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
