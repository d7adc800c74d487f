// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// New selects the cache backend from configuration. With a Redis URL it
// tries Redis and falls back to memory when the connection fails, so a
// missing Redis never takes the site down.
func New(redisURL, prefix string, defaultTTL time.Duration) Cache {
	if defaultTTL == 0 {
		defaultTTL = 5 * time.Minute
	}

	if redisURL != "" {
		c, err := NewRedisCache(redisURL, prefix, defaultTTL)
		if err == nil {
			slog.Info("cache backend: redis")
			return c
		}
		slog.Warn("redis unavailable, falling back to memory cache", "error", err)
	}

	return NewMemoryCache(defaultTTL)
}
