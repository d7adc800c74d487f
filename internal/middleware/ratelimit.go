// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// clientIP extracts the client IP from a request, dropping the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// maxLimiterEntries caps limiter cache growth before a reset.
const maxLimiterEntries = 10000

// RateLimit creates middleware that rate limits requests per client IP.
// rps is requests per second, burst the maximum burst.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	cache := newLimiterCache[string](rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cache.clearIfExceeds(maxLimiterEntries) {
				slog.Warn("rate limiter cache reset", "max_entries", maxLimiterEntries)
			}

			if !cache.get(clientIP(r)).Allow() {
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoginProtection combines IP rate limiting with account lockout after
// repeated failures. Lockout duration doubles with each lockout.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
}

type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// NewLoginProtection creates login protection with the default policy:
// 1 request per 2 seconds per IP with a burst of 5, account lockout for
// 15 minutes after 5 failures inside a 15 minute window.
func NewLoginProtection() *LoginProtection {
	return &LoginProtection{
		ipLimiters:        newLimiterCache[string](0.5, 5),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: 5,
		lockoutDuration:   15 * time.Minute,
		attemptWindow:     15 * time.Minute,
	}
}

// Middleware returns the login rate limiting middleware.
func (lp *LoginProtection) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lp.ipLimiters.clearIfExceeds(maxLimiterEntries) {
			slog.Warn("login limiter cache reset")
		}

		if !lp.ipLimiters.get(clientIP(r)).Allow() {
			WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many login attempts. Please slow down.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IsLocked reports whether the account is currently locked out, and for
// how much longer.
func (lp *LoginProtection) IsLocked(email string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	defer lp.attemptsMu.RUnlock()

	attempt, ok := lp.failedAttempts[email]
	if !ok {
		return false, 0
	}
	remaining := time.Until(attempt.lockedUntil)
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// RecordFailure registers a failed login and locks the account when the
// threshold is reached inside the attempt window.
func (lp *LoginProtection) RecordFailure(email string) {
	now := time.Now()

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	attempt, ok := lp.failedAttempts[email]
	if !ok || now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt = &loginAttempt{firstFailed: now}
		if ok {
			attempt.lockouts = lp.failedAttempts[email].lockouts
		}
		lp.failedAttempts[email] = attempt
	}

	attempt.count++
	if attempt.count >= lp.maxFailedAttempts {
		attempt.lockouts++
		// Exponential: 15m, 30m, 60m, ...
		duration := lp.lockoutDuration * time.Duration(1<<(attempt.lockouts-1))
		attempt.lockedUntil = now.Add(duration)
		attempt.count = 0
		attempt.firstFailed = now

		slog.Warn("account locked after repeated login failures",
			"email", email,
			"lockouts", attempt.lockouts,
			"duration", duration,
		)
	}
}

// RecordSuccess clears failure tracking for the account.
func (lp *LoginProtection) RecordSuccess(email string) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()
	delete(lp.failedAttempts, email)
}
