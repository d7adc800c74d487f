// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package countdown computes remaining-time breakdowns for upcoming events
// and drives once-per-second refreshes until the target is reached.
package countdown

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// State of a countdown relative to its target.
type State string

// Countdown states.
const (
	StateIdle     State = "idle"     // No valid target
	StateCounting State = "counting" // Target is in the future
	StateExpired  State = "expired"  // Target reached
)

// Breakdown is the remaining duration split into display units.
type Breakdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// TotalSeconds converts the breakdown back to a second count.
func (b Breakdown) TotalSeconds() int64 {
	return ((b.Days*24+b.Hours)*60+b.Minutes)*60 + b.Seconds
}

// Remaining computes the breakdown of target minus now, clamped at zero.
// Negative values are never produced.
func Remaining(target, now time.Time) Breakdown {
	diff := target.Sub(now)
	if diff < 0 {
		diff = 0
	}
	secs := int64(diff / time.Second)
	return Breakdown{
		Days:    secs / 86400,
		Hours:   (secs / 3600) % 24,
		Minutes: (secs / 60) % 60,
		Seconds: secs % 60,
	}
}

// StateAt returns the countdown state for a target at the given instant.
func StateAt(target, now time.Time) State {
	switch {
	case target.IsZero():
		return StateIdle
	case target.After(now):
		return StateCounting
	default:
		return StateExpired
	}
}

// epochMillisCutoff separates second from millisecond epoch values. Values
// at or above it (year 33658 in seconds) are read as milliseconds.
const epochMillisCutoff = 1e12

// Target is a point in time that accepts the timestamp shapes content rows
// arrive in: an RFC 3339 / ISO date string, a numeric epoch in seconds or
// milliseconds, or a {seconds, nanoseconds} wrapper object.
type Target struct {
	time.Time
}

// firestoreTimestamp is the {seconds, nanoseconds} wrapper shape.
type firestoreTimestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Target) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseTargetString(s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		t.Time = fromEpoch(n)
		return nil
	}

	var fs firestoreTimestamp
	if err := json.Unmarshal(data, &fs); err == nil {
		t.Time = time.Unix(fs.Seconds, fs.Nanoseconds).UTC()
		return nil
	}

	return fmt.Errorf("unsupported timestamp shape: %s", data)
}

// ParseTargetString parses a string timestamp: RFC 3339 first, then the
// bare date form content rows commonly carry.
func ParseTargetString(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func fromEpoch(n float64) time.Time {
	if n >= epochMillisCutoff {
		return time.UnixMilli(int64(n)).UTC()
	}
	return time.Unix(int64(n), 0).UTC()
}

// Snapshot is one countdown observation.
type Snapshot struct {
	State     State     `json:"state"`
	Remaining Breakdown `json:"remaining"`
}

// SnapshotAt computes the snapshot for a target at the given instant.
func SnapshotAt(target, now time.Time) Snapshot {
	return Snapshot{
		State:     StateAt(target, now),
		Remaining: Remaining(target, now),
	}
}

// Countdown owns a single once-per-second ticker for one target. Every tick
// recomputes the remaining time from the wall clock, so a throttled or
// suspended process never drifts. The ticker stops itself at expiry, on
// Stop, and on SetTarget (which starts a fresh one); a Countdown never
// leaks more than one running ticker.
type Countdown struct {
	mu     sync.Mutex
	target time.Time
	out    chan Snapshot
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a countdown for target and starts ticking if the target is in
// the future. The caller must call Stop when done.
func New(target time.Time) *Countdown {
	c := &Countdown{
		target: target,
		out:    make(chan Snapshot, 1),
	}
	c.start()
	return c
}

// C returns the snapshot channel. It delivers one snapshot per second while
// counting and a final expired snapshot, after which no more are sent.
func (c *Countdown) C() <-chan Snapshot {
	return c.out
}

// Snapshot returns the current observation without waiting for a tick.
func (c *Countdown) Snapshot() Snapshot {
	c.mu.Lock()
	target := c.target
	c.mu.Unlock()
	return SnapshotAt(target, time.Now())
}

// SetTarget replaces the target and restarts the ticker. The previous
// ticker is always cancelled first so two can never run at once.
func (c *Countdown) SetTarget(target time.Time) {
	c.stop()
	c.mu.Lock()
	c.target = target
	c.mu.Unlock()
	c.start()
}

// Stop cancels the ticker. Safe to call multiple times.
func (c *Countdown) Stop() {
	c.stop()
}

func (c *Countdown) start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if StateAt(c.target, time.Now()) != StateCounting {
		return
	}

	done := make(chan struct{})
	c.done = done
	target := c.target

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				snap := SnapshotAt(target, now)
				if snap.State == StateExpired {
					// The terminal frame must reach the consumer; block
					// until it drains the buffer or the countdown stops.
					select {
					case c.out <- snap:
					case <-done:
					}
					return
				}
				select {
				case c.out <- snap:
				default:
					// Drop the frame if the consumer is behind; the next
					// tick recomputes from the wall clock anyway.
				}
			}
		}
	}()
}

func (c *Countdown) stop() {
	c.mu.Lock()
	done := c.done
	c.done = nil
	c.mu.Unlock()

	if done != nil {
		close(done)
	}
	c.wg.Wait()
}
