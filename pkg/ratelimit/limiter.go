// Package ratelimit caps how often the shell may launch external programs.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

// Limiter allows a bounded number of events per minute and per day.
// Safe for concurrent use.
type Limiter struct {
	lastMinute   []time.Time
	lastDay      []time.Time
	maxPerMinute int
	maxPerDay    int
	mu           sync.Mutex
}

// New returns a Limiter. A non-positive limit disables that window.
func New(maxPerMinute, maxPerDay int) *Limiter {
	return &Limiter{maxPerMinute: maxPerMinute, maxPerDay: maxPerDay}
}

// Allow reports whether an event at now fits both windows, and records it if so.
func (l *Limiter) Allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastMinute = prune(l.lastMinute, now.Add(-time.Minute))
	l.lastDay = prune(l.lastDay, now.Add(-24*time.Hour))

	if l.maxPerMinute > 0 && len(l.lastMinute) >= l.maxPerMinute {
		slog.Warn("[RATELIMIT] Per-minute limit reached", "count", len(l.lastMinute), "max", l.maxPerMinute)
		return false
	}
	if l.maxPerDay > 0 && len(l.lastDay) >= l.maxPerDay {
		slog.Warn("[RATELIMIT] Daily limit reached", "count", len(l.lastDay), "max", l.maxPerDay)
		return false
	}

	l.lastMinute = append(l.lastMinute, now)
	l.lastDay = append(l.lastDay, now)
	return true
}

// prune drops times at or before cutoff. ts is ordered oldest first.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}
