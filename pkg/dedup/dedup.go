// Package dedup suppresses repeats of the same key within a time window.
package dedup

import (
	"sync"
	"time"
)

// Filter remembers when each key was last accepted.
// Safe for concurrent use.
type Filter struct {
	seen    map[string]time.Time
	window  time.Duration
	maxKeys int
	mu      sync.Mutex
}

// New returns a Filter that drops repeats of a key within window.
// Once more than maxKeys keys are tracked, keys outside the window are forgotten.
func New(window time.Duration, maxKeys int) *Filter {
	return &Filter{
		seen:    make(map[string]time.Time),
		window:  window,
		maxKeys: maxKeys,
	}
}

// Accept reports whether key at t is not a repeat, and records it if so.
func (f *Filter) Accept(key string, t time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if last, ok := f.seen[key]; ok && t.Sub(last) < f.window {
		return false
	}
	f.seen[key] = t

	if len(f.seen) > f.maxKeys {
		for k, last := range f.seen {
			if t.Sub(last) >= f.window {
				delete(f.seen, k)
			}
		}
	}
	return true
}

// Len returns the number of tracked keys.
func (f *Filter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
