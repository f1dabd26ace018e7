package main

import (
	"log/slog"
	"math"
	"strconv"
	"sync"
)

// badgeSink displays an unread count.
type badgeSink interface {
	SetBadge(count int)
}

// badgeController holds the unread count reported by the web UI and shows
// it on the tray while the badge is enabled.
type badgeController struct {
	sink    badgeSink
	log     *slog.Logger
	count   int
	enabled bool
	mu      sync.Mutex
}

func newBadgeController(sink badgeSink, logger *slog.Logger, enabled bool) *badgeController {
	return &badgeController{sink: sink, log: logger, enabled: enabled}
}

// SetEnabled shows or hides the badge.
func (b *badgeController) SetEnabled(enabled bool) {
	b.mu.Lock()
	b.enabled = enabled
	b.mu.Unlock()
	b.log.Info("[BADGE] Badge toggled", "enabled", enabled)
	b.apply()
}

// SetCount records a new unread count.
func (b *badgeController) SetCount(count int) {
	if count < 0 {
		count = 0
	}
	b.mu.Lock()
	changed := b.count != count
	b.count = count
	b.mu.Unlock()
	if changed {
		b.apply()
	}
}

// Shown returns the count currently displayed.
func (b *badgeController) Shown() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.enabled {
		return 0
	}
	return b.count
}

func (b *badgeController) apply() {
	if b.sink == nil {
		return
	}
	b.sink.SetBadge(b.Shown())
}

// parseCount extracts a count from the web UI's badge event payload.
// Numbers arrive from JSON as float64.
func parseCount(data ...any) (int, bool) {
	if len(data) == 0 {
		return 0, false
	}
	switch v := data[0].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(math.Max(0, math.Min(v, math.MaxInt32))), true
	case int:
		return max(v, 0), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return max(n, 0), true
	}
	return 0, false
}
