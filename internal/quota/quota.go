package quota

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Counter tracks calls against a ceiling inside a rolling window.
// One instance governs outbound provider calls, a second independent
// instance gates the worker's own inbound endpoints.
//
// State is in-memory only; a process restart opens a fresh window.
type Counter struct {
	mu          sync.Mutex
	name        string
	ceiling     int
	window      time.Duration
	count       int
	windowStart time.Time

	now func() time.Time // injectable clock for tests
}

// Usage is a point-in-time snapshot for status reporting
type Usage struct {
	Name        string    `json:"name"`
	Count       int       `json:"callsToday"`
	Ceiling     int       `json:"ceiling"`
	Remaining   int       `json:"remaining"`
	PercentUsed float64   `json:"percentUsed"`
	ResetAt     time.Time `json:"resetTime"`
}

// NewCounter creates a counter with a rolling 24h window
func NewCounter(name string, ceiling int) *Counter {
	return &Counter{
		name:    name,
		ceiling: ceiling,
		window:  24 * time.Hour,
		now:     time.Now,
	}
}

// TryReserve checks and increments the counter as one locked step.
// Returns whether the call is allowed and how much budget remains
// after this reservation. On denial the count is left untouched and
// the caller must treat the denial as a hard stop, not retry.
func (c *Counter) TryReserve() (allowed bool, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollWindow()

	if c.count >= c.ceiling {
		return false, 0
	}

	c.count++
	return true, c.ceiling - c.count
}

// Admit reports whether a call would currently be allowed without
// consuming budget. Pair with RecordCall at the point the call is
// actually served.
func (c *Counter) Admit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollWindow()
	return c.count < c.ceiling
}

// RecordCall consumes one unit of budget
func (c *Counter) RecordCall() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollWindow()
	c.count++
}

// Usage returns the current window's consumption snapshot
func (c *Counter) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollWindow()

	remaining := c.ceiling - c.count
	if remaining < 0 {
		remaining = 0
	}

	percent := 0.0
	if c.ceiling > 0 {
		percent = float64(c.count) / float64(c.ceiling) * 100
	}

	return Usage{
		Name:        c.name,
		Count:       c.count,
		Ceiling:     c.ceiling,
		Remaining:   remaining,
		PercentUsed: percent,
		ResetAt:     c.windowStart.Add(c.window),
	}
}

// rollWindow resets count once the window has fully elapsed.
// Caller must hold c.mu. The first call after construction anchors
// the window so an idle process does not accrue a stale start time.
func (c *Counter) rollWindow() {
	now := c.now()

	if c.windowStart.IsZero() {
		c.windowStart = now
		return
	}

	if now.Sub(c.windowStart) >= c.window {
		if c.count > 0 {
			log.Info().
				Str("counter", c.name).
				Int("count", c.count).
				Msg("Quota window reset")
		}
		c.windowStart = now
		c.count = 0
	}
}
