// Package ratelimit implements fixed-window request counters keyed by
// caller address. Every admission is checked against three windows:
// a per-minute budget specific to the operation, plus hour and day
// budgets shared by all operations from that address.
package ratelimit

import (
	"sync"
	"time"
)

// Limits carries the per-window budgets. A budget <= 0 disables that
// window.
type Limits struct {
	PerMinute map[string]int // operation name -> requests per minute
	PerHour   int
	PerDay    int
}

type window struct {
	start time.Time
	count int
}

// Limiter is safe for concurrent use; all windows for a caller are
// checked and charged under one lock so an admission is atomic.
type Limiter struct {
	limits Limits
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func New(limits Limits) *Limiter {
	return &Limiter{
		limits:  limits,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// SetClock overrides the time source. Tests only.
func (l *Limiter) SetClock(now func() time.Time) { l.now = now }

// Allow reports whether addr may perform op now. Only admitted
// requests are charged against the windows; a denial consumes no
// budget.
func (l *Limiter) Allow(addr, op string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	type check struct {
		key   string
		start time.Time
		limit int
	}
	checks := []check{
		{addr + "|m|" + op, now.Truncate(time.Minute), l.limits.PerMinute[op]},
		{addr + "|h", now.Truncate(time.Hour), l.limits.PerHour},
		{addr + "|d", now.Truncate(24 * time.Hour), l.limits.PerDay},
	}

	wins := make([]*window, 0, len(checks))
	for _, c := range checks {
		if c.limit <= 0 {
			wins = append(wins, nil)
			continue
		}
		w := l.windows[c.key]
		if w == nil || !w.start.Equal(c.start) {
			w = &window{start: c.start}
			l.windows[c.key] = w
		}
		if w.count >= c.limit {
			return false
		}
		wins = append(wins, w)
	}

	for _, w := range wins {
		if w != nil {
			w.count++
		}
	}

	if len(l.windows) > sweepThreshold {
		l.sweep(now)
	}
	return true
}

const sweepThreshold = 4096

// sweep drops windows that ended more than a day ago so counters for
// one-off callers do not accumulate forever. Callers must hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-24 * time.Hour)
	for k, w := range l.windows {
		if w.start.Before(cutoff) {
			delete(l.windows, k)
		}
	}
}
