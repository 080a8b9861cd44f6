// Package budget tracks consumed provider-quota units against a fixed
// monthly capacity. The tracker only exposes the running total; it does
// not throttle callers.
package budget

import (
	"context"
	"log"
	"sync"
	"time"

	"eth-token-sentry/internal/sched"
)

// DefaultCapacity matches the provider's free-tier monthly compute units.
const DefaultCapacity uint64 = 300_000_000

// resetInterval is the cadence of DailyTick when driven by Run.
const resetInterval = 24 * time.Hour

// Tracker is the process-wide quota counter. Consumed units only grow
// within a period and reset exactly once at the start of a calendar month.
type Tracker struct {
	mu             sync.Mutex
	used           uint64
	capacity       uint64
	daysSinceReset int

	clock  sched.Clock
	logger *log.Logger
}

// Options configures a Tracker.
type Options struct {
	Capacity uint64      // default DefaultCapacity
	Clock    sched.Clock // default sched.Real()
	Logger   *log.Logger // default log.Default()
}

// NewTracker creates a Tracker.
func NewTracker(opts Options) *Tracker {
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	clock := opts.Clock
	if clock == nil {
		clock = sched.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Tracker{
		capacity: capacity,
		clock:    clock,
		logger:   logger,
	}
}

// AddUnits adds n consumed units to the current period.
func (t *Tracker) AddUnits(n uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used += n
}

// Used returns the units consumed this period.
func (t *Tracker) Used() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used
}

// Capacity returns the fixed period capacity.
func (t *Tracker) Capacity() uint64 {
	return t.capacity
}

// Remaining returns the unconsumed units, or zero when over capacity.
func (t *Tracker) Remaining() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.used >= t.capacity {
		return 0
	}
	return t.capacity - t.used
}

// DailyTick checks the calendar and resets the period counter at the start
// of a month. The counter resets on day 1, or on day 2 when at least 28
// ticks have passed since the last reset, so the reset still happens when
// the scheduler misses the first day of a short month. The guard cannot
// fire twice for the same month: a reset zeroes the tick counter, and
// 28 ticks cannot elapse before the next month begins.
func (t *Tracker) DailyTick() {
	day := t.clock.Now().UTC().Day()

	t.mu.Lock()
	defer t.mu.Unlock()

	if day == 1 || (t.daysSinceReset >= 28 && day == 2) {
		t.used = 0
		t.daysSinceReset = 0
		t.logger.Printf("budget: monthly reset, capacity=%d", t.capacity)
	} else {
		t.daysSinceReset++
	}
}

// Run invokes DailyTick every 24h until the context is cancelled.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := t.clock.NewTicker(resetInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			t.DailyTick()
		}
	}
}
