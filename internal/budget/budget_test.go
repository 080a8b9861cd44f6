package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eth-token-sentry/internal/sched"
)

func newTestTracker(start time.Time) (*Tracker, *sched.FakeClock) {
	clock := sched.NewFakeClock(start)
	tracker := NewTracker(Options{Capacity: 1000, Clock: clock})
	return tracker, clock
}

func TestTracker_AddUnits(t *testing.T) {
	tracker, _ := newTestTracker(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	tracker.AddUnits(10)
	tracker.AddUnits(26)

	assert.Equal(t, uint64(36), tracker.Used())
	assert.Equal(t, uint64(1000), tracker.Capacity())
	assert.Equal(t, uint64(964), tracker.Remaining())
}

func TestTracker_RemainingClampsAtZero(t *testing.T) {
	tracker, _ := newTestTracker(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	tracker.AddUnits(5000)
	assert.Equal(t, uint64(0), tracker.Remaining())
}

func TestTracker_MidMonthTicksNeverReset(t *testing.T) {
	// 27 consecutive ticks with no day==1 boundary leave the counter alone.
	start := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	tracker, clock := newTestTracker(start)
	tracker.AddUnits(500)

	for i := 0; i < 27; i++ {
		tracker.DailyTick()
		clock.Advance(24 * time.Hour)
	}

	assert.Equal(t, uint64(500), tracker.Used())
}

func TestTracker_ResetOnFirstOfMonth(t *testing.T) {
	tracker, _ := newTestTracker(time.Date(2024, 4, 1, 3, 0, 0, 0, time.UTC))
	tracker.AddUnits(500)

	tracker.DailyTick()
	assert.Equal(t, uint64(0), tracker.Used())
}

func TestTracker_ResetOnSecondAfter28Ticks(t *testing.T) {
	// Scheduler observes Feb 2 having skipped Feb 1: the day==2 fallback
	// fires only because 28 ticks accumulated since the last reset.
	start := time.Date(2024, 1, 4, 6, 0, 0, 0, time.UTC)
	tracker, clock := newTestTracker(start)
	tracker.AddUnits(700)

	// 28 ticks across Jan 4..31, all mid-month.
	for i := 0; i < 28; i++ {
		tracker.DailyTick()
		clock.Advance(24 * time.Hour)
	}
	assert.Equal(t, uint64(700), tracker.Used(), "no reset before a month boundary")

	// Scheduler observes Feb 2 having skipped Feb 1: fallback fires.
	clock.Set(time.Date(2024, 2, 2, 6, 0, 0, 0, time.UTC))
	tracker.DailyTick()
	assert.Equal(t, uint64(0), tracker.Used())
}

func TestTracker_NoDoubleResetSameMonth(t *testing.T) {
	// Day 2 without 28 elapsed ticks must not reset again.
	tracker, clock := newTestTracker(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	tracker.DailyTick() // resets, tick counter back to 0

	tracker.AddUnits(100)
	clock.Set(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))
	tracker.DailyTick()

	assert.Equal(t, uint64(100), tracker.Used())
}
