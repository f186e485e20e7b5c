package chat

import (
	"testing"
	"time"
)

func TestMonotonicClockNeverRepeats(t *testing.T) {
	frozen := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := NewMonotonicClock(func() time.Time { return frozen })

	first := clock.Now()
	second := clock.Now()
	if !second.After(first) {
		t.Fatalf("expected %s to be after %s", second, first)
	}
}

func TestMonotonicClockIgnoresBackwardSteps(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := NewMonotonicClock(func() time.Time { return now })

	first := clock.Now()
	now = now.Add(-time.Hour)
	second := clock.Now()
	if !second.After(first) {
		t.Fatalf("expected clock to stay monotonic, got %s after %s", second, first)
	}
	now = now.Add(2 * time.Hour)
	third := clock.Now()
	if !third.Equal(now) {
		t.Fatalf("expected clock to follow wall time again, got %s", third)
	}
}
