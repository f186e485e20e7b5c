package chat

import (
	"sync"
	"time"
)

// Clock hands out message timestamps.
type Clock interface {
	Now() time.Time
}

// MonotonicClock never returns a value that is not after the previous one,
// even when the wall clock stalls or steps backwards.
type MonotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewMonotonicClock wraps now; nil uses time.Now.
func NewMonotonicClock(now func() time.Time) *MonotonicClock {
	if now == nil {
		now = time.Now
	}
	return &MonotonicClock{now: now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.now().UTC().Round(0)
	if !next.After(c.last) {
		next = c.last.Add(time.Millisecond)
	}
	c.last = next
	return next
}
