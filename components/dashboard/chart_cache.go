package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// defaultChartEntries bounds the cache; one entry exists per chart kind,
// theme and data set, so the working set is small.
const defaultChartEntries = 64

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache keeps rendered charts for a fixed TTL.
type ChartCache struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu     sync.Mutex
	charts map[string]renderedChart
}

type renderedChart struct {
	html     string
	storedAt time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:        ttl,
		maxEntries: defaultChartEntries,
		now:        time.Now,
		charts:     make(map[string]renderedChart),
	}
}

// GetOrRender serves key from the cache while it is fresh, otherwise calls
// render and keeps the result. Render errors are not cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if !c.enabled() {
		return render()
	}
	c.mu.Lock()
	chart, ok := c.charts[key]
	c.mu.Unlock()
	if ok && c.fresh(chart) {
		return chart.html, nil
	}

	html, err := render()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.charts) >= c.maxEntries {
		c.evictLocked()
	}
	c.charts[key] = renderedChart{html: html, storedAt: c.now()}
	return html, nil
}

// Len reports how many charts are held, stale ones included.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.charts)
}

func (c *ChartCache) enabled() bool {
	return c != nil && c.ttl > 0
}

func (c *ChartCache) fresh(chart renderedChart) bool {
	return c.now().Sub(chart.storedAt) < c.ttl
}

// evictLocked drops stale charts, or the oldest one when all are fresh.
func (c *ChartCache) evictLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, chart := range c.charts {
		if !c.fresh(chart) {
			delete(c.charts, key)
			continue
		}
		if oldestKey == "" || chart.storedAt.Before(oldest) {
			oldestKey, oldest = key, chart.storedAt
		}
	}
	if len(c.charts) >= c.maxEntries && oldestKey != "" {
		delete(c.charts, oldestKey)
	}
}

// dataHash fingerprints the chart input so changed data renders anew.
func dataHash(v any) string {
	raw, err := json.Marshal(v)
	switch {
	case err != nil:
		return "invalid"
	case len(raw) == 0 || string(raw) == "null":
		return "empty"
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}
