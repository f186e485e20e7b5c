package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	val1, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheExpires(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cache := NewChartCache(time.Minute)
	cache.now = func() time.Time { return now }
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCacheDoesNotStoreErrors(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.GetOrRender("key", func() (string, error) { return "", errors.New("boom") })
	require.Error(t, err)
	assert.Zero(t, cache.Len())
}

func TestChartCacheDisabled(t *testing.T) {
	cache := NewChartCache(0)
	calls := 0
	for i := 0; i < 2; i++ {
		_, _ = cache.GetOrRender("key", func() (string, error) {
			calls++
			return "x", nil
		})
	}
	assert.Equal(t, 2, calls)
}

func TestDataHash(t *testing.T) {
	a := dataHash([]int{1, 2, 3})
	b := dataHash([]int{1, 2, 3})
	c := dataHash([]int{3, 2, 1})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "empty", dataHash(nil))
	assert.Equal(t, "invalid", dataHash(func() {}))
}

func TestChartCacheEvictsOldestWhenFull(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cache := NewChartCache(time.Hour)
	cache.maxEntries = 2
	cache.now = func() time.Time { return now }
	render := func() (string, error) { return "chart", nil }

	for _, key := range []string{"a", "b", "c"} {
		_, err := cache.GetOrRender(key, render)
		require.NoError(t, err)
		now = now.Add(time.Second)
	}
	assert.Equal(t, 2, cache.Len())

	calls := 0
	_, err := cache.GetOrRender("a", func() (string, error) {
		calls++
		return "chart", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "oldest entry should have been evicted")
}
