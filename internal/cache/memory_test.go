package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()

	c.Set("fixtures?date=2026-03-01", []byte(`{"response":[]}`), time.Minute)

	value, ok := c.Get("fixtures?date=2026-03-01")
	require.True(t, ok, "entry set a moment ago should be present")
	assert.Equal(t, []byte(`{"response":[]}`), value)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache()

	_, ok := c.Get("never-set")
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return clock }

	c.Set("standings?league=39", []byte(`{}`), 30*time.Second)

	_, ok := c.Get("standings?league=39")
	require.True(t, ok, "entry should be live within its TTL")

	clock = clock.Add(31 * time.Second)

	_, ok = c.Get("standings?league=39")
	assert.False(t, ok, "entry should expire once the TTL elapses")
	assert.Equal(t, 0, c.Len(), "expired entry should be dropped")
}

func TestMemoryCache_OverwriteOnRefresh(t *testing.T) {
	c := NewMemoryCache()

	c.Set("live", []byte(`old`), time.Minute)
	c.Set("live", []byte(`new`), time.Minute)

	value, ok := c.Get("live")
	require.True(t, ok)
	assert.Equal(t, []byte(`new`), value, "refresh overwrites, never appends")
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_ExpiredDropSparesFreshEntry(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return clock }

	c.Set("teams?league=39", []byte(`stale`), 30*time.Second)
	staleDeadline := clock.Add(31 * time.Second)
	clock = staleDeadline

	// A reader that saw the stale entry races a writer that refreshes
	// the key before the reader's delete lands. The delete must notice
	// the fresh entry and leave it alone.
	c.Set("teams?league=39", []byte(`fresh`), 30*time.Second)
	c.dropIfExpired("teams?league=39", staleDeadline)

	value, ok := c.Get("teams?league=39")
	require.True(t, ok, "fresh entry must survive a stale delete")
	assert.Equal(t, []byte(`fresh`), value)
}

func TestMemoryCache_ZeroTTLIgnored(t *testing.T) {
	c := NewMemoryCache()

	c.Set("noop", []byte(`x`), 0)

	_, ok := c.Get("noop")
	assert.False(t, ok, "zero TTL entries are not stored")
}
