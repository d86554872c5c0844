package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(t *testing.T, size int, ttl time.Duration) (*TTL[string, int], *clock) {
	t.Helper()
	c, err := New[string, int](size, ttl)
	require.NoError(t, err)
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clk.now
	return c, clk
}

func TestTTL_SetGet(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestTTL_Expiry(t *testing.T) {
	c, clk := newTestCache(t, 10, time.Minute)

	c.Set("a", 1)
	c.SetWithTTL("b", 2, time.Hour)
	c.SetWithTTL("forever", 3, 0)

	clk.t = clk.t.Add(2 * time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	clk.t = clk.t.Add(24 * time.Hour)
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("forever")
	assert.True(t, ok)
}

func TestTTL_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(t, 2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestTTL_Invalidate(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)
	c.Set("news|all", 1)
	c.Set("news|published", 2)
	c.Set("centers|published", 3)

	c.Invalidate("centers|published")
	_, ok := c.Get("centers|published")
	assert.False(t, ok)

	n := c.InvalidateFunc(func(k string) bool { return strings.HasPrefix(k, "news|") })
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, c.Len())
}

func TestTTL_Purge(t *testing.T) {
	c, _ := newTestCache(t, 10, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := New[string, int](0, time.Minute)
	assert.Error(t, err)
}
