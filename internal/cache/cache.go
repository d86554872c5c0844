// Package cache provides a size-bounded LRU cache with per-entry expiry.
package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is safe for concurrent use. Entries beyond maxEntries are evicted least
// recently used first; expired entries miss and are dropped on read.
type TTL[K comparable, V any] struct {
	lru *lru.Cache[K, entry[V]]
	ttl time.Duration
	now func() time.Time
}

// New creates a cache holding at most maxEntries values, each living ttl
// unless set with SetWithTTL. A zero ttl means entries never expire.
func New[K comparable, V any](maxEntries int, ttl time.Duration) (*TTL[K, V], error) {
	c, err := lru.New[K, entry[V]](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &TTL[K, V]{lru: c, ttl: ttl, now: time.Now}, nil
}

func (c *TTL[K, V]) Get(key K) (V, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.lru.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *TTL[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

func (c *TTL[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, e)
}

func (c *TTL[K, V]) Invalidate(key K) {
	c.lru.Remove(key)
}

// InvalidateFunc drops every key matching pred and returns how many were dropped.
func (c *TTL[K, V]) InvalidateFunc(pred func(K) bool) int {
	n := 0
	for _, k := range c.lru.Keys() {
		if pred(k) && c.lru.Remove(k) {
			n++
		}
	}
	return n
}

func (c *TTL[K, V]) Purge() {
	c.lru.Purge()
}

// Len counts stored entries, including expired ones not yet read.
func (c *TTL[K, V]) Len() int {
	return c.lru.Len()
}
