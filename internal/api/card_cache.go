package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus_sync/internal/cache"
	"campus_sync/internal/domain"
)

// CardCache holds rendered category listings. It also acts as a card
// publisher so every sync write drops the listings of the written category.
type CardCache struct {
	ttl *cache.TTL[string, []domain.ContentCard]
}

func NewCardCache(maxEntries int, ttl time.Duration) (*CardCache, error) {
	c, err := cache.New[string, []domain.ContentCard](maxEntries, ttl)
	if err != nil {
		return nil, err
	}
	return &CardCache{ttl: c}, nil
}

func listingKey(f domain.CardFilter) string {
	return fmt.Sprintf("%s|%t|%t|%d", f.Category, f.IncludeUnpublished, f.OrderByDate, f.Limit)
}

func (c *CardCache) Get(f domain.CardFilter) ([]domain.ContentCard, bool) {
	return c.ttl.Get(listingKey(f))
}

func (c *CardCache) Set(f domain.CardFilter, cards []domain.ContentCard) {
	c.ttl.Set(listingKey(f), cards)
}

// InvalidateCategory drops every cached listing of category.
func (c *CardCache) InvalidateCategory(category string) int {
	prefix := category + "|"
	return c.ttl.InvalidateFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
}

func (c *CardCache) Publish(_ context.Context, card *domain.ContentCard, _ bool) error {
	c.InvalidateCategory(card.Category)
	return nil
}

func (c *CardCache) Close() error {
	c.ttl.Purge()
	return nil
}
