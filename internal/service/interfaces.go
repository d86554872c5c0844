package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"campus_sync/internal/domain"
	"campus_sync/internal/reconcile"
)

// CardStore is the persistence gateway for content cards. Get returns nil, nil
// for an unknown id.
type CardStore interface {
	Get(ctx context.Context, id string) (*domain.ContentCard, error)
	Create(ctx context.Context, card *domain.ContentCard) error
	Update(ctx context.Context, card *domain.ContentCard) error
	All(ctx context.Context, filter domain.CardFilter) ([]domain.ContentCard, error)
}

type SyncStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, card *domain.ContentCard, isNew bool) error
	Close() error
}

// Source is a sync recipe for one card category.
type Source interface {
	ID() string
	Category() string
	Owns() reconcile.Field
}

// ListingSource scrapes every card of its category from one listing page.
// Card positions are the 0-based listing index.
type ListingSource interface {
	Source
	Scrape(ctx context.Context) ([]domain.ScrapedItem, error)
}

// ResourceSource refreshes a persisted card from its resource link.
type ResourceSource interface {
	Source
	Refresh(ctx context.Context, card domain.ContentCard) (domain.ContentCard, error)
}
