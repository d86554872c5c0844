package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"campus_sync/internal/domain"
	"campus_sync/internal/reconcile"
)

type Config struct {
	MaxConcurrency int
	UploadPrefix   string
}

type SyncService struct {
	sources    []Source
	byCategory map[string]Source
	cards      CardStore
	syncState  SyncStateStore
	txManager  TransactionManager
	publisher  Publisher
	logger     *slog.Logger
	config     Config
}

func NewSyncService(
	sources []Source,
	cards CardStore,
	syncState SyncStateStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg Config,
) *SyncService {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}

	byCategory := make(map[string]Source, len(sources))
	for _, src := range sources {
		byCategory[src.Category()] = src
	}

	return &SyncService{
		sources:    sources,
		byCategory: byCategory,
		cards:      cards,
		syncState:  syncState,
		txManager:  txManager,
		publisher:  publisher,
		logger:     logger,
		config:     cfg,
	}
}

// Sync runs a pass over every source. A failing source is logged and reported
// in its stats; the remaining sources still run.
func (s *SyncService) Sync(ctx context.Context) ([]*domain.SyncStats, error) {
	all := make([]*domain.SyncStats, 0, len(s.sources))

	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		stats, err := s.syncSource(ctx, src)
		if err != nil {
			s.logger.Error("source sync failed", "source", src.ID(), "error", err)
			stats.Err = err.Error()
		}
		all = append(all, stats)
	}

	return all, nil
}

// SyncSource runs a pass over the source with the given id.
func (s *SyncService) SyncSource(ctx context.Context, id string) (*domain.SyncStats, error) {
	for _, src := range s.sources {
		if src.ID() == id {
			return s.syncSource(ctx, src)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, id)
}

func (s *SyncService) syncSource(ctx context.Context, src Source) (*domain.SyncStats, error) {
	startTime := time.Now()
	logger := s.logger.With("source", src.ID())
	logger.Info("starting sync", "category", src.Category())

	stats := &domain.SyncStats{SourceID: src.ID()}

	var err error
	switch v := src.(type) {
	case ListingSource:
		err = s.syncListing(ctx, v, stats, logger)
	case ResourceSource:
		err = s.syncResources(ctx, v, stats, logger)
	default:
		err = fmt.Errorf("%w: %s", domain.ErrUnknownSource, src.ID())
	}
	stats.Duration = time.Since(startTime)
	if err != nil {
		return stats, err
	}

	if err := s.updateSyncState(ctx, stats); err != nil {
		logger.Warn("failed to update sync state", "error", err)
	}

	logger.Info("sync completed",
		"fetched", stats.Fetched,
		"new", stats.New,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *SyncService) syncListing(ctx context.Context, src ListingSource, stats *domain.SyncStats, logger *slog.Logger) error {
	items, err := src.Scrape(ctx)
	if err != nil {
		return fmt.Errorf("scrape %s: %w", src.ID(), err)
	}
	stats.Fetched = len(items)

	cards := make([]domain.ContentCard, 0, len(items))
	for _, item := range items {
		if item.Err != nil {
			logger.Error("failed to extract item", "url", item.URL, "error", item.Err)
			stats.Errors++
			continue
		}
		cards = append(cards, item.Card)
	}

	s.applyAll(ctx, src, cards, stats, logger)
	return nil
}

func (s *SyncService) syncResources(ctx context.Context, src ResourceSource, stats *domain.SyncStats, logger *slog.Logger) error {
	existing, err := s.cards.All(ctx, domain.CardFilter{Category: src.Category(), IncludeUnpublished: true})
	if err != nil {
		return &domain.PersistenceError{Op: "list", ID: src.Category(), Err: err}
	}

	var linked []domain.ContentCard
	for _, card := range existing {
		if !card.IsManual() {
			linked = append(linked, card)
		}
	}
	stats.Fetched = len(linked)

	var mu sync.Mutex
	refreshed := make([]domain.ContentCard, 0, len(linked))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrency)
	for _, card := range linked {
		g.Go(func() error {
			candidate, err := src.Refresh(gctx, card)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("failed to refresh card", "id", card.ID, "resource", *card.Resource, "error", err)
				stats.Errors++
				return nil
			}
			refreshed = append(refreshed, candidate)
			return nil
		})
	}
	_ = g.Wait()

	s.applyAll(ctx, src, refreshed, stats, logger)
	return nil
}

// applyAll reconciles every candidate independently. Item failures are counted
// and never stop their siblings.
func (s *SyncService) applyAll(ctx context.Context, src Source, candidates []domain.ContentCard, stats *domain.SyncStats, logger *slog.Logger) {
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrency)
	for i := range candidates {
		candidate := candidates[i]
		g.Go(func() error {
			decision, published, err := s.apply(gctx, src, candidate)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("failed to save card", "id", candidate.ID, "error", err)
				stats.Errors++
				return nil
			}
			switch decision.Action {
			case reconcile.Create:
				stats.New++
				logger.Debug("created card", "id", candidate.ID, "title", candidate.Title.UA)
			case reconcile.Update:
				stats.Updated++
				logger.Debug("updated card", "id", candidate.ID, "title", candidate.Title.UA)
			default:
				stats.Skipped++
			}
			if published {
				stats.Published++
			}
			return nil
		})
	}
	_ = g.Wait()
}

// apply reconciles one candidate inside a transaction and publishes the write.
func (s *SyncService) apply(ctx context.Context, src Source, candidate domain.ContentCard) (reconcile.Decision, bool, error) {
	policy := reconcile.Policy{Owns: src.Owns(), UploadPrefix: s.config.UploadPrefix}

	var decision reconcile.Decision
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.cards.Get(txCtx, candidate.ID)
		if err != nil {
			return &domain.PersistenceError{Op: "get", ID: candidate.ID, Err: err}
		}

		decision = reconcile.Decide(candidate, existing, policy)

		switch decision.Action {
		case reconcile.Create:
			if err := s.cards.Create(txCtx, &decision.Card); err != nil {
				return &domain.PersistenceError{Op: "create", ID: candidate.ID, Err: err}
			}
		case reconcile.Update:
			if err := s.cards.Update(txCtx, &decision.Card); err != nil {
				return &domain.PersistenceError{Op: "update", ID: candidate.ID, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return decision, false, err
	}

	if decision.Action == reconcile.Skip || s.publisher == nil {
		return decision, false, nil
	}

	if err := s.publisher.Publish(ctx, &decision.Card, decision.Action == reconcile.Create); err != nil {
		s.logger.Warn("failed to publish card", "id", decision.Card.ID, "error", err)
		return decision, false, nil
	}
	return decision, true, nil
}

// Resync refreshes a single card on admin request. Errors are returned to the
// caller as is; ErrMissingResource rejects manually authored cards.
func (s *SyncService) Resync(ctx context.Context, category, id string) (*domain.ContentCard, reconcile.Action, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, reconcile.Skip, &domain.PersistenceError{Op: "get", ID: id, Err: err}
	}
	if card == nil || card.Category != category {
		return nil, reconcile.Skip, domain.ErrNotFound
	}
	if card.IsManual() {
		return nil, reconcile.Skip, domain.ErrMissingResource
	}

	src, ok := s.byCategory[category]
	if !ok {
		return nil, reconcile.Skip, fmt.Errorf("%w: %s", domain.ErrUnknownSource, category)
	}

	candidate, err := s.candidateFor(ctx, src, *card)
	if err != nil {
		return nil, reconcile.Skip, err
	}

	decision, _, err := s.apply(ctx, src, candidate)
	if err != nil {
		return nil, reconcile.Skip, err
	}

	s.logger.Info("resynced card", "id", id, "category", category, "action", decision.Action.String())
	return &decision.Card, decision.Action, nil
}

func (s *SyncService) candidateFor(ctx context.Context, src Source, card domain.ContentCard) (domain.ContentCard, error) {
	if rs, ok := src.(ResourceSource); ok {
		return rs.Refresh(ctx, card)
	}

	ls, ok := src.(ListingSource)
	if !ok {
		return domain.ContentCard{}, fmt.Errorf("%w: %s", domain.ErrUnknownSource, card.Category)
	}

	items, err := ls.Scrape(ctx)
	if err != nil {
		return domain.ContentCard{}, err
	}
	for _, item := range items {
		if item.Card.ID != card.ID {
			continue
		}
		if item.Err != nil {
			return domain.ContentCard{}, item.Err
		}
		return item.Card, nil
	}
	return domain.ContentCard{}, domain.ErrNotUpstream
}

func (s *SyncService) updateSyncState(ctx context.Context, stats *domain.SyncStats) error {
	state, err := s.syncState.Get(ctx, stats.SourceID)
	if err != nil {
		return err
	}

	state.SourceID = stats.SourceID
	state.LastSyncedAt = time.Now()
	state.TotalSynced += int64(stats.New + stats.Updated)

	return s.syncState.Update(ctx, state)
}

// IsUserError reports whether a resync error is caused by the request rather
// than by the upstream site or the store.
func IsUserError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrMissingResource) ||
		errors.Is(err, domain.ErrUnknownSource) ||
		errors.Is(err, domain.ErrNotUpstream)
}
