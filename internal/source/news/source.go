package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"campus_sync/internal/domain"
	"campus_sync/internal/extract"
	"campus_sync/internal/normalize"
	"campus_sync/internal/reconcile"
	"campus_sync/internal/source"
)

const (
	SourceID = "news"
	Category = "news"
)

type Config struct {
	BaseURL        string
	MaxConcurrency int
}

// Source syncs the news listing. Article bodies come from each detail page.
type Source struct {
	fetcher source.Fetcher
	baseURL string
	limit   int
	logger  *slog.Logger
	now     func() time.Time
}

func New(cfg Config, fetcher source.Fetcher, logger *slog.Logger) *Source {
	limit := cfg.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	return &Source{
		fetcher: fetcher,
		baseURL: cfg.BaseURL,
		limit:   limit,
		logger:  logger.With("source", SourceID),
		now:     time.Now,
	}
}

func (s *Source) ID() string       { return SourceID }
func (s *Source) Category() string { return Category }

func (s *Source) Owns() reconcile.Field {
	return reconcile.Title | reconcile.Content | reconcile.Image | reconcile.Position
}

// Scrape fetches the listing page and every linked article. An article whose
// detail page fails is returned with Err set.
func (s *Source) Scrape(ctx context.Context) ([]domain.ScrapedItem, error) {
	html, err := s.fetcher.Get(ctx, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch news listing: %w", err)
	}

	list, err := extract.NewsList(html, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("extract news listing: %w", err)
	}

	s.logger.Debug("fetched news listing", "articles", len(list))

	items := make([]domain.ScrapedItem, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, entry := range list {
		g.Go(func() error {
			card := domain.ContentCard{
				ID:          normalize.CardID(SourceID, entry.Link),
				Title:       domain.Plain(normalize.Text(entry.Title)),
				Image:       entry.Image,
				ImageSource: domain.ImageSourceScraped,
				Category:    Category,
				Resource:    domain.Ptr(entry.Link),
				Position:    i,
				Published:   true,
				Date:        normalize.Date(entry.DateText, s.now()),
			}

			content, err := s.loadArticle(gctx, entry.Link)
			if err != nil {
				items[i] = domain.ScrapedItem{Card: card, URL: entry.Link, Err: err}
				return nil
			}
			card.Content = domain.Plain(content)
			items[i] = domain.ScrapedItem{Card: card, URL: entry.Link}
			return nil
		})
	}
	_ = g.Wait()

	return items, nil
}

// Refresh reloads the article body of a persisted news card.
func (s *Source) Refresh(ctx context.Context, card domain.ContentCard) (domain.ContentCard, error) {
	if card.IsManual() {
		return card, domain.ErrMissingResource
	}

	content, err := s.loadArticle(ctx, *card.Resource)
	if err != nil {
		return card, err
	}
	card.Content.UA = content
	return card, nil
}

func (s *Source) loadArticle(ctx context.Context, link string) (string, error) {
	html, err := s.fetcher.Get(ctx, link, nil)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}

	content, err := extract.NewsArticle(html)
	if errors.Is(err, domain.ErrExtractionEmpty) {
		s.logger.Warn("article body not found, using page text", "url", link)
	} else if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}
	return content, nil
}
