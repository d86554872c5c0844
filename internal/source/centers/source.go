package centers

import (
	"context"
	"fmt"
	"log/slog"

	"campus_sync/internal/domain"
	"campus_sync/internal/extract"
	"campus_sync/internal/normalize"
	"campus_sync/internal/reconcile"
	"campus_sync/internal/source"
)

const (
	SourceID = "centers"
	Category = "centers"

	emptyContent = "no info"
)

type Config struct {
	BaseURL      string
	DefaultImage string
}

// Source syncs the structural units page. Cards are keyed by unit title.
type Source struct {
	fetcher      source.Fetcher
	baseURL      string
	defaultImage string
	logger       *slog.Logger
}

func New(cfg Config, fetcher source.Fetcher, logger *slog.Logger) *Source {
	return &Source{
		fetcher:      fetcher,
		baseURL:      cfg.BaseURL,
		defaultImage: cfg.DefaultImage,
		logger:       logger.With("source", SourceID),
	}
}

func (s *Source) ID() string       { return SourceID }
func (s *Source) Category() string { return Category }

func (s *Source) Owns() reconcile.Field {
	return reconcile.Title | reconcile.Content | reconcile.Image | reconcile.Position
}

func (s *Source) Scrape(ctx context.Context) ([]domain.ScrapedItem, error) {
	html, err := s.fetcher.Get(ctx, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch centers page: %w", err)
	}

	entries, err := extract.Centers(html, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("extract centers page: %w", err)
	}

	s.logger.Debug("extracted units", "count", len(entries))

	items := make([]domain.ScrapedItem, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		id := normalize.CardID(SourceID, e.Title)
		if _, dup := seen[id]; dup {
			s.logger.Warn("duplicate entry skipped", "title", e.Title, "id", id)
			continue
		}
		seen[id] = struct{}{}

		content := e.Content
		if content == "" {
			content = emptyContent
		}
		image := s.defaultImage
		if e.Image != nil {
			image = *e.Image
		}

		items = append(items, domain.ScrapedItem{
			Card: domain.ContentCard{
				ID:          id,
				Title:       domain.Plain(e.Title),
				Content:     domain.Plain(content),
				Image:       domain.Ptr(image),
				ImageSource: domain.ImageSourceScraped,
				Category:    Category,
				Resource:    domain.Ptr(s.baseURL),
				Position:    len(items),
				Published:   true,
			},
			URL: s.baseURL,
		})
	}

	return items, nil
}
