package faculties

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"campus_sync/internal/domain"
	"campus_sync/internal/extract"
	"campus_sync/internal/normalize"
	"campus_sync/internal/reconcile"
	"campus_sync/internal/source"
)

const (
	SourceID = "faculties"
	Category = "faculties"
)

// Source refreshes faculty cards from the page each card links to. Faculty
// cards themselves are created in the admin panel.
type Source struct {
	fetcher source.Fetcher
	logger  *slog.Logger
}

func New(fetcher source.Fetcher, logger *slog.Logger) *Source {
	return &Source{fetcher: fetcher, logger: logger.With("source", SourceID)}
}

func (s *Source) ID() string       { return SourceID }
func (s *Source) Category() string { return Category }

func (s *Source) Owns() reconcile.Field {
	return reconcile.Title | reconcile.Content
}

func (s *Source) Refresh(ctx context.Context, card domain.ContentCard) (domain.ContentCard, error) {
	if card.IsManual() {
		return card, domain.ErrMissingResource
	}
	url := *card.Resource

	html, err := s.fetcher.Get(ctx, url, nil)
	if err != nil {
		return card, fmt.Errorf("fetch faculty page: %w", err)
	}

	page, err := extract.Faculty(html, url)
	if errors.Is(err, domain.ErrExtractionEmpty) {
		s.logger.Warn("faculty description not found, using page body", "url", url, "id", card.ID)
	} else if err != nil {
		return card, fmt.Errorf("extract faculty page: %w", err)
	}

	if title := normalize.Title(page.Title); title != "" {
		card.Title.UA = title
	}
	card.Content.UA = page.Content

	return card, nil
}
