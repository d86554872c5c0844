package rectorat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"campus_sync/internal/domain"
	"campus_sync/internal/extract"
	"campus_sync/internal/normalize"
	"campus_sync/internal/reconcile"
	"campus_sync/internal/source"
)

const (
	SourceID = "rectorat"
	Category = "rectorat_members"
)

type Config struct {
	BaseURL      string
	DefaultImage string
}

// Source syncs the rectorate roster. Cards are keyed by the person's name.
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
	return reconcile.Title | reconcile.Subtitle | reconcile.Image | reconcile.Position
}

func (s *Source) Scrape(ctx context.Context) ([]domain.ScrapedItem, error) {
	html, err := s.fetcher.Get(ctx, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch rectorate page: %w", err)
	}

	entries, err := extract.Rectorate(html, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("extract rectorate page: %w", err)
	}

	s.logger.Debug("extracted roster entries", "count", len(entries))

	items := make([]domain.ScrapedItem, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		id := normalize.CardID(SourceID, e.Name)
		if _, dup := seen[id]; dup {
			s.logger.Warn("duplicate entry skipped", "name", e.Name, "id", id)
			continue
		}
		seen[id] = struct{}{}

		items = append(items, domain.ScrapedItem{
			Card: domain.ContentCard{
				ID:          id,
				Title:       domain.Plain(e.Name),
				Subtitle:    domain.Plain(subtitle(e)),
				Image:       domain.Ptr(s.image(e.Image)),
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

// subtitle renders "role | 📞 phone".
func subtitle(e extract.RosterEntry) string {
	out := normalize.Role(e.RoleText)
	if e.PhoneText != "" {
		out += " | 📞" + normalize.NBSP + normalize.Phone(e.PhoneText)
	}
	return out
}

func (s *Source) image(src *string) string {
	if src == nil || *src == "" {
		return s.defaultImage
	}
	return strings.Replace(*src, "/pro-universitet/assets", "/assets", 1)
}
