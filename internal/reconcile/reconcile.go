// Package reconcile decides how a freshly scraped card is applied to its
// persisted counterpart.
package reconcile

import (
	"strings"

	"campus_sync/internal/domain"
)

// Field is a set of card fields owned by a source.
type Field uint8

const (
	Title Field = 1 << iota
	Subtitle
	Content
	Image
	Position
)

func (f Field) has(x Field) bool { return f&x != 0 }

// Policy describes what a source may overwrite.
type Policy struct {
	Owns         Field
	UploadPrefix string
}

type Action int

const (
	Skip Action = iota
	Create
	Update
)

func (a Action) String() string {
	switch a {
	case Create:
		return "create"
	case Update:
		return "update"
	default:
		return "skip"
	}
}

// Decision is the outcome of Decide. Card is the record to write; it is the
// existing record for Skip.
type Decision struct {
	Action Action
	Card   domain.ContentCard
}

// Decide compares candidate against existing (nil when absent).
//
// New cards are created published. Manually authored cards (no resource) are
// always skipped. Other existing cards are skipped when every owned field
// matches, otherwise updated with the owned primary-language fields only:
// secondary-language text, the published flag and admin-uploaded images survive.
func Decide(candidate domain.ContentCard, existing *domain.ContentCard, p Policy) Decision {
	if existing == nil {
		card := candidate
		card.Published = true
		if card.ImageSource == domain.ImageSourceUnknown {
			card.ImageSource = domain.ImageSourceScraped
		}
		return Decision{Action: Create, Card: card}
	}

	if existing.IsManual() {
		return Decision{Action: Skip, Card: *existing}
	}

	if Equal(candidate, *existing, p) {
		return Decision{Action: Skip, Card: *existing}
	}

	return Decision{Action: Update, Card: merge(candidate, *existing, p)}
}

// Equal reports whether the fields owned by the source already match.
func Equal(candidate, existing domain.ContentCard, p Policy) bool {
	if p.Owns.has(Title) && candidate.Title.UA != existing.Title.UA {
		return false
	}
	if p.Owns.has(Subtitle) && candidate.Subtitle.UA != existing.Subtitle.UA {
		return false
	}
	if p.Owns.has(Content) && candidate.Content.UA != existing.Content.UA {
		return false
	}
	if p.Owns.has(Position) && candidate.Position != existing.Position {
		return false
	}
	if p.Owns.has(Image) && !existing.HasUploadedImage(p.UploadPrefix) &&
		deref(candidate.Image) != deref(existing.Image) {
		return false
	}
	if !keepsResource(existing, p) && deref(candidate.Resource) != deref(existing.Resource) {
		return false
	}
	return true
}

func merge(candidate, existing domain.ContentCard, p Policy) domain.ContentCard {
	card := existing

	if p.Owns.has(Title) {
		card.Title.UA = candidate.Title.UA
	}
	if p.Owns.has(Subtitle) {
		card.Subtitle.UA = candidate.Subtitle.UA
	}
	if p.Owns.has(Content) {
		card.Content.UA = candidate.Content.UA
	}
	if p.Owns.has(Position) {
		card.Position = candidate.Position
	}
	if p.Owns.has(Image) {
		if existing.HasUploadedImage(p.UploadPrefix) {
			card.ImageSource = domain.ImageSourceUploaded
		} else {
			card.Image = candidate.Image
			card.ImageSource = domain.ImageSourceScraped
		}
	}
	if !keepsResource(existing, p) && candidate.Resource != nil {
		card.Resource = candidate.Resource
	}
	if card.Date.IsZero() {
		card.Date = candidate.Date
	}

	return card
}

// keepsResource reports whether the existing resource points at an uploaded
// file and must not be replaced by the scraped link.
func keepsResource(existing domain.ContentCard, p Policy) bool {
	return p.UploadPrefix != "" && existing.Resource != nil &&
		strings.HasPrefix(*existing.Resource, p.UploadPrefix)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
