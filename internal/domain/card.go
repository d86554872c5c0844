package domain

import (
	"strings"
	"time"
)

// LocalizedText holds a primary-language (UA) value and an optional EN rendering.
type LocalizedText struct {
	UA string `json:"ua"`
	EN string `json:"en,omitempty"`
}

// Plain wraps a primary-language only value.
func Plain(s string) LocalizedText {
	return LocalizedText{UA: s}
}

// TextFor returns the rendering for lang, falling back to the primary language.
func (t LocalizedText) TextFor(lang string) string {
	if strings.HasPrefix(lang, "en") && t.EN != "" {
		return t.EN
	}
	return t.UA
}

// ImageSource records who put the image on a card.
type ImageSource string

const (
	ImageSourceUnknown  ImageSource = ""
	ImageSourceScraped  ImageSource = "scraped"
	ImageSourceUploaded ImageSource = "uploaded"
)

// ContentCard is the persisted record shown on the portal and targeted by sync.
type ContentCard struct {
	ID          string        `json:"id"`
	Title       LocalizedText `json:"title"`
	Subtitle    LocalizedText `json:"subtitle"`
	Content     LocalizedText `json:"content"`
	Image       *string       `json:"image"`
	ImageSource ImageSource   `json:"imageSource,omitempty"`
	Category    string        `json:"category"`
	Subcategory *string       `json:"subcategory"`
	Resource    *string       `json:"resource,omitempty"` // set on scrape-sourced cards only
	Position    int           `json:"position"`
	Published   bool          `json:"published"`
	Date        time.Time     `json:"date"`
}

// IsManual reports whether the card was authored in the admin panel.
func (c *ContentCard) IsManual() bool {
	return c.Resource == nil || *c.Resource == ""
}

// HasUploadedImage reports whether the card's image was put there by an admin.
// Cards written before provenance tracking fall back to the upload path prefix.
func (c *ContentCard) HasUploadedImage(uploadPrefix string) bool {
	switch c.ImageSource {
	case ImageSourceUploaded:
		return true
	case ImageSourceScraped:
		return false
	}
	if uploadPrefix == "" {
		return false
	}
	return (c.Image != nil && strings.HasPrefix(*c.Image, uploadPrefix)) ||
		(c.Resource != nil && strings.HasPrefix(*c.Resource, uploadPrefix))
}

// Video is an entry of the video library.
type Video struct {
	ID          string        `json:"id"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Src         string        `json:"src"`
	Image       *string       `json:"image"`
	Category    string        `json:"category"`
	Position    int           `json:"position"`
	Published   bool          `json:"published"`
	Date        time.Time     `json:"date"`
}

// CardFilter narrows a card listing.
type CardFilter struct {
	Category           string
	IncludeUnpublished bool
	OrderByDate        bool
	Limit              int
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
