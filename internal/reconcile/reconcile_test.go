package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campus_sync/internal/domain"
)

var newsPolicy = Policy{Owns: Title | Content | Image | Position, UploadPrefix: "/uploads"}

func scraped() domain.ContentCard {
	return domain.ContentCard{
		ID:       "news_abc",
		Title:    domain.Plain("Нова назва"),
		Content:  domain.Plain("Новий текст"),
		Image:    domain.Ptr("https://vsau.org/files/1.jpg"),
		Category: "news",
		Resource: domain.Ptr("https://vsau.org/novini/1"),
		Position: 2,
		Date:     time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestDecide_CreateWhenMissing(t *testing.T) {
	candidate := scraped()
	candidate.Published = false

	d := Decide(candidate, nil, newsPolicy)

	assert.Equal(t, Create, d.Action)
	assert.True(t, d.Card.Published)
	assert.Equal(t, 2, d.Card.Position)
	assert.Equal(t, domain.ImageSourceScraped, d.Card.ImageSource)
}

func TestDecide_SkipWhenUnchanged(t *testing.T) {
	existing := scraped()
	existing.Published = false
	existing.Title.EN = "New title"

	d := Decide(scraped(), &existing, newsPolicy)

	assert.Equal(t, Skip, d.Action)
	assert.Equal(t, existing, d.Card)
}

func TestDecide_UpdatePreservesAdminFields(t *testing.T) {
	existing := scraped()
	existing.Title = domain.LocalizedText{UA: "Стара назва", EN: "Old title"}
	existing.Content = domain.LocalizedText{UA: "Старий текст", EN: "Old text"}
	existing.Published = false
	existing.Subcategory = domain.Ptr("events")

	d := Decide(scraped(), &existing, newsPolicy)

	assert.Equal(t, Update, d.Action)
	assert.Equal(t, "Нова назва", d.Card.Title.UA)
	assert.Equal(t, "Old title", d.Card.Title.EN)
	assert.Equal(t, "Новий текст", d.Card.Content.UA)
	assert.Equal(t, "Old text", d.Card.Content.EN)
	assert.False(t, d.Card.Published)
	assert.Equal(t, "events", *d.Card.Subcategory)
}

func TestDecide_UpdateKeepsUploadedImage(t *testing.T) {
	existing := scraped()
	existing.Title = domain.Plain("Стара назва")
	existing.Image = domain.Ptr("/uploads/rectorat/photo.jpg")

	d := Decide(scraped(), &existing, newsPolicy)

	assert.Equal(t, Update, d.Action)
	assert.Equal(t, "/uploads/rectorat/photo.jpg", *d.Card.Image)
	assert.Equal(t, domain.ImageSourceUploaded, d.Card.ImageSource)
}

func TestDecide_UploadedImageDoesNotForceUpdate(t *testing.T) {
	existing := scraped()
	existing.Image = domain.Ptr("/uploads/news/own.jpg")

	assert.Equal(t, Skip, Decide(scraped(), &existing, newsPolicy).Action)

	existing.Image = domain.Ptr("https://vsau.org/files/other.jpg")
	existing.ImageSource = domain.ImageSourceUploaded
	assert.Equal(t, Skip, Decide(scraped(), &existing, newsPolicy).Action)
}

func TestDecide_UploadedResourceIsKept(t *testing.T) {
	existing := scraped()
	existing.Title = domain.Plain("Стара назва")
	existing.Resource = domain.Ptr("/uploads/centers/a.jpg")

	d := Decide(scraped(), &existing, newsPolicy)

	assert.Equal(t, Update, d.Action)
	assert.Equal(t, "/uploads/centers/a.jpg", *d.Card.Resource)
	assert.Equal(t, domain.ImageSourceUploaded, d.Card.ImageSource)
}

func TestDecide_UnownedFieldsIgnored(t *testing.T) {
	policy := Policy{Owns: Title | Content}
	existing := scraped()
	existing.Position = 7
	existing.Image = domain.Ptr("https://elsewhere/x.jpg")

	assert.Equal(t, Skip, Decide(scraped(), &existing, policy).Action)

	existing.Content = domain.Plain("інше")
	d := Decide(scraped(), &existing, policy)
	assert.Equal(t, Update, d.Action)
	assert.Equal(t, 7, d.Card.Position)
	assert.Equal(t, "https://elsewhere/x.jpg", *d.Card.Image)
}

func TestDecide_PositionChangeUpdates(t *testing.T) {
	existing := scraped()
	existing.Position = 0

	d := Decide(scraped(), &existing, newsPolicy)

	assert.Equal(t, Update, d.Action)
	assert.Equal(t, 2, d.Card.Position)
}

func TestDecide_ManualCardIsNeverOverwritten(t *testing.T) {
	policy := Policy{Owns: Title | Content | Image | Position, UploadPrefix: "/uploads"}
	candidate := domain.ContentCard{
		ID:       "centers_abc",
		Title:    domain.Plain("Музей"),
		Content:  domain.Plain("scraped text"),
		Image:    domain.Ptr("https://vsau.org/files/m.jpg"),
		Category: "centers",
		Resource: domain.Ptr("https://vsau.org/pro-universitet/strukturni-pidrozdili"),
		Position: 3,
	}
	existing := domain.ContentCard{
		ID:        "centers_abc",
		Title:     domain.Plain("Музей історії"),
		Content:   domain.Plain("admin-written text"),
		Category:  "centers",
		Position:  0,
		Published: true,
	}

	d := Decide(candidate, &existing, policy)

	assert.Equal(t, Skip, d.Action)
	assert.Equal(t, existing, d.Card)
	assert.Nil(t, d.Card.Resource)

	existing.Resource = domain.Ptr("")
	assert.Equal(t, Skip, Decide(candidate, &existing, policy).Action)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "create", Create.String())
	assert.Equal(t, "update", Update.String())
	assert.Equal(t, "skip", Skip.String())
}
