package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"campus_sync/internal/domain"
)

// CenterEntry is one collapsible block of the structural units page.
type CenterEntry struct {
	Title   string
	Content string
	Image   *string
}

// Centers extracts the structural units listing. Content is kept as HTML with
// responsive, absolute images.
func Centers(html, baseURL string) ([]CenterEntry, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	var entries []CenterEntry
	doc.Find(".card-outline").Each(func(_ int, el *goquery.Selection) {
		title := strings.TrimSpace(el.Find("button").Text())
		if title == "" {
			return
		}

		body := el.Find(".card-body")
		absolutizeImages(body, base)
		body.Find("img").AddClass("img-fluid").SetAttr("style", "max-width: 100%; height: auto;")

		entry := CenterEntry{Title: title, Content: innerHTML(body)}
		if src, ok := body.Find("img").First().Attr("src"); ok && src != "" {
			entry.Image = domain.Ptr(src)
		}

		entries = append(entries, entry)
	})

	return entries, nil
}
