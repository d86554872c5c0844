package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"campus_sync/internal/domain"
)

var facultyContentSelectors = []string{
	"div.col-lg-8.mb-3",
	"div.col.pt-3.content",
}

// FacultyPage is the raw content of a faculty detail page.
type FacultyPage struct {
	Title   string
	Content string
}

// Faculty extracts the heading and the description blocks of a faculty page.
// Images inside the blocks point at absolute URLs.
func Faculty(html, pageURL string) (FacultyPage, error) {
	base, err := parseBase(pageURL)
	if err != nil {
		return FacultyPage{}, err
	}
	doc, err := parse(html)
	if err != nil {
		return FacultyPage{}, err
	}

	page := FacultyPage{Title: strings.TrimSpace(doc.Find("h1").First().Text())}

	var blocks []string
	for _, sel := range facultyContentSelectors {
		doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
			absolutizeImages(el, base)
			if h := innerHTML(el); h != "" {
				blocks = append(blocks, h)
			}
		})
	}

	if len(blocks) > 0 {
		page.Content = strings.Join(blocks, "\n\n")
		return page, nil
	}

	page.Content = innerHTML(doc.Find("body"))
	return page, domain.ErrExtractionEmpty
}
