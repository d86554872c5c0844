package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"campus_sync/internal/domain"
)

// NewsListItem is one entry of the news listing page.
type NewsListItem struct {
	Title    string
	Link     string
	Image    *string
	DateText string
}

// NewsList extracts listing entries. Containers without a link are decorative
// and skipped.
func NewsList(html, baseURL string) ([]NewsListItem, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	var items []NewsListItem
	doc.Find("div.node.clearfix").Each(func(_ int, el *goquery.Selection) {
		link := el.Find("a[href]").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")

		item := NewsListItem{
			Title:    strings.TrimSpace(link.Text()),
			Link:     ResolveURL(base, href),
			DateText: el.Find("p.my-2").Text(),
		}
		if img := el.Find("img.logo").First(); img.Length() > 0 {
			item.Image = domain.Ptr(ResolveURL(base, imageSrc(img)))
		}
		items = append(items, item)
	})

	return items, nil
}

// NewsArticle extracts the article body text, one paragraph per block.
func NewsArticle(html string) (string, error) {
	doc, err := parse(html)
	if err != nil {
		return "", err
	}

	var paragraphs []string
	doc.Find("div.content p:not(.d-none)").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n"), nil
	}

	if text := strings.TrimSpace(doc.Find("div.content").Text()); text != "" {
		return text, domain.ErrExtractionEmpty
	}
	return strings.TrimSpace(doc.Find("body").Text()), domain.ErrExtractionEmpty
}
