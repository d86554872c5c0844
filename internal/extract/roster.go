package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"campus_sync/internal/domain"
	"campus_sync/internal/normalize"
)

// RosterEntry is one person on the rectorate page. RoleText and PhoneText are raw.
type RosterEntry struct {
	Name      string
	RoleText  string
	PhoneText string
	Image     *string
}

// Rectorate extracts the people listed on the rectorate roster page.
func Rectorate(html, baseURL string) ([]RosterEntry, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	var entries []RosterEntry
	doc.Find("div.row.mb-2.py-2").Each(func(_ int, el *goquery.Selection) {
		name := strings.TrimSpace(el.Find("p.h5.font-weight-bold").Text())
		if name == "" {
			return
		}

		var lines []string
		el.Find("div.col p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				lines = append(lines, text)
			}
		})

		entry := RosterEntry{Name: name}
		for _, line := range lines {
			if line == name {
				continue
			}
			if normalize.IsPhoneLine(line) {
				if entry.PhoneText == "" {
					entry.PhoneText = line
				}
				continue
			}
			if entry.RoleText == "" && !strings.Contains(strings.ToLower(line), "тел") {
				entry.RoleText = line
			}
		}

		if img := el.Find("img.img-fluid").First(); img.Length() > 0 {
			if src := imageSrc(img); src != "" {
				entry.Image = domain.Ptr(ResolveURL(base, src))
			}
		}

		entries = append(entries, entry)
	})

	return entries, nil
}
