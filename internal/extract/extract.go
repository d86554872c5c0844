// Package extract pulls structured fields out of upstream university pages.
//
// Each recipe works on one page type. Recipes that fall back to a degraded
// extraction return the degraded value together with domain.ErrExtractionEmpty,
// which callers treat as a warning.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ResolveURL makes ref absolute against base. Protocol-relative, root-relative
// and path-relative references are supported; an unparsable ref is returned as is.
func ResolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() {
		return u.String()
	}
	if strings.HasPrefix(ref, "//") && base.Scheme == "" {
		u.Scheme = "https"
		return u.String()
	}
	return base.ResolveReference(u).String()
}

func imageSrc(s *goquery.Selection) string {
	if src, ok := s.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return src
	}
	src, _ := s.Attr("data-src")
	return src
}

// absolutizeImages rewrites every img src under s to an absolute URL.
func absolutizeImages(s *goquery.Selection, base *url.URL) {
	s.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src := imageSrc(img); src != "" {
			img.SetAttr("src", ResolveURL(base, src))
		}
	})
}

func innerHTML(s *goquery.Selection) string {
	h, err := s.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}

func parseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	return u, nil
}
