// Package goquery implements pagination link discovery using CSS selectors.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagemine"
)

// nextLinkTexts are anchor texts commonly used for "next page" links,
// compared case-insensitively after trimming.
var nextLinkTexts = map[string]bool{
	"next":      true,
	"next page": true,
	"next »":    true,
	"next ›":    true,
	"»":         true,
	"›":         true,
	"→":         true,
	">":         true,
	">>":        true,
	"older":     true,
}

// NextURL finds the next-page URL in the given HTML. When selector is
// non-empty it is tried first; otherwise discovery falls back to rel="next"
// markers and then to common next-link anchor texts.
//
// Returns an empty string when no next page can be found. Links pointing
// back at baseURL itself or to a different host are ignored, so pagination
// cannot loop on the same page or walk off the site.
func NextURL(html string, selector string, baseURL string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", pagemine.Errorf(pagemine.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", pagemine.Errorf(pagemine.EINVALID, "failed to parse HTML: %v", err)
	}

	if selector != "" {
		if next := hrefFromSelection(doc.Find(selector).First(), base); next != "" {
			return next, nil
		}
	}

	for _, sel := range []string{`a[rel="next"]`, `link[rel="next"]`} {
		if next := hrefFromSelection(doc.Find(sel).First(), base); next != "" {
			return next, nil
		}
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if !nextLinkTexts[text] {
			return true
		}
		if next := hrefFromSelection(sel, base); next != "" {
			found = next
			return false
		}
		return true
	})

	return found, nil
}

// hrefFromSelection extracts and resolves the href of a selection, looking
// into a nested anchor when the matched element carries no href itself.
func hrefFromSelection(sel *goquery.Selection, base *url.URL) string {
	if sel.Length() == 0 {
		return ""
	}

	href, exists := sel.Attr("href")
	if !exists || href == "" {
		href, exists = sel.Find("a[href]").First().Attr("href")
		if !exists || href == "" {
			return ""
		}
	}

	if isNonHTTPLink(href) {
		return ""
	}

	resolved := resolveURL(base, href)
	if resolved == "" {
		return ""
	}
	if !isSameHost(base, resolved) {
		return ""
	}
	return resolved
}
