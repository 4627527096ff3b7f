// Package readability provides a pagemine.Extractor backed by
// go-readability. It is lighter than the trafilatura extractor and works
// well on simple listing pages; prefer trafilatura when pages carry heavy
// boilerplate.
package readability

import (
	"strings"

	"github.com/fwojciec/pagemine"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements pagemine.Extractor at compile time.
var _ pagemine.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*pagemine.ExtractResult, error) {
	if rawHTML == "" {
		return nil, pagemine.Errorf(pagemine.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, pagemine.Errorf(pagemine.EINTERNAL, "readability extraction failed: %v", err)
	}

	return &pagemine.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
