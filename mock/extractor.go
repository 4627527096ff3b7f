package mock

import "github.com/fwojciec/pagemine"

var _ pagemine.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of pagemine.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*pagemine.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*pagemine.ExtractResult, error) {
	return e.ExtractFn(html)
}
