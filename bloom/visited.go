// Package bloom tracks which page URLs a paginated scrape has already
// visited. Listing sites routinely link "next" back to an earlier page once
// pagination runs out; probing a Bloom filter before following a link breaks
// those cycles without holding every URL in memory.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// VisitedSet is a probabilistic set of visited page URLs. Seen may report a
// false positive (a never-visited URL claimed as visited, ending pagination
// a page early at worst) but never a false negative, so a crawl can never
// loop.
type VisitedSet struct {
	f *bloom.BloomFilter
}

// NewVisitedSet sizes a set for the expected number of pages in a crawl at
// the given false positive rate.
func NewVisitedSet(expectedPages uint, fpRate float64) *VisitedSet {
	return &VisitedSet{
		f: bloom.NewWithEstimates(expectedPages, fpRate),
	}
}

// Visit records a page URL as visited.
func (s *VisitedSet) Visit(url string) {
	s.f.AddString(url)
}

// Seen reports whether the URL has (probably) been visited.
func (s *VisitedSet) Seen(url string) bool {
	return s.f.TestString(url)
}

// ApproxPages returns the approximate number of distinct URLs visited.
func (s *VisitedSet) ApproxPages() uint {
	return uint(s.f.ApproximatedSize())
}
