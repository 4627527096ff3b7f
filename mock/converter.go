package mock

import "github.com/fwojciec/pagemine"

var _ pagemine.Converter = (*Converter)(nil)

// Converter is a mock implementation of pagemine.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
