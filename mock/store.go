package mock

import "github.com/fwojciec/pagemine"

var _ pagemine.ResultStore = (*ResultStore)(nil)

// ResultStore is a mock implementation of pagemine.ResultStore.
type ResultStore struct {
	AppendContentFn func(text string) error
	AppendDataFn    func(items []pagemine.Item) error
	FinalizeFn      func() ([]string, error)
}

func (s *ResultStore) AppendContent(text string) error {
	return s.AppendContentFn(text)
}

func (s *ResultStore) AppendData(items []pagemine.Item) error {
	return s.AppendDataFn(items)
}

func (s *ResultStore) Finalize() ([]string, error) {
	return s.FinalizeFn()
}
