package pagemine

// ResultStore persists growing extraction results without holding the full
// result set in memory and without re-reading previously written data.
//
// Implementations must be safe for concurrent use: batches complete in
// arbitrary order and may append from the pipeline's collector while page
// content arrives from the orchestrator.
type ResultStore interface {
	// AppendContent appends raw page content (markdown) to storage.
	AppendContent(text string) error

	// AppendData appends extracted items to storage.
	AppendData(items []Item) error

	// Finalize seals storage into its valid on-disk format and returns the
	// paths written. A store that is never finalized must be treated as a
	// failed job: its data file may not parse.
	Finalize() ([]string, error)
}
