package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fwojciec/pagemine"
	"github.com/fwojciec/pagemine/crawl"
	"github.com/fwojciec/pagemine/fs"
	"github.com/google/uuid"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	schema, err := loadSchema(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	runID := uuid.New().String()
	store, err := newStore(c.Output, runID, deps.Logger, c.NDJSON)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	result, err := deps.Orchestrator.Run(deps.Ctx, c.URL, c.Instruction, store, crawl.Options{
		Schema:       schema,
		SplitPattern: c.SplitPattern,
		MaxPages:     c.MaxPages,
		NextSelector: c.NextSelector,
		Fetch: pagemine.FetchOptions{
			WaitSelector: c.WaitSelector,
			ScrollDepth:  c.ScrollDepth,
		},
		Progress: progressPrinter(deps.Stderr),
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	printRunResult(deps.Stdout, result)
	return nil
}

// newStore builds the result sink for a run. NDJSON keeps the data file
// parseable line by line even if the process dies mid-run.
func newStore(dir, id string, logger *slog.Logger, ndjson bool) (pagemine.ResultStore, error) {
	if ndjson {
		return fs.NewNDJSONStore(dir, id, logger)
	}
	return fs.NewStreamStore(dir, id, logger)
}

// loadSchema reads a JSON schema file and parses it as an object. An empty
// path means no schema.
func loadSchema(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pagemine.Errorf(pagemine.EINVALID, "cannot read schema file %q: %v", path, err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, pagemine.Errorf(pagemine.EINVALID, "schema file %q is not valid JSON: %v", path, err)
	}
	return schema, nil
}

// progressPrinter returns a progress callback that narrates the run.
func progressPrinter(w io.Writer) crawl.ProgressFunc {
	return func(ev crawl.ProgressEvent) {
		switch ev.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(w, "Starting: %s\n", ev.URL)
		case crawl.ProgressBatch:
			fmt.Fprintf(w, "  page %d: %d%%\n", ev.Page, ev.Percent)
		case crawl.ProgressPageCompleted:
			fmt.Fprintf(w, "Page %d done: %d items\n", ev.Page, ev.Items)
		case crawl.ProgressPageFailed:
			fmt.Fprintf(w, "Page %d failed: %s\n", ev.Page, pagemine.ErrorMessage(ev.Error))
		case crawl.ProgressFinished:
			fmt.Fprintf(w, "Done: %d pages, %d items\n", ev.Page, ev.Items)
		}
	}
}

func printRunResult(w io.Writer, result *crawl.Result) {
	fmt.Fprintf(w, "Extracted %d items from %d page(s)\n", len(result.Items), result.Pages)
	for _, path := range result.Files {
		fmt.Fprintf(w, "  %s\n", path)
	}
}
