package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/pagemine"
	"github.com/fwojciec/pagemine/pipeline"
	"github.com/google/uuid"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	schema, err := loadSchema(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: cannot read %q: %s\n", c.File, err)
		return err
	}

	runID := uuid.New().String()
	store, err := newStore(c.Output, runID, deps.Logger, c.NDJSON)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	if err := store.AppendContent(string(data)); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	items, err := deps.Pipeline.Run(deps.Ctx, string(data), c.Instruction, pipeline.Options{
		Schema:       schema,
		SplitPattern: c.SplitPattern,
		Progress: func(percent int) {
			fmt.Fprintf(deps.Stderr, "  %d%%\n", percent)
		},
		OnChunk: func(chunk []pagemine.Item) {
			if err := store.AppendData(chunk); err != nil {
				deps.Logger.Warn("data append failed", "err", err)
			}
		},
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	files, err := store.Finalize()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Extracted %d items from %s\n", len(items), c.File)
	for _, path := range files {
		fmt.Fprintf(deps.Stdout, "  %s\n", path)
	}
	return nil
}
