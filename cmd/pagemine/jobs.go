package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwojciec/pagemine"
	"github.com/fwojciec/pagemine/crawl"
)

// Run executes the jobs add command.
func (c *JobsAddCmd) Run(deps *Dependencies) error {
	var schemaText string
	if c.Schema != "" {
		data, err := os.ReadFile(c.Schema)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: cannot read %q: %s\n", c.Schema, err)
			return err
		}
		if !json.Valid(data) {
			err := pagemine.Errorf(pagemine.EINVALID, "schema file %q is not valid JSON", c.Schema)
			fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
			return err
		}
		schemaText = string(data)
	}

	job := &pagemine.Job{
		URL:          c.URL,
		Instruction:  c.Instruction,
		Schema:       schemaText,
		SplitPattern: c.SplitPattern,
		MaxPages:     c.MaxPages,
	}
	if err := deps.Jobs.Enqueue(deps.Ctx, job); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Enqueued job %s\n", job.ID)
	return nil
}

// Run executes the jobs list command.
func (c *JobsListCmd) Run(deps *Dependencies) error {
	filter := pagemine.JobFilter{}
	if c.Status != "" {
		status := pagemine.JobStatus(c.Status)
		switch status {
		case pagemine.JobPending, pagemine.JobRunning, pagemine.JobCompleted, pagemine.JobFailed:
		default:
			err := pagemine.Errorf(pagemine.EINVALID, "unknown status %q", c.Status)
			fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
			return err
		}
		filter.Status = &status
	}

	jobs, err := deps.Jobs.FindJobs(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(deps.Stdout, "No jobs found.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%-36s  %-9s  %s\n", "ID", "STATUS", "URL")
	for _, job := range jobs {
		fmt.Fprintf(deps.Stdout, "%-36s  %-9s  %s\n", job.ID, job.Status, job.URL)
		if job.Status == pagemine.JobFailed && job.Error != "" {
			fmt.Fprintf(deps.Stdout, "%-36s  %-9s  error: %s\n", "", "", job.Error)
		}
	}
	fmt.Fprintf(deps.Stdout, "\n%d job(s)\n", len(jobs))
	return nil
}

// Run executes the jobs work command. It drains the pending queue, running
// each job through the orchestrator in turn.
func (c *JobsWorkCmd) Run(deps *Dependencies) error {
	processed := 0
	failed := 0

	for {
		job, err := deps.Jobs.NextPending(deps.Ctx)
		if err != nil {
			if pagemine.ErrorCode(err) == pagemine.ENOTFOUND {
				break
			}
			fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
			return err
		}

		if err := deps.Jobs.MarkRunning(deps.Ctx, job.ID); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
			return err
		}

		fmt.Fprintf(deps.Stdout, "Working job %s: %s\n", job.ID, job.URL)

		files, items, err := c.work(deps, job)
		if err != nil {
			failed++
			fmt.Fprintf(deps.Stdout, "  failed: %s\n", pagemine.ErrorMessage(err))
			if markErr := deps.Jobs.MarkFailed(deps.Ctx, job.ID, pagemine.ErrorMessage(err)); markErr != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(markErr))
				return markErr
			}
			continue
		}

		processed++
		fmt.Fprintf(deps.Stdout, "  completed: %d items\n", items)
		for _, path := range files {
			fmt.Fprintf(deps.Stdout, "  %s\n", path)
		}
		if err := deps.Jobs.MarkCompleted(deps.Ctx, job.ID, files); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Queue drained: %d completed, %d failed\n", processed, failed)
	return nil
}

// work runs a single job and returns the output files and item count.
func (c *JobsWorkCmd) work(deps *Dependencies, job *pagemine.Job) ([]string, int, error) {
	var schema map[string]any
	if job.Schema != "" {
		if err := json.Unmarshal([]byte(job.Schema), &schema); err != nil {
			return nil, 0, pagemine.Errorf(pagemine.EINVALID, "job schema is not valid JSON: %v", err)
		}
	}

	store, err := newStore(c.Output, job.ID, deps.Logger, c.NDJSON)
	if err != nil {
		return nil, 0, err
	}

	result, err := deps.Orchestrator.Run(deps.Ctx, job.URL, job.Instruction, store, crawl.Options{
		Schema:       schema,
		SplitPattern: job.SplitPattern,
		MaxPages:     job.MaxPages,
		NextSelector: c.NextSelector,
		Fetch: pagemine.FetchOptions{
			WaitSelector: c.WaitSelector,
			ScrollDepth:  c.ScrollDepth,
		},
		Progress: progressPrinter(deps.Stderr),
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Files, len(result.Items), nil
}

// Run executes the jobs clear command.
func (c *JobsClearCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintln(deps.Stderr, "This removes every job from the queue. Re-run with --force to confirm.")
		return pagemine.Errorf(pagemine.EINVALID, "refusing to clear without --force")
	}

	if err := deps.Jobs.DeleteJobs(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagemine.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Queue cleared.")
	return nil
}
