package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/pagemine"
	"github.com/fwojciec/pagemine/crawl"
	"github.com/fwojciec/pagemine/pipeline"
	"github.com/fwojciec/pagemine/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	DB           *sqlite.DB
	Jobs         pagemine.JobService
	Orchestrator *crawl.Orchestrator
	Pipeline     *pipeline.Pipeline
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Run     RunCmd     `cmd:"" help:"Fetch a URL and extract structured data"`
	Extract ExtractCmd `cmd:"" help:"Extract structured data from a local markdown file"`
	Jobs    JobsCmd    `cmd:"" help:"Manage the extraction job queue"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URL         string `arg:"" help:"Page URL to scrape"`
	Instruction string `arg:"" help:"What to extract, in plain language"`

	Schema       string `short:"s" help:"Path to a JSON schema file used as an output hint"`
	SplitPattern string `help:"Custom regexp for content segmentation"`
	MaxPages     int    `short:"m" default:"1" help:"Maximum pages to follow via pagination"`
	NextSelector string `help:"CSS selector for the next-page link"`
	WaitSelector string `help:"CSS selector to wait for before reading the page"`
	ScrollDepth  int    `help:"Scroll-to-bottom passes to trigger lazy content"`
	Static       bool   `help:"Fetch over plain HTTP without a browser (no JavaScript)"`
	NDJSON       bool   `name:"ndjson" help:"Write items as newline-delimited JSON instead of a JSON array"`
	Output       string `short:"o" default:"results" help:"Output directory"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	File        string `arg:"" help:"Markdown file to extract from"`
	Instruction string `arg:"" help:"What to extract, in plain language"`

	Schema       string `short:"s" help:"Path to a JSON schema file used as an output hint"`
	SplitPattern string `help:"Custom regexp for content segmentation"`
	NDJSON       bool   `name:"ndjson" help:"Write items as newline-delimited JSON instead of a JSON array"`
	Output       string `short:"o" default:"results" help:"Output directory"`
}

// JobsCmd groups the job queue subcommands.
type JobsCmd struct {
	Add   JobsAddCmd   `cmd:"" help:"Enqueue an extraction job"`
	List  JobsListCmd  `cmd:"" help:"List jobs in the queue"`
	Work  JobsWorkCmd  `cmd:"" help:"Process pending jobs until the queue is empty"`
	Clear JobsClearCmd `cmd:"" help:"Remove all jobs from the queue"`
}

// JobsAddCmd is the "jobs add" subcommand.
type JobsAddCmd struct {
	URL         string `arg:"" help:"Page URL to scrape"`
	Instruction string `arg:"" help:"What to extract, in plain language"`

	Schema       string `short:"s" help:"Path to a JSON schema file used as an output hint"`
	SplitPattern string `help:"Custom regexp for content segmentation"`
	MaxPages     int    `short:"m" default:"1" help:"Maximum pages to follow via pagination"`
}

// JobsListCmd is the "jobs list" subcommand.
type JobsListCmd struct {
	Status string `help:"Filter by status (pending, running, completed, failed)"`
}

// JobsWorkCmd is the "jobs work" subcommand.
type JobsWorkCmd struct {
	NextSelector string `help:"CSS selector for the next-page link"`
	WaitSelector string `help:"CSS selector to wait for before reading the page"`
	ScrollDepth  int    `help:"Scroll-to-bottom passes to trigger lazy content"`
	Static       bool   `help:"Fetch over plain HTTP without a browser (no JavaScript)"`
	NDJSON       bool   `name:"ndjson" help:"Write items as newline-delimited JSON instead of a JSON array"`
	Output       string `short:"o" default:"results" help:"Output directory"`
}

// JobsClearCmd is the "jobs clear" subcommand.
type JobsClearCmd struct {
	Force bool `help:"Confirm deletion"`
}
