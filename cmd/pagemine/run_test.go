package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/pagemine"
	main "github.com/fwojciec/pagemine/cmd/pagemine"
	"github.com/fwojciec/pagemine/crawl"
	"github.com/fwojciec/pagemine/mock"
	"github.com/fwojciec/pagemine/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd_Run(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("Spacious apartment in Ba Dinh with balcony and garden. ", 10)

	newRunDeps := func() (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		p := &pipeline.Pipeline{
			Provider: &mock.Provider{
				ExtractFn: func(_ context.Context, _, _ string, schema map[string]any) ([]pagemine.Item, error) {
					item := pagemine.Item{"id": "ba-dinh-apartment", "title": "Ba Dinh apartment"}
					if schema != nil {
						item["schema_seen"] = true
					}
					return []pagemine.Item{item}, nil
				},
			},
			Logger: logger,
		}
		return &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Logger: logger,
			Orchestrator: &crawl.Orchestrator{
				Fetcher: &mock.Fetcher{
					FetchFn: func(_ context.Context, url string, _ pagemine.FetchOptions) (*pagemine.FetchResult, error) {
						return &pagemine.FetchResult{
							URL:      url,
							Title:    "Listings",
							HTML:     "<html><body><p>" + body + "</p></body></html>",
							Markdown: body,
						}, nil
					},
				},
				Pipeline:    p,
				RateLimiter: &mock.DomainLimiter{},
				RetryDelays: []time.Duration{},
				Logger:      logger,
			},
			Pipeline: p,
		}, stdout, stderr
	}

	t.Run("extracts and writes output files", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newRunDeps()
		outDir := t.TempDir()

		cmd := &main.RunCmd{
			URL:         "https://example.com/listings",
			Instruction: "extract all property listings",
			MaxPages:    1,
			Output:      outDir,
		}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Extracted 1 items from 1 page(s)")

		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("writes ndjson output when requested", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newRunDeps()
		outDir := t.TempDir()

		cmd := &main.RunCmd{
			URL:         "https://example.com/listings",
			Instruction: "extract all property listings",
			MaxPages:    1,
			NDJSON:      true,
			Output:      outDir,
		}
		err := cmd.Run(deps)

		require.NoError(t, err)

		matches, err := filepath.Glob(filepath.Join(outDir, "*.ndjson"))
		require.NoError(t, err)
		require.Len(t, matches, 1)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		line := strings.TrimSpace(string(data))
		assert.True(t, json.Valid([]byte(line)), "each line should be a standalone JSON object")
	})

	t.Run("passes schema file through to the provider", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newRunDeps()
		outDir := t.TempDir()

		schemaPath := filepath.Join(t.TempDir(), "schema.json")
		require.NoError(t, os.WriteFile(schemaPath, []byte(`{"type":"object","properties":{"price":{"type":"string"}}}`), 0644))

		var sawSchema bool
		deps.Pipeline.Provider = &mock.Provider{
			ExtractFn: func(_ context.Context, _, _ string, schema map[string]any) ([]pagemine.Item, error) {
				sawSchema = schema != nil
				return []pagemine.Item{{"id": "x"}}, nil
			},
		}
		deps.Orchestrator.Pipeline = deps.Pipeline

		cmd := &main.RunCmd{
			URL:         "https://example.com/listings",
			Instruction: "extract prices",
			Schema:      schemaPath,
			MaxPages:    1,
			Output:      outDir,
		}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.True(t, sawSchema)
	})

	t.Run("rejects unreadable schema file", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newRunDeps()

		cmd := &main.RunCmd{
			URL:         "https://example.com",
			Instruction: "extract",
			Schema:      "/nonexistent/schema.json",
			Output:      t.TempDir(),
		}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, pagemine.EINVALID, pagemine.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("surfaces fetch failures", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newRunDeps()
		deps.Orchestrator.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string, _ pagemine.FetchOptions) (*pagemine.FetchResult, error) {
				return nil, pagemine.Errorf(pagemine.EUNAVAILABLE, "connection refused")
			},
		}

		cmd := &main.RunCmd{
			URL:         "https://example.com",
			Instruction: "extract",
			Output:      t.TempDir(),
		}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "connection refused")
	})
}

func TestExtractCmd_Run(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("Modern villa in Long Bien with private pool and garage. ", 10)

	t.Run("extracts from a local file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.md")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))

		var gotContent string
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Logger: logger,
			Pipeline: &pipeline.Pipeline{
				Provider: &mock.Provider{
					ExtractFn: func(_ context.Context, content, _ string, _ map[string]any) ([]pagemine.Item, error) {
						gotContent = content
						return []pagemine.Item{{"id": "long-bien-villa"}}, nil
					},
				},
				Logger: logger,
			},
		}

		cmd := &main.ExtractCmd{
			File:        path,
			Instruction: "extract villas",
			Output:      t.TempDir(),
		}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, gotContent, "Long Bien")
		assert.Contains(t, stdout.String(), "Extracted 1 items")
	})

	t.Run("errors on missing file", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		}

		cmd := &main.ExtractCmd{
			File:        "/nonexistent/page.md",
			Instruction: "extract",
			Output:      t.TempDir(),
		}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
