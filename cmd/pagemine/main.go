package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagemine"
	"github.com/fwojciec/pagemine/crawl"
	"github.com/fwojciec/pagemine/gemini"
	"github.com/fwojciec/pagemine/htmltomarkdown"
	pmhttp "github.com/fwojciec/pagemine/http"
	"github.com/fwojciec/pagemine/openai"
	"github.com/fwojciec/pagemine/pipeline"
	"github.com/fwojciec/pagemine/readability"
	"github.com/fwojciec/pagemine/rod"
	pmslog "github.com/fwojciec/pagemine/slog"
	"github.com/fwojciec/pagemine/sqlite"
	"github.com/fwojciec/pagemine/trafilatura"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	// API keys typically live in a local .env; absence is fine.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	JobService pagemine.JobService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagemine"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pagemine --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PAGEMINE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.JobService = sqlite.NewJobService(m.DB)
	deps.DB = m.DB
	deps.Jobs = m.JobService

	// Commands that talk to a model need a provider; commands that fetch
	// pages additionally need a browser.
	needsProvider := cmd == "run" || cmd == "extract" || (cmd == "jobs" && len(args) > 1 && args[1] == "work")
	needsFetcher := cmd == "run" || (cmd == "jobs" && len(args) > 1 && args[1] == "work")

	if needsProvider {
		provider, err := newProvider(ctx, stderr)
		if err != nil {
			return err
		}
		deps.Pipeline = &pipeline.Pipeline{
			Provider: pmslog.NewLoggingProvider(provider, logger),
			Logger:   logger,
		}
	}

	if needsFetcher {
		var fetcher pagemine.Fetcher
		if cli.Run.Static || cli.Jobs.Work.Static {
			fetcher = pmhttp.NewFetcher(readability.NewExtractor(), htmltomarkdown.NewConverter())
		} else {
			browser, err := rod.NewFetcher(trafilatura.NewExtractor(), htmltomarkdown.NewConverter())
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --static for plain HTTP")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			fetcher = browser
		}
		defer fetcher.Close()

		deps.Orchestrator = &crawl.Orchestrator{
			Fetcher:     pmslog.NewLoggingFetcher(fetcher, logger),
			Pipeline:    deps.Pipeline,
			RateLimiter: crawl.NewDomainLimiter(1.0),
			Logger:      logger,
		}
	}

	return kongCtx.Run(deps)
}

// newProvider selects the extraction backend from the environment:
// GEMINI_API_KEY wins, then OPENAI_API_KEY, then OPENAI_BASE_URL for a
// local OpenAI-compatible server.
func newProvider(ctx context.Context, stderr io.Writer) (pagemine.Provider, error) {
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return gemini.NewProvider(client, gemini.Config{Model: os.Getenv("PAGEMINE_MODEL")}), nil
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		return openai.NewProvider(apiKey, openai.Config{Model: os.Getenv("PAGEMINE_MODEL")}), nil
	}

	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		return openai.NewLocalProvider(baseURL, openai.Config{Model: os.Getenv("PAGEMINE_MODEL")}), nil
	}

	fmt.Fprintln(stderr, "Set GEMINI_API_KEY, OPENAI_API_KEY, or OPENAI_BASE_URL (local server) to choose a model backend")
	return nil, fmt.Errorf("no model backend configured")
}

func defaultDBPath() string {
	if path := os.Getenv("PAGEMINE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pagemine.db"
	}
	dir := filepath.Join(home, ".pagemine")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pagemine.db")
}
