package fs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fwojciec/pagemine"
)

// Ensure NDJSONStore implements pagemine.ResultStore at compile time.
var _ pagemine.ResultStore = (*NDJSONStore)(nil)

// NDJSONStore persists items as newline-delimited JSON: one compact object
// per line in <jobID>.ndjson. The file is parseable at every point during a
// run, so a crash never leaves malformed output and Finalize has nothing to
// patch. The content file behaves exactly as in StreamStore.
type NDJSONStore struct {
	mu          sync.Mutex
	logger      *slog.Logger
	contentPath string
	dataPath    string
}

// NewNDJSONStore creates the content and data files for a job under dir.
func NewNDJSONStore(dir, jobID string, logger *slog.Logger) (*NDJSONStore, error) {
	if jobID == "" {
		return nil, pagemine.Errorf(pagemine.EINVALID, "job ID required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &NDJSONStore{
		logger:      logger,
		contentPath: filepath.Join(dir, jobID+".md"),
		dataPath:    filepath.Join(dir, jobID+".ndjson"),
	}

	header := fmt.Sprintf("# Extraction results for job: %s\nDate: %s\n\n",
		jobID, time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(s.contentPath, []byte(header), 0644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.dataPath, nil, 0644); err != nil {
		return nil, err
	}

	return s, nil
}

// AppendContent appends text plus a blank-line separator to the content file.
func (s *NDJSONStore) AppendContent(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := appendFile(s.contentPath, []byte(text+"\n\n")); err != nil {
		s.logger.Error("failed to append content", "path", s.contentPath, "err", err)
	}
	return nil
}

// AppendData appends one line per item to the data file.
func (s *NDJSONStore) AppendData(items []pagemine.Item) error {
	if len(items) == 0 {
		return nil
	}

	var buf []byte
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			s.logger.Error("failed to serialize item", "id", item.ID(), "err", err)
			continue
		}
		buf = append(buf, b...)
		buf = append(buf, '\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := appendFile(s.dataPath, buf); err != nil {
		s.logger.Error("failed to append data", "path", s.dataPath, "err", err)
	}
	return nil
}

// Finalize returns the file paths. The data file needs no tail patch.
func (s *NDJSONStore) Finalize() ([]string, error) {
	return []string{s.contentPath, s.dataPath}, nil
}
