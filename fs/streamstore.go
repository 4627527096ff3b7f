// Package fs provides file-based persistence for extraction results.
package fs

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fwojciec/pagemine"
)

// Ensure StreamStore implements pagemine.ResultStore at compile time.
var _ pagemine.ResultStore = (*StreamStore)(nil)

// StreamStore persists growing results to a pair of files: <jobID>.md for
// raw page content and <jobID>.json for extracted items. Items are appended
// as they arrive, so memory stays bounded and nothing is re-read.
//
// The JSON file is kept as a deliberately open array ("[\n" followed by
// "<item>,\n" lines) and only becomes syntactically valid when Finalize
// patches the tail. A process dying mid-run leaves an unparsable file; use
// NDJSONStore when crash-readability matters more than a conventional array
// layout.
type StreamStore struct {
	mu          sync.Mutex
	logger      *slog.Logger
	contentPath string
	dataPath    string
}

// NewStreamStore creates the content and data files for a job under dir.
// File creation failure is fatal: a run must not start without its sink.
// A nil logger falls back to slog.Default.
func NewStreamStore(dir, jobID string, logger *slog.Logger) (*StreamStore, error) {
	if jobID == "" {
		return nil, pagemine.Errorf(pagemine.EINVALID, "job ID required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &StreamStore{
		logger:      logger,
		contentPath: filepath.Join(dir, jobID+".md"),
		dataPath:    filepath.Join(dir, jobID+".json"),
	}

	header := fmt.Sprintf("# Extraction results for job: %s\nDate: %s\n\n",
		jobID, time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(s.contentPath, []byte(header), 0644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.dataPath, []byte("[\n"), 0644); err != nil {
		return nil, err
	}

	return s, nil
}

// Paths returns the content and data file paths.
func (s *StreamStore) Paths() []string {
	return []string{s.contentPath, s.dataPath}
}

// AppendContent appends text plus a blank-line separator to the content
// file. Write errors are logged and swallowed: persistence is best-effort
// and must not stop the run.
func (s *StreamStore) AppendContent(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := appendFile(s.contentPath, []byte(text+"\n\n")); err != nil {
		s.logger.Error("failed to append content", "path", s.contentPath, "err", err)
	}
	return nil
}

// AppendData appends each item's compact serialization followed by ",\n" to
// the data file. Items that fail to serialize, and write errors, are logged
// and swallowed.
func (s *StreamStore) AppendData(items []pagemine.Item) error {
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
		buf = append(buf, "  "...)
		buf = append(buf, b...)
		buf = append(buf, ",\n"...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := appendFile(s.dataPath, buf); err != nil {
		s.logger.Error("failed to append data", "path", s.dataPath, "err", err)
	}
	return nil
}

// Finalize seals the data file into a valid JSON array: a trailing comma
// (the last non-whitespace byte) is truncated away and the array is closed.
// Unlike appends, finalize errors are returned - the caller must treat a
// missing finalize as job failure.
func (s *StreamStore) Finalize() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.dataPath, os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := truncateTrailingComma(f); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return nil, err
	}
	if _, err := f.Write([]byte("\n]")); err != nil {
		return nil, err
	}
	if err := f.Sync(); err != nil {
		return nil, err
	}

	return []string{s.contentPath, s.dataPath}, nil
}

// truncateTrailingComma removes the file's trailing comma, if the last
// non-whitespace byte is one.
func truncateTrailingComma(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}

	// The open-array format only ever leaves a comma and whitespace at the
	// tail, so a small window is enough.
	const window = 16
	size := info.Size()
	off := max(size-window, 0)

	tail := make([]byte, size-off)
	if _, err := f.ReadAt(tail, off); err != nil && err != io.EOF {
		return err
	}

	for i := len(tail) - 1; i >= 0; i-- {
		switch tail[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case ',':
			return f.Truncate(off + int64(i))
		default:
			return nil
		}
	}
	return nil
}

// appendFile appends data to the file at path.
func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
