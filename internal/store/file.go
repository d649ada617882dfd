package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// maxLineSize bounds one archived run (a day of records is well under 1MB).
const maxLineSize = 16 * 1024 * 1024

// FileRunStore keeps runs in a JSONL file, one run per line, appended in
// save order. The whole archive is loaded on open.
type FileRunStore struct {
	mu     sync.RWMutex
	path   string
	runs   []Run
	closed bool

	// LoadErrors records malformed lines that were skipped while loading.
	LoadErrors []LoadError
}

// LoadError represents an error encountered while loading data from disk.
type LoadError struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
	Error   string `json:"error"`
}

// NewFileRunStore opens (or prepares to create) the archive at path.
func NewFileRunStore(path string) (*FileRunStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileRunStore{path: path}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	return s, nil
}

func (s *FileRunStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var run Run
		if err := json.Unmarshal(line, &run); err != nil {
			s.LoadErrors = append(s.LoadErrors, LoadError{
				File:    s.path,
				Line:    lineNum,
				Content: truncateForError(string(line)),
				Error:   err.Error(),
			})
			continue
		}
		s.runs = append(s.runs, run)
	}
	return scanner.Err()
}

// SaveRun appends run to the archive.
func (s *FileRunStore) SaveRun(ctx context.Context, run *Run) (string, error) {
	if err := prepare(run); err != nil {
		return "", err
	}

	data, err := json.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrStoreClosed
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open runs file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write run: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close runs file: %w", err)
	}

	s.runs = append(s.runs, *run)
	return run.ID, nil
}

// GetRun returns the run with id. If the ID was saved more than once the
// latest line wins.
func (s *FileRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].ID == id {
			run := s.runs[i]
			return &run, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
}

// ListRuns returns every run, newest first.
func (s *FileRunStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	seen := make(map[string]bool, len(s.runs))
	out := make([]Run, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		if seen[s.runs[i].ID] {
			continue
		}
		seen[s.runs[i].ID] = true
		out = append(out, header(s.runs[i]))
	}
	sortNewestFirst(out)
	return out, nil
}

// Close releases the store. Runs are written on save, so nothing is flushed.
func (s *FileRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.runs = nil
	return nil
}

func sortNewestFirst(runs []Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID > runs[j].ID
	})
}

// truncateForError shortens content for error messages.
func truncateForError(s string) string {
	const maxLen = 100
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
