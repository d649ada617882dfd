// Package logging provides leveled logging and decision tracing for acsim.
//
// Operational output goes to a leveled slog.Logger (stderr by default).
// Per-minute control decisions and preference updates can additionally be
// traced to .acsim/decisions.jsonl through a DecisionLogger.
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/acsim/internal/constants"
)

// LevelTrace is a custom slog level below Debug. At this level every
// simulated minute is logged, not just run summaries.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything. Handy in tests and for
// library callers that pass no logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// DecisionLogger appends structured decision events to a JSONL file.
// A nil DecisionLogger is valid; every method is a no-op on a nil receiver.
type DecisionLogger struct {
	mu   sync.Mutex
	file *os.File
	n    int
}

// NewDecisionLogger opens dir/decisions.jsonl for append.
// At "info" level it returns nil and creates nothing. It also returns nil
// when the file cannot be opened; tracing is best effort.
func NewDecisionLogger(dir string, level string) *DecisionLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}

	path := filepath.Join(dir, constants.DecisionsFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}

	return &DecisionLogger{file: f}
}

// Log writes one event line. "event" and "time" keys are added; the caller's
// map is not mutated.
func (dl *DecisionLogger) Log(event string, fields map[string]any) {
	if dl == nil || dl.file == nil {
		return
	}

	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = event
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if _, err := dl.file.Write(data); err == nil {
		dl.n++
	}
}

// Count returns the number of events written so far.
func (dl *DecisionLogger) Count() int {
	if dl == nil {
		return 0
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	return dl.n
}

// Close closes the underlying file.
func (dl *DecisionLogger) Close() {
	if dl == nil || dl.file == nil {
		return
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.file.Close()
	dl.file = nil
}
