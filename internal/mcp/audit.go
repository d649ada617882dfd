package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/acsim/internal/constants"
)

// AuditEntry records one MCP tool invocation. File paths are never logged,
// only whether they were given.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tool       string            `json:"tool"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success" or "error"
	Error      string            `json:"error,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// AuditLogger appends entries to <data dir>/audit.jsonl. It is safe for
// concurrent use. A nil AuditLogger is valid; all methods are no-ops on a nil
// receiver.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewAuditLogger opens the audit log in dataDir. If the file cannot be
// created a warning is printed to stderr and nil is returned.
func NewAuditLogger(dataDir string) *AuditLogger {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create audit log directory %s: %v\n", dataDir, err)
		return nil
	}

	path := filepath.Join(dataDir, constants.AuditFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open audit log %s: %v\n", path, err)
		return nil
	}

	return &AuditLogger{file: f}
}

// Log appends entry as a single JSON line.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return
	}
	_, _ = a.file.Write(data)
}

// Close closes the log file.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// presenceOnlyParams may carry file paths; only their presence is logged.
var presenceOnlyParams = map[string]bool{
	"results": true,
}

// toolParams turns tool arguments into audit metadata. Zero values are
// skipped and a "_param_count" key is always present.
func toolParams(params map[string]any) map[string]string {
	result := make(map[string]string, len(params)+1)
	count := 0
	for key, val := range params {
		s := formatParam(val)
		if s == "" {
			continue
		}
		count++
		if presenceOnlyParams[key] {
			result[key] = "(set)"
			continue
		}
		result[key] = s
	}
	result["_param_count"] = fmt.Sprintf("%d", count)
	return result
}

func formatParam(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case *float64:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%g", *v)
	case []float64:
		if len(v) == 0 {
			return ""
		}
		return fmt.Sprintf("%d values", len(v))
	case int:
		if v == 0 {
			return ""
		}
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// auditTool logs a tool invocation.
func (s *Server) auditTool(toolName string, start time.Time, err error, params map[string]string) {
	status := "success"
	errMsg := ""
	if err != nil {
		status = "error"
		errMsg = err.Error()
	}

	s.audit.Log(AuditEntry{
		Timestamp:  start,
		Tool:       toolName,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     status,
		Error:      errMsg,
		Params:     params,
	})

	if err != nil {
		s.logger.Warn("mcp tool failed", "tool", toolName, "error", err)
	} else {
		s.logger.Debug("mcp tool call", "tool", toolName, "params", sortedKeys(params))
	}
}

func sortedKeys(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
