// Package store archives simulation runs.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nvandessel/acsim/internal/analysis"
	"github.com/nvandessel/acsim/internal/constants"
	"github.com/nvandessel/acsim/internal/models"
)

var (
	// ErrRunNotFound is returned by GetRun for an unknown ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrStoreClosed is returned when using a closed store.
	ErrStoreClosed = errors.New("store is closed")
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Run is one archived simulation.
type Run struct {
	ID               string                    `json:"id"`
	CreatedAt        time.Time                 `json:"created_at"`
	Source           string                    `json:"source,omitempty"`
	Readings         int                       `json:"readings"`
	CumulativeEnergy float64                   `json:"cumulative_energy"`
	AverageEnergy    float64                   `json:"average_energy"`
	Summary          *analysis.Summary         `json:"summary,omitempty"`
	Records          []models.TrajectoryRecord `json:"records,omitempty"`
}

// RunStore persists runs.
type RunStore interface {
	// SaveRun stores run and returns its ID. An empty ID or zero CreatedAt
	// is filled in.
	SaveRun(ctx context.Context, run *Run) (string, error)

	// GetRun returns a run including its trajectory.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns all runs, newest first, without trajectories.
	ListRuns(ctx context.Context) ([]Run, error)

	Close() error
}

// NewRunID returns a new lexically sortable run ID.
func NewRunID() string {
	return ulid.Make().String()
}

// Open opens the run archive in dataDir with the named backend.
func Open(dataDir, backend string) (RunStore, error) {
	switch backend {
	case "", BackendFile:
		return NewFileRunStore(filepath.Join(dataDir, constants.RunsFileName))
	case BackendSQLite:
		return NewSQLiteRunStore(filepath.Join(dataDir, constants.RunsDBFileName))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// prepare fills in defaults before a run is written.
func prepare(run *Run) error {
	if run == nil {
		return errors.New("nil run")
	}
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Readings == 0 {
		run.Readings = len(run.Records)
	}
	return nil
}

// header returns run without its trajectory.
func header(run Run) Run {
	run.Records = nil
	return run
}
