package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/nvandessel/acsim/internal/analysis"
	"github.com/nvandessel/acsim/internal/models"
	"github.com/nvandessel/acsim/internal/store/migrations"
)

// timeLayout is RFC 3339 with fixed-width nanoseconds so stored timestamps sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRunStore keeps runs in a single SQLite file. Trajectories go in
// their own table keyed by run and position.
type SQLiteRunStore struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
}

// NewSQLiteRunStore opens or creates the database at path and applies
// pending migrations.
func NewSQLiteRunStore(path string) (*SQLiteRunStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	s := &SQLiteRunStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteRunStore) migrate() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

// SaveRun inserts the run and its trajectory in one transaction.
func (s *SQLiteRunStore) SaveRun(ctx context.Context, run *Run) (string, error) {
	if err := prepare(run); err != nil {
		return "", err
	}

	var summary []byte
	if run.Summary != nil {
		var err error
		if summary, err = json.Marshal(run.Summary); err != nil {
			return "", fmt.Errorf("store: marshal summary: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, source, readings, cumulative_energy, average_energy, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.Source,
		run.Readings,
		run.CumulativeEnergy,
		run.AverageEnergy,
		nullBytes(summary),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trajectory (run_id, seq, minute, original_temp, adjusted_temp, setting, energy_usage)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("store: prepare trajectory insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Records {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Time, r.OriginalTemp, r.AdjustedTemp, string(r.Setting), r.EnergyUsage); err != nil {
			return "", fmt.Errorf("store: insert trajectory row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit run: %w", err)
	}
	return run.ID, nil
}

// GetRun returns a run and its trajectory.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, source, readings, cumulative_energy, average_energy, summary
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT minute, original_temp, adjusted_temp, setting, energy_usage
		FROM trajectory WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("store: query trajectory: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.TrajectoryRecord
		var setting string
		if err := rows.Scan(&r.Time, &r.OriginalTemp, &r.AdjustedTemp, &setting, &r.EnergyUsage); err != nil {
			return nil, fmt.Errorf("store: scan trajectory: %w", err)
		}
		r.Setting = models.Setting(setting)
		run.Records = append(run.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate trajectory: %w", err)
	}
	return run, nil
}

// ListRuns returns every run, newest first, without trajectories.
func (s *SQLiteRunStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source, readings, cumulative_energy, average_energy, summary
		FROM runs ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate runs: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (*Run, error) {
	var run Run
	var createdAt string
	var summary sql.NullString
	if err := sc.Scan(&run.ID, &createdAt, &run.Source, &run.Readings, &run.CumulativeEnergy, &run.AverageEnergy, &summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: scan run: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("store: parse created_at %q: %w", createdAt, err)
	}
	run.CreatedAt = t

	if summary.Valid && summary.String != "" {
		var s analysis.Summary
		if err := json.Unmarshal([]byte(summary.String), &s); err != nil {
			return nil, fmt.Errorf("store: parse summary for %s: %w", run.ID, err)
		}
		run.Summary = &s
	}
	return &run, nil
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
