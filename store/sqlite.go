package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/katalvlaran/ssis/sis"
)

// ErrRunNotFound indicates an unknown run ID.
var ErrRunNotFound = errors.New("store: run not found")

// Run kinds.
const (
	KindTrial     = "trial"
	KindAggregate = "aggregate"
)

// snapshotBatch is the number of buffered snapshots per insert transaction.
const snapshotBatch = 512

// RunInfo describes one simulation invocation.
type RunInfo struct {
	ID        string
	Kind      string
	Label     string
	Graph     string
	Nodes     int
	Seed      int64
	Config    sis.Config
	CreatedAt time.Time
}

// SQLite stores runs in a SQLite database file.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if needed) the database at path and initializes
// the schema.
func Open(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateRun records info, assigning a fresh UUID when info.ID is empty and
// the current time when CreatedAt is zero. It returns a RunWriter that
// appends the run's snapshots.
func (s *SQLite) CreateRun(ctx context.Context, info RunInfo) (*RunWriter, error) {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}
	params, err := json.Marshal(info.Config)
	if err != nil {
		return nil, fmt.Errorf("encoding run params: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, label, mode, graph, nodes, seed, params, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.Kind, info.Label, info.Config.Mode.String(), info.Graph, info.Nodes, info.Seed,
		string(params), info.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}

	return &RunWriter{store: s, ctx: ctx, info: info}, nil
}

// GetRun returns a stored run.
func (s *SQLite) GetRun(ctx context.Context, id string) (RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, label, graph, nodes, seed, params, created_at
		FROM runs WHERE id = ?`, id)
	info, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("GetRun(%s): %w", id, ErrRunNotFound)
	}

	return info, err
}

// ListRuns returns all runs, oldest first.
func (s *SQLite) ListRuns(ctx context.Context) ([]RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, label, graph, nodes, seed, params, created_at
		FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}

	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunInfo, error) {
	var (
		info    RunInfo
		params  string
		created string
	)
	if err := sc.Scan(&info.ID, &info.Kind, &info.Label, &info.Graph, &info.Nodes, &info.Seed, &params, &created); err != nil {
		return RunInfo{}, err
	}
	if err := json.Unmarshal([]byte(params), &info.Config); err != nil {
		return RunInfo{}, fmt.Errorf("decoding run params: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return RunInfo{}, fmt.Errorf("decoding run time: %w", err)
	}
	info.CreatedAt = t

	return info, nil
}

// Snapshots returns the snapshots of a run in write order.
func (s *SQLite) Snapshots(ctx context.Context, runID string) ([]sis.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT label, t, fraction FROM snapshots WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []sis.Snapshot
	for rows.Next() {
		var snap sis.Snapshot
		if err := rows.Scan(&snap.Label, &snap.T, &snap.Fraction); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}

	return out, rows.Err()
}

// SaveSummary stores (or replaces) the summary of a run.
func (s *SQLite) SaveSummary(ctx context.Context, runID string, sum sis.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO summaries (run_id, trials, mean, stddev, extinct, mean_extinction_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, sum.Trials, sum.Mean, sum.StdDev, sum.Extinct, sum.MeanExtinctionTime)
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}

	return nil
}

// Summary returns the stored summary of a run; per-trial results are not
// persisted.
func (s *SQLite) Summary(ctx context.Context, runID string) (sis.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum sis.Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT trials, mean, stddev, extinct, mean_extinction_time
		FROM summaries WHERE run_id = ?`, runID).
		Scan(&sum.Trials, &sum.Mean, &sum.StdDev, &sum.Extinct, &sum.MeanExtinctionTime)
	if errors.Is(err, sql.ErrNoRows) {
		return sis.Summary{}, fmt.Errorf("Summary(%s): %w", runID, ErrRunNotFound)
	}

	return sum, err
}

// insertSnapshots writes a batch in one transaction.
func (s *SQLite) insertSnapshots(ctx context.Context, runID string, firstSeq int, snaps []sis.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshots (run_id, seq, label, t, fraction) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer stmt.Close()

	for i, snap := range snaps {
		if _, err := stmt.ExecContext(ctx, runID, firstSeq+i, snap.Label, snap.T, snap.Fraction); err != nil {
			return fmt.Errorf("inserting snapshot: %w", err)
		}
	}

	return tx.Commit()
}

// RunWriter buffers the snapshots of one run and flushes them in batches.
// It implements sis.Sink and is safe for concurrent use.
type RunWriter struct {
	store *SQLite
	ctx   context.Context
	info  RunInfo

	mu      sync.Mutex
	pending []sis.Snapshot
	written int
}

// ID returns the run ID.
func (w *RunWriter) ID() string { return w.info.ID }

// Info returns the recorded run description.
func (w *RunWriter) Info() RunInfo { return w.info }

// WriteSnapshot implements sis.Sink.
func (w *RunWriter) WriteSnapshot(snap sis.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, snap)
	if len(w.pending) >= snapshotBatch {
		return w.flushLocked()
	}

	return nil
}

// Flush writes all buffered snapshots.
func (w *RunWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.flushLocked()
}

func (w *RunWriter) flushLocked() error {
	if len(w.pending) == 0 {
		return nil
	}
	if err := w.store.insertSnapshots(w.ctx, w.info.ID, w.written, w.pending); err != nil {
		return err
	}
	w.written += len(w.pending)
	w.pending = w.pending[:0]

	return nil
}

var _ sis.Sink = (*RunWriter)(nil)
