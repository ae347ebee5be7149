package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/physics"
	"github.com/san-kum/swesim/internal/sim"

	_ "modernc.org/sqlite"
)

// Catalog indexes runs and their per-snapshot field ranges in sqlite.
type Catalog struct {
	db *sql.DB
}

type RunRecord struct {
	ID         string
	Benchmark  string
	Integrator string
	Precision  string
	NumDofs    int
	DomainSize float64
	Dt         float64
	SimTime    float64
	Steps      int
	Status     string
	Dir        string
	CreatedAt  time.Time
	Metrics    map[string]float64
}

type SnapshotRecord struct {
	Step  int
	Time  float64
	Field string
	Min   float64
	Max   float64
}

// OpenCatalog opens or creates the catalog at dbPath. ":memory:" is accepted.
func OpenCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	schema := `
	PRAGMA foreign_keys = ON;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		benchmark TEXT NOT NULL,
		integrator TEXT NOT NULL,
		precision TEXT NOT NULL,
		num_dofs INTEGER NOT NULL,
		domain_size REAL NOT NULL,
		dt REAL NOT NULL,
		sim_time REAL NOT NULL,
		steps INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		dir TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		metrics TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		time REAL NOT NULL,
		field TEXT NOT NULL,
		min REAL NOT NULL,
		max REAL NOT NULL,
		PRIMARY KEY (run_id, step, field),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := c.db.Exec(schema)
	return err
}

// PutRun inserts or replaces a run.
func (c *Catalog) PutRun(ctx context.Context, r *RunRecord) error {
	metrics, err := json.Marshal(r.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	if r.Metrics == nil {
		metrics = []byte("{}")
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO runs (id, benchmark, integrator, precision, num_dofs, domain_size, dt, sim_time, steps, status, dir, created_at, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			steps = excluded.steps,
			status = excluded.status,
			metrics = excluded.metrics
	`, r.ID, r.Benchmark, r.Integrator, r.Precision, r.NumDofs, r.DomainSize, r.Dt, r.SimTime,
		r.Steps, r.Status, r.Dir, r.CreatedAt.UnixNano(), string(metrics))
	if err != nil {
		return fmt.Errorf("failed to upsert run %s: %w", r.ID, err)
	}
	return nil
}

// RecordSnapshot stores the range of one field at one output time.
func (c *Catalog) RecordSnapshot(ctx context.Context, runID string, s SnapshotRecord) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots (run_id, step, time, field, min, max)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, s.Step, s.Time, s.Field, s.Min, s.Max)
	if err != nil {
		return fmt.Errorf("failed to record snapshot for %s: %w", runID, err)
	}
	return nil
}

const runColumns = `id, benchmark, integrator, precision, num_dofs, domain_size, dt, sim_time, steps, status, dir, created_at, metrics`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var (
		r       RunRecord
		created int64
		metrics string
	)
	if err := row.Scan(&r.ID, &r.Benchmark, &r.Integrator, &r.Precision, &r.NumDofs, &r.DomainSize,
		&r.Dt, &r.SimTime, &r.Steps, &r.Status, &r.Dir, &created, &metrics); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, created)
	if err := json.Unmarshal([]byte(metrics), &r.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	return &r, nil
}

// ListRuns returns every run, newest first.
func (c *Catalog) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetRun returns nil, nil when id is unknown.
func (c *Catalog) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	r, err := scanRun(c.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return r, nil
}

func (c *Catalog) Snapshots(ctx context.Context, runID string) ([]SnapshotRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT step, time, field, min, max FROM snapshots
		WHERE run_id = ? ORDER BY step, field
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var s SnapshotRecord
		if err := rows.Scan(&s.Step, &s.Time, &s.Field, &s.Min, &s.Max); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *Catalog) DeleteRun(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Recorder is a sim observer that records h, v and b ranges in the catalog.
type Recorder[T grid.Float] struct {
	ctx     context.Context
	catalog *Catalog
	runID   string
}

func NewRecorder[T grid.Float](ctx context.Context, c *Catalog, runID string) *Recorder[T] {
	return &Recorder[T]{ctx: ctx, catalog: c, runID: runID}
}

func (r *Recorder[T]) Observe(s sim.Snapshot[T]) error {
	fields := []struct {
		name string
		f    *grid.Field[T]
	}{
		{"h", s.State[physics.H]},
		{"v", s.State[physics.V]},
		{"b", s.Consts[physics.B]},
	}
	for _, fld := range fields {
		rec := SnapshotRecord{
			Step:  s.Step,
			Time:  float64(s.Time),
			Field: fld.name,
			Min:   float64(fld.f.Min()),
			Max:   float64(fld.f.Max()),
		}
		if err := r.catalog.RecordSnapshot(r.ctx, r.runID, rec); err != nil {
			return err
		}
	}
	return nil
}

// RunRecordFrom summarizes run metadata for the catalog.
func RunRecordFrom(meta *RunMetadata, dir string) *RunRecord {
	return &RunRecord{
		ID:         meta.ID,
		Benchmark:  meta.Config.Benchmark,
		Integrator: meta.Config.Integrator,
		Precision:  meta.Config.Precision,
		NumDofs:    meta.Config.NumDofs,
		DomainSize: meta.Config.DomainSize,
		Dt:         meta.Dt,
		SimTime:    meta.Config.SimTime,
		Steps:      meta.Steps,
		Status:     meta.Status,
		Dir:        dir,
		CreatedAt:  meta.Timestamp,
		Metrics:    meta.Metrics,
	}
}
