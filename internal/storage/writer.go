package storage

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/san-kum/swesim/internal/config"
	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/physics"
	"github.com/san-kum/swesim/internal/sim"
)

// Writer is a sim observer that writes h, v and b at every snapshot and
// keeps the run's metadata.json current.
type Writer[T grid.Float] struct {
	store  *Store
	meta   *RunMetadata
	fields bool
}

func NewWriter[T grid.Float](st *Store, cfg *config.Config) (*Writer[T], error) {
	now := time.Now()
	meta := &RunMetadata{
		ID:        NewRunID(cfg, now),
		Timestamp: now,
		Config:    *cfg,
		Dt:        cfg.EffectiveDt(),
		Times:     []float64{},
		Status:    StatusRunning,
		Metrics:   map[string]float64{},
	}
	if err := st.SaveMetadata(meta); err != nil {
		return nil, fmt.Errorf("storage: create run: %w", err)
	}
	return &Writer[T]{store: st, meta: meta, fields: cfg.WriteOutput}, nil
}

func (w *Writer[T]) ID() string             { return w.meta.ID }
func (w *Writer[T]) Dir() string            { return w.store.Dir(w.meta.ID) }
func (w *Writer[T]) Metadata() *RunMetadata { return w.meta }

// Observe writes the snapshot files, then records t in metadata.json so an
// interrupted run lists only snapshots that exist.
func (w *Writer[T]) Observe(s sim.Snapshot[T]) error {
	t := float64(s.Time)
	if err := w.writeFields(s, t); err != nil {
		return err
	}
	w.meta.Times = append(w.meta.Times, t)
	return w.store.SaveMetadata(w.meta)
}

func (w *Writer[T]) writeFields(s sim.Snapshot[T], t float64) error {
	if !w.fields {
		return nil
	}

	fields := map[string]*grid.Field[T]{
		"h": s.State[physics.H],
		"v": s.State[physics.V],
		"b": s.Consts[physics.B],
	}
	for name, f := range fields {
		if err := f.ToFile(filepath.Join(w.Dir(), SnapshotFile(name, t))); err != nil {
			return err
		}
	}
	return nil
}

// Finish records the outcome of the run in metadata.json.
func (w *Writer[T]) Finish(res *sim.Result, runErr error) error {
	if res != nil {
		w.meta.Steps = res.Steps
		w.meta.Metrics = finite(res.Metrics)
	}
	w.meta.Status = StatusCompleted
	if runErr != nil {
		w.meta.Status = StatusFailed
		w.meta.Error = runErr.Error()
	}
	return w.store.SaveMetadata(w.meta)
}

// finite drops values JSON cannot encode, as left behind by a blown up run.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}
