// Package storage persists runs: snapshot files and metadata.json in one
// directory per run, plus a sqlite catalog of all runs.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/swesim/internal/config"
	"github.com/san-kum/swesim/internal/grid"
)

const (
	MetadataFile = "metadata.json"
	CatalogFile  = "catalog.db"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

func (s *Store) CatalogPath() string {
	return filepath.Join(s.baseDir, CatalogFile)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Config    config.Config      `json:"config"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

func NewRunID(cfg *config.Config, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d", cfg.Benchmark, cfg.Integrator, now.UnixNano())
}

// SnapshotFile names the file holding field at simulation time t.
func SnapshotFile(field string, t float64) string {
	return fmt.Sprintf("output_state_%s_%012.4f.txt", field, t)
}

func (s *Store) SaveMetadata(meta *RunMetadata) error {
	dir := s.Dir(meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, MetadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns the metadata of every run directory, oldest first.
// Directories without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), MetadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSnapshot reads the x coordinates and values of field at time t.
func (s *Store) LoadSnapshot(runID, field string, t float64) (xs, values []float64, err error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), SnapshotFile(field, t)))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	return grid.ReadColumns(f)
}
