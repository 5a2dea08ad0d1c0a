package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Integrator string         `json:"integrator"`
	Config     *config.Config `json:"config"`
	Stats      dynamo.Stats   `json:"stats"`
	ElapsedMS  float64        `json:"elapsed_ms"`
	Points     int            `json:"points"`
	Final      dynamo.State   `json:"final"`
}

// Save writes metadata.json and states.csv into a new run directory and
// returns the run ID.
func (s *Store) Save(cfg *config.Config, traj *dynamo.Trajectory, elapsed time.Duration) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Integrator, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  now,
		Integrator: cfg.Integrator,
		Config:     cfg,
		Stats:      traj.Stats,
		ElapsedMS:  float64(elapsed.Microseconds()) / 1000,
		Points:     traj.Len(),
		Final:      traj.Final(),
	}

	if err := writeRun(runDir, meta, traj); err != nil {
		// A half-written run would show up in List but fail to load.
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, traj *dynamo.Trajectory) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, traj); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	traj, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	if meta, err := s.Load(runID); err == nil {
		traj.Stats = meta.Stats
	}
	return traj, nil
}
