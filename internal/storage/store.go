// Package storage persists simulation runs: one timestamped directory per
// run holding metadata and per-step position snapshots.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mdlab-go/mdsim/internal/md"
)

// Store manages run directories under a base data directory.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one stored run.
type RunMetadata struct {
	ID             string             `json:"id"`
	Timestamp      time.Time          `json:"timestamp"`
	Particles      int                `json:"particles"`
	Steps          int                `json:"steps"`
	Dt             float64            `json:"dt"`
	Epsilon        float64            `json:"epsilon"`
	Sigma          float64            `json:"sigma"`
	Mass           float64            `json:"mass"`
	VelocityStdDev float64            `json:"vel_stddev"`
	Boundary       string             `json:"boundary"`
	Seed           int64              `json:"seed"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// CreateRun allocates a fresh run directory named mds-<timestamp> and
// returns its id and absolute path.
func (s *Store) CreateRun(now time.Time) (string, string, error) {
	id := "mds-" + now.Format("2006-01-02_15-04-05")
	dir := filepath.Join(s.baseDir, id)

	// A second run within the same second gets a numeric suffix.
	for i := 1; ; i++ {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			break
		}
		dir = filepath.Join(s.baseDir, fmt.Sprintf("%s_%d", id, i))
	}
	id = filepath.Base(dir)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}
	return id, dir, nil
}

// SaveMetadata writes metadata.json into the run directory.
func (s *Store) SaveMetadata(id string, p md.Params, metrics map[string]float64, ts time.Time) error {
	meta := RunMetadata{
		ID:             id,
		Timestamp:      ts,
		Particles:      p.Particles,
		Steps:          p.Steps,
		Dt:             p.Dt,
		Epsilon:        p.Epsilon,
		Sigma:          p.Sigma,
		Mass:           p.Mass,
		VelocityStdDev: p.VelocityStdDev,
		Boundary:       string(p.Boundary),
		Seed:           p.Seed,
		Metrics:        metrics,
	}

	f, err := os.Create(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns metadata for every stored run, newest first.
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
		meta, err := s.LoadMeta(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) LoadMeta(id string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Snapshots returns the sorted step indices with stored snapshots.
func (s *Store) Snapshots(id string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, id))
	if err != nil {
		return nil, err
	}

	steps := make([]int, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "mds-") || !strings.HasSuffix(name, ".csv") {
			continue
		}
		step, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "mds-"), ".csv"))
		if err != nil {
			continue
		}
		steps = append(steps, step)
	}

	sort.Ints(steps)
	return steps, nil
}

// LoadSnapshot reads the position snapshot of one step.
func (s *Store) LoadSnapshot(id string, step int) ([]md.Vec3, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, snapshotName(step)))
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	pos := make([]md.Vec3, 0, len(lines))
	for lineNo, line := range lines {
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("storage: snapshot %s line %d: expected 3 fields, got %d", snapshotName(step), lineNo+1, len(fields))
		}
		var v md.Vec3
		for k, field := range fields {
			v[k], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("storage: snapshot %s line %d: %w", snapshotName(step), lineNo+1, err)
			}
		}
		pos = append(pos, v)
	}
	return pos, nil
}

func snapshotName(step int) string {
	return fmt.Sprintf("mds-%d.csv", step)
}
