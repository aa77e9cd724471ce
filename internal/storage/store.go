package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"

	// columns per particle: m x y z vx vy vz
	particleColumns = 7
	leadingColumns  = 3
)

// ErrMalformedStates is returned when a states file cannot be decoded.
var ErrMalformedStates = errors.New("storage: malformed states file")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Problem    string             `json:"problem"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	TMax       float64            `json:"tmax"`
	G          float64            `json:"g"`
	N          int                `json:"n"`
	Status     string             `json:"status"`
	Elapsed    float64            `json:"elapsed_seconds"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json and states.csv and
// returns the run id.
func (s *Store) Save(meta RunMetadata, snaps []Snapshot) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Problem, meta.Timestamp.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeSnapshots(w, snaps); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeSnapshots(w *csv.Writer, snaps []Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	header := []string{"time", "energy", "megno"}
	for i := range snaps[0].Particles {
		for _, c := range []string{"m", "x", "y", "z", "vx", "vy", "vz"} {
			header = append(header, fmt.Sprintf("%s%d", c, i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, snap := range snaps {
		row := []string{format(snap.Time), format(snap.Energy), format(snap.Megno)}
		for _, p := range snap.Particles {
			row = append(row,
				format(p.M),
				format(p.Pos.X), format(p.Pos.Y), format(p.Pos.Z),
				format(p.Vel.X), format(p.Vel.Y), format(p.Vel.Z),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns every readable run, newest first.
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSnapshots(runID string) ([]Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStates, err)
	}
	if len(records) < 2 {
		return []Snapshot{}, nil
	}

	width := len(records[0])
	if width < leadingColumns || (width-leadingColumns)%particleColumns != 0 {
		return nil, fmt.Errorf("%w: %d columns", ErrMalformedStates, width)
	}
	n := (width - leadingColumns) / particleColumns

	snaps := make([]Snapshot, 0, len(records)-1)
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedStates, line+2, err)
			}
			vals[j] = v
		}
		snaps = append(snaps, decodeRow(vals, n))
	}

	return snaps, nil
}
