package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/sim"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	framesFile   = "frames.csv"
	seriesFile   = "series.csv"
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

type RunMetadata struct {
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     uint64             `json:"steps"`
	Particles int                `json:"particles"`
	Springs   int                `json:"springs"`
	Solver    string             `json:"solver"`
	Contacts  int                `json:"contacts"`
	Elapsed   time.Duration      `json:"elapsed"`
	Metrics   map[string]float64 `json:"metrics"`
}

// FrameRecord is one particle at one sampled step.
type FrameRecord struct {
	Step   uint64  `csv:"step"`
	Time   float64 `csv:"time"`
	Index  int     `csv:"index"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	Z      float64 `csv:"z"`
	VX     float64 `csv:"vx"`
	VY     float64 `csv:"vy"`
	VZ     float64 `csv:"vz"`
	Radius float64 `csv:"radius"`
}

// SeriesRecord is one metric value at one sampled step.
type SeriesRecord struct {
	Step   int     `csv:"step"`
	Time   float64 `csv:"time"`
	Metric string  `csv:"metric"`
	Value  float64 `csv:"value"`
}

// Begin allocates a run directory for scene and returns a recorder that
// streams sampled frames into it.
func (s *Store) Begin(scene string) (*Run, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", scene, now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 2; ; n++ {
		_, err := os.Stat(runDir)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("checking run dir: %w", err)
		}
		runID = fmt.Sprintf("%s_%d_%d", scene, now.Unix(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", framesFile, err)
	}

	return &Run{
		id:      runID,
		dir:     runDir,
		started: now,
		frames:  f,
	}, nil
}

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

// LoadConfig returns the config snapshot the run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	var records []FrameRecord
	if err := readCSV(filepath.Join(s.baseDir, runID, framesFile), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) LoadSeries(runID string) ([]SeriesRecord, error) {
	var records []SeriesRecord
	if err := readCSV(filepath.Join(s.baseDir, runID, seriesFile), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func readCSV(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return nil
}

// SeriesByMetric regroups records into one time-ordered series per metric.
func SeriesByMetric(records []SeriesRecord) (map[string][]float64, map[string][]float64) {
	values := make(map[string][]float64)
	times := make(map[string][]float64)
	for _, r := range records {
		values[r.Metric] = append(values[r.Metric], r.Value)
		times[r.Metric] = append(times[r.Metric], r.Time)
	}
	return values, times
}

// Run records one simulation. It implements sim.Observer.
type Run struct {
	id      string
	dir     string
	started time.Time

	frames        *os.File
	headerWritten bool
	buf           []FrameRecord
	err           error
}

func (r *Run) ID() string  { return r.id }
func (r *Run) Dir() string { return r.dir }

// OnStep appends the snapshot to frames.csv. The first write error is kept
// and reported by Finish.
func (r *Run) OnStep(snap *sim.Snapshot) {
	if r.err != nil || r.frames == nil {
		return
	}

	r.buf = r.buf[:0]
	for _, p := range snap.Particles {
		r.buf = append(r.buf, FrameRecord{
			Step:   snap.Step,
			Time:   snap.Time,
			Index:  p.Index,
			X:      p.Pos.X,
			Y:      p.Pos.Y,
			Z:      p.Pos.Z,
			VX:     p.Vel.X,
			VY:     p.Vel.Y,
			VZ:     p.Vel.Z,
			Radius: p.Radius,
		})
	}
	if len(r.buf) == 0 {
		return
	}

	if !r.headerWritten {
		if err := gocsv.Marshal(r.buf, r.frames); err != nil {
			r.err = fmt.Errorf("writing frames: %w", err)
			return
		}
		r.headerWritten = true
	} else if err := gocsv.MarshalWithoutHeaders(r.buf, r.frames); err != nil {
		r.err = fmt.Errorf("writing frames: %w", err)
	}
}

// Finish writes metadata, the config snapshot and the metric series, then
// closes the run. result may be partial when the run failed.
func (r *Run) Finish(cfg *config.Config, preset string, w *sim.World, result *sim.Result) (*RunMetadata, error) {
	defer r.Close()
	if r.err != nil {
		return nil, r.err
	}

	meta := RunMetadata{
		ID:        r.id,
		Scene:     cfg.Scene,
		Preset:    preset,
		Timestamp: r.started,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Steps:     result.Steps,
		Particles: w.Len(),
		Springs:   w.SpringCount(),
		Solver:    cfg.Physics.Solver,
		Contacts:  result.Contacts,
		Elapsed:   time.Since(r.started),
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(r.dir, metadataFile), meta); err != nil {
		return nil, err
	}
	if err := config.Save(filepath.Join(r.dir, configFile), cfg); err != nil {
		return nil, fmt.Errorf("writing %s: %w", configFile, err)
	}
	if err := writeSeries(filepath.Join(r.dir, seriesFile), cfg, result); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r *Run) Close() error {
	if r.frames == nil {
		return nil
	}
	err := r.frames.Close()
	r.frames = nil
	return err
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSeries(path string, cfg *config.Config, result *sim.Result) error {
	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]SeriesRecord, 0, len(names)*len(result.Times))
	for i, t := range result.Times {
		for _, name := range names {
			vals := result.Series[name]
			if i >= len(vals) {
				continue
			}
			records = append(records, SeriesRecord{
				Step:   int(t/cfg.Dt + 0.5),
				Time:   t,
				Metric: name,
				Value:  vals[i],
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", seriesFile, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("writing %s: %w", seriesFile, err)
	}
	return nil
}
