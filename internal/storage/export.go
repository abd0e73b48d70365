package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

type ExportData struct {
	ID        string               `json:"id"`
	Scene     string               `json:"scene"`
	Preset    string               `json:"preset,omitempty"`
	Dt        float64              `json:"dt"`
	Duration  float64              `json:"duration"`
	Steps     uint64               `json:"steps"`
	Particles int                  `json:"particles"`
	Times     []float64            `json:"times"`
	Series    map[string][]float64 `json:"series"`
	Metrics   map[string]float64   `json:"metrics"`
}

// Export gathers a stored run's metadata and metric series.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	records, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}

	series, times := SeriesByMetric(records)
	var t []float64
	for _, ts := range times {
		if len(ts) > len(t) {
			t = ts
		}
	}

	return &ExportData{
		ID:        meta.ID,
		Scene:     meta.Scene,
		Preset:    meta.Preset,
		Dt:        meta.Dt,
		Duration:  meta.Duration,
		Steps:     meta.Steps,
		Particles: meta.Particles,
		Times:     t,
		Series:    series,
		Metrics:   meta.Metrics,
	}, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeExport(file, data)
}

func ExportJSONStdout(data *ExportData) error {
	return writeExport(os.Stdout, data)
}

func writeExport(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportSeriesCSV writes series records in long form (step,time,metric,value).
func ExportSeriesCSV(w io.Writer, records []SeriesRecord) error {
	return gocsv.Marshal(records, w)
}

// ExportFramesCSV writes the frame records of a single sampled step, or of
// every step when step is negative.
func ExportFramesCSV(w io.Writer, records []FrameRecord, step int64) error {
	if step >= 0 {
		filtered := make([]FrameRecord, 0)
		for _, r := range records {
			if int64(r.Step) == step {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	return gocsv.Marshal(records, w)
}
