package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, math.NaN(), 4, math.Inf(1)})

	if s.Samples != 4 {
		t.Fatalf("expected 4 finite samples, got %d", s.Samples)
	}
	if s.Mean != 2.5 || s.Min != 1 || s.Max != 4 || s.Final != 4 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.Std <= 0 {
		t.Errorf("expected positive spread, got %v", s.Std)
	}

	if got := Summarize(nil); got.Samples != 0 {
		t.Errorf("empty series should give zero summary, got %+v", got)
	}
	if got := Summarize([]float64{5}); got.Std != 0 {
		t.Errorf("single sample should have zero spread, got %v", got.Std)
	}
}

func TestSettleTime(t *testing.T) {
	times := []float64{0, 10, 20, 30, 40}

	got, ok := SettleTime(times, []float64{5, 0.5, 2, 0.01, 0.001}, 0.1)
	if !ok || got != 30 {
		t.Errorf("expected settle at 30, got %v (%v)", got, ok)
	}

	if _, ok := SettleTime(times, []float64{0, 0, 0, 0, 1}, 0.1); ok {
		t.Error("series ending above threshold never settles")
	}

	got, ok = SettleTime(times, []float64{0, 0, 0, 0, 0}, 0.1)
	if !ok || got != 0 {
		t.Errorf("series at rest from the start settles at 0, got %v", got)
	}
}

func TestDominantPeriod(t *testing.T) {
	series := make([]float64, 64)
	for i := range series {
		series[i] = 3 + math.Sin(2*math.Pi*float64(i)/16)
	}

	period, ok := DominantPeriod(series, 1)
	if !ok {
		t.Fatal("expected a dominant period")
	}
	if math.Abs(period-16) > 1e-9 {
		t.Errorf("expected period 16, got %v", period)
	}

	// sample interval scales the period
	period, _ = DominantPeriod(series, 10)
	if math.Abs(period-160) > 1e-9 {
		t.Errorf("expected period 160, got %v", period)
	}

	if _, ok := DominantPeriod([]float64{2, 2, 2, 2}, 1); ok {
		t.Error("constant series has no period")
	}
	if _, ok := DominantPeriod([]float64{1}, 1); ok {
		t.Error("single sample has no period")
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	_, power := PowerSpectrum([]float64{7, 7, 7, 7, 7, 7, 7, 7}, 1)
	if len(power) != 5 {
		t.Fatalf("expected 5 bins, got %d", len(power))
	}
	for i, p := range power {
		if p > 1e-9 {
			t.Errorf("bin %d: expected zero power, got %v", i, p)
		}
	}
}

func TestPhasePlotASCII(t *testing.T) {
	xs := []float64{-1, 0, 1, 2}
	ys := []float64{1, 0, 1, 4}

	out := PhasePlotASCII(xs, ys, 20, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	if !strings.Contains(out, "•") {
		t.Error("expected plotted points")
	}
	if !strings.Contains(out, "│") {
		t.Error("expected y axis where x crosses zero")
	}

	if PhasePlotASCII(nil, nil, 20, 10) != "" {
		t.Error("expected empty plot for no data")
	}
}
