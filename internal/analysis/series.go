package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Samples int
	Mean    float64
	Std     float64
	Min     float64
	Max     float64
	Final   float64
}

// Summarize ignores non-finite samples.
func Summarize(series []float64) Summary {
	finite := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return Summary{}
	}

	mean, std := stat.MeanStdDev(finite, nil)
	if len(finite) == 1 {
		std = 0
	}
	return Summary{
		Samples: len(finite),
		Mean:    mean,
		Std:     std,
		Min:     floats.Min(finite),
		Max:     floats.Max(finite),
		Final:   finite[len(finite)-1],
	}
}

// SettleTime returns the earliest sample time from which every later sample
// has an absolute value at or below threshold.
func SettleTime(times, series []float64, threshold float64) (float64, bool) {
	n := len(series)
	if len(times) < n {
		n = len(times)
	}
	if n == 0 {
		return 0, false
	}

	settled := -1
	for i := n - 1; i >= 0; i-- {
		if math.Abs(series[i]) > threshold || math.IsNaN(series[i]) {
			break
		}
		settled = i
	}
	if settled < 0 {
		return 0, false
	}
	return times[settled], true
}
