package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of each non-negative frequency bin of
// the mean-removed series, and the bin frequencies in cycles per unit of
// sampleInterval.
func PowerSpectrum(series []float64, sampleInterval float64) (freqs, power []float64) {
	n := len(series)
	if n < 2 || sampleInterval <= 0 {
		return nil, nil
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)

	freqs = make([]float64, len(coeffs))
	power = make([]float64, len(coeffs))
	for i, c := range coeffs {
		freqs[i] = fft.Freq(i) / sampleInterval
		power[i] = cmplx.Abs(c)
	}
	return freqs, power
}

// DominantPeriod returns the period of the strongest non-zero frequency, or
// false for a constant or too-short series.
func DominantPeriod(series []float64, sampleInterval float64) (float64, bool) {
	freqs, power := PowerSpectrum(series, sampleInterval)
	if len(power) < 2 {
		return 0, false
	}
	best := 1
	for i := 2; i < len(power); i++ {
		if power[i] > power[best] {
			best = i
		}
	}
	if power[best] <= 1e-12 {
		return 0, false
	}
	return 1 / freqs[best], true
}
