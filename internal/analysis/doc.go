// Package analysis provides post-run tools for recorded metric series.
//
//   - [Summarize]: mean, spread and extremes of a series
//   - [SettleTime]: first time after which a series stays under a threshold
//   - [PowerSpectrum] and [DominantPeriod]: oscillation content of a series
//   - [PhasePlotASCII]: one series against another
//
// # Settling
//
// A damped pile comes to rest when its kinetic energy stops changing:
//
//	t, ok := analysis.SettleTime(times, series["kinetic_energy"], 1e-3)
//	if ok {
//	    // at rest from t on
//	}
package analysis
