// Package viz provides a terminal dashboard for a running particle world.
//
// The dashboard is a Bubble Tea program that steps the simulation between
// frames and charts its metrics. Particles themselves are not drawn.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Rebuild the scene
//	Tab   - Cycle tunable parameters
//	Up/K  - Increase parameter (+5%)
//	Down/J- Decrease parameter (-5%)
//	G     - Cycle the charted metric
//	+/-   - Steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
