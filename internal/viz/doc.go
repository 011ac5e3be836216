// Package viz renders a running ensemble in the terminal.
//
// The live view is a Bubble Tea program drawing on a braille [Canvas]:
//
//   - 1D: the target density curve with a marker per walker
//   - 2D: a scatter of walkers with short trails around the target mean
//
// A side panel shows acceptance rate, per-axis sample moments and a
// histogram of X positions.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single tick while paused
//	R     - Reset walkers from the target
//	+/-   - Grow/shrink the ensemble
//	Tab   - Select target parameter
//	Up/Dn - Adjust selected parameter
//	C     - Toggle shared/independent draws (2D)
//	F/S   - Faster/slower
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
