package metropolis

import (
	"fmt"
	"math"

	"github.com/san-kum/mhsim/internal/gaussian"
)

// Acceptance is the Metropolis acceptance probability for moving from
// current to candidate under a symmetric proposal:
// min(p(candidate)/p(current), 1). The ratio is taken in log space so
// walkers far in the tails do not divide zero by zero.
func Acceptance(mean, stddev, current, candidate float64) (float64, error) {
	if !finite(current) || !finite(candidate) {
		return 0, fmt.Errorf("%w: current=%v candidate=%v", ErrNumericAnomaly, current, candidate)
	}
	lpCandidate, err := gaussian.LogDensity(mean, stddev, candidate)
	if err != nil {
		return 0, err
	}
	lpCurrent, err := gaussian.LogDensity(mean, stddev, current)
	if err != nil {
		return 0, err
	}

	// Both log densities can be -Inf far out; a self-transition is still 1.
	if candidate == current {
		return 1, nil
	}
	diff := lpCandidate - lpCurrent
	if math.IsNaN(diff) {
		return 0, fmt.Errorf("%w: log density ratio at current=%v candidate=%v", ErrNumericAnomaly, current, candidate)
	}
	return math.Exp(math.Min(diff, 0)), nil
}

// Acceptance2D applies Acceptance to each axis with that axis' parameters.
func Acceptance2D(target Target, current, candidate Point) ([2]float64, error) {
	var p [2]float64
	var err error
	if p[0], err = Acceptance(target.X.Mean, target.X.StdDev, current.X, candidate.X); err != nil {
		return [2]float64{}, fmt.Errorf("x axis: %w", err)
	}
	if p[1], err = Acceptance(target.Y.Mean, target.Y.StdDev, current.Y, candidate.Y); err != nil {
		return [2]float64{}, fmt.Errorf("y axis: %w", err)
	}
	return p, nil
}
