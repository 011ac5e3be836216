package gaussian

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Density returns the normal probability density at x.
func Density(mean, stddev, x float64) (float64, error) {
	if err := checkStdDev(stddev); err != nil {
		return 0, err
	}
	return distuv.Normal{Mu: mean, Sigma: stddev}.Prob(x), nil
}

// LogDensity returns the natural log of Density. It stays finite far into
// the tails where Density underflows to zero.
func LogDensity(mean, stddev, x float64) (float64, error) {
	if err := checkStdDev(stddev); err != nil {
		return 0, err
	}
	return distuv.Normal{Mu: mean, Sigma: stddev}.LogProb(x), nil
}

func checkStdDev(stddev float64) error {
	if !(stddev > 0) || math.IsInf(stddev, 1) {
		return &DomainError{StdDev: stddev}
	}
	return nil
}
