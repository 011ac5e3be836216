package metropolis

import (
	"fmt"
	"math"
)

// Point is a walker position. One-dimensional walks only use X.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) IsFinite() bool {
	return finite(p.X) && finite(p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.X, p.Y)
}

// Candidate is a proposed position with its per-axis acceptance
// probability. Only Accept[0] is meaningful for a 1D walk.
type Candidate struct {
	Position Point
	Accept   [2]float64
}

// Axis parameterises the target along one coordinate.
type Axis struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	StdDev float64 `yaml:"stddev" json:"stddev"`
}

func (a Axis) Validate(name string) error {
	if !finite(a.Mean) {
		return &ConfigError{Field: name + ".mean", Value: a.Mean}
	}
	if !(a.StdDev > 0) || math.IsInf(a.StdDev, 1) {
		return &ConfigError{Field: name + ".stddev", Value: a.StdDev}
	}
	return nil
}

// Target is the Gaussian the walkers sample from, one Axis per coordinate.
type Target struct {
	X Axis `yaml:"x" json:"x"`
	Y Axis `yaml:"y" json:"y"`
}

func (t Target) Validate() error {
	if err := t.X.Validate("target.x"); err != nil {
		return err
	}
	return t.Y.Validate("target.y")
}

// DefaultTarget is Normal(2.0, 0.2) on both axes.
func DefaultTarget() Target {
	a := Axis{Mean: 2.0, StdDev: 0.2}
	return Target{X: a, Y: a}
}

type Dim int

const (
	Dim1 Dim = 1
	Dim2 Dim = 2
)

func (d Dim) Valid() bool { return d == Dim1 || d == Dim2 }

// Coupling selects how the uniform threshold is drawn for a 2D step.
type Coupling int

const (
	// SharedDraw tests both axes against one uniform value per step.
	SharedDraw Coupling = iota
	// IndependentDraws uses a separate uniform value for each axis.
	IndependentDraws
)

func (c Coupling) String() string {
	switch c {
	case SharedDraw:
		return "shared"
	case IndependentDraws:
		return "independent"
	default:
		return fmt.Sprintf("coupling(%d)", int(c))
	}
}

func ParseCoupling(s string) (Coupling, error) {
	switch s {
	case "", "shared":
		return SharedDraw, nil
	case "independent":
		return IndependentDraws, nil
	default:
		return 0, fmt.Errorf("%w: unknown coupling %q", ErrConfiguration, s)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
