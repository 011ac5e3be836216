package metrics

import (
	"github.com/san-kum/mhsim/internal/ensemble"
	"github.com/san-kum/mhsim/internal/metropolis"
)

// Metric accumulates over ensemble ticks.
type Metric interface {
	ensemble.Observer
	Name() string
	Value() float64
	Reset()
}

type Axis int

const (
	X Axis = iota
	Y
)

func (a Axis) String() string {
	if a == Y {
		return "y"
	}
	return "x"
}

func (a Axis) of(p metropolis.Point) float64 {
	if a == Y {
		return p.Y
	}
	return p.X
}
