package metrics

import (
	"github.com/san-kum/mhsim/internal/ensemble"
	"github.com/san-kum/mhsim/internal/metropolis"
)

// AcceptanceRate is the fraction of particle steps that moved.
type AcceptanceRate struct {
	name      string
	steps     int
	moved     int
	anomalies int
}

func NewAcceptanceRate() *AcceptanceRate {
	return &AcceptanceRate{name: "acceptance_rate"}
}

func (a *AcceptanceRate) Name() string { return a.name }

func (a *AcceptanceRate) OnTick(_ []metropolis.Point, stats ensemble.TickStats) {
	a.steps += stats.Particles
	a.moved += stats.Moved
	a.anomalies += stats.Anomalies
}

func (a *AcceptanceRate) Value() float64 {
	if a.steps == 0 {
		return 0
	}
	return float64(a.moved) / float64(a.steps)
}

func (a *AcceptanceRate) Anomalies() int { return a.anomalies }

func (a *AcceptanceRate) Reset() {
	a.steps = 0
	a.moved = 0
	a.anomalies = 0
}
