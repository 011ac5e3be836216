package ensemble

import (
	"fmt"

	"github.com/san-kum/mhsim/internal/metropolis"
)

// Particle is one independent Metropolis walker. It owns its position and
// its random stream; nothing else mutates either.
type Particle struct {
	Position  metropolis.Point
	Candidate metropolis.Candidate
	Steps     int
	Moves     int

	rand metropolis.Rand
}

// Fresh builds a walker whose starting position is drawn from target.
func Fresh(target metropolis.Target, dim metropolis.Dim, r metropolis.Rand) *Particle {
	p := &Particle{rand: r}
	p.Position.X = r.Normal(target.X.Mean, target.X.StdDev)
	if dim == metropolis.Dim2 {
		p.Position.Y = r.Normal(target.Y.Mean, target.Y.StdDev)
	}
	return p
}

type stepParams struct {
	target     metropolis.Target
	dim        metropolis.Dim
	stepStdDev float64
	coupling   metropolis.Coupling
}

// step advances the walker once. On a numeric anomaly the position is left
// untouched and the error is returned.
func (p *Particle) step(sp stepParams) (bool, error) {
	p.Steps++
	current := p.Position

	var (
		next metropolis.Point
		err  error
	)
	switch sp.dim {
	case metropolis.Dim1:
		p.Candidate, err = metropolis.Derive1D(p.rand, sp.target.X, sp.stepStdDev, current.X)
		if err != nil {
			return false, err
		}
		next.X = metropolis.Step1D(p.rand, current.X, p.Candidate.Position.X, p.Candidate.Accept[0])
	default:
		p.Candidate, err = metropolis.Propose2D(p.rand, sp.target, sp.stepStdDev, current)
		if err != nil {
			return false, err
		}
		next = metropolis.Step2D(p.rand, current, p.Candidate, sp.coupling)
	}

	if !next.IsFinite() {
		return false, fmt.Errorf("%w: next position %v", metropolis.ErrNumericAnomaly, next)
	}

	p.Position = next
	if next != current {
		p.Moves++
		return true, nil
	}
	return false, nil
}
