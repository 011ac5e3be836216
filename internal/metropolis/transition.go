package metropolis

// Step1D draws a fresh uniform u and returns candidate when pAccept > u,
// otherwise current.
func Step1D(r Rand, current, candidate, pAccept float64) float64 {
	if pAccept > r.Uniform() {
		return candidate
	}
	return current
}

// Step2D decides each axis separately. With SharedDraw both axes are
// tested against the same u, so they can still disagree when their
// probabilities differ.
func Step2D(r Rand, current Point, c Candidate, coupling Coupling) Point {
	ux := r.Uniform()
	uy := ux
	if coupling == IndependentDraws {
		uy = r.Uniform()
	}

	next := current
	if c.Accept[0] > ux {
		next.X = c.Position.X
	}
	if c.Accept[1] > uy {
		next.Y = c.Position.Y
	}
	return next
}
