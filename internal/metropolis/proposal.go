package metropolis

// Propose1D draws a symmetric Gaussian random-walk step around current.
func Propose1D(r Rand, current, stepStdDev float64) float64 {
	return r.Normal(current, stepStdDev)
}

// Derive1D proposes a 1D move and attaches its acceptance probability.
func Derive1D(r Rand, target Axis, stepStdDev, current float64) (Candidate, error) {
	x := Propose1D(r, current, stepStdDev)
	c := Candidate{Position: Point{X: x}}

	p, err := Acceptance(target.Mean, target.StdDev, current, x)
	if err != nil {
		return c, err
	}
	c.Accept[0] = p
	return c, nil
}

// Propose2D perturbs each axis independently (x first, then y) and
// attaches the per-axis acceptance probabilities.
func Propose2D(r Rand, target Target, stepStdDev float64, current Point) (Candidate, error) {
	c := Candidate{
		Position: Point{
			X: Propose1D(r, current.X, stepStdDev),
			Y: Propose1D(r, current.Y, stepStdDev),
		},
	}

	p, err := Acceptance2D(target, current, c.Position)
	if err != nil {
		return c, err
	}
	c.Accept = p
	return c, nil
}
