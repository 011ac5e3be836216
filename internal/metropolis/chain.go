package metropolis

import "fmt"

// ChainResult holds the accepted samples of RunChain.
type ChainResult struct {
	Samples    []float64
	Rejections int
}

// DrawFunc observes every candidate drawn by RunChain.
type DrawFunc func(candidate, pAccept float64, accepted bool)

// RunChain draws candidates from the target itself and keeps drawing until
// one is accepted, samples times. The loop is uncapped: acceptance is
// positive for every finite candidate, so it always terminates.
func RunChain(r Rand, target Axis, samples int, onDraw DrawFunc) (*ChainResult, error) {
	if err := target.Validate("target"); err != nil {
		return nil, err
	}
	if samples <= 0 {
		return nil, &ConfigError{Field: "samples", Value: float64(samples)}
	}

	res := &ChainResult{Samples: make([]float64, 0, samples)}
	position := r.Normal(target.Mean, target.StdDev)

	for len(res.Samples) < samples {
		candidate := r.Normal(target.Mean, target.StdDev)
		p, err := Acceptance(target.Mean, target.StdDev, position, candidate)
		if err != nil {
			return res, fmt.Errorf("sample %d: %w", len(res.Samples), err)
		}

		accepted := p > r.Uniform()
		if onDraw != nil {
			onDraw(candidate, p, accepted)
		}
		if !accepted {
			res.Rejections++
			continue
		}
		position = candidate
		res.Samples = append(res.Samples, position)
	}

	return res, nil
}
