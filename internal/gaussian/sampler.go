package gaussian

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Default demonstration target.
const (
	DefaultMean   = 2.0
	DefaultStdDev = 0.2
)

// Sampler draws normal and uniform variates from one random source.
// A Sampler is not safe for concurrent use; give each goroutine its own.
type Sampler struct {
	src rand.Source
	rng *rand.Rand
}

func NewSampler(src rand.Source) *Sampler {
	return &Sampler{src: src, rng: rand.New(src)}
}

// NewSeededSampler returns a Sampler on a PCG stream. Distinct stream
// values with the same seed give independent sequences.
func NewSeededSampler(seed, stream uint64) *Sampler {
	return NewSampler(rand.NewPCG(seed, stream))
}

// SampleDefault draws from Normal(DefaultMean, DefaultStdDev).
func (s *Sampler) SampleDefault() float64 {
	return s.Normal(DefaultMean, DefaultStdDev)
}

func (s *Sampler) Normal(mean, stddev float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: stddev, Src: s.src}.Rand()
}

// Uniform returns a value in [0, 1).
func (s *Sampler) Uniform() float64 {
	return s.rng.Float64()
}
