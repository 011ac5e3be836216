package metropolis

// Rand is the randomness the engine consumes. *gaussian.Sampler
// satisfies it.
type Rand interface {
	Normal(mean, stddev float64) float64
	Uniform() float64
}
