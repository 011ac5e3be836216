package metropolis

// scriptedRand replays fixed draws. Normal falls back to the requested
// mean once its script is exhausted.
type scriptedRand struct {
	normals  []float64
	uniforms []float64

	normalArgs [][2]float64
	uniformN   int
}

func (s *scriptedRand) Normal(mean, stddev float64) float64 {
	i := len(s.normalArgs)
	s.normalArgs = append(s.normalArgs, [2]float64{mean, stddev})
	if i < len(s.normals) {
		return s.normals[i]
	}
	return mean
}

func (s *scriptedRand) Uniform() float64 {
	i := s.uniformN
	s.uniformN++
	if len(s.uniforms) == 0 {
		return 0.5
	}
	return s.uniforms[i%len(s.uniforms)]
}
