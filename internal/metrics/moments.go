package metrics

import (
	"math"

	"github.com/san-kum/mhsim/internal/ensemble"
	"github.com/san-kum/mhsim/internal/metropolis"
	"gonum.org/v1/gonum/stat"
)

// Moments tracks the running mean and standard deviation of one axis over
// every position seen (Welford's update).
type Moments struct {
	name string
	axis Axis
	n    int
	mean float64
	m2   float64
}

func NewMoments(axis Axis) *Moments {
	return &Moments{name: "mean_" + axis.String(), axis: axis}
}

func (m *Moments) Name() string { return m.name }

func (m *Moments) OnTick(snapshot []metropolis.Point, _ ensemble.TickStats) {
	for _, p := range snapshot {
		m.Add(m.axis.of(p))
	}
}

func (m *Moments) Add(v float64) {
	m.n++
	d := v - m.mean
	m.mean += d / float64(m.n)
	m.m2 += d * (v - m.mean)
}

// Value is the running mean.
func (m *Moments) Value() float64 { return m.mean }

func (m *Moments) StdDev() float64 {
	if m.n < 2 {
		return 0
	}
	return math.Sqrt(m.m2 / float64(m.n-1))
}

func (m *Moments) Count() int { return m.n }

func (m *Moments) Reset() {
	m.n = 0
	m.mean = 0
	m.m2 = 0
}

// Summarize returns the sample mean and standard deviation of one axis of
// a snapshot.
func Summarize(snapshot []metropolis.Point, axis Axis) (mean, std float64) {
	vals := make([]float64, len(snapshot))
	for i, p := range snapshot {
		vals[i] = axis.of(p)
	}
	return SummarizeValues(vals)
}

// SummarizeValues is Summarize over plain values. Fewer than two values
// have a standard deviation of zero.
func SummarizeValues(vals []float64) (mean, std float64) {
	switch len(vals) {
	case 0:
		return 0, 0
	case 1:
		return vals[0], 0
	}
	return stat.MeanStdDev(vals, nil)
}
