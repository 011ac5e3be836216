package metrics

import (
	"github.com/san-kum/mhsim/internal/ensemble"
	"github.com/san-kum/mhsim/internal/metropolis"
)

// Histogram counts positions of one axis in equal-width bins over
// [Min, Max). Values outside the range are counted separately.
type Histogram struct {
	Min, Max float64
	Counts   []int
	Outside  int

	axis  Axis
	total int
}

func NewHistogram(axis Axis, min, max float64, bins int) *Histogram {
	if bins < 1 {
		bins = 1
	}
	return &Histogram{Min: min, Max: max, Counts: make([]int, bins), axis: axis}
}

func (h *Histogram) OnTick(snapshot []metropolis.Point, _ ensemble.TickStats) {
	for _, p := range snapshot {
		h.Add(h.axis.of(p))
	}
}

func (h *Histogram) Add(v float64) {
	h.total++
	if !(v >= h.Min && v < h.Max) {
		h.Outside++
		return
	}
	i := int((v - h.Min) / h.BinWidth())
	if i >= len(h.Counts) {
		i = len(h.Counts) - 1
	}
	h.Counts[i]++
}

func (h *Histogram) BinWidth() float64 {
	return (h.Max - h.Min) / float64(len(h.Counts))
}

// Center returns the midpoint of bin i.
func (h *Histogram) Center(i int) float64 {
	return h.Min + (float64(i)+0.5)*h.BinWidth()
}

// Density normalises counts so the histogram integrates to the fraction of
// samples inside the range, comparable with a pdf.
func (h *Histogram) Density() []float64 {
	out := make([]float64, len(h.Counts))
	if h.total == 0 {
		return out
	}
	w := h.BinWidth()
	for i, c := range h.Counts {
		out[i] = float64(c) / (float64(h.total) * w)
	}
	return out
}

func (h *Histogram) Total() int { return h.total }

func (h *Histogram) Reset() {
	for i := range h.Counts {
		h.Counts[i] = 0
	}
	h.Outside = 0
	h.total = 0
}
