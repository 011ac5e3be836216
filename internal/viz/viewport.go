package viz

import (
	"math"

	"github.com/san-kum/mhsim/internal/gaussian"
	"github.com/san-kum/mhsim/internal/metropolis"
)

// span is how many standard deviations either side of the mean are shown.
const span = 4.0

// Viewport is the affine map from simulation coordinates to canvas
// sub-pixels. Y grows upward in simulation space and downward on screen.
type Viewport struct {
	XMin, XMax float64
	YMin, YMax float64
	W, H       int
}

// NewViewport frames mean ± 4σ. In 1D the vertical axis is density, from
// zero to just above the peak.
func NewViewport(target metropolis.Target, dim metropolis.Dim, c *Canvas) Viewport {
	w, h := c.PixelSize()
	vp := Viewport{
		XMin: target.X.Mean - span*target.X.StdDev,
		XMax: target.X.Mean + span*target.X.StdDev,
		W:    w,
		H:    h,
	}
	if dim == metropolis.Dim2 {
		vp.YMin = target.Y.Mean - span*target.Y.StdDev
		vp.YMax = target.Y.Mean + span*target.Y.StdDev
		return vp
	}
	peak, err := gaussian.Density(target.X.Mean, target.X.StdDev, target.X.Mean)
	if err != nil || peak <= 0 {
		peak = 1
	}
	vp.YMax = peak * 1.1
	return vp
}

// Map converts (x, y) to sub-pixel coordinates. Points outside the
// viewport map outside the canvas and are clipped by Set.
func (v Viewport) Map(x, y float64) (int, int) {
	px := (x - v.XMin) / (v.XMax - v.XMin) * float64(v.W-1)
	py := (1 - (y-v.YMin)/(v.YMax-v.YMin)) * float64(v.H-1)
	return int(math.Round(px)), int(math.Round(py))
}

// UnmapX is the inverse of Map along X.
func (v Viewport) UnmapX(px int) float64 {
	return v.XMin + float64(px)/float64(v.W-1)*(v.XMax-v.XMin)
}

// Contains reports whether (x, y) falls inside the viewport.
func (v Viewport) Contains(x, y float64) bool {
	return x >= v.XMin && x <= v.XMax && y >= v.YMin && y <= v.YMax
}
