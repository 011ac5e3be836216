package ensemble

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/san-kum/mhsim/internal/gaussian"
	"github.com/san-kum/mhsim/internal/metropolis"
	"go.uber.org/zap"
)

const defaultMinChunk = 64

// AxisSelector picks which target axis Configure updates.
type AxisSelector int

const (
	AxisBoth AxisSelector = iota
	AxisX
	AxisY
)

func (a AxisSelector) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "both"
	}
}

// TickStats summarises one call to Tick.
type TickStats struct {
	Tick      int
	Particles int
	Moved     int
	Anomalies int
}

// Observer is notified after every tick with a copy of the positions.
type Observer interface {
	OnTick(snapshot []metropolis.Point, stats TickStats)
}

type Options struct {
	Target     metropolis.Target
	Dim        metropolis.Dim
	Particles  int
	Seed       uint64
	StepStdDev float64
	Coupling   metropolis.Coupling
	// Workers bounds the goroutines used per tick; 0 means GOMAXPROCS.
	Workers int
	// MinChunk is the smallest particle range handed to one worker.
	MinChunk int
	Logger   *zap.Logger
	// NewRand overrides the per-particle random stream.
	NewRand func() metropolis.Rand
}

// Ensemble runs N independent walkers against a shared target.
type Ensemble struct {
	mu        sync.Mutex
	particles []*Particle
	coupling  metropolis.Coupling
	ticks     int
	streams   uint64
	observers []Observer

	// targetMu serialises writers of target; Tick reads it lock-free.
	targetMu sync.Mutex
	target   atomic.Pointer[metropolis.Target]

	dim        metropolis.Dim
	stepStdDev float64
	seed       uint64
	workers    int
	minChunk   int
	newRand    func() metropolis.Rand
	log        *zap.Logger
}

func New(opts Options) (*Ensemble, error) {
	if err := opts.Target.Validate(); err != nil {
		return nil, err
	}
	if !opts.Dim.Valid() {
		return nil, &metropolis.ConfigError{Field: "dimensions", Value: float64(opts.Dim)}
	}
	if opts.Particles <= 0 {
		return nil, &metropolis.ConfigError{Field: "particles", Value: float64(opts.Particles)}
	}
	if !(opts.StepStdDev > 0) {
		return nil, &metropolis.ConfigError{Field: "proposal_stddev", Value: opts.StepStdDev}
	}
	if opts.Coupling != metropolis.SharedDraw && opts.Coupling != metropolis.IndependentDraws {
		return nil, &metropolis.ConfigError{Field: "coupling", Value: float64(opts.Coupling)}
	}

	e := &Ensemble{
		coupling:   opts.Coupling,
		dim:        opts.Dim,
		stepStdDev: opts.StepStdDev,
		seed:       opts.Seed,
		workers:    opts.Workers,
		minChunk:   opts.MinChunk,
		newRand:    opts.NewRand,
		log:        opts.Logger,
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.minChunk <= 0 {
		e.minChunk = defaultMinChunk
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}

	target := opts.Target
	e.target.Store(&target)

	e.particles = make([]*Particle, opts.Particles)
	for i := range e.particles {
		e.particles[i] = e.fresh(target)
	}

	e.log.Info("ensemble created",
		zap.Int("particles", opts.Particles),
		zap.Int("dimensions", int(opts.Dim)),
		zap.Uint64("seed", opts.Seed),
		zap.Stringer("coupling", opts.Coupling),
		zap.Int("workers", e.workers),
	)
	return e, nil
}

// fresh must be called with mu held once the ensemble is shared.
func (e *Ensemble) fresh(target metropolis.Target) *Particle {
	var r metropolis.Rand
	if e.newRand != nil {
		r = e.newRand()
	} else {
		r = gaussian.NewSeededSampler(e.seed, e.streams)
	}
	e.streams++
	return Fresh(target, e.dim, r)
}

// Tick advances every particle by one Metropolis step. A particle whose
// step produces a non-finite value keeps its position for this tick.
func (e *Ensemble) Tick() TickStats {
	e.mu.Lock()

	sp := stepParams{
		target:     *e.target.Load(),
		dim:        e.dim,
		stepStdDev: e.stepStdDev,
		coupling:   e.coupling,
	}

	n := len(e.particles)
	moved := make([]bool, n)
	errs := make([]error, n)
	ParallelFor(n, e.minChunk, e.workers, func(start, end int) {
		for i := start; i < end; i++ {
			moved[i], errs[i] = e.particles[i].step(sp)
		}
	})

	e.ticks++
	stats := TickStats{Tick: e.ticks, Particles: n}
	for i := range moved {
		if moved[i] {
			stats.Moved++
		}
		if errs[i] != nil {
			stats.Anomalies++
			if errors.Is(errs[i], metropolis.ErrNumericAnomaly) {
				e.log.Debug("step rejected", zap.Int("particle", i), zap.Error(errs[i]))
			} else {
				e.log.Warn("step failed", zap.Int("particle", i), zap.Error(errs[i]))
			}
		}
	}

	snap := e.snapshotLocked()
	observers := e.observers
	e.mu.Unlock()

	for _, o := range observers {
		o.OnTick(snap, stats)
	}
	return stats
}

// Reset replaces every particle with a fresh one drawn from the current
// target.
func (e *Ensemble) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	target := *e.target.Load()
	for i := range e.particles {
		e.particles[i] = e.fresh(target)
	}
	e.ticks = 0
	e.log.Info("ensemble reset", zap.Int("particles", len(e.particles)))
}

// Resize grows or shrinks the ensemble to exactly n particles. New slots
// get fresh particles.
func (e *Ensemble) Resize(n int) error {
	if n <= 0 {
		return &metropolis.ConfigError{Field: "particles", Value: float64(n)}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	old := len(e.particles)
	if n < old {
		for i := n; i < old; i++ {
			e.particles[i] = nil
		}
		e.particles = e.particles[:n]
	} else {
		target := *e.target.Load()
		for len(e.particles) < n {
			e.particles = append(e.particles, e.fresh(target))
		}
	}
	e.log.Info("ensemble resized", zap.Int("from", old), zap.Int("to", n))
	return nil
}

// Snapshot returns a copy of all current positions.
func (e *Ensemble) Snapshot() []metropolis.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Ensemble) snapshotLocked() []metropolis.Point {
	out := make([]metropolis.Point, len(e.particles))
	for i, p := range e.particles {
		out[i] = p.Position
	}
	return out
}

// Candidates returns the most recent proposal of each particle.
func (e *Ensemble) Candidates() []metropolis.Candidate {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]metropolis.Candidate, len(e.particles))
	for i, p := range e.particles {
		out[i] = p.Candidate
	}
	return out
}

// Configure updates the mean and standard deviation of one or both axes.
// An invalid value is rejected and the previous target stays in force.
// Concurrent calls on different axes never overwrite each other.
func (e *Ensemble) Configure(mean, stddev float64, axis AxisSelector) error {
	e.targetMu.Lock()
	defer e.targetMu.Unlock()

	next := *e.target.Load()
	a := metropolis.Axis{Mean: mean, StdDev: stddev}
	switch axis {
	case AxisX:
		next.X = a
	case AxisY:
		next.Y = a
	default:
		next.X, next.Y = a, a
	}
	return e.storeTarget(next)
}

// SetTarget replaces the whole target. It takes effect at the next tick.
func (e *Ensemble) SetTarget(t metropolis.Target) error {
	e.targetMu.Lock()
	defer e.targetMu.Unlock()
	return e.storeTarget(t)
}

// storeTarget must be called with targetMu held.
func (e *Ensemble) storeTarget(t metropolis.Target) error {
	if err := t.Validate(); err != nil {
		e.log.Warn("target rejected", zap.Error(err))
		return err
	}
	e.target.Store(&t)
	e.log.Info("target configured",
		zap.Float64("x_mean", t.X.Mean), zap.Float64("x_stddev", t.X.StdDev),
		zap.Float64("y_mean", t.Y.Mean), zap.Float64("y_stddev", t.Y.StdDev),
	)
	return nil
}

func (e *Ensemble) Target() metropolis.Target { return *e.target.Load() }

func (e *Ensemble) SetCoupling(c metropolis.Coupling) error {
	if c != metropolis.SharedDraw && c != metropolis.IndependentDraws {
		return &metropolis.ConfigError{Field: "coupling", Value: float64(c)}
	}
	e.mu.Lock()
	e.coupling = c
	e.mu.Unlock()
	e.log.Info("coupling changed", zap.Stringer("coupling", c))
	return nil
}

func (e *Ensemble) Coupling() metropolis.Coupling {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coupling
}

func (e *Ensemble) AddObserver(o Observer) {
	e.mu.Lock()
	e.observers = append(e.observers, o)
	e.mu.Unlock()
}

func (e *Ensemble) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.particles)
}

func (e *Ensemble) Ticks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

func (e *Ensemble) Dim() metropolis.Dim { return e.dim }
func (e *Ensemble) StepStdDev() float64 { return e.stepStdDev }
