package ensemble

import (
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mhsim/internal/metropolis"
)

// stubRand answers Normal through fn and always returns u from Uniform.
type stubRand struct {
	fn func(mean, stddev float64) float64
	u  float64
}

func (s *stubRand) Normal(mean, stddev float64) float64 { return s.fn(mean, stddev) }
func (s *stubRand) Uniform() float64                    { return s.u }

type recordingObserver struct {
	mu    sync.Mutex
	ticks []TickStats
	sizes []int
}

func (r *recordingObserver) OnTick(snapshot []metropolis.Point, stats TickStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, stats)
	r.sizes = append(r.sizes, len(snapshot))
}

func baseOptions() Options {
	return Options{
		Target:     metropolis.DefaultTarget(),
		Dim:        metropolis.Dim1,
		Particles:  8,
		Seed:       42,
		StepStdDev: 0.2,
	}
}

func allFinite(points []metropolis.Point) bool {
	for _, p := range points {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

var _ = Describe("Ensemble", func() {
	Describe("New", func() {
		DescribeTable("rejects invalid options",
			func(mod func(*Options), field string) {
				opts := baseOptions()
				mod(&opts)
				_, err := New(opts)
				Expect(err).To(MatchError(metropolis.ErrConfiguration))
				var ce *metropolis.ConfigError
				Expect(err).To(BeAssignableToTypeOf(ce))
				Expect(err.(*metropolis.ConfigError).Field).To(Equal(field))
			},
			Entry("zero stddev", func(o *Options) { o.Target.X.StdDev = 0 }, "target.x.stddev"),
			Entry("negative y stddev", func(o *Options) { o.Target.Y.StdDev = -1 }, "target.y.stddev"),
			Entry("no particles", func(o *Options) { o.Particles = 0 }, "particles"),
			Entry("bad dimension", func(o *Options) { o.Dim = 3 }, "dimensions"),
			Entry("zero proposal stddev", func(o *Options) { o.StepStdDev = 0 }, "proposal_stddev"),
			Entry("unknown coupling", func(o *Options) { o.Coupling = 9 }, "coupling"),
		)

		It("draws initial positions from the target", func() {
			opts := baseOptions()
			opts.Dim = metropolis.Dim2
			opts.Particles = 2000
			opts.Target.Y = metropolis.Axis{Mean: -3, StdDev: 0.5}
			e, err := New(opts)
			Expect(err).NotTo(HaveOccurred())

			var sx, sy float64
			for _, p := range e.Snapshot() {
				sx += p.X
				sy += p.Y
			}
			Expect(sx / 2000).To(BeNumerically("~", 2.0, 0.03))
			Expect(sy / 2000).To(BeNumerically("~", -3.0, 0.05))
		})
	})

	Describe("Tick", func() {
		It("keeps the particle count and finite positions", func() {
			for _, dim := range []metropolis.Dim{metropolis.Dim1, metropolis.Dim2} {
				opts := baseOptions()
				opts.Dim = dim
				e, err := New(opts)
				Expect(err).NotTo(HaveOccurred())

				for i := 0; i < 200; i++ {
					stats := e.Tick()
					Expect(stats.Particles).To(Equal(8))
					Expect(stats.Anomalies).To(BeZero())
				}
				snap := e.Snapshot()
				Expect(snap).To(HaveLen(8))
				Expect(allFinite(snap)).To(BeTrue())
				Expect(e.Ticks()).To(Equal(200))
			}
		})

		It("keeps 1D walkers on the x axis", func() {
			e, err := New(baseOptions())
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 20; i++ {
				e.Tick()
			}
			for _, p := range e.Snapshot() {
				Expect(p.Y).To(BeZero())
			}
		})

		It("is reproducible for a seed regardless of worker count", func() {
			run := func(workers int) []metropolis.Point {
				opts := baseOptions()
				opts.Dim = metropolis.Dim2
				opts.Particles = 300
				opts.Workers = workers
				opts.MinChunk = 1
				e, err := New(opts)
				Expect(err).NotTo(HaveOccurred())
				for i := 0; i < 25; i++ {
					e.Tick()
				}
				return e.Snapshot()
			}
			Expect(run(8)).To(Equal(run(1)))
		})

		It("stays on the mean when proposals land on the mean", func() {
			opts := baseOptions()
			opts.Particles = 1
			opts.NewRand = func() metropolis.Rand {
				return &stubRand{fn: func(float64, float64) float64 { return 2.0 }, u: 0.999}
			}
			e, err := New(opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Snapshot()[0].X).To(Equal(2.0))

			for i := 0; i < 10; i++ {
				e.Tick()
				Expect(e.Snapshot()[0].X).To(Equal(2.0))
				Expect(e.Candidates()[0].Accept[0]).To(Equal(1.0))
			}
		})

		It("treats non-finite proposals as rejections", func() {
			opts := baseOptions()
			opts.Particles = 4
			opts.NewRand = func() metropolis.Rand {
				calls := 0
				return &stubRand{fn: func(mean, _ float64) float64 {
					calls++
					if calls == 1 {
						return mean
					}
					return math.NaN()
				}}
			}
			e, err := New(opts)
			Expect(err).NotTo(HaveOccurred())
			before := e.Snapshot()

			stats := e.Tick()
			Expect(stats.Anomalies).To(Equal(4))
			Expect(stats.Moved).To(BeZero())
			Expect(e.Snapshot()).To(Equal(before))
		})

		It("notifies observers after each tick", func() {
			e, err := New(baseOptions())
			Expect(err).NotTo(HaveOccurred())
			obs := &recordingObserver{}
			e.AddObserver(obs)

			e.Tick()
			e.Tick()
			Expect(obs.ticks).To(HaveLen(2))
			Expect(obs.ticks[1].Tick).To(Equal(2))
			Expect(obs.sizes).To(Equal([]int{8, 8}))
		})
	})

	Describe("Reset", func() {
		It("replaces particles with fresh draws", func() {
			e, err := New(baseOptions())
			Expect(err).NotTo(HaveOccurred())
			before := e.Snapshot()
			e.Tick()
			e.Reset()

			after := e.Snapshot()
			Expect(after).To(HaveLen(len(before)))
			Expect(after).NotTo(Equal(before))
			Expect(e.Ticks()).To(BeZero())
		})

		It("samples the target mean over many resets", func() {
			opts := baseOptions()
			opts.Particles = 1
			e, err := New(opts)
			Expect(err).NotTo(HaveOccurred())

			const resets = 10000
			sum := 0.0
			for i := 0; i < resets; i++ {
				e.Reset()
				sum += e.Snapshot()[0].X
			}
			Expect(sum / resets).To(BeNumerically("~", 2.0, 0.01))
		})

		It("draws from the target configured at reset time", func() {
			opts := baseOptions()
			opts.Particles = 500
			e, err := New(opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Configure(-10, 0.1, AxisX)).To(Succeed())
			e.Reset()

			sum := 0.0
			for _, p := range e.Snapshot() {
				sum += p.X
			}
			Expect(sum / 500).To(BeNumerically("~", -10, 0.05))
		})
	})

	Describe("Resize", func() {
		It("grows and shrinks to exactly n", func() {
			e, err := New(baseOptions())
			Expect(err).NotTo(HaveOccurred())
			head := e.Snapshot()[:3]

			Expect(e.Resize(20)).To(Succeed())
			Expect(e.Len()).To(Equal(20))
			Expect(allFinite(e.Snapshot())).To(BeTrue())

			Expect(e.Resize(3)).To(Succeed())
			Expect(e.Snapshot()).To(Equal(head))
		})

		It("rejects non-positive sizes", func() {
			e, err := New(baseOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Resize(0)).To(MatchError(metropolis.ErrConfiguration))
			Expect(e.Resize(-2)).To(MatchError(metropolis.ErrConfiguration))
			Expect(e.Len()).To(Equal(8))
		})
	})

	Describe("Configure", func() {
		It("updates a single axis", func() {
			e, err := New(baseOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Configure(5, 1, AxisY)).To(Succeed())
			Expect(e.Target().X).To(Equal(metropolis.Axis{Mean: 2, StdDev: 0.2}))
			Expect(e.Target().Y).To(Equal(metropolis.Axis{Mean: 5, StdDev: 1}))
		})

		It("keeps the previous target when rejected", func() {
			e, err := New(baseOptions())
			Expect(err).NotTo(HaveOccurred())
			before := e.Target()
			Expect(e.Configure(1, 0, AxisBoth)).To(MatchError(metropolis.ErrConfiguration))
			Expect(e.Configure(1, -0.3, AxisX)).To(MatchError(metropolis.ErrConfiguration))
			Expect(e.Target()).To(Equal(before))
		})

		It("can be called while ticking", func() {
			opts := baseOptions()
			opts.Particles = 256
			opts.MinChunk = 16
			e, err := New(opts)
			Expect(err).NotTo(HaveOccurred())

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < 100; i++ {
					Expect(e.Configure(float64(i%5), 0.1+float64(i%3), AxisBoth)).To(Succeed())
				}
			}()
			for i := 0; i < 100; i++ {
				e.Tick()
			}
			wg.Wait()
			Expect(allFinite(e.Snapshot())).To(BeTrue())
		})

		It("keeps concurrent updates to different axes", func() {
			e, err := New(baseOptions())
			Expect(err).NotTo(HaveOccurred())

			const n = 20000
			var wg sync.WaitGroup
			wg.Add(2)
			for _, w := range []struct {
				axis AxisSelector
				sign float64
			}{{AxisX, 1}, {AxisY, -1}} {
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					for i := 1; i <= n; i++ {
						Expect(e.Configure(w.sign*float64(i), 1, w.axis)).To(Succeed())
					}
				}()
			}
			wg.Wait()

			Expect(e.Target().X).To(Equal(metropolis.Axis{Mean: n, StdDev: 1}))
			Expect(e.Target().Y).To(Equal(metropolis.Axis{Mean: -n, StdDev: 1}))
		})
	})

	Describe("SetCoupling", func() {
		It("switches between shared and independent draws", func() {
			opts := baseOptions()
			opts.Dim = metropolis.Dim2
			e, err := New(opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Coupling()).To(Equal(metropolis.SharedDraw))
			Expect(e.SetCoupling(metropolis.IndependentDraws)).To(Succeed())
			Expect(e.Coupling()).To(Equal(metropolis.IndependentDraws))
			Expect(e.SetCoupling(7)).To(MatchError(metropolis.ErrConfiguration))
		})
	})
})
