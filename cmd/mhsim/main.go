package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mhsim/internal/config"
	"github.com/san-kum/mhsim/internal/ensemble"
	"github.com/san-kum/mhsim/internal/gaussian"
	"github.com/san-kum/mhsim/internal/logging"
	"github.com/san-kum/mhsim/internal/metrics"
	"github.com/san-kum/mhsim/internal/metropolis"
	"github.com/san-kum/mhsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var (
	configFile string
	preset     string
	dimensions int
	particles  int
	seed       uint64
	stepStdDev float64
	coupling   string
	workers    int
	frameRate  int
	xMean      float64
	xStdDev    float64
	yMean      float64
	yStdDev    float64
	logLevel   string
	logFormat  string
	logFile    string

	ticks    int
	bins     int
	jsonOut  bool
	samples  int
	seeds    int
	theme    string
	curveLen int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mhsim",
		Short: "metropolis-hastings random walk simulator",
		RunE:  runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.IntVar(&dimensions, "dims", config.DefaultDimensions, "dimensions (1 or 2)")
	pf.IntVar(&particles, "particles", config.DefaultParticles, "number of walkers")
	pf.Uint64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	pf.Float64Var(&stepStdDev, "step", config.DefaultProposalStdDev, "proposal standard deviation")
	pf.StringVar(&coupling, "coupling", "shared", "2D uniform draws: shared or independent")
	pf.IntVar(&workers, "workers", 0, "tick workers (0 = GOMAXPROCS)")
	pf.Float64Var(&xMean, "x-mean", 2.0, "target mean along x")
	pf.Float64Var(&xStdDev, "x-stddev", 0.2, "target stddev along x")
	pf.Float64Var(&yMean, "y-mean", 2.0, "target mean along y")
	pf.Float64Var(&yStdDev, "y-stddev", 0.2, "target stddev along y")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")
	pf.StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format: console or json")
	pf.StringVar(&logFile, "log-file", "", "also write JSON logs to this rotated file")

	rootCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	rootCmd.Flags().StringVar(&theme, "theme", "dark", "color theme")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate the ensemble in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", "dark", "color theme")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "advance the ensemble headless and summarise",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&ticks, "ticks", 1000, "ticks to run")
	runCmd.Flags().IntVar(&bins, "bins", 40, "histogram bins")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print the final snapshot as JSON")

	chainCmd := &cobra.Command{
		Use:   "chain",
		Short: "draw samples with the rejection loop along x",
		RunE:  runChain,
	}
	chainCmd.Flags().IntVar(&samples, "samples", 20, "accepted samples to draw")

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "plot the target density",
		RunE:  plotCurve,
	}
	curveCmd.Flags().IntVar(&curveLen, "points", 60, "points across mean ± 4σ")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run ensembles for several seeds concurrently",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&ticks, "ticks", 1000, "ticks per ensemble")
	benchCmd.Flags().IntVar(&seeds, "seeds", 8, "number of seeds")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDIMS\tPARTICLES\tSTEP\tCOUPLING\tTARGET")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%.3g\t%s\tx=%v±%v y=%v±%v\n",
					name, p.Dimensions, p.Particles, p.ProposalStdDev, p.Coupling,
					p.Target.X.Mean, p.Target.X.StdDev, p.Target.Y.Mean, p.Target.Y.StdDev)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, chainCmd, curveCmd, benchCmd, presetsCmd)
	return rootCmd
}

// loadConfig layers defaults, preset, config file and explicitly set flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("dims") {
		cfg.Dimensions = dimensions
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("step") {
		cfg.ProposalStdDev = stepStdDev
	}
	if flags.Changed("coupling") {
		cfg.Coupling = coupling
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("x-mean") {
		cfg.Target.X.Mean = xMean
	}
	if flags.Changed("x-stddev") {
		cfg.Target.X.StdDev = xStdDev
	}
	if flags.Changed("y-mean") {
		cfg.Target.Y.Mean = yMean
	}
	if flags.Changed("y-stddev") {
		cfg.Target.Y.StdDev = yStdDev
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newEnsemble(cfg *config.Config, seed uint64, log *zap.Logger) (*ensemble.Ensemble, error) {
	return ensemble.New(ensemble.Options{
		Target:     cfg.Target,
		Dim:        cfg.Dim(),
		Particles:  cfg.Particles,
		Seed:       seed,
		StepStdDev: cfg.ProposalStdDev,
		Coupling:   cfg.CouplingMode(),
		Workers:    cfg.Workers,
		Logger:     log,
	})
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal belongs to the view; only the log file receives output.
	log, err := logging.NewWithWriter(cfg.Log, zapcore.AddSync(io.Discard))
	if err != nil {
		return err
	}
	defer log.Sync()

	ens, err := newEnsemble(cfg, cfg.Seed, log)
	if err != nil {
		return err
	}
	return viz.Run(ens, cfg.FPS, theme, log)
}

type snapshotDoc struct {
	Seed       uint64             `json:"seed"`
	Dimensions int                `json:"dimensions"`
	Ticks      int                `json:"ticks"`
	Target     metropolis.Target  `json:"target"`
	Positions  []metropolis.Point `json:"positions"`
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ens, err := newEnsemble(cfg, cfg.Seed, log)
	if err != nil {
		return err
	}
	rate := metrics.NewAcceptanceRate()
	lo := cfg.Target.X.Mean - 4*cfg.Target.X.StdDev
	hi := cfg.Target.X.Mean + 4*cfg.Target.X.StdDev
	hist := metrics.NewHistogram(metrics.X, lo, hi, bins)
	ens.AddObserver(rate)
	ens.AddObserver(hist)

	ctx := cmd.Context()
	start := time.Now()
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ens.Tick()
	}
	elapsed := time.Since(start)

	snap := ens.Snapshot()
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshotDoc{
			Seed:       cfg.Seed,
			Dimensions: cfg.Dimensions,
			Ticks:      ens.Ticks(),
			Target:     ens.Target(),
			Positions:  snap,
		})
	}

	log.Info("run complete",
		zap.Int("ticks", ticks),
		zap.Duration("elapsed", elapsed),
		zap.Float64("acceptance", rate.Value()),
		zap.Int("anomalies", rate.Anomalies()),
	)

	fmt.Printf("seed: %d\n", cfg.Seed)
	fmt.Printf("ticks: %d in %v\n", ens.Ticks(), elapsed)
	fmt.Printf("walkers: %d\n", len(snap))
	fmt.Printf("acceptance: %.2f%%\n", 100*rate.Value())
	mx, sx := metrics.Summarize(snap, metrics.X)
	fmt.Printf("x: mean %.4f  std %.4f  (target %.4f ± %.4f)\n", mx, sx, cfg.Target.X.Mean, cfg.Target.X.StdDev)
	if cfg.Dim() == metropolis.Dim2 {
		my, sy := metrics.Summarize(snap, metrics.Y)
		fmt.Printf("y: mean %.4f  std %.4f  (target %.4f ± %.4f)\n", my, sy, cfg.Target.Y.Mean, cfg.Target.Y.StdDev)
	}
	if hist.Total() > 0 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(hist.Density(),
			asciigraph.Height(10), asciigraph.Caption(fmt.Sprintf("x positions over [%.2f, %.2f)", lo, hi))))
	}
	return nil
}

func runChain(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	r := gaussian.NewSeededSampler(cfg.Seed, 0)
	res, err := metropolis.RunChain(r, cfg.Target.X, samples, func(c, p float64, accepted bool) {
		if !accepted {
			log.Debug("candidate rejected", zap.Float64("candidate", c), zap.Float64("p_accept", p))
		}
	})
	if err != nil {
		return err
	}

	mean, std := metrics.SummarizeValues(res.Samples)
	fmt.Printf("samples: %d  rejections: %d\n", len(res.Samples), res.Rejections)
	fmt.Printf("mean %.4f  std %.4f  (target %.4f ± %.4f)\n", mean, std, cfg.Target.X.Mean, cfg.Target.X.StdDev)
	if len(res.Samples) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(res.Samples, asciigraph.Height(8), asciigraph.Caption("chain")))
	}
	return nil
}

func plotCurve(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	axes := []struct {
		name string
		axis metropolis.Axis
	}{{"x", cfg.Target.X}}
	if cfg.Dim() == metropolis.Dim2 {
		axes = append(axes, struct {
			name string
			axis metropolis.Axis
		}{"y", cfg.Target.Y})
	}

	for _, a := range axes {
		curve, err := densityCurve(a.axis, curveLen)
		if err != nil {
			return fmt.Errorf("%s axis: %w", a.name, err)
		}
		fmt.Println(asciigraph.Plot(curve, asciigraph.Height(12),
			asciigraph.Caption(fmt.Sprintf("%s ~ N(%.3f, %.3f²) over mean ± 4σ", a.name, a.axis.Mean, a.axis.StdDev))))
		fmt.Println()
	}
	return nil
}

func densityCurve(a metropolis.Axis, n int) ([]float64, error) {
	if n < 2 {
		n = 2
	}
	lo := a.Mean - 4*a.StdDev
	step := 8 * a.StdDev / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		d, err := gaussian.Density(a.Mean, a.StdDev, lo+float64(i)*step)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

type benchResult struct {
	seed       uint64
	elapsed    time.Duration
	acceptance float64
	meanX      float64
	stdX       float64
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	if seeds <= 0 {
		return &metropolis.ConfigError{Field: "seeds", Value: float64(seeds)}
	}

	results := make([]benchResult, seeds)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.NumCPU())

	for i := range results {
		s := cfg.Seed + uint64(i)
		g.Go(func() error {
			ens, err := newEnsemble(cfg, s, log.With(zap.Uint64("seed", s)))
			if err != nil {
				return err
			}
			rate := metrics.NewAcceptanceRate()
			ens.AddObserver(rate)

			start := time.Now()
			for t := 0; t < ticks; t++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				ens.Tick()
			}
			mx, sx := metrics.Summarize(ens.Snapshot(), metrics.X)
			results[i] = benchResult{
				seed:       s,
				elapsed:    time.Since(start),
				acceptance: rate.Value(),
				meanX:      mx,
				stdX:       sx,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("benchmarking %d walkers x %d ticks over %d seeds\n\n", cfg.Particles, ticks, seeds)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTIME\tSTEPS/SEC\tACCEPT\tMEAN X\tSTD X")
	for _, r := range results {
		steps := float64(ticks * cfg.Particles)
		fmt.Fprintf(w, "%d\t%v\t%.0f\t%.2f%%\t%.4f\t%.4f\n",
			r.seed, r.elapsed.Round(time.Microsecond), steps/r.elapsed.Seconds(), 100*r.acceptance, r.meanX, r.stdX)
	}
	return w.Flush()
}
