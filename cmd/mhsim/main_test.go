package main

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mhsim/internal/config"
	"github.com/san-kum/mhsim/internal/metropolis"
	"github.com/spf13/cobra"
	"go.uber.org/goleak"
)

func parse(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	root := newRootCmd()
	cmd, rest, err := root.Find(append([]string{"run"}, args...))
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestLoadConfig_FlagsOverridePreset(t *testing.T) {
	cmd := parse(t, "--preset", "plane", "--particles", "7", "--seed", "11", "--coupling", "independent")

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dimensions != 2 {
		t.Errorf("dimensions = %d, want 2 from preset", cfg.Dimensions)
	}
	if cfg.Particles != 7 || cfg.Seed != 11 || cfg.Coupling != "independent" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Target.X.StdDev != 0.4 {
		t.Errorf("x stddev = %v, want preset 0.4", cfg.Target.X.StdDev)
	}
}

func TestLoadConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mhsim.yaml")
	body := "particles: 50\ntarget:\n  x:\n    mean: 1\n    stddev: 0.5\n  y:\n    mean: 1\n    stddev: 0.5\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cmd := parse(t, "--config", path, "--x-mean", "3")

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Particles != 50 {
		t.Errorf("particles = %d, want 50 from file", cfg.Particles)
	}
	if cfg.Target.X.Mean != 3 || cfg.Target.X.StdDev != 0.5 {
		t.Errorf("x = %+v, want mean 3 stddev 0.5", cfg.Target.X)
	}
	if cfg.Seed == 0 {
		t.Error("seed should be drawn from the clock")
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	cmd := parse(t, "--x-stddev", "0")

	_, err := loadConfig(cmd)
	if !errors.Is(err, metropolis.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}

	cmd = parse(t, "--preset", "nope")
	if _, err := loadConfig(cmd); err == nil {
		t.Error("unknown preset should fail")
	}
}

func TestDensityCurve(t *testing.T) {
	a := config.DefaultConfig().Target.X
	curve, err := densityCurve(a, 61)
	if err != nil {
		t.Fatal(err)
	}
	if len(curve) != 61 {
		t.Fatalf("len = %d, want 61", len(curve))
	}
	peak := 1 / (a.StdDev * math.Sqrt(2*math.Pi))
	if math.Abs(curve[30]-peak) > 1e-9 {
		t.Errorf("midpoint = %v, want peak %v", curve[30], peak)
	}
	if math.Abs(curve[0]-curve[60]) > 1e-12 {
		t.Errorf("curve not symmetric: %v vs %v", curve[0], curve[60])
	}

	if _, err := densityCurve(metropolis.Axis{Mean: 0, StdDev: -1}, 10); err == nil {
		t.Error("negative stddev should fail")
	}
}

func TestBench_NoLeaks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := newRootCmd()
	root.SetArgs([]string{"bench", "--seeds", "3", "--ticks", "20", "--particles", "16", "--seed", "5", "--log-level", "error"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestBench_RejectsZeroSeeds(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"bench", "--seeds", "0", "--log-level", "error"})
	root.SilenceUsage = true
	root.SilenceErrors = true
	err := root.ExecuteContext(context.Background())
	if !errors.Is(err, metropolis.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestChain_SingleSample(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"chain", "--samples", "1", "--seed", "3", "--log-level", "error"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
}
