package metropolis

import (
	"errors"
	"math"
	"testing"
)

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Target)
		field string
	}{
		{"default", func(*Target) {}, ""},
		{"zero x stddev", func(t *Target) { t.X.StdDev = 0 }, "target.x.stddev"},
		{"negative y stddev", func(t *Target) { t.Y.StdDev = -2 }, "target.y.stddev"},
		{"NaN mean", func(t *Target) { t.X.Mean = math.NaN() }, "target.x.mean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := DefaultTarget()
			tt.mod(&target)
			err := target.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("got %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Error("ConfigError should unwrap to ErrConfiguration")
			}
		})
	}
}

func TestParseCoupling(t *testing.T) {
	for in, want := range map[string]Coupling{"": SharedDraw, "shared": SharedDraw, "independent": IndependentDraws} {
		got, err := ParseCoupling(in)
		if err != nil || got != want {
			t.Errorf("ParseCoupling(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseCoupling("both"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown coupling: got %v, want ErrConfiguration", err)
	}
}

func TestPoint_IsFinite(t *testing.T) {
	if !(Point{X: 1, Y: -2}).IsFinite() {
		t.Error("finite point reported non-finite")
	}
	if (Point{X: math.Inf(-1)}).IsFinite() || (Point{Y: math.NaN()}).IsFinite() {
		t.Error("non-finite point reported finite")
	}
}
