package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stochlab/rou-engine/internal/models"
)

func TestAccumulateLocalTimeKnownPath(t *testing.T) {
	path := models.Path{{1}, {-2}, {0.5}, {-0.5}}
	series, err := AccumulateLocalTime(path, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 0.2, 0.2, 0.25}
	for i, v := range series {
		if math.Abs(v-want[i]) > 1e-12 {
			t.Fatalf("point %d: expected %g, got %g", i, want[i], v)
		}
	}
}

func TestAccumulateLocalTimeMonotone(t *testing.T) {
	params := models.NewScalarParameters(0.7, 0, 0.3)
	grid := models.SimulationGrid{T: 20, N: 4000}
	integrator, _ := NewIntegrator(params, grid, 13)
	path, _ := integrator.Integrate([]float64{-1})

	series, err := AccumulateLocalTime(path, grid.Dt())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != path.Len() {
		t.Fatalf("series length %d does not match path length %d", len(series), path.Len())
	}
	if series[0] != 0 {
		t.Fatalf("local time must start at zero, got %g", series[0])
	}
	for i := 1; i < len(series); i++ {
		if series[i] < series[i-1] {
			t.Fatalf("local time decreased at %d: %g -> %g", i, series[i-1], series[i])
		}
	}
}

func TestAccumulateLocalTimePositivePathIsZero(t *testing.T) {
	path := models.Path{{1}, {2}, {0.5}, {3}}
	series, err := AccumulateLocalTime(path, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range series {
		if v != 0 {
			t.Fatalf("positive path accrued local time at %d: %g", i, v)
		}
	}
}

func TestAccumulateLocalTimeRejectsBadInput(t *testing.T) {
	if _, err := AccumulateLocalTime(nil, 0.1); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty path, got %v", err)
	}
	if _, err := AccumulateLocalTime(models.Path{{1}}, 0); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for dt=0, got %v", err)
	}
}

func TestSkorokhodLocalTimeKnownPath(t *testing.T) {
	path := models.Path{{1}, {-2}, {0.5}, {-0.5}}
	series, err := SkorokhodLocalTime(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 2, 2, 2}
	for i, v := range series {
		if v != want[i] {
			t.Fatalf("point %d: expected %g, got %g", i, want[i], v)
		}
	}
	for i := 1; i < len(series); i++ {
		if series[i] < series[i-1] {
			t.Fatalf("regulator decreased at %d", i)
		}
	}
}
