package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stochlab/rou-engine/internal/models"
)

func TestRunEnsembleShapes(t *testing.T) {
	params := models.NewScalarParameters(0.7, 0, 0.3)
	grid := models.SimulationGrid{T: 1, N: 50}

	full, err := RunEnsemble(params, grid, []float64{0}, 10, false, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full.Count != 10 || len(full.Paths) != 10 || len(full.Terminals) != 10 {
		t.Fatalf("unexpected ensemble shape: %+v", full.Count)
	}
	for i, path := range full.Paths {
		if path.Len() != grid.N+1 {
			t.Fatalf("path %d has %d points, want %d", i, path.Len(), grid.N+1)
		}
	}

	terminals, err := RunEnsemble(params, grid, []float64{0}, 10, true, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if terminals.Paths != nil {
		t.Fatalf("terminal-only ensemble should not retain paths")
	}
	if len(terminals.Terminals) != 10 {
		t.Fatalf("expected 10 terminal states, got %d", len(terminals.Terminals))
	}
}

func TestRunEnsembleDeterministic(t *testing.T) {
	params := models.NewScalarParameters(0.7, 0, 0.3)
	grid := models.SimulationGrid{T: 1, N: 100}

	a, _ := RunEnsemble(params, grid, []float64{0}, 200, true, 77)
	b, _ := RunEnsemble(params, grid, []float64{0}, 200, true, 77)
	for i := range a.Terminals {
		if a.Terminals[i][0] != b.Terminals[i][0] {
			t.Fatalf("ensembles diverge at path %d", i)
		}
	}
}

func TestRunEnsemblePathsIndependent(t *testing.T) {
	params := models.NewScalarParameters(0.7, 0, 0.3)
	grid := models.SimulationGrid{T: 1, N: 100}

	ens, _ := RunEnsemble(params, grid, []float64{0}, 50, true, 5)
	distinct := map[float64]bool{}
	for _, term := range ens.Terminals {
		distinct[term[0]] = true
	}
	if len(distinct) < 45 {
		t.Fatalf("terminal values suspiciously repetitive: %d distinct of 50", len(distinct))
	}
}

func TestStationaryVarianceMatchesTheory(t *testing.T) {
	// theta=0.7, sigma=0.3: stationary variance sigma^2/(2 theta) ~ 0.0643.
	params := models.NewScalarParameters(0.7, 0, 0.3)
	grid := models.SimulationGrid{T: 50, N: 2500}

	ens, err := RunEnsemble(params, grid, []float64{0}, 10000, true, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sample, err := TerminalComponent(ens, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, err := SummaryStats(sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	theoretical := 0.3 * 0.3 / (2 * 0.7)
	if math.Abs(stats.Variance-theoretical) > 0.1*theoretical {
		t.Fatalf("terminal variance %g outside 10%% of theoretical %g", stats.Variance, theoretical)
	}
	if math.Abs(stats.Mean) > 0.02 {
		t.Fatalf("terminal mean %g too far from mu=0", stats.Mean)
	}
}

func TestMeanReversionControlsSpread(t *testing.T) {
	// With sigma fixed, weak reversion spreads terminal values; strong
	// reversion pins them to mu.
	grid := models.SimulationGrid{T: 10, N: 1000}

	weak, _ := RunEnsemble(models.NewScalarParameters(0.05, 0, 0.3), grid, []float64{0}, 2000, true, 8)
	strong, _ := RunEnsemble(models.NewScalarParameters(5, 0, 0.3), grid, []float64{0}, 2000, true, 8)

	weakSample, _ := TerminalComponent(weak, 0)
	strongSample, _ := TerminalComponent(strong, 0)
	weakStats, _ := SummaryStats(weakSample)
	strongStats, _ := SummaryStats(strongSample)

	if weakStats.Variance < 10*strongStats.Variance {
		t.Fatalf("expected weak reversion variance (%g) to dominate strong reversion variance (%g)",
			weakStats.Variance, strongStats.Variance)
	}
	if math.Abs(strongStats.Mean) > 0.05 {
		t.Fatalf("strong reversion mean %g should hug mu=0", strongStats.Mean)
	}
}

func TestRunEnsembleRejectsBadInput(t *testing.T) {
	params := models.NewScalarParameters(0.7, 0, 0.3)
	grid := models.SimulationGrid{T: 1, N: 10}

	if _, err := RunEnsemble(params, grid, []float64{0}, 0, true, 1); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for count=0, got %v", err)
	}
	if _, err := RunEnsemble(params, grid, []float64{0, 1}, 5, true, 1); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for mismatched x0, got %v", err)
	}
	if _, err := TerminalComponent(models.PathEnsemble{}, 0); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty ensemble, got %v", err)
	}
}
