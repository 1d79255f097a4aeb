package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stochlab/rou-engine/internal/models"
)

func TestAutocorrelationLagZeroIsOne(t *testing.T) {
	series := []float64{1, 2, 3, 2, 1, 0, -1, 0}
	acf, err := Autocorrelation(series, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acf) != 4 {
		t.Fatalf("expected 4 lags, got %d", len(acf))
	}
	if acf[0].Lag != 0 || math.Abs(acf[0].Rho-1) > 1e-12 {
		t.Fatalf("rho(0) must be 1, got %g", acf[0].Rho)
	}
}

func TestAutocorrelationMatchesOUDecay(t *testing.T) {
	// For theta=0.7 the stationary ACF is e^{-0.7 tau}; at tau=5 that is
	// e^{-3.5} ~ 0.0302. One long path keeps the sampling error small.
	const (
		theta = 0.7
		dt    = 0.02
	)
	params := models.NewScalarParameters(theta, 0, 0.3)
	grid := models.SimulationGrid{T: 4000, N: 200000}

	integrator, err := NewIntegrator(params, grid, 3571)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path, err := integrator.Integrate([]float64{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lagTau5 := int(5 / dt)
	acf, err := Autocorrelation(path.Component(0), lagTau5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	theory, err := TheoreticalACF(theta, dt, lagTau5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lagTau1 := int(1 / dt)
	if diff := math.Abs(acf[lagTau1].Rho - theory[lagTau1].Rho); diff > 0.08 {
		t.Fatalf("rho(1) off by %g: empirical %g vs theoretical %g", diff, acf[lagTau1].Rho, theory[lagTau1].Rho)
	}
	if diff := math.Abs(acf[lagTau5].Rho - theory[lagTau5].Rho); diff > 0.08 {
		t.Fatalf("rho(5) off by %g: empirical %g vs theoretical %g", diff, acf[lagTau5].Rho, theory[lagTau5].Rho)
	}
	if acf[lagTau1].Rho < acf[lagTau5].Rho {
		t.Fatalf("autocorrelation should decay: rho(1)=%g < rho(5)=%g", acf[lagTau1].Rho, acf[lagTau5].Rho)
	}
}

func TestAutocorrelationRejectsBadInput(t *testing.T) {
	if _, err := Autocorrelation(nil, 1); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty series, got %v", err)
	}
	if _, err := Autocorrelation([]float64{1, 2, 3}, -1); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative lag, got %v", err)
	}
	if _, err := Autocorrelation([]float64{1, 2, 3}, 3); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for oversized lag, got %v", err)
	}
	if _, err := Autocorrelation([]float64{2, 2, 2}, 1); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for constant series, got %v", err)
	}
}

func TestEmpiricalDensity(t *testing.T) {
	values := []float64{0, 0.1, 0.2, 0.5, 0.9, 1}
	hist, err := EmpiricalDensity(values, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hist.Edges) != 3 || len(hist.Counts) != 2 {
		t.Fatalf("unexpected histogram shape: %d edges, %d bins", len(hist.Edges), len(hist.Counts))
	}
	total := 0
	for _, c := range hist.Counts {
		total += c
	}
	if total != len(values) {
		t.Fatalf("counts sum to %d, want %d", total, len(values))
	}

	// Density should integrate to one over the binned range.
	integral := 0.0
	width := hist.Edges[1] - hist.Edges[0]
	for _, d := range hist.Density {
		integral += d * width
	}
	if math.Abs(integral-1) > 1e-9 {
		t.Fatalf("density integrates to %g, want 1", integral)
	}
}

func TestEmpiricalDensityDegenerateSample(t *testing.T) {
	hist, err := EmpiricalDensity([]float64{3, 3, 3}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := 0
	for _, c := range hist.Counts {
		total += c
	}
	if total != 3 {
		t.Fatalf("degenerate sample lost values: %d of 3", total)
	}
}

func TestEmpiricalDensityRejectsBadInput(t *testing.T) {
	if _, err := EmpiricalDensity(nil, 4); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty values, got %v", err)
	}
	if _, err := EmpiricalDensity([]float64{1}, 0); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for bins=0, got %v", err)
	}
}

func TestStationaryNormal(t *testing.T) {
	dist, err := StationaryNormal(0.7, 1, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantVar := 0.3 * 0.3 / (2 * 0.7)
	if math.Abs(dist.Sigma*dist.Sigma-wantVar) > 1e-12 {
		t.Fatalf("stationary variance %g, want %g", dist.Sigma*dist.Sigma, wantVar)
	}
	if dist.Mu != 1 {
		t.Fatalf("stationary mean %g, want 1", dist.Mu)
	}

	if _, err := StationaryNormal(0, 0, 0.3); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for theta=0, got %v", err)
	}
	if _, err := StationaryNormal(0.7, 0, 0); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for sigma=0, got %v", err)
	}
}

func TestSummaryStats(t *testing.T) {
	stats, err := SummaryStats([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Mean != 2.5 || stats.Count != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := SummaryStats(nil); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty sample, got %v", err)
	}
}

func TestSummaryStatsSingleSample(t *testing.T) {
	stats, err := SummaryStats([]float64{1.25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Mean != 1.25 || stats.Count != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if math.IsNaN(stats.Variance) || math.IsNaN(stats.StdDev) {
		t.Fatalf("single-sample moments must be finite: %+v", stats)
	}
	if stats.Variance != 0 || stats.StdDev != 0 {
		t.Fatalf("single sample has zero spread: %+v", stats)
	}
}
