package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stochlab/rou-engine/internal/models"
)

// Autocorrelation computes the biased sample autocorrelation of a scalar
// series up to maxLag inclusive:
//
//	rho(tau) = sum_{t} (x_t - m)(x_{t+tau} - m) / sum_{t} (x_t - m)^2
//
// For a stationary OU component this estimates e^{-theta*tau*dt}.
func Autocorrelation(series []float64, maxLag int) ([]models.LagCorrelation, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty series", models.ErrInvalidInput)
	}
	if maxLag < 0 {
		return nil, fmt.Errorf("%w: negative lag %d", models.ErrInvalidInput, maxLag)
	}
	if maxLag >= len(series) {
		return nil, fmt.Errorf("%w: max lag %d exceeds series length %d", models.ErrInvalidInput, maxLag, len(series))
	}

	mean := stat.Mean(series, nil)
	n := float64(len(series))

	c0 := 0.0
	for _, v := range series {
		dev := v - mean
		c0 += dev * dev
	}
	c0 /= n
	if c0 == 0 {
		return nil, fmt.Errorf("%w: series is constant, autocorrelation undefined", models.ErrInvalidInput)
	}

	out := make([]models.LagCorrelation, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		cov := 0.0
		for t := 0; t+lag < len(series); t++ {
			cov += (series[t] - mean) * (series[t+lag] - mean)
		}
		cov /= n
		out[lag] = models.LagCorrelation{Lag: lag, Rho: cov / c0}
	}
	return out, nil
}

// TheoreticalACF evaluates the closed-form OU autocorrelation e^{-theta*tau}
// on the same lag grid Autocorrelation reports, with tau = lag*dt.
func TheoreticalACF(theta, dt float64, maxLag int) ([]models.LagCorrelation, error) {
	if maxLag < 0 {
		return nil, fmt.Errorf("%w: negative lag %d", models.ErrInvalidInput, maxLag)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: step size must be positive, got %g", models.ErrInvalidParameter, dt)
	}
	out := make([]models.LagCorrelation, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		out[lag] = models.LagCorrelation{Lag: lag, Rho: math.Exp(-theta * float64(lag) * dt)}
	}
	return out, nil
}

// EmpiricalDensity builds a histogram summary of the sample with equal-width
// bins spanning [min, max]. Density is normalised so it integrates to one
// over the binned range.
func EmpiricalDensity(values []float64, bins int) (models.Histogram, error) {
	if len(values) == 0 {
		return models.Histogram{}, fmt.Errorf("%w: empty sample", models.ErrInvalidInput)
	}
	if bins < 1 {
		return models.Histogram{}, fmt.Errorf("%w: bin count must be at least 1, got %d", models.ErrInvalidInput, bins)
	}

	lo := floats.Min(values)
	hi := floats.Max(values)
	if lo == hi {
		// Degenerate sample: widen so the single bin has nonzero width.
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)

	hist := models.Histogram{
		Edges:   make([]float64, bins+1),
		Counts:  make([]int, bins),
		Density: make([]float64, bins),
		Count:   len(values),
	}
	for i := range hist.Edges {
		hist.Edges[i] = lo + float64(i)*width
	}
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		hist.Counts[idx]++
	}
	norm := float64(len(values)) * width
	for i, c := range hist.Counts {
		hist.Density[i] = float64(c) / norm
	}
	return hist, nil
}

// SummaryStats reports sample mean and variance of a scalar sample.
func SummaryStats(values []float64) (models.SummaryStats, error) {
	if len(values) == 0 {
		return models.SummaryStats{}, fmt.Errorf("%w: empty sample", models.ErrInvalidInput)
	}
	// The unbiased estimator divides by n-1, so a single observation reports
	// zero spread instead of NaN.
	if len(values) == 1 {
		return models.SummaryStats{Mean: values[0], Count: 1}, nil
	}
	mean, std := stat.MeanStdDev(values, nil)
	return models.SummaryStats{
		Mean:     mean,
		Variance: std * std,
		StdDev:   std,
		Count:    len(values),
	}, nil
}

// StationaryNormal returns the closed-form stationary law N(mu, sigma^2/2theta)
// of the unconstrained 1D OU process. It is not valid for the reflected
// variant, which has no normal stationary law.
func StationaryNormal(theta, mu, sigma float64) (distuv.Normal, error) {
	if theta <= 0 {
		return distuv.Normal{}, fmt.Errorf("%w: stationary law requires theta > 0, got %g", models.ErrInvalidParameter, theta)
	}
	if sigma <= 0 {
		return distuv.Normal{}, fmt.Errorf("%w: stationary law requires sigma > 0, got %g", models.ErrInvalidParameter, sigma)
	}
	return distuv.Normal{Mu: mu, Sigma: math.Sqrt(sigma * sigma / (2 * theta))}, nil
}
