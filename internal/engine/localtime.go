package engine

import (
	"fmt"
	"math"

	"github.com/stochlab/rou-engine/internal/models"
)

// AccumulateLocalTime approximates the boundary local-time process from the
// unreflected signed path: L[0] = 0 and
//
//	L[i] = L[i-1] + sum_c max(0, -X_c[i]) * dt
//
// which for a scalar path is the source experiments' accumulator exactly,
// and for d > 1 aggregates excursions below the orthant boundary. This
// integrates the magnitude of negative excursions as a proxy for local time
// at zero; it is not the exact Skorokhod local time (see
// SkorokhodLocalTime) and its fidelity to the theoretical definition is an
// open point in the source material, so it is preserved rather than fixed.
// The output is non-decreasing by construction.
func AccumulateLocalTime(path models.Path, dt float64) (models.LocalTimeSeries, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", models.ErrInvalidInput)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: step size must be positive, got %g", models.ErrInvalidParameter, dt)
	}

	series := make(models.LocalTimeSeries, len(path))
	series[0] = 0
	for i := 1; i < len(path); i++ {
		increment := 0.0
		for _, v := range path[i] {
			if v < 0 {
				increment += -v
			}
		}
		series[i] = series[i-1] + increment*dt
	}
	return series, nil
}

// SkorokhodLocalTime returns the exact discrete Skorokhod regulator of the
// signed path, L[i] = sum_c -min(0, min_{j<=i} X_c[j]), i.e. the cumulative
// push that keeps the reflected path nonnegative. Companion to
// ReflectSkorokhod; non-decreasing with L[0] = 0 whenever X[0] >= 0.
func SkorokhodLocalTime(path models.Path) (models.LocalTimeSeries, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", models.ErrInvalidInput)
	}

	d := len(path[0])
	runMin := make([]float64, d)
	for c := 0; c < d; c++ {
		runMin[c] = math.Inf(1)
	}
	series := make(models.LocalTimeSeries, len(path))
	for i, x := range path {
		total := 0.0
		for c, v := range x {
			if v < runMin[c] {
				runMin[c] = v
			}
			total += -math.Min(0, runMin[c])
		}
		series[i] = total
	}
	return series, nil
}
