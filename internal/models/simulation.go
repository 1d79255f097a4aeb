package models

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidParameter flags a malformed process or grid configuration.
// Configuration errors are caller bugs: they are surfaced eagerly and never
// retried or silently defaulted.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrInvalidInput flags malformed data handed to a diagnostics operation.
var ErrInvalidInput = errors.New("invalid input")

// psdTolerance absorbs floating-point noise when checking eigenvalues of
// the diffusion product.
const psdTolerance = 1e-10

// ProcessParameters describes the OU dynamics dX = -Theta(X-Mu)dt + Sigma dW.
type ProcessParameters struct {
	Theta *mat.Dense
	Mu    []float64
	Sigma *mat.Dense
	Dim   int
}

// NewScalarParameters builds 1-dimensional process parameters.
func NewScalarParameters(theta, mu, sigma float64) ProcessParameters {
	return ProcessParameters{
		Theta: mat.NewDense(1, 1, []float64{theta}),
		Mu:    []float64{mu},
		Sigma: mat.NewDense(1, 1, []float64{sigma}),
		Dim:   1,
	}
}

// NewParameters builds d-dimensional process parameters from row-major data.
func NewParameters(theta [][]float64, mu []float64, sigma [][]float64) (ProcessParameters, error) {
	d := len(mu)
	if d < 1 {
		return ProcessParameters{}, fmt.Errorf("%w: mu must have at least one component", ErrInvalidParameter)
	}
	thetaM, err := denseFromRows("theta", theta, d)
	if err != nil {
		return ProcessParameters{}, err
	}
	sigmaM, err := denseFromRows("sigma", sigma, d)
	if err != nil {
		return ProcessParameters{}, err
	}
	params := ProcessParameters{
		Theta: thetaM,
		Mu:    append([]float64(nil), mu...),
		Sigma: sigmaM,
		Dim:   d,
	}
	if err := params.Validate(); err != nil {
		return ProcessParameters{}, err
	}
	return params, nil
}

func denseFromRows(name string, rows [][]float64, d int) (*mat.Dense, error) {
	if len(rows) != d {
		return nil, fmt.Errorf("%w: %s must have %d rows, got %d", ErrInvalidParameter, name, d, len(rows))
	}
	data := make([]float64, 0, d*d)
	for i, row := range rows {
		if len(row) != d {
			return nil, fmt.Errorf("%w: %s row %d must have %d columns, got %d", ErrInvalidParameter, name, i, d, len(row))
		}
		data = append(data, row...)
	}
	return mat.NewDense(d, d, data), nil
}

// Validate checks shape conformance and that Sigma*Sigma^T is positive
// semi-definite. Theta eigenvalues with non-positive real part are NOT an
// error: an unstable drift yields a divergent path, which is a valid outcome.
func (p ProcessParameters) Validate() error {
	if p.Dim < 1 {
		return fmt.Errorf("%w: dimension must be at least 1, got %d", ErrInvalidParameter, p.Dim)
	}
	if len(p.Mu) != p.Dim {
		return fmt.Errorf("%w: mu has %d components, want %d", ErrInvalidParameter, len(p.Mu), p.Dim)
	}
	if p.Theta == nil || p.Sigma == nil {
		return fmt.Errorf("%w: theta and sigma must be set", ErrInvalidParameter)
	}
	if r, c := p.Theta.Dims(); r != p.Dim || c != p.Dim {
		return fmt.Errorf("%w: theta is %dx%d, want %dx%d", ErrInvalidParameter, r, c, p.Dim, p.Dim)
	}
	if r, c := p.Sigma.Dims(); r != p.Dim || c != p.Dim {
		return fmt.Errorf("%w: sigma is %dx%d, want %dx%d", ErrInvalidParameter, r, c, p.Dim, p.Dim)
	}

	// Diffusion product Sigma*Sigma^T must be positive semi-definite.
	var product mat.Dense
	product.Mul(p.Sigma, p.Sigma.T())
	sym := mat.NewSymDense(p.Dim, nil)
	for i := 0; i < p.Dim; i++ {
		for j := i; j < p.Dim; j++ {
			sym.SetSym(i, j, (product.At(i, j)+product.At(j, i))/2)
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return fmt.Errorf("%w: diffusion product eigendecomposition failed", ErrInvalidParameter)
	}
	for _, v := range eig.Values(nil) {
		if v < -psdTolerance {
			return fmt.Errorf("%w: diffusion product is not positive semi-definite (eigenvalue %g)", ErrInvalidParameter, v)
		}
	}
	return nil
}

// Stable reports whether every eigenvalue of Theta has positive real part,
// i.e. the process is mean-reverting and admits a stationary law.
func (p ProcessParameters) Stable() bool {
	if p.Theta == nil {
		return false
	}
	var eig mat.Eigen
	if !eig.Factorize(p.Theta, mat.EigenNone) {
		return false
	}
	for _, v := range eig.Values(nil) {
		if real(v) <= 0 {
			return false
		}
	}
	return true
}

// SimulationGrid fixes the time discretisation for one run: horizon T split
// into N steps of size T/N. Immutable once validated.
type SimulationGrid struct {
	T float64
	N int
}

// Dt returns the derived step size T/N.
func (g SimulationGrid) Dt() float64 {
	return g.T / float64(g.N)
}

// Times returns the N+1 grid points 0, dt, ..., T.
func (g SimulationGrid) Times() []float64 {
	dt := g.Dt()
	times := make([]float64, g.N+1)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times
}

// Validate rejects non-positive horizons and step counts.
func (g SimulationGrid) Validate() error {
	if g.T <= 0 {
		return fmt.Errorf("%w: horizon T must be positive, got %g", ErrInvalidParameter, g.T)
	}
	if g.N < 1 {
		return fmt.Errorf("%w: step count N must be at least 1, got %d", ErrInvalidParameter, g.N)
	}
	return nil
}

// Path is an ordered sequence of N+1 state vectors in R^d indexed by time
// 0, dt, ..., T. It is owned by whoever requested the run and is never
// mutated afterwards except to derive a reflected copy.
type Path [][]float64

// Len returns the number of grid points (N+1).
func (p Path) Len() int { return len(p) }

// Dim returns the state dimension, or 0 for an empty path.
func (p Path) Dim() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0])
}

// Component extracts one scalar coordinate of the path.
func (p Path) Component(c int) []float64 {
	out := make([]float64, len(p))
	for i, x := range p {
		out[i] = x[c]
	}
	return out
}

// Terminal returns the final state, or nil for an empty path.
func (p Path) Terminal() []float64 {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// ReflectedPath is the componentwise non-negative transform of a Path.
// It is always derived from a simulated path, never simulated directly.
type ReflectedPath [][]float64

// LocalTimeSeries approximates the boundary local time on the path's grid:
// N+1 non-negative scalars, non-decreasing, L[0] = 0.
type LocalTimeSeries []float64

// PathEnsemble collects M independent runs under one parameter set and grid.
// Terminals is always populated; Paths only when full paths were requested.
type PathEnsemble struct {
	Paths     []Path
	Terminals [][]float64
	Count     int
}

// LagCorrelation is one sample-autocorrelation point.
type LagCorrelation struct {
	Lag int
	Rho float64
}

// Histogram summarises an empirical density: Edges has len(Counts)+1
// entries and Density integrates to one over the binned range.
type Histogram struct {
	Edges   []float64
	Counts  []int
	Density []float64
	Count   int
}

// SummaryStats holds first and second moments of a sample.
type SummaryStats struct {
	Mean     float64
	Variance float64
	StdDev   float64
	Count    int
}
