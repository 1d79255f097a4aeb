package engine

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/stochlab/rou-engine/internal/models"
)

// Integrator advances the OU state one explicit Euler-Maruyama step at a
// time: x' = x - Theta(x - mu)dt + Sigma dW. It owns its increment source,
// so two integrators with the same seed produce bit-identical paths.
type Integrator struct {
	params models.ProcessParameters
	grid   models.SimulationGrid
	src    *IncrementSource

	// scratch vectors reused across steps in the multivariate case
	dev   *mat.VecDense
	drift *mat.VecDense
	diff  *mat.VecDense
}

// NewIntegrator validates the configuration and prepares a run.
func NewIntegrator(params models.ProcessParameters, grid models.SimulationGrid, seed uint64) (*Integrator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	src, err := NewIncrementSource(params.Dim, grid.Dt(), seed)
	if err != nil {
		return nil, err
	}
	g := &Integrator{params: params, grid: grid, src: src}
	if params.Dim > 1 {
		g.dev = mat.NewVecDense(params.Dim, nil)
		g.drift = mat.NewVecDense(params.Dim, nil)
		g.diff = mat.NewVecDense(params.Dim, nil)
	}
	return g, nil
}

// Step writes one Euler-Maruyama update of xPrev under increment dW into
// dst and returns it. dst must not alias xPrev.
func (g *Integrator) Step(xPrev, dW, dst []float64) []float64 {
	if len(dst) != g.params.Dim {
		dst = make([]float64, g.params.Dim)
	}
	dt := g.grid.Dt()

	if g.params.Dim == 1 {
		theta := g.params.Theta.At(0, 0)
		sigma := g.params.Sigma.At(0, 0)
		dst[0] = xPrev[0] - theta*(xPrev[0]-g.params.Mu[0])*dt + sigma*dW[0]
		return dst
	}

	for i := 0; i < g.params.Dim; i++ {
		g.dev.SetVec(i, xPrev[i]-g.params.Mu[i])
	}
	g.drift.MulVec(g.params.Theta, g.dev)
	g.diff.MulVec(g.params.Sigma, mat.NewVecDense(len(dW), dW))
	for i := 0; i < g.params.Dim; i++ {
		dst[i] = xPrev[i] - g.drift.AtVec(i)*dt + g.diff.AtVec(i)
	}
	return dst
}

// Integrate runs the full scheme from x0 and returns the signed path of
// exactly N+1 points with Path[0] == x0. Each step consumes a fresh,
// independent increment. An unstable Theta produces a divergent path, not
// an error; choosing stable parameters is the caller's responsibility.
func (g *Integrator) Integrate(x0 []float64) (models.Path, error) {
	if len(x0) != g.params.Dim {
		return nil, fmt.Errorf("%w: x0 has %d components, want %d", models.ErrInvalidParameter, len(x0), g.params.Dim)
	}

	path := make(models.Path, g.grid.N+1)
	path[0] = append([]float64(nil), x0...)

	dW := make([]float64, g.params.Dim)
	for i := 1; i <= g.grid.N; i++ {
		dW = g.src.Draw(dW)
		path[i] = g.Step(path[i-1], dW, make([]float64, g.params.Dim))
	}
	return path, nil
}
