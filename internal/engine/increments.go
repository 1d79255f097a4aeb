package engine

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stochlab/rou-engine/internal/models"
)

// IncrementSource produces the Brownian increments dW driving one
// integration run: independent N(0, dt) draws per component. The random
// source is explicit and seeded, never ambient global state, so runs are
// reproducible and safe to fan out.
type IncrementSource struct {
	dim    int
	sqrtDt float64
	normal distuv.Normal
}

// NewIncrementSource builds a source for d-vectors at step size dt.
func NewIncrementSource(dim int, dt float64, seed uint64) (*IncrementSource, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: increment dimension must be at least 1, got %d", models.ErrInvalidParameter, dim)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: step size must be positive, got %g", models.ErrInvalidParameter, dt)
	}
	return &IncrementSource{
		dim:    dim,
		sqrtDt: math.Sqrt(dt),
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)},
	}, nil
}

// Dim returns the increment dimension.
func (s *IncrementSource) Dim() int { return s.dim }

// Draw fills dst with one d-vector of independent N(0, dt) increments and
// returns it. A nil dst is allocated; an ill-sized dst is replaced.
func (s *IncrementSource) Draw(dst []float64) []float64 {
	if len(dst) != s.dim {
		dst = make([]float64, s.dim)
	}
	for i := range dst {
		dst[i] = s.normal.Rand() * s.sqrtDt
	}
	return dst
}
