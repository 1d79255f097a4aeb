package engine

import (
	"fmt"
	"math"

	"github.com/stochlab/rou-engine/internal/models"
)

// Reflect applies the componentwise absolute-value projection |X[i]| used
// by the source experiments. This is a cosmetic approximation of reflection
// at the zero boundary: the drift and diffusion are not adjusted at the
// boundary, so it does not reproduce the dynamics of a true reflected
// process. It is kept as its own named policy rather than corrected; for
// the exact boundary map see ReflectSkorokhod. In two dimensions the same
// projection applies independently per coordinate, folding the path into
// the nonnegative orthant.
func Reflect(path models.Path) models.ReflectedPath {
	out := make(models.ReflectedPath, len(path))
	for i, x := range path {
		row := make([]float64, len(x))
		for c, v := range x {
			row[c] = math.Abs(v)
		}
		out[i] = row
	}
	return out
}

// ReflectSkorokhod applies the one-sided Skorokhod map at the zero boundary
// componentwise: Y[i] = X[i] - min(0, min_{j<=i} X[j]). Unlike Reflect this
// is the exact pathwise solution of the reflection problem for the
// discretised signed path.
func ReflectSkorokhod(path models.Path) models.ReflectedPath {
	out := make(models.ReflectedPath, len(path))
	if len(path) == 0 {
		return out
	}
	d := len(path[0])
	runMin := make([]float64, d)
	for c := 0; c < d; c++ {
		runMin[c] = math.Inf(1)
	}
	for i, x := range path {
		row := make([]float64, d)
		for c, v := range x {
			if v < runMin[c] {
				runMin[c] = v
			}
			row[c] = v - math.Min(0, runMin[c])
		}
		out[i] = row
	}
	return out
}

// ApplyReflection dispatches on the named policy. ReflectionNone returns
// the path unchanged (as a ReflectedPath copy is not needed, nil is
// returned so callers can distinguish "not requested").
func ApplyReflection(path models.Path, policy models.ReflectionPolicy) (models.ReflectedPath, error) {
	switch policy {
	case models.ReflectionNone:
		return nil, nil
	case models.ReflectionAbsolute:
		return Reflect(path), nil
	case models.ReflectionSkorokhod:
		return ReflectSkorokhod(path), nil
	default:
		return nil, fmt.Errorf("%w: unknown reflection policy %q", models.ErrInvalidInput, policy)
	}
}
