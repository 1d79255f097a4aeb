package engine

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/stochlab/rou-engine/internal/models"
)

// parallelThreshold is the ensemble size below which fan-out overhead
// outweighs the gain and runs stay on one goroutine.
const parallelThreshold = 64

// RunEnsemble repeats the integration count times with identical parameters
// and grid but independent increments, collecting full paths or, with
// terminalOnly, just each run's final state. Path i uses seed baseSeed+i,
// so repetitions are mutually independent yet the whole ensemble is
// reproducible from one seed. Repetitions share no mutable state and are
// fanned out across a bounded worker pool.
func RunEnsemble(params models.ProcessParameters, grid models.SimulationGrid, x0 []float64, count int, terminalOnly bool, baseSeed uint64) (models.PathEnsemble, error) {
	if count < 1 {
		return models.PathEnsemble{}, fmt.Errorf("%w: ensemble count must be at least 1, got %d", models.ErrInvalidParameter, count)
	}
	// Validate once up front so workers cannot fail mid-flight.
	if _, err := NewIntegrator(params, grid, baseSeed); err != nil {
		return models.PathEnsemble{}, err
	}
	if len(x0) != params.Dim {
		return models.PathEnsemble{}, fmt.Errorf("%w: x0 has %d components, want %d", models.ErrInvalidParameter, len(x0), params.Dim)
	}

	ensemble := models.PathEnsemble{
		Terminals: make([][]float64, count),
		Count:     count,
	}
	if !terminalOnly {
		ensemble.Paths = make([]models.Path, count)
	}

	workers := runtime.GOMAXPROCS(0)
	if count < parallelThreshold {
		workers = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			integrator, err := NewIntegrator(params, grid, baseSeed+uint64(idx))
			if err != nil {
				// Parameters were validated above; a failure here is a bug.
				panic(err)
			}
			path, err := integrator.Integrate(x0)
			if err != nil {
				panic(err)
			}
			ensemble.Terminals[idx] = path.Terminal()
			if ensemble.Paths != nil {
				ensemble.Paths[idx] = path
			}
		}(i)
	}
	wg.Wait()

	return ensemble, nil
}

// TerminalComponent extracts one coordinate of every terminal state, the
// sample handed to the stationary-distribution diagnostics.
func TerminalComponent(ensemble models.PathEnsemble, c int) ([]float64, error) {
	if ensemble.Count == 0 || len(ensemble.Terminals) == 0 {
		return nil, fmt.Errorf("%w: empty ensemble", models.ErrInvalidInput)
	}
	if c < 0 || c >= len(ensemble.Terminals[0]) {
		return nil, fmt.Errorf("%w: component %d out of range", models.ErrInvalidInput, c)
	}
	out := make([]float64, len(ensemble.Terminals))
	for i, term := range ensemble.Terminals {
		out[i] = term[c]
	}
	return out, nil
}
