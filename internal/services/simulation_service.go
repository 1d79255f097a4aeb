package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/stochlab/rou-engine/internal/config"
	"github.com/stochlab/rou-engine/internal/engine"
	"github.com/stochlab/rou-engine/internal/metrics"
	"github.com/stochlab/rou-engine/internal/models"
	"github.com/stochlab/rou-engine/internal/utils"
)

// SimulationService is the facade the transport layer drives. It enforces
// the configured request limits, validates eagerly at the boundary, and
// instruments every operation.
type SimulationService struct {
	logger    *slog.Logger
	limits    config.LimitsConfig
	latencies *utils.LatencyTracker
}

// NewSimulationService constructs the service facade.
func NewSimulationService(logger *slog.Logger, limits config.LimitsConfig) *SimulationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulationService{
		logger:    logger,
		limits:    limits,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// SimulateOU generates one 1-dimensional OU path, with optional reflection
// and local-time series derived from the signed path.
func (s *SimulationService) SimulateOU(req models.SimulationRequest) (models.SimulationResult, error) {
	return s.simulate("simulate_ou", req, 1)
}

// SimulateOU2D generates one 2-dimensional (vector-valued) OU path.
func (s *SimulationService) SimulateOU2D(req models.SimulationRequest) (models.SimulationResult, error) {
	return s.simulate("simulate_ou_2d", req, 2)
}

func (s *SimulationService) simulate(op string, req models.SimulationRequest, wantDim int) (models.SimulationResult, error) {
	start := time.Now()

	result, err := s.runSimulation(req, wantDim)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveOperation(op, duration, metrics.OutcomeError)
		s.logger.Error("simulation failed", slog.String("operation", op), slog.Any("error", err))
		return models.SimulationResult{}, utils.NewAppError(op, "simulation failed", err)
	}

	s.observe(op, duration)
	metrics.ObservePaths(1, req.Grid.N)
	s.logger.Debug("simulation complete",
		slog.String("operation", op),
		slog.Int("steps", req.Grid.N),
		slog.Duration("took", duration),
	)
	return result, nil
}

func (s *SimulationService) runSimulation(req models.SimulationRequest, wantDim int) (models.SimulationResult, error) {
	if req.Params.Dim != wantDim {
		return models.SimulationResult{}, fmt.Errorf("%w: expected %d-dimensional parameters, got %d", models.ErrInvalidParameter, wantDim, req.Params.Dim)
	}
	if err := s.checkLimits(req.Params, req.Grid); err != nil {
		return models.SimulationResult{}, err
	}

	integrator, err := engine.NewIntegrator(req.Params, req.Grid, req.Seed)
	if err != nil {
		return models.SimulationResult{}, err
	}
	path, err := integrator.Integrate(req.X0)
	if err != nil {
		return models.SimulationResult{}, err
	}

	result := models.SimulationResult{
		Times: req.Grid.Times(),
		Path:  path,
	}
	if result.Reflected, err = engine.ApplyReflection(path, req.Reflection); err != nil {
		return models.SimulationResult{}, err
	}
	if req.WithLocalTime {
		switch req.LocalTime {
		case "", models.LocalTimeProxy:
			result.LocalTime, err = engine.AccumulateLocalTime(path, req.Grid.Dt())
		case models.LocalTimeSkorokhod:
			result.LocalTime, err = engine.SkorokhodLocalTime(path)
		default:
			err = fmt.Errorf("%w: unknown local-time policy %q", models.ErrInvalidInput, req.LocalTime)
		}
		if err != nil {
			return models.SimulationResult{}, err
		}
	}
	return result, nil
}

// Reflect applies the named reflection policy to a previously generated path.
func (s *SimulationService) Reflect(path models.Path, policy models.ReflectionPolicy) (models.ReflectedPath, error) {
	start := time.Now()
	if policy == models.ReflectionNone {
		policy = models.ReflectionAbsolute
	}
	reflected, err := engine.ApplyReflection(path, policy)
	if err != nil {
		metrics.ObserveOperation("reflect", time.Since(start), metrics.OutcomeError)
		return nil, utils.NewAppError("reflect", "reflection failed", err)
	}
	s.observe("reflect", time.Since(start))
	return reflected, nil
}

// AccumulateLocalTime derives the local-time series of a signed path.
func (s *SimulationService) AccumulateLocalTime(path models.Path, dt float64) (models.LocalTimeSeries, error) {
	start := time.Now()
	series, err := engine.AccumulateLocalTime(path, dt)
	if err != nil {
		metrics.ObserveOperation("local_time", time.Since(start), metrics.OutcomeError)
		return nil, utils.NewAppError("local_time", "local time accumulation failed", err)
	}
	s.observe("local_time", time.Since(start))
	return series, nil
}

// RunEnsemble repeats the integration independently and summarises the
// terminal states per component.
func (s *SimulationService) RunEnsemble(req models.EnsembleRequest) (models.EnsembleResult, error) {
	const op = "run_ensemble"
	start := time.Now()

	result, err := s.runEnsemble(req)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveOperation(op, duration, metrics.OutcomeError)
		s.logger.Error("ensemble run failed", slog.Any("error", err))
		return models.EnsembleResult{}, utils.NewAppError(op, "ensemble run failed", err)
	}

	s.observe(op, duration)
	metrics.ObservePaths(req.Count, req.Grid.N)
	s.logger.Debug("ensemble complete",
		slog.Int("count", req.Count),
		slog.Int("steps", req.Grid.N),
		slog.Bool("terminal_only", req.TerminalOnly),
		slog.Duration("took", duration),
	)
	return result, nil
}

func (s *SimulationService) runEnsemble(req models.EnsembleRequest) (models.EnsembleResult, error) {
	if err := s.checkLimits(req.Params, req.Grid); err != nil {
		return models.EnsembleResult{}, err
	}
	if req.Count > s.limits.MaxEnsemble {
		return models.EnsembleResult{}, fmt.Errorf("%w: ensemble count %d exceeds limit %d", models.ErrInvalidParameter, req.Count, s.limits.MaxEnsemble)
	}

	ensemble, err := engine.RunEnsemble(req.Params, req.Grid, req.X0, req.Count, req.TerminalOnly, req.Seed)
	if err != nil {
		return models.EnsembleResult{}, err
	}

	summary := make([]models.SummaryStats, req.Params.Dim)
	for c := 0; c < req.Params.Dim; c++ {
		sample, err := engine.TerminalComponent(ensemble, c)
		if err != nil {
			return models.EnsembleResult{}, err
		}
		if summary[c], err = engine.SummaryStats(sample); err != nil {
			return models.EnsembleResult{}, err
		}
	}
	return models.EnsembleResult{Ensemble: ensemble, Summary: summary}, nil
}

// Autocorrelation computes the sample ACF of a scalar series.
func (s *SimulationService) Autocorrelation(series []float64, maxLag int) ([]models.LagCorrelation, error) {
	const op = "autocorrelation"
	start := time.Now()

	if maxLag > s.limits.MaxLag {
		metrics.ObserveOperation(op, time.Since(start), metrics.OutcomeError)
		return nil, utils.NewAppError(op, "lag limit exceeded",
			fmt.Errorf("%w: max lag %d exceeds limit %d", models.ErrInvalidParameter, maxLag, s.limits.MaxLag))
	}
	acf, err := engine.Autocorrelation(series, maxLag)
	if err != nil {
		metrics.ObserveOperation(op, time.Since(start), metrics.OutcomeError)
		return nil, utils.NewAppError(op, "autocorrelation failed", err)
	}
	s.observe(op, time.Since(start))
	return acf, nil
}

// EmpiricalDensity builds a histogram summary of a sample.
func (s *SimulationService) EmpiricalDensity(values []float64, bins int) (models.Histogram, error) {
	const op = "empirical_density"
	start := time.Now()

	if bins > s.limits.MaxBins {
		metrics.ObserveOperation(op, time.Since(start), metrics.OutcomeError)
		return models.Histogram{}, utils.NewAppError(op, "bin limit exceeded",
			fmt.Errorf("%w: bins %d exceeds limit %d", models.ErrInvalidParameter, bins, s.limits.MaxBins))
	}
	hist, err := engine.EmpiricalDensity(values, bins)
	if err != nil {
		metrics.ObserveOperation(op, time.Since(start), metrics.OutcomeError)
		return models.Histogram{}, utils.NewAppError(op, "density estimation failed", err)
	}
	s.observe(op, time.Since(start))
	return hist, nil
}

func (s *SimulationService) checkLimits(params models.ProcessParameters, grid models.SimulationGrid) error {
	if grid.N > s.limits.MaxSteps {
		return fmt.Errorf("%w: step count %d exceeds limit %d", models.ErrInvalidParameter, grid.N, s.limits.MaxSteps)
	}
	if params.Dim > s.limits.MaxDimension {
		return fmt.Errorf("%w: dimension %d exceeds limit %d", models.ErrInvalidParameter, params.Dim, s.limits.MaxDimension)
	}
	return nil
}

func (s *SimulationService) observe(op string, duration time.Duration) {
	metrics.ObserveOperation(op, duration, metrics.OutcomeSuccess)
	s.latencies.Observe(duration)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("operation latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}
}

// LatencyP95 returns the current p95 operation latency.
func (s *SimulationService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}
