package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stochlab/rou-engine/internal/models"
	"github.com/stochlab/rou-engine/internal/services"
)

// Handlers decodes JSON requests into domain types, drives the simulation
// service, and encodes results back.
type Handlers struct {
	service *services.SimulationService
}

// NewHandlers constructs the HTTP handler set.
func NewHandlers(service *services.SimulationService) *Handlers {
	return &Handlers{service: service}
}

type simulateRequest struct {
	Theta           [][]float64 `json:"theta"`
	Mu              []float64   `json:"mu"`
	Sigma           [][]float64 `json:"sigma"`
	T               float64     `json:"t"`
	Steps           int         `json:"steps"`
	X0              []float64   `json:"x0"`
	Seed            *uint64     `json:"seed,omitempty"`
	Policy          string      `json:"reflection,omitempty"`
	LocalTime       bool        `json:"local_time,omitempty"`
	LocalTimePolicy string      `json:"local_time_policy,omitempty"`
}

type simulateResponse struct {
	Times     []float64   `json:"times"`
	Path      [][]float64 `json:"path"`
	Reflected [][]float64 `json:"reflected,omitempty"`
	LocalTime []float64   `json:"local_time,omitempty"`
}

type ensembleRequest struct {
	simulateRequest
	Count        int  `json:"count"`
	TerminalOnly bool `json:"terminal_only,omitempty"`
}

type summaryJSON struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Count    int     `json:"count"`
}

type ensembleResponse struct {
	Terminals [][]float64   `json:"terminals"`
	Paths     [][][]float64 `json:"paths,omitempty"`
	Summary   []summaryJSON `json:"summary"`
}

type acfRequest struct {
	Series []float64 `json:"series"`
	MaxLag int       `json:"max_lag"`
}

type lagPoint struct {
	Lag int     `json:"lag"`
	Rho float64 `json:"rho"`
}

type acfResponse struct {
	ACF []lagPoint `json:"acf"`
}

type densityRequest struct {
	Values []float64 `json:"values"`
	Bins   int       `json:"bins"`
}

type densityResponse struct {
	Edges   []float64 `json:"edges"`
	Counts  []int     `json:"counts"`
	Density []float64 `json:"density"`
	Count   int       `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Simulate handles POST /api/v1/simulate for one 1D or 2D path.
func (h *Handlers) Simulate(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	domainReq, err := toSimulationRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var result models.SimulationResult
	switch domainReq.Params.Dim {
	case 1:
		result, err = h.service.SimulateOU(domainReq)
	case 2:
		result, err = h.service.SimulateOU2D(domainReq)
	default:
		err = fmt.Errorf("%w: simulate supports dimensions 1 and 2, got %d", models.ErrInvalidParameter, domainReq.Params.Dim)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, simulateResponse{
		Times:     result.Times,
		Path:      result.Path,
		Reflected: result.Reflected,
		LocalTime: result.LocalTime,
	})
}

// Ensemble handles POST /api/v1/ensemble.
func (h *Handlers) Ensemble(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}
	var req ensembleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	simReq, err := toSimulationRequest(req.simulateRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.RunEnsemble(models.EnsembleRequest{
		Params:       simReq.Params,
		Grid:         simReq.Grid,
		X0:           simReq.X0,
		Seed:         simReq.Seed,
		Count:        req.Count,
		TerminalOnly: req.TerminalOnly,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := ensembleResponse{
		Terminals: result.Ensemble.Terminals,
		Summary:   make([]summaryJSON, len(result.Summary)),
	}
	for i, s := range result.Summary {
		resp.Summary[i] = summaryJSON{Mean: s.Mean, Variance: s.Variance, StdDev: s.StdDev, Count: s.Count}
	}
	if result.Ensemble.Paths != nil {
		resp.Paths = make([][][]float64, len(result.Ensemble.Paths))
		for i, p := range result.Ensemble.Paths {
			resp.Paths[i] = p
		}
	}
	writeJSON(w, resp)
}

// Autocorrelation handles POST /api/v1/diagnostics/acf.
func (h *Handlers) Autocorrelation(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}
	var req acfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	acf, err := h.service.Autocorrelation(req.Series, req.MaxLag)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := acfResponse{ACF: make([]lagPoint, len(acf))}
	for i, point := range acf {
		resp.ACF[i] = lagPoint{Lag: point.Lag, Rho: point.Rho}
	}
	writeJSON(w, resp)
}

// Density handles POST /api/v1/diagnostics/density.
func (h *Handlers) Density(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}
	var req densityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	hist, err := h.service.EmpiricalDensity(req.Values, req.Bins)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, densityResponse{
		Edges:   hist.Edges,
		Counts:  hist.Counts,
		Density: hist.Density,
		Count:   hist.Count,
	})
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func toSimulationRequest(req simulateRequest) (models.SimulationRequest, error) {
	params, err := models.NewParameters(req.Theta, req.Mu, req.Sigma)
	if err != nil {
		return models.SimulationRequest{}, err
	}
	grid := models.SimulationGrid{T: req.T, N: req.Steps}
	if err := grid.Validate(); err != nil {
		return models.SimulationRequest{}, err
	}

	seed := uint64(time.Now().UnixNano())
	if req.Seed != nil {
		seed = *req.Seed
	}

	x0 := req.X0
	if x0 == nil {
		x0 = append([]float64(nil), params.Mu...)
	}

	return models.SimulationRequest{
		Params:        params,
		Grid:          grid,
		X0:            x0,
		Seed:          seed,
		Reflection:    models.ReflectionPolicy(req.Policy),
		WithLocalTime: req.LocalTime,
		LocalTime:     models.LocalTimePolicy(req.LocalTimePolicy),
	}, nil
}

func enforcePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, models.ErrInvalidParameter) || errors.Is(err, models.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
	}
}
