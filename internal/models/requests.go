package models

// ReflectionPolicy names one of the boundary projection strategies.
type ReflectionPolicy string

const (
	// ReflectionNone leaves the signed path untouched.
	ReflectionNone ReflectionPolicy = ""
	// ReflectionAbsolute is the componentwise absolute-value projection used
	// by the source experiments. It is a cosmetic approximation of boundary
	// reflection, not a reflected-diffusion solver.
	ReflectionAbsolute ReflectionPolicy = "absolute"
	// ReflectionSkorokhod applies the one-sided Skorokhod map of the signed
	// path at the zero boundary.
	ReflectionSkorokhod ReflectionPolicy = "skorokhod"
)

// LocalTimePolicy names the local-time accumulation scheme derived from the
// signed path when WithLocalTime is set.
type LocalTimePolicy string

const (
	// LocalTimeProxy integrates the negative excursions of the signed path,
	// matching the source experiments. Empty means proxy.
	LocalTimeProxy LocalTimePolicy = "proxy"
	// LocalTimeSkorokhod reports the exact discrete regulator, the companion
	// of ReflectionSkorokhod.
	LocalTimeSkorokhod LocalTimePolicy = "skorokhod"
)

// SimulationRequest describes one path-generation call.
type SimulationRequest struct {
	Params        ProcessParameters
	Grid          SimulationGrid
	X0            []float64
	Seed          uint64
	Reflection    ReflectionPolicy
	WithLocalTime bool
	LocalTime     LocalTimePolicy
}

// SimulationResult bundles the signed path with any derived series.
type SimulationResult struct {
	Times     []float64
	Path      Path
	Reflected ReflectedPath
	LocalTime LocalTimeSeries
}

// EnsembleRequest describes a repeated-simulation call.
type EnsembleRequest struct {
	Params       ProcessParameters
	Grid         SimulationGrid
	X0           []float64
	Seed         uint64
	Count        int
	TerminalOnly bool
}

// EnsembleResult carries the ensemble plus per-component terminal moments.
type EnsembleResult struct {
	Ensemble PathEnsemble
	Summary  []SummaryStats
}
