// Package config holds the tunable constants and per-run parameter records
// that the original implementation kept as process-wide globals. Per the
// migration note in the design notes, they are threaded explicitly through
// constructors here instead of living as package-level mutable state.
package config

// Globals collects the numerical tolerances and search limits used across
// the flow sampler, critical-point extractor, recirculation surface search,
// and shader. Defaults mirror original_source/inc/globals.hh.
type Globals struct {
	Eps   float64 // machine epsilon baseline used to derive Zero/Small
	Zero  float64 // 10^3 * Eps
	Small float64 // 10^7 * Eps

	SearchPrec float64 // default CritSearchParams.SearchPrecision scale

	RayBackoffRefinement float64 // t-backoff applied when restricting refinement search
	RayForeoffsetShadows float64 // forward offset applied to shadow ray origins

	NormalSearchDis float64 // offset used for normal-estimation retries
	NormalMaxSteps  int     // max offset-halving retries for normal estimation

	NeighborSpaceAngle float64 // degrees; max angle between candidate normal triangle edges
	NeighborDifRaypos  float64 // screen-space rasterization thickness (px) for pruned-search pixel lookups
	NeighborDifT0PerLU float64 // max |dt0| per unit of spatial distance for neighboring test
	NeighborDifTauPerLU float64 // max |dtau| per unit of spatial distance for neighboring test

	SpaceEqual float64 // spatial-position equality tolerance
	T0Equal    float64 // t0 equality tolerance
	TauEqual   float64 // tau equality tolerance

	TauMin float64 // minimum valid tau for a recirculation point
	DetMin float64 // Jacobian determinant below which a cell is a singular/critical structure

	RecPointEqual float64 // RecPoint equality tolerance (supplemented, see SPEC_FULL.md); CritExtractor's clustering does not read it

	SaveCadenceBase       int // domain-hit rays between base-pass progress saves
	SaveCadenceRefinement int // domain-hit rays between refinement-pass progress saves
}

// DefaultGlobals returns the constants from original_source/inc/globals.hh,
// extended with the two supplemented constants (NeighborDifRaypos,
// RecPointEqual) that spec.md's Glossary omitted. See SPEC_FULL.md
// "Supplemented Features" item 1.
func DefaultGlobals() Globals {
	const eps = 2.220446049250313e-16 // float64 machine epsilon
	return Globals{
		Eps:   eps,
		Zero:  1e3 * eps,
		Small: 1e7 * eps,

		SearchPrec: 1e-3,

		RayBackoffRefinement: 0.015,
		RayForeoffsetShadows: 0.005,

		NormalSearchDis: 0.005,
		NormalMaxSteps:  3,

		NeighborSpaceAngle:  85.0,
		NeighborDifRaypos:   1.5,
		NeighborDifT0PerLU:  60.0,
		NeighborDifTauPerLU: 60.0,

		SpaceEqual: 5e-5,
		T0Equal:    5e-5,
		TauEqual:   5e-5,

		TauMin: 1e-3,
		DetMin: 1e-6,

		RecPointEqual: 5e-5,

		SaveCadenceBase:       120,
		SaveCadenceRefinement: 1000,
	}
}
