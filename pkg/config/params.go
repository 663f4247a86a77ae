package config

import "github.com/dstelter/rsraytracer/pkg/core"

// DataParams describes the spatial domain a flow is sampled over and the
// traversal step size used when walking a ray through it.
// Grounded on original_source/inc/jobparams.hh's DataParams.
type DataParams struct {
	Domain   core.AABB
	StepSize float64
}

// DefaultDataParams mirrors the original's default-constructed DataParams:
// a centered unit-ish box and a step size of 0.2.
func DefaultDataParams() DataParams {
	return DataParams{
		Domain:   core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1)),
		StepSize: 0.2,
	}
}

// MergeDataParams overlays any non-zero fields of override onto base,
// following the teacher's MergeSamplingConfig non-zero-field merge idiom
// (pkg/renderer/raytracer.go in the teacher repo).
func MergeDataParams(base DataParams, override DataParams) DataParams {
	result := base
	if override.Domain.IsValid() && (override.Domain.Min != core.Vec3{} || override.Domain.Max != core.Vec3{}) {
		result.Domain = override.Domain
	}
	if override.StepSize != 0 {
		result.StepSize = override.StepSize
	}
	return result
}

// SearchParams describes the range of t0/tau values and the traversal
// precision used when searching for recirculation points along a HyperLine.
// Grounded on original_source/inc/jobparams.hh's SearchParams.
type SearchParams struct {
	T0Min, T0Max   float64
	TauMin, TauMax float64
	Dt             float64
	Prec           float64
}

// DefaultSearchParams mirrors the original's default-constructed
// SearchParams (t0 in [0,14.8], tau in [0.2,15.0], dt=0.2, prec=SEARCHPREC).
func DefaultSearchParams(g Globals) SearchParams {
	return SearchParams{
		T0Min:  0,
		T0Max:  14.8,
		TauMin: 0.2,
		TauMax: 15.0,
		Dt:     0.2,
		Prec:   g.SearchPrec,
	}
}

// MergeSearchParams overlays any non-zero fields of override onto base.
func MergeSearchParams(base, override SearchParams) SearchParams {
	result := base
	if override.T0Min != 0 {
		result.T0Min = override.T0Min
	}
	if override.T0Max != 0 {
		result.T0Max = override.T0Max
	}
	if override.TauMin != 0 {
		result.TauMin = override.TauMin
	}
	if override.TauMax != 0 {
		result.TauMax = override.TauMax
	}
	if override.Dt != 0 {
		result.Dt = override.Dt
	}
	if override.Prec != 0 {
		result.Prec = override.Prec
	}
	return result
}

// CritSearchParams tunes CritExtractor's recursive subdivision search.
// Grounded on original_source/inc/critextractor.hh's CritSearchParams.
type CritSearchParams struct {
	SearchPrecision  float64
	JacobiPrecision  float64
	ClusterPrecision float64
	MaxSteps         int

	// ContinueAfterStructure is the optional future-work flag noted by
	// spec.md's Open Question (a): when false (default), HasCritPoint
	// preserves the documented limitation that it may miss isolated points
	// near an already-found critical structure. See DESIGN.md.
	ContinueAfterStructure bool
}

// DefaultCritSearchParams mirrors CritExtractor's default CritSearchParams:
// searchPrecision=2^-40, jacobiPrecision=2^-12, clusterPrecision=2^-38,
// maxSteps=8^7.
func DefaultCritSearchParams() CritSearchParams {
	return CritSearchParams{
		SearchPrecision:  1.0 / (1 << 40),
		JacobiPrecision:  1.0 / (1 << 12),
		ClusterPrecision: 1.0 / (1 << 38),
		MaxSteps:         pow8(7),
	}
}

func pow8(n int) int {
	result := 1
	for i := 0; i < n; i++ {
		result *= 8
	}
	return result
}

// MergeCritSearchParams overlays any non-zero fields of override onto base.
func MergeCritSearchParams(base, override CritSearchParams) CritSearchParams {
	result := base
	if override.SearchPrecision != 0 {
		result.SearchPrecision = override.SearchPrecision
	}
	if override.JacobiPrecision != 0 {
		result.JacobiPrecision = override.JacobiPrecision
	}
	if override.ClusterPrecision != 0 {
		result.ClusterPrecision = override.ClusterPrecision
	}
	if override.MaxSteps != 0 {
		result.MaxSteps = override.MaxSteps
	}
	if override.ContinueAfterStructure {
		result.ContinueAfterStructure = true
	}
	return result
}
