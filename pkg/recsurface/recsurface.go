// Package recsurface implements the per-ray search for recirculation points:
// given a camera ray, it walks the flow domain in fixed-size spatial steps,
// hands each step's segment to critsearch as a root-search cuboid, and
// reports the nearest recirculation point found along the ray.
//
// Grounded on original_source/src/recsurface.cpp.
package recsurface

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/critsearch"
	"github.com/dstelter/rsraytracer/pkg/flow"
	"github.com/dstelter/rsraytracer/pkg/hyper"
)

// RecSurface searches a flow's domain for recirculation points along camera
// rays. One RecSurface is shared read-mostly across all rays of a render
// pass; the embedded CritExtractor is safe for concurrent GetCritElements calls
// (critsearch.CritExtractor's own concurrency contract).
type RecSurface struct {
	Flow          flow.Flow
	DataParams    config.DataParams
	SearchParams  config.SearchParams
	Extractor     *critsearch.CritExtractor
	IntegratorCfg flow.IntegratorConfig
	Globals       config.Globals
}

// NewRecSurface constructs a RecSurface over the given flow, searched with
// the given data/search parameters and critical-point extractor.
func NewRecSurface(f flow.Flow, dataParams config.DataParams, searchParams config.SearchParams, extractor *critsearch.CritExtractor, integratorCfg flow.IntegratorConfig, globals config.Globals) *RecSurface {
	return &RecSurface{
		Flow:          f,
		DataParams:    dataParams,
		SearchParams:  searchParams,
		Extractor:     extractor,
		IntegratorCfg: integratorCfg,
		Globals:       globals,
	}
}

// GetDomainIntersections bounds a ray's traversal to the portion of the flow
// domain that lies within [beginAt, endAt]. Unlike the original
// implementation (which never applied end_at to the domain AABB test — see
// SPEC_FULL.md's Open Question (b) fix), the returned tOut is clamped to
// endAt so a caller-supplied "stop searching past this point" bound (e.g. a
// nearer common-object hit) actually shortens the pathline search.
func (rs *RecSurface) GetDomainIntersections(ray core.Ray, beginAt, endAt float64) (tIn, tOut float64, ok bool) {
	hit, ok := rs.DataParams.Domain.Intersect(ray, beginAt, endAt)
	if !ok {
		return 0, 0, false
	}
	return hit.TIn, math.Min(hit.TOut, endAt), true
}

// candidate is one recirculation point found along the ray, together with
// its Euclidean distance from the ray origin, used to pick the nearest one
// in GetRecPoint.
type candidate struct {
	dist float64
	rp   critsearch.RecPoint
}

// GetRecPoint picks the recirculation point nearest the ray's origin among
// everything elements found, mirroring RecSurface::getRecPoint's
// nearest-to-ray-origin selection over a HyperLine's candidate points.
// Nearness is |rp.Pos - ray.Origin| (spec §4.6 step 4), not the ray-direction
// projection, which only agrees with the Euclidean distance for points
// exactly on the ray.
func (rs *RecSurface) GetRecPoint(ray core.Ray, elements critsearch.CritElements) (float64, critsearch.RecPoint, bool) {
	var best *candidate
	for _, rp := range elements.CritPoints {
		toPoint := rp.Pos.Subtract(ray.Origin)
		if ray.Direction.Dot(toPoint) < 0 {
			continue // behind the ray origin; not a valid hit
		}
		dist := toPoint.Length()
		if best == nil || dist < best.dist {
			c := candidate{dist: dist, rp: rp}
			best = &c
		}
	}
	if best == nil {
		return 0, critsearch.RecPoint{}, false
	}
	return best.dist, best.rp, true
}

// searchSegments walks [tIn, tOut] in DataParams.StepSize increments,
// running a critsearch.VectorCuboid root search over the t0/tau range on
// each spatial segment, and returns every critical point found across all
// segments. This is the core traversal of RecSurface::searchIntersection:
// the "5D cuboid" varies continuously in tau and t0, but only ever varies
// spatially between two ray-step endpoints at a time (spec §4.4/§4.6).
func (rs *RecSurface) searchSegments(ray core.Ray, tIn, tOut float64) critsearch.CritElements {
	var all critsearch.CritElements
	if tOut <= tIn {
		return all
	}

	step := rs.DataParams.StepSize
	if step <= 0 {
		step = tOut - tIn
	}

	t := tIn
	for t < tOut {
		next := math.Min(t+step, tOut)
		posA, posB := ray.At(t), ray.At(next)

		cuboid := critsearch.NewVectorCuboid(
			rs.Flow, rs.IntegratorCfg,
			posA, posB,
			rs.SearchParams.T0Min, rs.SearchParams.T0Max,
			rs.SearchParams.TauMin, rs.SearchParams.TauMax,
			rs.Globals.TauEqual,
		)
		elements := rs.Extractor.GetCritElements(cuboid)
		all.CritPoints = append(all.CritPoints, elements.CritPoints...)
		all.CritStructures = append(all.CritStructures, elements.CritStructures...)

		t = next
	}
	return all
}

// SearchIntersection searches for the nearest recirculation point along ray
// within [beginAt, endAt] (endAt may be +Inf for an unbounded search). It
// returns ok=false if the ray misses the domain or no recirculation point
// was found along it.
func (rs *RecSurface) SearchIntersection(ray core.Ray, beginAt, endAt float64) (hit float64, rp critsearch.RecPoint, ok bool) {
	tIn, tOut, domainOK := rs.GetDomainIntersections(ray, beginAt, endAt)
	if !domainOK {
		return 0, critsearch.RecPoint{}, false
	}
	elements := rs.searchSegments(ray, tIn, tOut)
	return rs.GetRecPoint(ray, elements)
}

// newHyperLine is a small helper that builds a HyperLine spanning two
// spatial positions at a shared t0. Nothing in the package calls it.
func (rs *RecSurface) newHyperLine(posA, posB core.Vec3, t0 float64) hyper.HyperLine {
	a := hyper.NewHyperPoint(posA, t0, rs.Flow, rs.IntegratorCfg)
	b := hyper.NewHyperPoint(posB, t0, rs.Flow, rs.IntegratorCfg)
	return hyper.NewHyperLine(a, b)
}
