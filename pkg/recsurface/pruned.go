package recsurface

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/critsearch"
)

// CameraView is the minimal camera capability the pruned search needs: the
// ability to project a world position back to screen space. Defined locally
// (rather than importing scenegeo) so scenegeo can depend on recsurface
// without a cycle; scenegeo.PerspectiveCamera satisfies this structurally.
type CameraView interface {
	Projection(pos core.Vec3) (core.Vec2, bool)
}

// ProgressLookup resolves the already-known hit distance for a screen pixel,
// if any (ok=false for a pixel with no saved result yet, or one that missed
// the surface). Callers typically back this with a progress.Store lookup.
type ProgressLookup func(x, y int) (hitT float64, ok bool)

// SearchIntersectionPruned is the refinement/shadow-ray variant of
// SearchIntersection: before running the expensive root search on a ray
// segment, it checks whether nearby screen pixels already have a known,
// nearer hit — and if so, skips the segment instead of re-searching it.
//
// invertSearch flips the pruning direction for rays cast toward a light
// source (shadow tests): instead of skipping segments that a nearer surface
// point already occludes, it skips segments that a nearer point has already
// confirmed are unoccluded, since a shadow ray only needs the first
// occluder. Grounded on
// original_source/src/recsurface.cpp's searchIntersection(pruned overload)
// and doesLineNeedTest.
func (rs *RecSurface) SearchIntersectionPruned(ray core.Ray, beginAt, endAt float64, cam CameraView, lookup ProgressLookup, invertSearch bool) (hit float64, rp critsearch.RecPoint, ok bool) {
	tIn, tOut, domainOK := rs.GetDomainIntersections(ray, beginAt, endAt)
	if !domainOK {
		return 0, critsearch.RecPoint{}, false
	}

	step := rs.DataParams.StepSize
	if step <= 0 {
		step = tOut - tIn
	}

	var all critsearch.CritElements
	t := tIn
	for t < tOut {
		next := math.Min(t+step, tOut)
		posA, posB := ray.At(t), ray.At(next)

		if rs.doesLineNeedTest(posA, posB, t, cam, lookup, invertSearch) {
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
		}

		t = next
	}

	return rs.GetRecPoint(ray, all)
}

// doesLineNeedTest projects the segment [posA,posB] to screen space,
// rasterizes its pixel footprint, and reports whether the segment still
// needs a full root search: it does unless every nearby pixel's
// already-known hit distance tells us the answer already (a nearer hit
// occluding this segment in the normal case, or a confirmed-unoccluded
// nearer point in the inverted/shadow-ray case).
func (rs *RecSurface) doesLineNeedTest(posA, posB core.Vec3, segStartT float64, cam CameraView, lookup ProgressLookup, invertSearch bool) bool {
	if cam == nil || lookup == nil {
		return true
	}

	pA, okA := cam.Projection(posA)
	pB, okB := cam.Projection(posB)
	if !okA || !okB {
		return true
	}

	thickness := rs.Globals.NeighborDifRaypos
	line := Line2D{P1: pA, P2: pB}

	for _, p := range line.GetLinePoints(thickness) {
		x, y := int(math.Round(p.X)), int(math.Round(p.Y))
		hitT, ok := lookup(x, y)
		if !ok {
			continue
		}

		if invertSearch {
			if hitT >= segStartT-rs.Globals.Zero {
				return false // a nearer ray already confirmed clear this far out
			}
		} else {
			if hitT <= segStartT+rs.Globals.Zero {
				return false // a nearer ray already found an occluding hit
			}
		}
	}

	return true
}
