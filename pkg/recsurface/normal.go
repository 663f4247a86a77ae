package recsurface

import (
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/critsearch"
)

// EstimateFlowNormal estimates a shading normal at a recirculation point by
// searching for nearby recirculation points offset from it in space,
// building the triangle normals between every pair of neighbors found (with
// rp as the shared vertex), averaging them, and flipping the result to face
// the camera. If too few neighbors are found at offsetSpace, the offset is
// halved and the search retried, up to maxStepsSmaller times — a point deep
// inside a degenerate or thin sheet of the surface may only resolve its
// neighborhood at a smaller scale.
//
// Grounded on original_source/src/recsurface.cpp's estimateFlowNormal,
// addNeighborhoodByCross/addNeighborhoodByCube, and addHyperlineToList.
func (rs *RecSurface) EstimateFlowNormal(rp critsearch.RecPoint, ray core.Ray, offsetSpace float64, maxStepsSmaller int) (core.Vec3, bool) {
	offset := offsetSpace
	for step := 0; step <= maxStepsSmaller; step++ {
		if normal, ok := rs.tryEstimateAt(rp, ray, offset); ok {
			return normal, true
		}
		offset /= 2
	}
	return core.Vec3{}, false
}

func (rs *RecSurface) tryEstimateAt(rp critsearch.RecPoint, ray core.Ray, offset float64) (core.Vec3, bool) {
	neighbors := rs.addHyperlineToList(rp, addNeighborhoodByCross(rp.Pos, offset))
	if len(neighbors) < 3 {
		neighbors = rs.addHyperlineToList(rp, addNeighborhoodByCube(rp.Pos, offset))
	}
	if len(neighbors) < 3 {
		return core.Vec3{}, false
	}

	var sum core.Vec3
	count := 0
	for i := 0; i < len(neighbors); i++ {
		for j := i + 1; j < len(neighbors); j++ {
			e1 := neighbors[i].Subtract(rp.Pos)
			e2 := neighbors[j].Subtract(rp.Pos)
			n := e1.Cross(e2)
			if n.IsZero() {
				continue
			}
			n = n.Normalize()
			// Orient consistently: flip toward the incident ray's origin so
			// every accumulated triangle normal contributes constructively.
			if n.Dot(ray.Direction) > 0 {
				n = n.Negate()
			}
			sum = sum.Add(n)
			count++
		}
	}
	if count == 0 || sum.IsZero() {
		return core.Vec3{}, false
	}
	return sum.Normalize(), true
}

// addNeighborhoodByCross returns the 6 axis-aligned offsets of pos (+-x, +-y,
// +-z), the "cross" neighbor layout.
func addNeighborhoodByCross(pos core.Vec3, offset float64) []core.Vec3 {
	return []core.Vec3{
		pos.Add(core.NewVec3(offset, 0, 0)),
		pos.Add(core.NewVec3(-offset, 0, 0)),
		pos.Add(core.NewVec3(0, offset, 0)),
		pos.Add(core.NewVec3(0, -offset, 0)),
		pos.Add(core.NewVec3(0, 0, offset)),
		pos.Add(core.NewVec3(0, 0, -offset)),
	}
}

// addNeighborhoodByCube returns the 8 corner offsets of pos, the "cube"
// neighbor layout used when the cross layout doesn't resolve enough
// neighbors (e.g. the surface sheet is thin along one axis).
func addNeighborhoodByCube(pos core.Vec3, offset float64) []core.Vec3 {
	var pts []core.Vec3
	for _, dx := range []float64{-offset, offset} {
		for _, dy := range []float64{-offset, offset} {
			for _, dz := range []float64{-offset, offset} {
				pts = append(pts, pos.Add(core.NewVec3(dx, dy, dz)))
			}
		}
	}
	return pts
}

// addHyperlineToList searches for a recirculation point near each candidate
// offset position, restricting t0/tau to a narrow band around base's own
// t0/tau (candidates far away in time aren't the "same" neighborhood of the
// surface), and keeps only those whose found point actually landed close to
// the candidate position (SpaceEqual-scaled tolerance) rather than jumping
// to an unrelated sheet of the surface.
func (rs *RecSurface) addHyperlineToList(base critsearch.RecPoint, candidates []core.Vec3) []core.Vec3 {
	t0Dt := rs.Globals.NeighborDifT0PerLU * rs.Globals.SpaceEqual
	tauDt := rs.Globals.NeighborDifTauPerLU * rs.Globals.SpaceEqual
	acceptRadius := 4 * rs.Globals.SpaceEqual

	var found []core.Vec3
	for _, candidate := range candidates {
		cuboid := critsearch.NewVectorCuboid(
			rs.Flow, rs.IntegratorCfg,
			candidate, candidate,
			base.T0-t0Dt, base.T0+t0Dt,
			base.Tau-tauDt, base.Tau+tauDt,
			rs.Globals.TauEqual,
		)
		elements := rs.Extractor.GetCritElements(cuboid)
		nearest, ok := nearestTo(candidate, elements.CritPoints)
		if !ok || nearest.Pos.Subtract(candidate).Length() > acceptRadius {
			continue
		}
		found = append(found, nearest.Pos)
	}
	return found
}

func nearestTo(pos core.Vec3, points []critsearch.RecPoint) (critsearch.RecPoint, bool) {
	var best critsearch.RecPoint
	bestDist := -1.0
	for _, p := range points {
		d := p.Pos.Subtract(pos).Length()
		if bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist >= 0
}
