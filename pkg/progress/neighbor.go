package progress

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
)

// IsNeighboring reports whether r and other are "5D-neighboring" per the
// Glossary: their t0/tau differences, normalized by spatial distance, stay
// within NeighborDifT0PerLU/NeighborDifTauPerLU, and the angle between the
// line pos1->pos2 and pos1->other.ray(r.hit) stays within NeighborSpaceAngle.
// Grounded on original_source/inc/rsintersection.hh's areTimeDimsCompatible +
// areAnglesCompatible.
func (r RSIntersection) IsNeighboring(other RSIntersection, g config.Globals) bool {
	if !r.IsHit() || !other.IsHit() {
		return false
	}
	rp1, rp2 := *r.RP, *other.RP

	dis := rp1.Pos.Subtract(rp2.Pos).Length()
	if dis < g.Zero {
		return true
	}

	difT0 := math.Abs(rp1.T0 - rp2.T0)
	difTau := math.Abs(rp1.Tau - rp2.Tau)
	if difT0/dis > g.NeighborDifT0PerLU || difTau/dis > g.NeighborDifTauPerLU {
		return false
	}

	// "ideal" point on other's ray at the same depth as r's hit, used to
	// measure the angle between the two recirculation points.
	ideal := other.Ray.At(*r.Hit)
	v1 := ideal.Subtract(rp1.Pos)
	dif := rp2.Pos.Subtract(rp1.Pos)

	angleDeg := angleBetweenDeg(v1, dif)
	return angleDeg <= g.NeighborSpaceAngle
}

func angleBetweenDeg(a, b core.Vec3) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return 0
	}
	cosTheta := a.Dot(b) / (la * lb)
	cosTheta = math.Max(-1, math.Min(1, cosTheta))
	return math.Acos(cosTheta) * 180 / math.Pi
}
