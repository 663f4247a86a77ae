// Package hyper implements the 5D points and line segments used to search
// for recirculation points along a camera ray: a HyperPoint decorates a 3D
// spatial position with a lazily-extended cache of pre-integrated pathline
// returns Φ(p, t0; tau), and a HyperLine connects two HyperPoints sampled
// along a ray segment.
package hyper

import (
	"sort"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/flow"
)

// returnEntry caches one previously-computed flow-return evaluation for a
// fixed t0, keyed by tau.
type returnEntry struct {
	tau    float64
	ret    core.Vec3
	status flow.AdvectStatus
}

// HyperPoint is a spatial position decorated with a cache of flow-return
// vectors Φ(p, t0; tau) - Φ(p, t0; 0) for various tau, extended lazily and
// only ever appended to (never invalidated), per spec §3/§4.3.
type HyperPoint struct {
	Pos core.Vec3
	T0  float64

	flow    flow.Flow
	cfg     flow.IntegratorConfig
	entries []returnEntry // kept sorted by tau, ascending
}

// NewHyperPoint constructs a HyperPoint with an empty return cache.
func NewHyperPoint(pos core.Vec3, t0 float64, f flow.Flow, cfg flow.IntegratorConfig) *HyperPoint {
	return &HyperPoint{Pos: pos, T0: t0, flow: f, cfg: cfg}
}

// FlowReturn returns Φ(Pos, T0; tau) - Pos, extending the cache if this tau
// has not been requested before. tauTolerance lets callers treat two tau
// values closer than TAUEQUAL as the same cache entry.
func (hp *HyperPoint) FlowReturn(tau, tauTolerance float64) (core.Vec3, flow.AdvectStatus) {
	i := sort.Search(len(hp.entries), func(i int) bool { return hp.entries[i].tau >= tau-tauTolerance })
	if i < len(hp.entries) && absFloat(hp.entries[i].tau-tau) <= tauTolerance {
		return hp.entries[i].ret, hp.entries[i].status
	}

	ret, status := flow.FlowReturn(hp.flow, hp.Pos, hp.T0, tau, hp.cfg)

	entry := returnEntry{tau: tau, ret: ret, status: status}
	hp.entries = append(hp.entries, entry)
	sort.Slice(hp.entries, func(a, b int) bool { return hp.entries[a].tau < hp.entries[b].tau })

	return ret, status
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// HyperLine connects two HyperPoints A and B, typically the two ends of a
// domain-clipped ray segment. Invariant: A.Pos != B.Pos (spec §3).
type HyperLine struct {
	A, B *HyperPoint
}

// NewHyperLine builds a HyperLine from two HyperPoints.
func NewHyperLine(a, b *HyperPoint) HyperLine {
	return HyperLine{A: a, B: b}
}

// Sample linearly interpolates the spatial position along the segment at
// parameter s in [0,1], with s=0 at A and s=1 at B.
func (hl HyperLine) Sample(s float64) core.Vec3 {
	return hl.A.Pos.Add(hl.B.Pos.Subtract(hl.A.Pos).Multiply(s))
}

// FlowReturn returns the flow-return vector at one of the line's two
// endpoints (s=0 -> A, s=1 -> B), which is the only place VectorCuboid ever
// evaluates it: the cuboid's ray-parameter dimension collapses to the pair
// {A, B} rather than varying continuously (spec §3, VectorCuboid).
func (hl HyperLine) FlowReturn(endpoint int, tau, tauTolerance float64) (core.Vec3, flow.AdvectStatus) {
	if endpoint == 0 {
		return hl.A.FlowReturn(tau, tauTolerance)
	}
	return hl.B.FlowReturn(tau, tauTolerance)
}
