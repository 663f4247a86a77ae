// Package critsearch implements the recirculation-point extraction search:
// a VectorCuboid samples flow-return vectors over a small 5D cell, and
// CritExtractor recursively subdivides cells to isolate points and
// structures where the flow-return vector is zero.
package critsearch

import (
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/flow"
	"github.com/dstelter/rsraytracer/pkg/hyper"
)

// Flow is a local alias so callers of this package don't need a separate
// import just to name the interface.
type Flow = flow.Flow

// cornerPoints memoizes HyperPoints by (spatial position, t0) so repeated
// subdivision along the same ray segment reuses pathline-integration work
// instead of recomputing it, mirroring HyperPoint reuse patterns in
// original_source/src/recsurface.cpp.
type cornerPoints struct {
	flow  Flow
	cfg   flow.IntegratorConfig
	cache map[cornerKey]*hyper.HyperPoint
}

type cornerKey struct {
	pos core.Vec3
	t0  float64
}

func newCornerPoints(f Flow, cfg flow.IntegratorConfig) *cornerPoints {
	return &cornerPoints{flow: f, cfg: cfg, cache: map[cornerKey]*hyper.HyperPoint{}}
}

func (cp *cornerPoints) point(pos core.Vec3, t0 float64) *hyper.HyperPoint {
	key := cornerKey{pos: pos, t0: t0}
	if hp, ok := cp.cache[key]; ok {
		return hp
	}
	hp := hyper.NewHyperPoint(pos, t0, cp.flow, cp.cfg)
	cp.cache[key] = hp
	return hp
}

// VectorCuboid is a cell in the 5D search space (spatial position along the
// ray segment collapsed to its two current endpoints, t0, tau). Each of its
// 8 corners is the flow-return vector Φ(p,t0;tau) - p at a combination of
// {PosA,PosB} x {T0Lo,T0Hi} x {TauLo,TauHi}. Subdividing the cell refines
// all three axes at once (including bisecting the spatial segment), which
// is why subdivision produces 8 children rather than 4 (spec §4.4/§4.5).
type VectorCuboid struct {
	points       *cornerPoints
	PosA, PosB   core.Vec3
	T0Lo, T0Hi   float64
	TauLo, TauHi float64
	tauTolerance float64
}

// NewVectorCuboid constructs the root cuboid for a ray segment's full
// t0/tau search range.
func NewVectorCuboid(f Flow, cfg flow.IntegratorConfig, posA, posB core.Vec3, t0Lo, t0Hi, tauLo, tauHi, tauTolerance float64) VectorCuboid {
	return VectorCuboid{
		points:       newCornerPoints(f, cfg),
		PosA:         posA,
		PosB:         posB,
		T0Lo:         t0Lo,
		T0Hi:         t0Hi,
		TauLo:        tauLo,
		TauHi:        tauHi,
		tauTolerance: tauTolerance,
	}
}

// corner returns the flow-return vector at corner (endpoint, t0idx, tauidx)
// where each index is 0 (lo) or 1 (hi), and whether the evaluation
// succeeded (false if the underlying integration left the domain).
func (c VectorCuboid) corner(endpoint, t0idx, tauidx int) (core.Vec3, bool) {
	pos := c.PosA
	if endpoint == 1 {
		pos = c.PosB
	}
	t0 := c.T0Lo
	if t0idx == 1 {
		t0 = c.T0Hi
	}
	tau := c.TauLo
	if tauidx == 1 {
		tau = c.TauHi
	}
	hp := c.points.point(pos, t0)
	ret, status := hp.FlowReturn(tau, c.tauTolerance)
	return ret, status == flow.AdvectOK
}

// corners returns all 8 corner vectors, indexed as endpoint*4+t0idx*2+tauidx.
// ok is false if any corner's integration left the domain.
func (c VectorCuboid) corners() (vals [8]core.Vec3, ok bool) {
	ok = true
	for endpoint := 0; endpoint < 2; endpoint++ {
		for t0idx := 0; t0idx < 2; t0idx++ {
			for tauidx := 0; tauidx < 2; tauidx++ {
				v, cOk := c.corner(endpoint, t0idx, tauidx)
				if !cOk {
					ok = false
				}
				vals[endpoint*4+t0idx*2+tauidx] = v
			}
		}
	}
	return vals, ok
}

// SignsUniform reports whether any single component of the flow-return
// vector keeps the same nonzero sign across all 8 corners; when it does,
// that component can never cross zero inside the cell, so the cell cannot
// contain a zero of the vector field (interval-arithmetic pruning) and the
// extractor can discard it without further subdivision (spec §4.4: "if true
// for any component ... the cell contains no root"). The second return
// value is false when a corner's integration left the domain, meaning the
// test could not be evaluated.
func (c VectorCuboid) SignsUniform() (uniform bool, evaluated bool) {
	vals, ok := c.corners()
	if !ok {
		return false, false
	}
	signX, signY, signZ := sign(vals[0].X), sign(vals[0].Y), sign(vals[0].Z)
	uniformX, uniformY, uniformZ := true, true, true
	for _, v := range vals[1:] {
		if sign(v.X) != signX {
			uniformX = false
		}
		if sign(v.Y) != signY {
			uniformY = false
		}
		if sign(v.Z) != signZ {
			uniformZ = false
		}
	}
	uniform = (uniformX && signX != 0) || (uniformY && signY != 0) || (uniformZ && signZ != 0)
	return uniform, true
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Diagonal returns the length of the cell's parameter-space diagonal
// (spatial extent |PosB-PosA|, plus t0 and tau spans), used by the
// extractor's searchPrecision stopping criterion.
func (c VectorCuboid) Diagonal() float64 {
	spatial := c.PosB.Subtract(c.PosA).Length()
	dt0 := c.T0Hi - c.T0Lo
	dtau := c.TauHi - c.TauLo
	return core.NewVec3(spatial, dt0, dtau).Length()
}

// Center returns the cell's spatial/parametric center: midpoint position,
// mean t0, mean tau.
func (c VectorCuboid) Center() (pos core.Vec3, t0, tau float64) {
	pos = c.PosA.Add(c.PosB).Multiply(0.5)
	t0 = (c.T0Lo + c.T0Hi) / 2
	tau = (c.TauLo + c.TauHi) / 2
	return
}

// Interpolate trilinearly interpolates the 8 corner vectors at local
// parameters (s,u,v) each in [0,1], using the Bernstein/trilinear basis
// w(s,u,v) = (s or 1-s) * (u or 1-u) * (v or 1-v), matching the original
// implementation's p_intCoef[8] trilinear interpolation weights.
func (c VectorCuboid) Interpolate(s, u, v float64) (core.Vec3, bool) {
	vals, ok := c.corners()
	if !ok {
		return core.Vec3{}, false
	}
	var result core.Vec3
	for endpoint := 0; endpoint < 2; endpoint++ {
		for t0idx := 0; t0idx < 2; t0idx++ {
			for tauidx := 0; tauidx < 2; tauidx++ {
				w := basis(s, endpoint) * basis(u, t0idx) * basis(v, tauidx)
				result = result.Add(vals[endpoint*4+t0idx*2+tauidx].Multiply(w))
			}
		}
	}
	return result, true
}

func basis(t float64, idx int) float64 {
	if idx == 0 {
		return 1 - t
	}
	return t
}

// Subdivide splits the cell in half along all three axes (spatial segment,
// t0, tau), producing 8 child cells sharing this cuboid's HyperPoint cache.
func (c VectorCuboid) Subdivide() [8]VectorCuboid {
	mid := c.PosA.Add(c.PosB).Multiply(0.5)
	t0Mid := (c.T0Lo + c.T0Hi) / 2
	tauMid := (c.TauLo + c.TauHi) / 2

	mk := func(posA, posB core.Vec3, t0Lo, t0Hi, tauLo, tauHi float64) VectorCuboid {
		return VectorCuboid{
			points:       c.points,
			PosA:         posA,
			PosB:         posB,
			T0Lo:         t0Lo,
			T0Hi:         t0Hi,
			TauLo:        tauLo,
			TauHi:        tauHi,
			tauTolerance: c.tauTolerance,
		}
	}

	return [8]VectorCuboid{
		mk(c.PosA, mid, c.T0Lo, t0Mid, c.TauLo, tauMid),
		mk(c.PosA, mid, c.T0Lo, t0Mid, tauMid, c.TauHi),
		mk(c.PosA, mid, t0Mid, c.T0Hi, c.TauLo, tauMid),
		mk(c.PosA, mid, t0Mid, c.T0Hi, tauMid, c.TauHi),
		mk(mid, c.PosB, c.T0Lo, t0Mid, c.TauLo, tauMid),
		mk(mid, c.PosB, c.T0Lo, t0Mid, tauMid, c.TauHi),
		mk(mid, c.PosB, t0Mid, c.T0Hi, c.TauLo, tauMid),
		mk(mid, c.PosB, t0Mid, c.T0Hi, tauMid, c.TauHi),
	}
}
