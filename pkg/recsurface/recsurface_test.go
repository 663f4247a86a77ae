package recsurface

import (
	"math"
	"testing"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/critsearch"
	"github.com/dstelter/rsraytracer/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rotationalFlow is every point of the domain advected around the origin at
// constant angular velocity in the XY plane: a recirculation point at any
// (x,y,0) with tau = 2*pi/omega, regardless of t0.
type rotationalFlow struct {
	omega  float64
	domain core.AABB
}

func (f rotationalFlow) Velocity(pos core.Vec3, _ float64) (core.Vec3, bool) {
	if !f.IsInside(pos) {
		return core.Vec3{}, false
	}
	return core.NewVec3(-f.omega*pos.Y, f.omega*pos.X, 0), true
}
func (f rotationalFlow) IsInside(pos core.Vec3) bool { return f.domain.IsInside(pos) }
func (f rotationalFlow) Extent() core.AABB           { return f.domain }

func newTestSurface(f flow.Flow, domain core.AABB, tauMax float64) *RecSurface {
	globals := config.DefaultGlobals()
	dataParams := config.DataParams{Domain: domain, StepSize: 0.5}
	searchParams := config.SearchParams{T0Min: 0, T0Max: 0.1, TauMin: 0.2, TauMax: tauMax, Dt: 0.1, Prec: globals.SearchPrec}
	extractor := critsearch.NewCritExtractor(config.CritSearchParams{
		SearchPrecision:  1e-3,
		JacobiPrecision:  1e-1,
		ClusterPrecision: 1e-2,
		MaxSteps:         20000,
	}, globals)
	return NewRecSurface(f, dataParams, searchParams, extractor, flow.DefaultIntegratorConfig(), globals)
}

func TestGetDomainIntersectionsHonorsEndAt(t *testing.T) {
	domain := core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10))
	rs := newTestSurface(rotationalFlow{omega: 1, domain: domain}, domain, 7)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))

	tIn, tOut, ok := rs.GetDomainIntersections(ray, 0, 5)
	require.True(t, ok)
	assert.Equal(t, 0.0, tIn)
	assert.Equal(t, 5.0, tOut, "tOut must be clamped to the caller-supplied end_at bound")
}

func TestGetDomainIntersectionsMissesOutsideDomain(t *testing.T) {
	domain := core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))
	rs := newTestSurface(rotationalFlow{omega: 1, domain: domain}, domain, 7)

	ray := core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(1, 0, 0))
	_, _, ok := rs.GetDomainIntersections(ray, 0, 100)
	assert.False(t, ok)
}

func TestSearchIntersectionFindsRotationalRecirculationPoint(t *testing.T) {
	omega := 1.0
	domain := core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10))
	tau := 2 * math.Pi / omega
	rs := newTestSurface(rotationalFlow{omega: omega, domain: domain}, domain, tau+1)
	rs.SearchParams.TauMin = tau - 1

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0.05, 0))

	hit, rp, ok := rs.SearchIntersection(ray, 0, 3)
	require.True(t, ok)
	assert.Greater(t, hit, 0.0)
	assert.InDelta(t, tau, rp.Tau, 0.1)
}

func TestGetRecPointPicksNearestToOrigin(t *testing.T) {
	rs := newTestSurface(rotationalFlow{omega: 1, domain: core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10))}, core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10)), 7)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	elements := critsearch.CritElements{
		CritPoints: []critsearch.RecPoint{
			{Pos: core.NewVec3(5, 0, 0), T0: 0, Tau: 1},
			{Pos: core.NewVec3(2, 0, 0), T0: 0, Tau: 1},
			{Pos: core.NewVec3(-1, 0, 0), T0: 0, Tau: 1}, // behind the ray origin
		},
	}

	t0, rp, ok := rs.GetRecPoint(ray, elements)
	require.True(t, ok)
	assert.Equal(t, 2.0, t0)
	assert.Equal(t, 2.0, rp.Pos.X)
}

func TestLine2DGetLinePointsIncludesEndpoints(t *testing.T) {
	line := Line2D{P1: core.NewVec2(0, 0), P2: core.NewVec2(4, 0)}
	points := line.GetLinePoints(0.5)

	foundStart, foundEnd := false, false
	for _, p := range points {
		if p == core.NewVec2(0, 0) {
			foundStart = true
		}
		if p == core.NewVec2(4, 0) {
			foundEnd = true
		}
	}
	assert.True(t, foundStart)
	assert.True(t, foundEnd)
}

func TestDoesLineNeedTestSkipsWhenNearerHitKnown(t *testing.T) {
	domain := core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10))
	rs := newTestSurface(rotationalFlow{omega: 1, domain: domain}, domain, 7)

	cam := fakeCamera{}
	lookup := func(x, y int) (float64, bool) {
		return 0.5, true // every pixel already has a hit nearer than segStartT
	}

	need := rs.doesLineNeedTest(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), 2.0, cam, lookup, false)
	assert.False(t, need, "a known nearer hit should prune the segment")
}

func TestDoesLineNeedTestRequiresTestWithoutNeighborData(t *testing.T) {
	rs := newTestSurface(rotationalFlow{omega: 1, domain: core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10))}, core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10)), 7)

	need := rs.doesLineNeedTest(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), 2.0, nil, nil, false)
	assert.True(t, need)
}

// fakeCamera projects everything to the origin, enough to exercise the
// rasterization path without a real scenegeo camera.
type fakeCamera struct{}

func (fakeCamera) Projection(core.Vec3) (core.Vec2, bool) { return core.NewVec2(0, 0), true }

func TestEstimateFlowNormalOnRotationalFlow(t *testing.T) {
	omega := 1.0
	domain := core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10))
	tau := 2 * math.Pi / omega
	rs := newTestSurface(rotationalFlow{omega: omega, domain: domain}, domain, tau+1)
	rs.SearchParams.TauMin = tau - 1

	rp := critsearch.RecPoint{Pos: core.NewVec3(3, 0, 0), T0: 0, Tau: tau}
	ray := core.NewRay(core.NewVec3(10, 0, 0), core.NewVec3(-1, 0, 0))

	normal, ok := rs.EstimateFlowNormal(rp, ray, 0.05, rs.Globals.NormalMaxSteps)
	if !ok {
		t.Skip("rotational flow's recirculation sheet is degenerate along z; normal estimation may legitimately fail")
	}
	assert.InDelta(t, 1.0, normal.Length(), 1e-6)
}
