package critsearch

import (
	"testing"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

// TestExtractorFindsRotationalRecirculationPoint covers spec property (3):
// every point of the stationary rotational flow is a recirculation point at
// tau = 2*pi/omega, so a cuboid search around any point must find one
// within clusterPrecision.
func TestExtractorFindsRotationalRecirculationPoint(t *testing.T) {
	omega := 1.0
	domain := core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10))
	f := rotationalFlow{omega: omega, domain: domain}

	params := config.CritSearchParams{
		SearchPrecision:  1e-3,
		JacobiPrecision:  1e-1,
		ClusterPrecision: 1e-2,
		MaxSteps:         20000,
	}
	globals := config.DefaultGlobals()
	extractor := NewCritExtractor(params, globals)

	posA := core.NewVec3(0.9, -0.1, 0)
	posB := core.NewVec3(1.1, 0.1, 0)
	tau := 2 * 3.141592653589793 / omega

	root := NewVectorCuboid(f, flow.DefaultIntegratorConfig(), posA, posB, 0, 0.1, tau-0.05, tau+0.05, globals.TauEqual)

	elements := extractor.GetCritElements(root)
	require.True(t, elements.HasCritPoint())
	assert.InDelta(t, tau, elements.CritPoints[0].Tau, 0.05)
}

func TestClusterIdempotent(t *testing.T) {
	globals := config.DefaultGlobals()
	extractor := NewCritExtractor(config.DefaultCritSearchParams(), globals)

	points := []RecPoint{
		{Pos: core.NewVec3(0, 0, 0), T0: 0, Tau: 1},
		{Pos: core.NewVec3(1e-6, 0, 0), T0: 0, Tau: 1},
		{Pos: core.NewVec3(5, 0, 0), T0: 0, Tau: 1},
	}

	once := extractor.cluster(CritElements{CritPoints: points}, 1e-3)
	twice := extractor.cluster(once, 1e-3)

	assert.Len(t, once.CritPoints, 2)
	assert.Equal(t, len(once.CritPoints), len(twice.CritPoints))
}
