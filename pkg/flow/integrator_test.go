package flow

import (
	"math"
	"testing"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rotationalFlow is the stationary linear flow v = A*x with eigenvalues
// ±i*omega used by spec §8 property (3): every point is a recirculation
// point at tau = 2*pi/omega.
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

func TestAdvectRotationalFlowReturnsToStart(t *testing.T) {
	omega := 1.0
	domain := core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10))
	f := rotationalFlow{omega: omega, domain: domain}

	start := core.NewVec3(1, 0, 0)
	tau := 2 * math.Pi / omega

	end, status := Advect(f, start, 0, tau, DefaultIntegratorConfig())
	require.Equal(t, AdvectOK, status)
	assert.InDelta(t, start.X, end.X, 1e-3)
	assert.InDelta(t, start.Y, end.Y, 1e-3)
}

func TestAdvectOutOfDomain(t *testing.T) {
	domain := core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))
	f := rotationalFlow{omega: 100, domain: domain}

	// Orbit radius |start| ~ 1.27 exceeds the box's half-width of 1, so the
	// circular pathline leaves the domain.
	start := core.NewVec3(0.9, 0.9, 0)
	_, status := Advect(f, start, 0, 10, DefaultIntegratorConfig())
	assert.Equal(t, AdvectOutOfDomain, status)
}

func TestFlowReturnZeroAtRecirculationPoint(t *testing.T) {
	omega := 1.0
	domain := core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10))
	f := rotationalFlow{omega: omega, domain: domain}

	start := core.NewVec3(1, 0, 0)
	tau := 2 * math.Pi / omega

	disp, status := FlowReturn(f, start, 0, tau, DefaultIntegratorConfig())
	require.Equal(t, AdvectOK, status)
	assert.InDelta(t, 0, disp.Length(), 1e-2)
}
