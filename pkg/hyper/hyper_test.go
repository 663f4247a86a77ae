package hyper

import (
	"testing"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/flow"
	"github.com/stretchr/testify/assert"
)

type constFlow struct {
	domain core.AABB
	vel    core.Vec3
}

func (f constFlow) Velocity(pos core.Vec3, _ float64) (core.Vec3, bool) {
	if !f.IsInside(pos) {
		return core.Vec3{}, false
	}
	return f.vel, true
}
func (f constFlow) IsInside(pos core.Vec3) bool { return f.domain.IsInside(pos) }
func (f constFlow) Extent() core.AABB           { return f.domain }

func TestHyperPointCachesFlowReturn(t *testing.T) {
	f := constFlow{domain: core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10)), vel: core.NewVec3(1, 0, 0)}
	hp := NewHyperPoint(core.NewVec3(0, 0, 0), 0, f, flow.DefaultIntegratorConfig())

	ret1, status1 := hp.FlowReturn(1.0, 1e-5)
	assert.Equal(t, flow.AdvectOK, status1)
	assert.InDelta(t, 1.0, ret1.X, 1e-3)

	// Same tau (within tolerance) must hit the cache and return identically.
	ret2, status2 := hp.FlowReturn(1.0+1e-8, 1e-5)
	assert.Equal(t, status1, status2)
	assert.Equal(t, ret1, ret2)
	assert.Len(t, hp.entries, 1)
}

func TestHyperLineSampleEndpoints(t *testing.T) {
	f := constFlow{domain: core.NewAABB(core.NewVec3(-10, -10, -10), core.NewVec3(10, 10, 10)), vel: core.NewVec3(0, 0, 0)}
	a := NewHyperPoint(core.NewVec3(0, 0, 0), 0, f, flow.DefaultIntegratorConfig())
	b := NewHyperPoint(core.NewVec3(2, 0, 0), 0, f, flow.DefaultIntegratorConfig())
	hl := NewHyperLine(a, b)

	assert.Equal(t, a.Pos, hl.Sample(0))
	assert.Equal(t, b.Pos, hl.Sample(1))
	assert.Equal(t, core.NewVec3(1, 0, 0), hl.Sample(0.5))
}
