package scenegeo

import (
	"testing"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/critsearch"
	"github.com/dstelter/rsraytracer/pkg/flow"
	"github.com/dstelter/rsraytracer/pkg/recsurface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyFlow contains no point, so every integration from a cuboid corner
// fails at once and the recirculation search finds no recirculation point
// without doing any integration work — used to exercise Scene's
// common-object and background paths.
type emptyFlow struct{}

func (emptyFlow) Velocity(core.Vec3, float64) (core.Vec3, bool) { return core.Vec3{}, false }
func (emptyFlow) IsInside(core.Vec3) bool                       { return false }
func (emptyFlow) Extent() core.AABB                             { return core.AABB{} }

func newEmptySceneRecSurface() *recsurface.RecSurface {
	globals := config.DefaultGlobals()
	return recsurface.NewRecSurface(
		emptyFlow{},
		config.DefaultDataParams(),
		config.DefaultSearchParams(globals),
		critsearch.NewCritExtractor(config.DefaultCritSearchParams(), globals),
		flow.DefaultIntegratorConfig(),
		globals,
	)
}

func TestSceneRaytracingHitsCommonObjectWhenSurfaceMisses(t *testing.T) {
	scene := NewScene(newEmptySceneRecSurface(), NewDirectionalLight(core.NewVec3(0, 0, -1), core.Vec3{}), core.NewVec3(0, 0, 0), 1, 1)
	scene.AddObject(NewBox(core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))))

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	result := scene.Raytracing(ray, 0, 100)

	require.True(t, result.ObjectHit)
	assert.Nil(t, result.RecPoint)
	assert.InDelta(t, 4.0, result.HitDistance, 1e-9)
}

func TestSceneRaytracingReturnsBackgroundWhenNothingHit(t *testing.T) {
	bg := core.NewVec3(0.1, 0.2, 0.3)
	scene := NewScene(newEmptySceneRecSurface(), NewDirectionalLight(core.NewVec3(0, 0, -1), core.Vec3{}), bg, 1, 1)

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	result := scene.Raytracing(ray, 0, 100)

	assert.False(t, result.ObjectHit)
	assert.Nil(t, result.RecPoint)
	assert.Equal(t, bg, result.Background)
}

func TestSceneT0ColorAndTauColorNormalizeByMax(t *testing.T) {
	scene := NewScene(newEmptySceneRecSurface(), NewDirectionalLight(core.NewVec3(0, 0, -1), core.Vec3{}), core.Vec3{}, 10, 5)
	assert.Equal(t, GrayscaleColorMap(0.5), scene.T0Color(5))
	assert.Equal(t, GrayscaleColorMap(1.0), scene.TauColor(5))
}
