package scenegeo

import (
	"testing"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxIntersectFrontFaceNormalFacesCamera(t *testing.T) {
	box := NewBox(core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1)))
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	hit, ok := box.Intersect(ray, 0, 100)
	require.True(t, ok)
	assert.InDelta(t, 4.0, hit.T, 1e-9)
	assert.Greater(t, hit.Normal.Z, 0.0, "the entry face normal should point back toward the ray origin")
}

func TestBoxIntersectMissesOutsideBounds(t *testing.T) {
	box := NewBox(core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1)))
	ray := core.NewRay(core.NewVec3(10, 10, 10), core.NewVec3(0, 0, -1))
	_, ok := box.Intersect(ray, 0, 100)
	assert.False(t, ok)
}

func TestBoxShadeReturnsColorWithinAlbedoBounds(t *testing.T) {
	box := NewBox(core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1)))
	light := NewDirectionalLight(core.NewVec3(0, 0, -1), core.Vec3{})
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	hit, ok := box.Intersect(ray, 0, 100)
	require.True(t, ok)

	color := box.Shade(light, hit)
	assert.GreaterOrEqual(t, color.X, 0.0)
	assert.GreaterOrEqual(t, color.Y, 0.0)
	assert.GreaterOrEqual(t, color.Z, 0.0)
}
