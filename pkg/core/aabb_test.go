package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAABBRoundTrip covers spec property (1): for a ray crossing the box,
// ray(t_in) and ray(t_out) lie on the box surface and ray(t_mid) is inside.
func TestAABBRoundTrip(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(-1, 0.5, 0.5), NewVec3(1, 0, 0))

	hit, ok := box.Intersect(ray, 0, math.MaxFloat64)
	require.True(t, ok)

	pIn := ray.At(hit.TIn)
	pOut := ray.At(hit.TOut)
	assert.InDelta(t, 0.0, pIn.X, 1e-9)
	assert.InDelta(t, 1.0, pOut.X, 1e-9)

	mid := (hit.TIn + hit.TOut) / 2
	assert.True(t, box.IsInside(ray.At(mid)))
}

func TestAABBMiss(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(-1, 5, 5), NewVec3(1, 0, 0))
	_, ok := box.Intersect(ray, 0, math.MaxFloat64)
	assert.False(t, ok)
}

func TestAABBAxisIn(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(0.5, -1, 0.5), NewVec3(0, 1, 0))
	hit, ok := box.Intersect(ray, 0, math.MaxFloat64)
	require.True(t, ok)
	assert.Equal(t, 1, hit.AxisIn)
}
