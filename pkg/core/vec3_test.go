package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 4)
	n := v.Normalize()
	assert.InDelta(t, 1.0, n.Length(), 1e-12)

	zero := Vec3{}.Normalize()
	assert.True(t, zero.IsZero())
}

func TestVec3DotCross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	assert.InDelta(t, 0.0, x.Dot(y), 1e-12)
	assert.True(t, x.Cross(y).Equals(NewVec3(0, 0, 1)))
}

func TestReflect(t *testing.T) {
	d := NewVec3(1, -1, 0)
	n := NewVec3(0, 1, 0)
	r := Reflect(d, n)
	assert.True(t, r.Equals(NewVec3(1, 1, 0)))
}

func TestRayAt(t *testing.T) {
	ray := NewRay(NewVec3(0, 0, 0), NewVec3(2, 0, 0))
	p := ray.At(3)
	assert.InDelta(t, 3.0, p.X, 1e-12)
	assert.InDelta(t, 1.0, ray.Direction.Length(), 1e-12)
}

func TestVec3EqualsTol(t *testing.T) {
	a := NewVec3(1, 1, 1)
	b := NewVec3(1+1e-6, 1, 1)
	assert.False(t, a.Equals(b))
	assert.True(t, a.EqualsTol(b, 1e-5))
	_ = math.Pi
}
