package scenegeo

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
)

// Box is an axis-aligned box renderable, the domain-boundary object every
// scenario adds so the camera has something to draw behind/around the
// recirculation surface (spec §6: Non-goals exclude a general geometry
// library, but a single box primitive is part of every scenario's scene).
// Grounded on original_source/inc/box.hh.
type Box struct {
	AABB  core.AABB
	Phong Phong
}

// NewBox builds a Box with the original's default material (gray albedo,
// ambient 0.8, diffuse 0.4, specular 0.3, shininess 3).
func NewBox(aabb core.AABB) Box {
	gray := NewConstantColorSource(core.NewVec3(0.5, 0.5, 0.5))
	return Box{AABB: aabb, Phong: NewPhong(gray, 0.8, 0.4, 0.3, 3)}
}

func (b Box) Intersect(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	hit, ok := b.AABB.Intersect(ray, tMin, tMax)
	if !ok {
		return Intersection{}, false
	}
	pos := ray.At(hit.TIn)
	normal := boxFaceNormal(b.AABB, hit.AxisIn, pos, ray)
	u, v := boxUV(b.AABB, pos, hit.AxisIn)
	return Intersection{Ray: ray, T: hit.TIn, Position: pos, Normal: normal, U: u, V: v}, true
}

func (b Box) Shade(light DirectionalLight, hit Intersection) core.Vec3 {
	return b.Phong.Shade(light, hit.Position, hit.Normal, hit.Ray.Direction, hit.U, hit.V)
}

// boxFaceNormal returns the outward face normal of the axis the ray entered
// through, oriented against the ray direction. axisIn == -1 (ray origin
// already inside the box) has no well-defined entry face; it falls back to
// the box's spatial center-to-hit direction rounded to the nearest axis.
func boxFaceNormal(aabb core.AABB, axisIn int, pos core.Vec3, ray core.Ray) core.Vec3 {
	if axisIn == -1 {
		d := pos.Subtract(aabb.Center())
		switch {
		case math.Abs(d.X) >= math.Abs(d.Y) && math.Abs(d.X) >= math.Abs(d.Z):
			return core.Vec3{X: math.Copysign(1, d.X)}
		case math.Abs(d.Y) >= math.Abs(d.Z):
			return core.Vec3{Y: math.Copysign(1, d.Y)}
		default:
			return core.Vec3{Z: math.Copysign(1, d.Z)}
		}
	}
	n := core.Vec3{}
	switch axisIn {
	case 0:
		n.X = 1
	case 1:
		n.Y = 1
	case 2:
		n.Z = 1
	}
	if n.Dot(ray.Direction) > 0 {
		n = n.Negate()
	}
	return n
}

// boxUV maps a hit position on the entered face to a [0,1]x[0,1] uv
// coordinate using the box's own extent on the two axes orthogonal to the
// entry axis.
func boxUV(aabb core.AABB, pos core.Vec3, axisIn int) (float64, float64) {
	size := aabb.Size()
	switch axisIn {
	case 0:
		return frac(pos.Y, aabb.Min.Y, size.Y), frac(pos.Z, aabb.Min.Z, size.Z)
	case 1:
		return frac(pos.X, aabb.Min.X, size.X), frac(pos.Z, aabb.Min.Z, size.Z)
	default:
		return frac(pos.X, aabb.Min.X, size.X), frac(pos.Y, aabb.Min.Y, size.Y)
	}
}

func frac(v, min, size float64) float64 {
	if size == 0 {
		return 0
	}
	return (v - min) / size
}
