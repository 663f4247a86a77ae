package core

import "math"

// AABB is an axis-aligned bounding box, used both as the flow domain bound
// and as the bounding volume of the single renderable Box in a scene.
//
// Invariant: Min <= Max component-wise. NewAABB enforces this by reordering.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB creates an AABB from two corner points, reordering components so
// that Min <= Max holds regardless of the order v1/v2 were supplied in.
func NewAABB(v1, v2 Vec3) AABB {
	min := Vec3{math.Min(v1.X, v2.X), math.Min(v1.Y, v2.Y), math.Min(v1.Z, v2.Z)}
	max := Vec3{math.Max(v1.X, v2.X), math.Max(v1.Y, v2.Y), math.Max(v1.Z, v2.Z)}
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints returns the bounding box of an arbitrary set of points.
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min = Vec3{math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z)}
		max = Vec3{math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z)}
	}
	return AABB{Min: min, Max: max}
}

// IsValid reports whether Min <= Max holds component-wise.
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X && aabb.Min.Y <= aabb.Max.Y && aabb.Min.Z <= aabb.Max.Z
}

// IsInside reports whether p lies within the closed box.
func (aabb AABB) IsInside(p Vec3) bool {
	return p.X >= aabb.Min.X && p.X <= aabb.Max.X &&
		p.Y >= aabb.Min.Y && p.Y <= aabb.Max.Y &&
		p.Z >= aabb.Min.Z && p.Z <= aabb.Max.Z
}

// Intersection is the result of a successful AABB slab-test intersection.
type Intersection struct {
	TIn, TOut float64 // ray parameters of entry and exit
	AxisIn    int     // axis (0=X,1=Y,2=Z) on which the ray entered the box
}

// Intersect performs the slab-method ray/box intersection, returning the
// entry/exit ray parameters and the axis the ray entered through, clamped to
// [minT, maxT]. It returns ok=false if the ray misses the box (or the
// intersection interval is empty after clamping).
//
// This is the richer counterpart to a boolean Hit test: component #1 of the
// spec (ray/domain traversal) needs the entry axis to determine shading
// normals on the domain box, and needs t_in/t_out to bound the pathline
// search along the ray.
func (aabb AABB) Intersect(ray Ray, minT, maxT float64) (Intersection, bool) {
	tIn, tOut := minT, maxT
	axisIn := -1

	for axis := 0; axis < 3; axis++ {
		var lo, hi, origin, direction float64
		switch axis {
		case 0:
			lo, hi, origin, direction = aabb.Min.X, aabb.Max.X, ray.Origin.X, ray.Direction.X
		case 1:
			lo, hi, origin, direction = aabb.Min.Y, aabb.Max.Y, ray.Origin.Y, ray.Direction.Y
		case 2:
			lo, hi, origin, direction = aabb.Min.Z, aabb.Max.Z, ray.Origin.Z, ray.Direction.Z
		}

		if math.Abs(direction) < 1e-12 {
			if origin < lo || origin > hi {
				return Intersection{}, false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (lo - origin) * invDirection
		t2 := (hi - origin) * invDirection
		enteringAxis := axis
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		if t1 > tIn {
			tIn = t1
			axisIn = enteringAxis
		}
		if t2 < tOut {
			tOut = t2
		}
		if tIn > tOut {
			return Intersection{}, false
		}
	}

	// axisIn == -1 here means the ray origin was already inside the box on
	// every axis tested above: the "entry" axis is undefined because there
	// is no crossing. The original implementation treats this as a valid,
	// normal-less hit; callers that need a shading normal must special-case
	// axisIn == -1.

	return Intersection{TIn: tIn, TOut: tOut, AxisIn: axisIn}, true
}

// Hit is a boolean convenience wrapper around Intersect, kept for call sites
// that only need a pass/fail domain-pruning test (spec §8 property 2: AABB
// miss must short-circuit before any integrator call).
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	_, ok := aabb.Intersect(ray, tMin, tMax)
	return ok
}

// Union returns the smallest AABB containing both boxes.
func (aabb AABB) Union(other AABB) AABB {
	return NewAABBFromPoints(aabb.Min, aabb.Max, other.Min, other.Max)
}

// Center returns the midpoint of the box.
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the extent of the box along each axis.
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}
