package scenegeo

import "github.com/dstelter/rsraytracer/pkg/core"

// Intersection describes one hit of a ray against a common scene object
// (anything shaded with a material other than the recirculation surface
// itself — currently only Box). Grounded on
// original_source/inc/intersection.hh.
type Intersection struct {
	Ray      core.Ray
	T        float64
	Position core.Vec3
	Normal   core.Vec3
	U, V     float64
}

// Renderable is a common scene object: something a ray can hit and that
// knows how to shade itself once hit. Grounded on
// original_source/inc/renderable.hh.
type Renderable interface {
	Intersect(ray core.Ray, tMin, tMax float64) (Intersection, bool)
	Shade(light DirectionalLight, hit Intersection) core.Vec3
}
