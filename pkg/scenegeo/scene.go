package scenegeo

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/critsearch"
	"github.com/dstelter/rsraytracer/pkg/recsurface"
)

// RaytraceResult is the outcome of tracing one ray through a Scene: either a
// recirculation-surface hit (RecPoint set, T0Color/TauColor populated), a
// common-object hit (ObjectColor set), or neither (background only).
type RaytraceResult struct {
	RecPoint        *critsearch.RecPoint
	HitDistance     float64
	T0Color         core.Vec3
	TauColor        core.Vec3
	ObjectHit       bool
	ObjectColor     core.Vec3
	Background      core.Vec3
}

// Scene bundles the recirculation surface search with the handful of common
// (non-surface) renderables every scenario adds — currently just the domain
// Box — plus the single directional light and background color used for
// shading. Grounded on original_source/inc/scene.hh and src/scene.cpp.
type Scene struct {
	RecSurface *recsurface.RecSurface
	Objects    []Renderable
	Light      DirectionalLight
	Background core.Vec3

	T0Max, TauMax float64 // normalization bounds for T0Color/TauColor
	T0Map, TauMap ColorMap
}

// NewScene constructs a Scene with GrayscaleColorMap as the default t0/tau
// color map (see colormap.go); callers wanting closer-to-original visuals
// can override T0Map/TauMap after construction.
func NewScene(rs *recsurface.RecSurface, light DirectionalLight, background core.Vec3, t0Max, tauMax float64) *Scene {
	return &Scene{
		RecSurface: rs,
		Light:      light,
		Background: background,
		T0Max:      t0Max,
		TauMax:     tauMax,
		T0Map:      GrayscaleColorMap,
		TauMap:     GrayscaleColorMap,
	}
}

// AddObject appends a common (non-surface) renderable to the scene.
func (s *Scene) AddObject(obj Renderable) { s.Objects = append(s.Objects, obj) }

// T0Color maps a recirculation point's t0 to a display color as a percentage
// of T0Max.
func (s *Scene) T0Color(t0 float64) core.Vec3 {
	if s.T0Max == 0 {
		return s.T0Map(0)
	}
	return s.T0Map(t0 / s.T0Max)
}

// TauColor maps a recirculation point's tau to a display color as a
// percentage of TauMax.
func (s *Scene) TauColor(tau float64) core.Vec3 {
	if s.TauMax == 0 {
		return s.TauMap(0)
	}
	return s.TauMap(tau / s.TauMax)
}

// GetCommonObjectIntersection returns the nearest common-object hit along
// ray within [tMin,tMax], if any.
func (s *Scene) GetCommonObjectIntersection(ray core.Ray, tMin, tMax float64) (Intersection, Renderable, bool) {
	var best Intersection
	var bestObj Renderable
	found := false
	for _, obj := range s.Objects {
		hit, ok := obj.Intersect(ray, tMin, tMax)
		if !ok {
			continue
		}
		if !found || hit.T < best.T {
			best, bestObj, found = hit, obj, true
		}
	}
	return best, bestObj, found
}

// RaytracingCommonObjects shades only the common objects (ignoring the
// recirculation surface entirely) — used by the space-only render pass
// (SPEC_FULL.md Supplemented Feature 2, space.ppm).
func (s *Scene) RaytracingCommonObjects(ray core.Ray, tMin, tMax float64) core.Vec3 {
	hit, obj, ok := s.GetCommonObjectIntersection(ray, tMin, tMax)
	if !ok {
		return s.Background
	}
	return obj.Shade(s.Light, hit)
}

// Raytracing is the full per-pixel trace: it first bounds the recirculation
// search by the nearest common-object hit (so the surface search never
// looks past solid geometry), then searches for a recirculation point.
// Grounded on original_source/src/scene.cpp's Scene::raytracing.
func (s *Scene) Raytracing(ray core.Ray, beginAt, endAt float64) RaytraceResult {
	objHit, obj, objOK := s.GetCommonObjectIntersection(ray, beginAt, endAt)

	searchEnd := endAt
	if objOK {
		searchEnd = math.Min(searchEnd, objHit.T)
	}

	hitT, rp, found := s.RecSurface.SearchIntersection(ray, beginAt, searchEnd)
	if found {
		return RaytraceResult{
			RecPoint:    &rp,
			HitDistance: hitT,
			T0Color:     s.T0Color(rp.T0),
			TauColor:    s.TauColor(rp.Tau),
			Background:  s.Background,
		}
	}

	if objOK {
		return RaytraceResult{
			ObjectHit:   true,
			ObjectColor: obj.Shade(s.Light, objHit),
			HitDistance: objHit.T,
			Background:  s.Background,
		}
	}

	return RaytraceResult{Background: s.Background}
}
