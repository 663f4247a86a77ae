package shader

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
)

// ComputeShadows casts one shadow ray per pixel with a recirculation or
// common-object hit, marking it shadowed if the ray hits a common object or
// a recirculation point on the already-tested portion of the light ray
// (the pruned search, invertSearch=false). Grounded on
// original_source/src/shader.cpp's computeShadows.
func (s *Shader) ComputeShadows() {
	shadow := make([]bool, s.pixelCount())

	lookup := func(x, y int) (float64, bool) {
		rsi, ok := s.RT.Store.LookupXY(x, y)
		if !ok || !rsi.IsHit() {
			return 0, false
		}
		return *rsi.Hit, true
	}

	for camIndex := 0; camIndex < s.pixelCount(); camIndex++ {
		pos, ok := s.hitPosition(camIndex)
		if !ok {
			continue
		}
		shadow[camIndex] = s.isOccluded(pos, lookup, false)
	}

	s.shadow = shadow
}

// hitPosition resolves the shaded position at camIndex: a recirculation
// point's position if the pass found one, otherwise the nearest
// common-object hit along that pixel's ray, otherwise false (background,
// nothing to shadow-test).
func (s *Shader) hitPosition(camIndex int) (core.Vec3, bool) {
	rsi, ok := s.RT.Store.Lookup(camIndex)
	if ok && rsi.IsHit() {
		return rsi.RP.Pos, true
	}

	x, y := camIndex%s.width, camIndex/s.width
	ray := s.RT.Camera.Ray(float64(x)+0.5, float64(y)+0.5)
	hit, _, objOK := s.RT.Scene.GetCommonObjectIntersection(ray, s.Globals.Zero, math.Inf(1))
	if !objOK {
		return core.Vec3{}, false
	}
	return hit.Position, true
}

// isOccluded reports whether the shadow ray from position toward the light
// is blocked, either by a common object or — via the pruned recirculation
// search — by a recirculation point along the parts of the light ray the
// pruned traversal actually tests. invertSearch selects which half of the
// pruned traversal's pixel-occlusion test is honored (see
// recsurface.SearchIntersectionPruned).
func (s *Shader) isOccluded(position core.Vec3, lookup func(x, y int) (float64, bool), invertSearch bool) bool {
	ray := s.lightRay(position)

	if _, _, objOK := s.RT.Scene.GetCommonObjectIntersection(ray, s.Globals.Small, math.Inf(1)); objOK {
		return true
	}

	_, _, found := s.RS.SearchIntersectionPruned(ray, s.Globals.Small, math.Inf(1), s.RT.Camera, lookup, invertSearch)
	return found
}

// SharpenShadows iteratively retests pixels not yet in shadow whose
// 4-neighbor is in shadow, using invertSearch=true so the pruned search
// only revisits the parts of the light ray the initial ComputeShadows pass
// did not already cover. Stops when a full sweep marks no new pixels
// shadowed. Grounded on original_source/src/shader.cpp's sharpenShadows.
func (s *Shader) SharpenShadows() {
	if s.shadow == nil {
		s.ComputeShadows()
	}

	lookup := func(x, y int) (float64, bool) {
		rsi, ok := s.RT.Store.LookupXY(x, y)
		if !ok || !rsi.IsHit() {
			return 0, false
		}
		return *rsi.Hit, true
	}

	for {
		changed := false
		for camIndex := 0; camIndex < s.pixelCount(); camIndex++ {
			if s.shadow[camIndex] {
				continue
			}
			if !s.hasShadowedNeighbor(camIndex) {
				continue
			}
			pos, ok := s.hitPosition(camIndex)
			if !ok {
				continue
			}
			if s.isOccluded(pos, lookup, true) {
				s.shadow[camIndex] = true
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func (s *Shader) hasShadowedNeighbor(camIndex int) bool {
	x, y := camIndex%s.width, camIndex/s.width
	for _, d := range neighborOffsets {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || ny < 0 || nx >= s.width || ny >= s.height {
			continue
		}
		if s.shadow[ny*s.width+nx] {
			return true
		}
	}
	return false
}
