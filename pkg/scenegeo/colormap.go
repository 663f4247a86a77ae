package scenegeo

import "github.com/dstelter/rsraytracer/pkg/core"

// ColorMap maps a normalized scalar in [0,1] to a display color. The
// original implementation's getColorInferno/getColorViridis perceptual color
// maps are treated as contract-only external collaborators (spec §1):
// reproducing their exact lookup tables is out of scope, so Scene takes a
// ColorMap as a dependency instead of hardcoding one. GrayscaleColorMap is
// the default stand-in; a real viridis/inferno implementation can be plugged
// in without changing Scene.
type ColorMap func(t float64) core.Vec3

// GrayscaleColorMap linearly maps [0,1] to black-to-white.
func GrayscaleColorMap(t float64) core.Vec3 {
	t = clampUnit(t)
	return core.NewVec3(t, t, t)
}

func clampUnit(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
