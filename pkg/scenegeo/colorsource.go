package scenegeo

import "github.com/dstelter/rsraytracer/pkg/core"

// ColorSource samples a color at a uv coordinate in [0,1]x[0,1]. Grounded on
// original_source/inc/colorsource.hh.
type ColorSource interface {
	Sample(u, v float64) core.Vec3
}

// ConstantColorSource is a ColorSource that ignores uv and always returns
// the same color, used for the domain box's flat albedo.
type ConstantColorSource struct {
	Color core.Vec3
}

// NewConstantColorSource builds a ConstantColorSource.
func NewConstantColorSource(color core.Vec3) ConstantColorSource {
	return ConstantColorSource{Color: color}
}

func (c ConstantColorSource) Sample(_, _ float64) core.Vec3 { return c.Color }
