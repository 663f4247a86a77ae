package recsurface

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
)

// Line2D is a 2D screen-space line segment, used by the pruned search to
// rasterize a projected hyperline segment into candidate pixel coordinates.
// Grounded on original_source/inc/line.hh.
type Line2D struct {
	P1, P2 core.Vec2
}

// GetNearestLinePos returns the parameter t in [0,1] of the point on the
// segment nearest p, clamped to the segment's extent.
func (l Line2D) GetNearestLinePos(p core.Vec2) float64 {
	d := l.P2.Subtract(l.P1)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return 0
	}
	t := (p.Subtract(l.P1).X*d.X + p.Subtract(l.P1).Y*d.Y) / lenSq
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// GetNearestLinePoint returns the point on the segment nearest p.
func (l Line2D) GetNearestLinePoint(p core.Vec2) core.Vec2 {
	t := l.GetNearestLinePos(p)
	return l.P1.Add(l.P2.Subtract(l.P1).Multiply(t))
}

// GetNearestDistance returns the distance from p to the nearest point on the
// segment.
func (l Line2D) GetNearestDistance(p core.Vec2) float64 {
	return l.GetNearestLinePoint(p).Subtract(p).Length()
}

// GetLinePoints rasterizes every integer pixel coordinate within thickness
// of the segment, scanning the segment's pixel-aligned bounding rectangle
// (expanded by thickness) and keeping points whose distance to the segment
// is within thickness. Used by the pruned search to enumerate the screen
// pixels a hyperline segment's projection passes near.
func (l Line2D) GetLinePoints(thickness float64) []core.Vec2 {
	minX := int(math.Floor(math.Min(l.P1.X, l.P2.X) - thickness))
	maxX := int(math.Ceil(math.Max(l.P1.X, l.P2.X) + thickness))
	minY := int(math.Floor(math.Min(l.P1.Y, l.P2.Y) - thickness))
	maxY := int(math.Ceil(math.Max(l.P1.Y, l.P2.Y) + thickness))

	var points []core.Vec2
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := core.NewVec2(float64(x), float64(y))
			if l.GetNearestDistance(p) <= thickness {
				points = append(points, p)
			}
		}
	}
	return points
}
