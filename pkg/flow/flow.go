// Package flow models continuous, time-dependent 3D vector fields and the
// adaptive ODE integrator used to advect points along their pathlines.
package flow

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
)

// Flow is a continuous, time-dependent vector field over a bounded spatial
// domain. Implementations are expected to be read-only / safe for
// concurrent use once constructed, per spec §3.
type Flow interface {
	// Velocity returns the flow's velocity vector at position pos and time t.
	// ok is false if pos lies outside the flow's domain.
	Velocity(pos core.Vec3, t float64) (v core.Vec3, ok bool)

	// IsInside reports whether pos lies within the flow's spatial domain,
	// independent of t.
	IsInside(pos core.Vec3) bool

	// Extent returns the flow's spatial bounding box.
	Extent() core.AABB
}

// DoubleGyre3D is the closed-form time-dependent double-gyre flow used by
// the original implementation's SetupDoubleGyre3D scenario
// (original_source/inc/scenesetup.hh). It extends the classic 2D
// double-gyre with a small sinusoidal z-component so pathlines are genuinely
// three-dimensional.
type DoubleGyre3D struct {
	domain    core.AABB
	Amplitude float64 // A
	Epsilon   float64 // epsilon
	Omega     float64 // omega
}

// NewDoubleGyre3D constructs the double gyre over the given domain with the
// standard A=0.1, epsilon=0.25, omega=2*pi/10 parameters used by the
// original scenario.
func NewDoubleGyre3D(domain core.AABB) *DoubleGyre3D {
	return &DoubleGyre3D{
		domain:    domain,
		Amplitude: 0.1,
		Epsilon:   0.25,
		Omega:     2 * math.Pi / 10,
	}
}

func (f *DoubleGyre3D) Velocity(pos core.Vec3, t float64) (core.Vec3, bool) {
	if !f.IsInside(pos) {
		return core.Vec3{}, false
	}
	a := f.Epsilon * math.Sin(f.Omega*t)
	b := 1 - 2*a
	fx := a*pos.X*pos.X + b*pos.X
	dfx := 2*a*pos.X + b

	u := -math.Pi * f.Amplitude * math.Sin(math.Pi*fx) * math.Cos(math.Pi*pos.Y)
	v := math.Pi * f.Amplitude * math.Cos(math.Pi*fx) * math.Sin(math.Pi*pos.Y) * dfx
	w := 0.05 * math.Sin(2*math.Pi*pos.Z) * math.Cos(f.Omega * t)

	return core.NewVec3(u, v, w), true
}

func (f *DoubleGyre3D) IsInside(pos core.Vec3) bool {
	return f.domain.IsInside(pos)
}

func (f *DoubleGyre3D) Extent() core.AABB {
	return f.domain
}
