// Package scenegeo holds the "scene" side of the renderer: the camera,
// lighting, shading, and the single renderable (the domain box) that the
// spec treats as contract-only external collaborators (spec §1).
package scenegeo

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// CamUp selects which world axis the camera treats as "up", matching the
// original implementation's two supported scene conventions
// (original_source/inc/perspectivecamera.hh).
type CamUp int

const (
	CamUpY CamUp = iota
	CamUpZ
)

// PerspectiveCamera is a pinhole camera defined by eye/lookat/field-of-view
// and an explicit up-axis convention, with a world-to-camera matrix used by
// Projection to map a 3D point back to screen space (used by the pruned
// search).
//
// Grounded on original_source/inc/perspectivecamera.hh and
// src/perspectivecamera.cpp.
type PerspectiveCamera struct {
	Eye, LookAt core.Vec3
	FovDegrees  float64
	Up          CamUp
	ResX, ResY  int

	n, u, v                      core.Vec3 // camera basis vectors
	bottomLeft, planeBaseX, planeBaseY core.Vec3
	planeWidth, planeHeight       float64

	worldToCam     *mat.Dense // 4x4; left at nil (treated as identity-zero) if inversion failed
	orientationOK  bool

	log zerolog.Logger
}

// NewPerspectiveCamera constructs the camera basis and attempts to build
// the world-to-camera matrix. On a degenerate orientation (the camera-space
// basis matrix is singular), it logs a warning and leaves the
// world-to-camera matrix unset, continuing to serve `Ray` from the nominal
// eye position — this is the exact graceful-degradation behavior of
// original_source/src/perspectivecamera.cpp's constructor (spec §7:
// "reported but not fatal").
func NewPerspectiveCamera(eye, lookAt core.Vec3, fovDegrees float64, up CamUp, resX, resY int, log zerolog.Logger) *PerspectiveCamera {
	c := &PerspectiveCamera{Eye: eye, LookAt: lookAt, FovDegrees: fovDegrees, Up: up, ResX: resX, ResY: resY, log: log}
	c.buildBasis()
	c.buildWorldToCam()
	return c
}

func (c *PerspectiveCamera) buildBasis() {
	worldUp := core.NewVec3(0, 1, 0)
	if c.Up == CamUpZ {
		worldUp = core.NewVec3(0, 0, 1)
	}

	n := c.LookAt.Subtract(c.Eye).Normalize() // forward
	u := worldUp.Cross(n).Normalize()         // right
	v := n.Cross(u)                           // up

	aspect := float64(c.ResX) / float64(c.ResY)
	planeDistance := 1.0
	halfHeight := planeDistance * tanDegrees(c.FovDegrees/2)
	halfWidth := halfHeight * aspect

	c.n, c.u, c.v = n, u, v
	c.planeWidth, c.planeHeight = 2*halfWidth, 2*halfHeight
	planeCenter := c.Eye.Add(n.Multiply(planeDistance))
	c.bottomLeft = planeCenter.Subtract(u.Multiply(halfWidth)).Subtract(v.Multiply(halfHeight))
	c.planeBaseX = u.Multiply(c.planeWidth / float64(c.ResX))
	c.planeBaseY = v.Multiply(c.planeHeight / float64(c.ResY))
}

func (c *PerspectiveCamera) buildWorldToCam() {
	// Columns are the camera basis vectors (u,v,n) and the eye position,
	// assembled as the 4x4 homogeneous camera-to-world matrix, then
	// inverted so Projection can map world points into camera space directly.
	camToWorld := mat.NewDense(4, 4, []float64{
		c.u.X, c.v.X, c.n.X, c.Eye.X,
		c.u.Y, c.v.Y, c.n.Y, c.Eye.Y,
		c.u.Z, c.v.Z, c.n.Z, c.Eye.Z,
		0, 0, 0, 1,
	})

	var inv mat.Dense
	if err := inv.Inverse(camToWorld); err != nil {
		c.log.Warn().Err(err).Msg("camera orientation is invalid")
		c.worldToCam = nil
		c.orientationOK = false
		return
	}
	c.worldToCam = &inv
	c.orientationOK = true
}

func tanDegrees(deg float64) float64 {
	return math.Tan(deg * math.Pi / 180)
}

// Ray returns the camera ray through pixel (x,y), x in [0,ResX), y in
// [0,ResY). Valid regardless of whether the world-to-camera matrix could be
// built, since ray generation only uses the camera-space basis (spec §7).
func (c *PerspectiveCamera) Ray(x, y float64) core.Ray {
	point := c.bottomLeft.Add(c.planeBaseX.Multiply(x)).Add(c.planeBaseY.Multiply(y))
	return core.NewRayTo(c.Eye, point)
}

// Projection maps a world position to a 2D screen-space coordinate in
// [0,ResX) x [0,ResY), used by the pruned search's ray-segment
// rasterization. If the world-to-camera matrix
// could not be built (degenerate orientation), Projection returns the
// screen center and ok=false.
func (c *PerspectiveCamera) Projection(pos core.Vec3) (core.Vec2, bool) {
	if !c.orientationOK {
		return core.NewVec2(float64(c.ResX)/2, float64(c.ResY)/2), false
	}
	homogeneous := mat.NewVecDense(4, []float64{pos.X, pos.Y, pos.Z, 1})
	var camSpace mat.VecDense
	camSpace.MulVec(c.worldToCam, homogeneous)

	camU, camV, camN := camSpace.AtVec(0), camSpace.AtVec(1), camSpace.AtVec(2)
	if camN == 0 {
		return core.NewVec2(float64(c.ResX)/2, float64(c.ResY)/2), false
	}
	planeDistance := 1.0
	ratio := planeDistance / camN

	screenU := camU * ratio
	screenV := camV * ratio

	px := (screenU + c.planeWidth/2) / c.planeWidth * float64(c.ResX)
	py := (screenV + c.planeHeight/2) / c.planeHeight * float64(c.ResY)
	return core.NewVec2(px, py), true
}

// CreateIncreased clones this camera at a higher resolution (resX*multiplier
// x resY*multiplier), preserving eye/lookat/fov/up — used to construct the
// camera for a refinement pass (spec §4.8).
func (c *PerspectiveCamera) CreateIncreased(multiplier int) *PerspectiveCamera {
	return NewPerspectiveCamera(c.Eye, c.LookAt, c.FovDegrees, c.Up, c.ResX*multiplier, c.ResY*multiplier, c.log)
}
