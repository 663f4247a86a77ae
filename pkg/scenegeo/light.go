package scenegeo

import "github.com/dstelter/rsraytracer/pkg/core"

// DirectionalLight is a light source whose incident radiance and direction
// to any surface point are both constant, independent of position.
// Grounded on original_source/inc/directionallight.hh.
type DirectionalLight struct {
	direction         core.Vec3 // normalized, points from the light toward the scene
	SpectralIntensity core.Vec3
}

// NewDirectionalLight normalizes dir at construction time, matching the
// original constructor. SpectralIntensity defaults to {1,1,1} (white light)
// when the zero vector is supplied.
func NewDirectionalLight(dir core.Vec3, spectralIntensity core.Vec3) DirectionalLight {
	if spectralIntensity.IsZero() {
		spectralIntensity = core.NewVec3(1, 1, 1)
	}
	return DirectionalLight{direction: dir.Normalize(), SpectralIntensity: spectralIntensity}
}

// IncidentRadianceAt returns the light's spectral intensity, the same at
// every point since the light is directional (infinitely far away).
func (l DirectionalLight) IncidentRadianceAt(_ core.Vec3) core.Vec3 {
	return l.SpectralIntensity
}

// LightDirectionTo returns the normalized direction from the light toward
// point, the same at every point for a directional light.
func (l DirectionalLight) LightDirectionTo(_ core.Vec3) core.Vec3 {
	return l.direction
}
