package scenegeo

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
)

// Phong is a Phong shading model (reflection-vector specular) combining a sampled albedo with
// ambient, diffuse and normalized specular terms. Grounded on
// original_source/inc/phong.hh.
type Phong struct {
	Albedo       ColorSource
	KAmbient     float64
	KDiffuse     float64
	KSpecular    float64
	Shininess    float64
	LightAmbient core.Vec3 // defaults to {1,1,1}
}

// NewPhong constructs a Phong material with the original's default ambient
// light level ({1,1,1}).
func NewPhong(albedo ColorSource, kAmbient, kDiffuse, kSpecular, shininess float64) Phong {
	return Phong{
		Albedo:       albedo,
		KAmbient:     kAmbient,
		KDiffuse:     kDiffuse,
		KSpecular:    kSpecular,
		Shininess:    shininess,
		LightAmbient: core.NewVec3(1, 1, 1),
	}
}

// Sample returns this material's unshaded albedo color at uv.
func (p Phong) Sample(u, v float64) core.Vec3 {
	return p.Albedo.Sample(u, v)
}

// Shade computes the Phong-shaded color of a surface point hit by
// incidentDir, with normal n, uv coordinate uv, under light.
func (p Phong) Shade(light DirectionalLight, position, normal, incidentDir core.Vec3, u, v float64) core.Vec3 {
	return p.ShadeAlbedo(light, position, normal, incidentDir, p.Sample(u, v))
}

// ShadeAlbedo is Shade with an explicit albedo in place of a uv-sampled one,
// used by the shader package to light the t0/tau color-map values already
// resolved by a recirculation-point hit rather than a uv-textured surface.
func (p Phong) ShadeAlbedo(light DirectionalLight, position, normal, incidentDir, albedo core.Vec3) core.Vec3 {
	n := normal
	lightDir := light.LightDirectionTo(position) // points from light toward surface
	viewDir := incidentDir.Normalize()
	reflected := core.Reflect(lightDir, n)

	lightIn := light.IncidentRadianceAt(position)

	iAmbient := p.LightAmbient.Multiply(p.KAmbient)

	cosNL := math.Max(0, n.Dot(lightDir.Negate()))
	iDiffuse := lightIn.Multiply(p.KDiffuse * cosNL)

	cosOmega := math.Max(0, -viewDir.Dot(reflected))
	specPower := math.Pow(cosOmega, p.Shininess)
	specNorm := (p.Shininess + 2) / (2 * math.Pi)
	iSpecular := lightIn.Multiply(p.KSpecular * specNorm * specPower)

	iAll := iAmbient.Add(iDiffuse).Add(iSpecular)
	return albedo.MultiplyVec(iAll)
}

// AmbientOnly returns albedo lit by only the ambient term, used for shaded
// pixels known to be in shadow (spec §4.9: "In shadow, set normal to zero ->
// only ambient term contributes").
func (p Phong) AmbientOnly(albedo core.Vec3) core.Vec3 {
	return albedo.MultiplyVec(p.LightAmbient.Multiply(p.KAmbient))
}
