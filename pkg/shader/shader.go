// Package shader computes per-pixel shading normals and shadowing for a
// completed recirculation-surface render pass, and composes the final
// shaded t0/tau output textures. Grounded on original_source/src/shader.cpp.
package shader

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/recsurface"
	"github.com/dstelter/rsraytracer/pkg/render"
	"github.com/dstelter/rsraytracer/pkg/scenegeo"
)

// Strategy selects how a per-pixel shading normal is estimated (spec §4.9).
type Strategy int

const (
	// StrategyNone resets all normals to zero and marks every pixel
	// not-ready, matching the original's "no shading" pass.
	StrategyNone Strategy = iota
	// StrategyNeighbors derives a normal from already-computed
	// 5D-neighboring screen neighbors; cheap, but undefined at surface
	// boundaries/thin features where too few neighbors qualify.
	StrategyNeighbors
	// StrategySampling actively searches for nearby recirculation points
	// offset from the hit in space (recsurface.EstimateFlowNormal);
	// expensive but always has a chance to resolve a normal.
	StrategySampling
	// StrategyHybrid tries StrategyNeighbors first and falls back to
	// StrategySampling only where neighbors didn't resolve.
	StrategyHybrid
)

// suffix returns the short strategy tag used in output/sidecar filenames
// (spec §6: normals_ne.txt/normals_sa.txt/normals_hy.txt,
// t0_{ne,sa,hy}...ppm).
func (s Strategy) suffix() string {
	switch s {
	case StrategyNeighbors:
		return "ne"
	case StrategySampling:
		return "sa"
	case StrategyHybrid:
		return "hy"
	default:
		return "none"
	}
}

// Shader computes shading normals and shadows for one completed render
// pass (base or refinement), reusing its Scene/Camera/Store and the
// RecSurface used to produce it. One Shader instance holds the results for
// every Strategy computed so far plus the (strategy-independent) shadow
// bitmap, so ComposeTextures can be called repeatedly for different
// strategy/shadow/sharpen combinations without recomputing anything.
type Shader struct {
	RT       *render.Raytracer
	RS       *recsurface.RecSurface
	Globals  config.Globals
	Light    scenegeo.DirectionalLight
	Material scenegeo.Phong

	width, height int

	normals map[Strategy][]core.Vec3
	ready   map[Strategy][]bool

	shadow []bool

	log zerolog.Logger
}

// NewShader constructs a Shader over a completed Raytracer pass. material
// is the Phong reflectance used to light the stored t0/tau color-map values
// (distinct from any material used by common-object renderables).
func NewShader(rt *render.Raytracer, rs *recsurface.RecSurface, globals config.Globals, light scenegeo.DirectionalLight, material scenegeo.Phong, log zerolog.Logger) *Shader {
	return &Shader{
		RT:       rt,
		RS:       rs,
		Globals:  globals,
		Light:    light,
		Material: material,
		width:    rt.Camera.ResX,
		height:   rt.Camera.ResY,
		normals:  make(map[Strategy][]core.Vec3),
		ready:    make(map[Strategy][]bool),
		log:      log,
	}
}

func (s *Shader) pixelCount() int { return s.width * s.height }

// ComputeNormals populates the per-pixel normal array for strategy across
// every pixel with a recirculation hit in the pass's progress store.
// StrategyNone simply (re)marks every pixel not-ready with a zero normal,
// matching the original's explicit reset pass.
func (s *Shader) ComputeNormals(strategy Strategy) {
	normals := make([]core.Vec3, s.pixelCount())
	ready := make([]bool, s.pixelCount())

	if strategy == StrategyNone {
		s.normals[strategy] = normals
		s.ready[strategy] = ready
		return
	}

	for camIndex := 0; camIndex < s.pixelCount(); camIndex++ {
		rsi, ok := s.RT.Store.Lookup(camIndex)
		if !ok || !rsi.IsHit() {
			continue
		}

		var n core.Vec3
		var found bool
		switch strategy {
		case StrategyNeighbors:
			n, found = s.estimateNormalFromNeighbors(camIndex)
		case StrategySampling:
			n, found = s.RS.EstimateFlowNormal(*rsi.RP, rsi.Ray, s.Globals.NormalSearchDis, s.Globals.NormalMaxSteps)
		case StrategyHybrid:
			n, found = s.estimateNormalFromNeighbors(camIndex)
			if !found {
				n, found = s.RS.EstimateFlowNormal(*rsi.RP, rsi.Ray, s.Globals.NormalSearchDis, s.Globals.NormalMaxSteps)
			}
		}
		if found {
			normals[camIndex] = n
			ready[camIndex] = true
		}
	}

	s.normals[strategy] = normals
	s.ready[strategy] = ready
}

// neighborOffsets is the clockwise 4-neighbor cycle used both by
// estimateNormalFromNeighbors (consecutive pairs of neighbors form
// triangles) and by the shadow-sharpening neighbor scan.
var neighborOffsets = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// estimateNormalFromNeighbors forms a triangle from each consecutive pair of
// 4-neighbors that are themselves 5D-neighbors of the center pixel,
// averages the resulting normals, and flips the sum to face the camera.
// Grounded on original_source/src/shader.cpp's estimateNormalFromNeighbors.
func (s *Shader) estimateNormalFromNeighbors(camIndex int) (core.Vec3, bool) {
	rsi, ok := s.RT.Store.Lookup(camIndex)
	if !ok || !rsi.IsHit() {
		return core.Vec3{}, false
	}
	x, y := camIndex%s.width, camIndex/s.width

	var neighborPos [4]core.Vec3
	var neighborOK [4]bool
	for i, d := range neighborOffsets {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || ny < 0 || nx >= s.width || ny >= s.height {
			continue
		}
		n, nok := s.RT.Store.LookupXY(nx, ny)
		if !nok || !n.IsHit() || !rsi.IsNeighboring(n, s.Globals) {
			continue
		}
		neighborPos[i] = n.RP.Pos
		neighborOK[i] = true
	}

	var sum core.Vec3
	count := 0
	for i := range neighborOffsets {
		j := (i + 1) % len(neighborOffsets)
		if !neighborOK[i] || !neighborOK[j] {
			continue
		}
		e1 := neighborPos[i].Subtract(rsi.RP.Pos)
		e2 := neighborPos[j].Subtract(rsi.RP.Pos)
		n := e1.Cross(e2)
		if n.IsZero() {
			continue
		}
		n = n.Normalize()
		if n.Dot(rsi.Ray.Direction) > 0 {
			n = n.Negate()
		}
		sum = sum.Add(n)
		count++
	}
	if count == 0 || sum.IsZero() {
		return core.Vec3{}, false
	}
	return sum.Normalize(), true
}

// ComposeTextures evaluates Phong shading per pixel using the previously
// computed normal for strategy (StrategyNone yields the zero normal
// everywhere) and, if applyShadow is true, the previously computed shadow
// bitmap (ComputeShadows/SharpenShadows must have run first). Background
// pixels (no hit, no common-object hit) pass through unshaded.
func (s *Shader) ComposeTextures(strategy Strategy, applyShadow bool) (t0Tex, tauTex *scenegeo.Texture) {
	t0Tex = scenegeo.NewTexture(s.width, s.height)
	tauTex = scenegeo.NewTexture(s.width, s.height)

	normals := s.normals[strategy]

	for camIndex := 0; camIndex < s.pixelCount(); camIndex++ {
		x, y := camIndex%s.width, camIndex/s.width
		rsi, ok := s.RT.Store.Lookup(camIndex)
		if !ok || !rsi.IsHit() {
			t0Tex.SetPixel(x, y, s.RT.Scene.Background)
			tauTex.SetPixel(x, y, s.RT.Scene.Background)
			continue
		}

		inShadow := applyShadow && camIndex < len(s.shadow) && s.shadow[camIndex]
		var normal core.Vec3
		if camIndex < len(normals) {
			normal = normals[camIndex]
		}

		t0Albedo := s.RT.Scene.T0Color(rsi.RP.T0)
		tauAlbedo := s.RT.Scene.TauColor(rsi.RP.Tau)

		if inShadow {
			t0Tex.SetPixel(x, y, s.Material.AmbientOnly(t0Albedo))
			tauTex.SetPixel(x, y, s.Material.AmbientOnly(tauAlbedo))
			continue
		}

		t0Tex.SetPixel(x, y, s.Material.ShadeAlbedo(s.Light, rsi.RP.Pos, normal, rsi.Ray.Direction, t0Albedo))
		tauTex.SetPixel(x, y, s.Material.ShadeAlbedo(s.Light, rsi.RP.Pos, normal, rsi.Ray.Direction, tauAlbedo))
	}

	return t0Tex, tauTex
}

// WriteTextures composes and writes the t0/tau output textures for a
// strategy/shadow combination under dir, named per OutputNames. sharpened
// only affects the filename (callers that ran SharpenShadows pass true so
// the sharpened result isn't confused with the unsharpened one on disk).
func (s *Shader) WriteTextures(dir string, strategy Strategy, applyShadow, sharpened bool) error {
	t0Tex, tauTex := s.ComposeTextures(strategy, applyShadow)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	t0Name, tauName := OutputNames(strategy, applyShadow, sharpened)
	if err := writeTexture(t0Tex, filepath.Join(dir, t0Name)); err != nil {
		return err
	}
	return writeTexture(tauTex, filepath.Join(dir, tauName))
}

func writeTexture(tex *scenegeo.Texture, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tex.WritePPM(f)
}

// OutputNames returns the t0/tau output filenames for a strategy/shadow/
// sharpen combination, per spec §6: t0_{ne,sa,hy}[_shad[_sharp]].ppm.
func OutputNames(strategy Strategy, shadowed, sharpened bool) (t0Name, tauName string) {
	suffix := strategy.suffix()
	if shadowed {
		suffix += "_shad"
	}
	if sharpened {
		suffix += "_sharp"
	}
	return "t0_" + suffix + ".ppm", "tau_" + suffix + ".ppm"
}

// lightRay builds the shadow ray cast from position opposite the light
// direction, offset forward by RayForeoffsetShadows to avoid immediate
// self-intersection (spec §4.9/Globals.SMALL-style offset, using the
// dedicated shadow-ray offset constant instead).
func (s *Shader) lightRay(position core.Vec3) core.Ray {
	toLight := s.Light.LightDirectionTo(position).Negate()
	origin := position.Add(toLight.Multiply(s.Globals.RayForeoffsetShadows))
	return core.NewRay(origin, toLight)
}
