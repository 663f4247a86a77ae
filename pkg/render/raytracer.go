package render

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/progress"
	"github.com/dstelter/rsraytracer/pkg/scenegeo"
)

// Raytracer runs the base render pass: one camera ray per pixel, searching
// for a recirculation point and falling back to common-object/background
// shading otherwise. Grounded on original_source/src/raytracer.cpp.
type Raytracer struct {
	Scene   *scenegeo.Scene
	Camera  *scenegeo.PerspectiveCamera
	Store   *progress.Store
	Globals config.Globals
	SaveDir string

	NumWorkers int
	RunID      uuid.UUID
	log        zerolog.Logger

	mu       sync.Mutex
	t0Tex    *scenegeo.Texture
	tauTex   *scenegeo.Texture
	hitCount int
}

// NewRaytracer constructs a Raytracer over scene/camera, persisting progress
// under saveDir. numWorkers <= 0 defaults to 1.
func NewRaytracer(scene *scenegeo.Scene, camera *scenegeo.PerspectiveCamera, globals config.Globals, saveDir string, numWorkers int, log zerolog.Logger) *Raytracer {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	width, height := camera.ResX, camera.ResY
	runID := uuid.New()
	return &Raytracer{
		Scene:      scene,
		Camera:     camera,
		Store:      progress.NewStore(saveDir, width, height),
		Globals:    globals,
		SaveDir:    saveDir,
		NumWorkers: numWorkers,
		RunID:      runID,
		log:        log.With().Str("run_id", runID.String()).Logger(),
		t0Tex:      scenegeo.NewTexture(width, height),
		tauTex:     scenegeo.NewTexture(width, height),
	}
}

// LoadProgress resumes from saveDir's sidecar files, if present, and
// recolors the already-computed pixels into the in-memory textures
// (PreRenderFromProgress in the original).
func (rt *Raytracer) LoadProgress() error {
	if err := rt.Store.LoadData(rt.Camera.Ray); err != nil {
		return err
	}
	for _, rsi := range rt.Store.Saved() {
		if !rsi.IsHit() {
			continue
		}
		x, y := rt.pixelOf(rsi.CamIndex)
		rt.t0Tex.SetPixel(x, y, rt.Scene.T0Color(rsi.RP.T0))
		rt.tauTex.SetPixel(x, y, rt.Scene.TauColor(rsi.RP.Tau))
	}
	return nil
}

func (rt *Raytracer) pixelOf(camIndex int) (x, y int) {
	return camIndex % rt.Camera.ResX, camIndex / rt.Camera.ResX
}

// traceRay computes the RSIntersection for one cam_index. Pure with respect
// to Raytracer state — safe to call concurrently from multiple workers.
func (rt *Raytracer) traceRay(camIndex int) progress.RSIntersection {
	x, y := rt.pixelOf(camIndex)
	ray := rt.Camera.Ray(float64(x)+0.5, float64(y)+0.5)

	result := rt.Scene.Raytracing(ray, rt.Globals.Zero, math.Inf(1))

	rsi := progress.RSIntersection{CamIndex: camIndex, Ray: ray}
	if result.RecPoint != nil {
		hit := result.HitDistance
		rsi.Hit = &hit
		rsi.RP = result.RecPoint
	}
	return rsi
}

// colorFor resolves the display color of a completed trace, recomputing the
// cheap non-surface shading (object hit or background) directly rather than
// persisting it, since only recirculation hits are worth saving to disk.
func (rt *Raytracer) colorFor(ray progress.RSIntersection) (t0Color, tauColor core.Vec3) {
	if ray.IsHit() {
		return rt.Scene.T0Color(ray.RP.T0), rt.Scene.TauColor(ray.RP.Tau)
	}
	result := rt.Scene.Raytracing(ray.Ray, rt.Globals.Zero, math.Inf(1))
	if result.ObjectHit {
		return result.ObjectColor, result.ObjectColor
	}
	return result.Background, result.Background
}

// Render runs the base pass over every not-yet-resolved pixel (cam_index >=
// Store.StartIndex()), fanning work across NumWorkers goroutines and saving
// progress to disk every Globals.SaveCadenceBase domain-hit rays.
func (rt *Raytracer) Render(ctx context.Context) error {
	return rt.renderWith(ctx, rt.traceRay)
}

// renderWith runs the base-pass worker-pool loop using an explicit trace
// function, letting RefinementRaytracer reuse the same pool/save-cadence
// machinery with its own adopt-or-search traceRay.
func (rt *Raytracer) renderWith(ctx context.Context, trace traceFunc) error {
	total := rt.Camera.ResX * rt.Camera.ResY
	pool := NewWorkerPool(rt.NumWorkers, trace)
	pool.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer pool.CloseTasks()
		for camIndex := rt.Store.StartIndex(); camIndex < total; camIndex++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			pool.SubmitTask(RayTask{CamIndex: camIndex})
		}
		return nil
	})
	g.Go(func() error {
		pool.Wait()
		return nil
	})

	for result := range pool.Results() {
		rt.recordResult(result.Intersection)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return rt.SaveToDisc()
}

func (rt *Raytracer) recordResult(rsi progress.RSIntersection) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.Store.Update(rsi)

	x, y := rt.pixelOf(rsi.CamIndex)
	t0c, tauc := rt.colorFor(rsi)
	rt.t0Tex.SetPixel(x, y, t0c)
	rt.tauTex.SetPixel(x, y, tauc)

	if _, _, inDomain := rt.Scene.RecSurface.GetDomainIntersections(rsi.Ray, rt.Globals.Zero, math.Inf(1)); inDomain {
		rt.hitCount++
		if rt.hitCount%rt.Globals.SaveCadenceBase == 0 {
			if err := rt.Store.SaveData(); err != nil {
				rt.log.Warn().Err(err).Msg("progress save failed")
			}
		}
	}
}

// SaveToDisc persists both the resumable progress sidecar files and the
// t0.ppm/tau.ppm output textures.
func (rt *Raytracer) SaveToDisc() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := rt.Store.SaveData(); err != nil {
		return err
	}
	if err := os.MkdirAll(rt.SaveDir, 0o755); err != nil {
		return err
	}
	if err := writeTexture(rt.t0Tex, filepath.Join(rt.SaveDir, "t0.ppm")); err != nil {
		return err
	}
	return writeTexture(rt.tauTex, filepath.Join(rt.SaveDir, "tau.ppm"))
}

// RenderSpace shades only the scene's common objects (the domain box, most
// often), producing space.ppm — a fast, surface-free rendering of the scene
// used to orient a viewer before the full recirculation-surface render
// completes (SPEC_FULL.md Supplemented Feature 2).
func (rt *Raytracer) RenderSpace(ctx context.Context) error {
	tex := scenegeo.NewTexture(rt.Camera.ResX, rt.Camera.ResY)
	for y := 0; y < rt.Camera.ResY; y++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		for x := 0; x < rt.Camera.ResX; x++ {
			ray := rt.Camera.Ray(float64(x)+0.5, float64(y)+0.5)
			color := rt.Scene.RaytracingCommonObjects(ray, rt.Globals.Zero, math.Inf(1))
			tex.SetPixel(x, y, color)
		}
	}
	if err := os.MkdirAll(rt.SaveDir, 0o755); err != nil {
		return err
	}
	return writeTexture(tex, filepath.Join(rt.SaveDir, "space.ppm"))
}

func writeTexture(tex *scenegeo.Texture, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tex.WritePPM(f)
}
