package render

import (
	"context"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dstelter/rsraytracer/pkg/progress"
	"github.com/dstelter/rsraytracer/pkg/scenegeo"
)

// RefinementRaytracer re-renders a completed base pass at a higher
// resolution, adopting the base pass's result outright for every pixel that
// maps exactly onto a base pixel's center, and otherwise narrowing the
// search using the base pass's nearby hits as a starting bound. Grounded on
// original_source/src/refraytracer.cpp.
type RefinementRaytracer struct {
	Base        *Raytracer
	Refined     *Raytracer
	ResIncrease int
}

// NewRefinementRaytracer builds a RefinementRaytracer over base, whose
// camera is cloned at resIncrease times the resolution (scenegeo.Camera's
// CreateIncreased).
func NewRefinementRaytracer(base *Raytracer, resIncrease int, saveDir string, numWorkers int, log zerolog.Logger) *RefinementRaytracer {
	increasedCam := base.Camera.CreateIncreased(resIncrease)
	refined := NewRaytracer(base.Scene, increasedCam, base.Globals, saveDir, numWorkers, log)
	refined.Globals.SaveCadenceBase = base.Globals.SaveCadenceRefinement
	return &RefinementRaytracer{Base: base, Refined: refined, ResIncrease: resIncrease}
}

// canRayBeAdopted reports whether refined pixel (x,y) sits exactly at the
// center of its parent base-resolution pixel, in which case the base
// pass's result can be reused verbatim instead of re-searching.
func (rr *RefinementRaytracer) canRayBeAdopted(x, y int) bool {
	if rr.ResIncrease%2 == 0 {
		return false // no exact center sub-pixel exists for an even multiplier
	}
	half := rr.ResIncrease / 2
	return x%rr.ResIncrease == half && y%rr.ResIncrease == half
}

// getNearestIntersectionXY returns the nearest hit distance among the
// parent base pixel of (x,y) and its 4 neighbors, used to bound the search
// when a ray can't simply be adopted.
func (rr *RefinementRaytracer) getNearestIntersectionXY(x, y int) (float64, bool) {
	px, py := x/rr.ResIncrease, y/rr.ResIncrease
	candidates := [][2]int{{px, py}, {px - 1, py}, {px + 1, py}, {px, py - 1}, {px, py + 1}}

	best := math.Inf(1)
	found := false
	for _, c := range candidates {
		cx, cy := c[0], c[1]
		if cx < 0 || cy < 0 || cx >= rr.Base.Camera.ResX || cy >= rr.Base.Camera.ResY {
			continue
		}
		rsi, ok := rr.Base.Store.LookupXY(cx, cy)
		if !ok || !rsi.IsHit() {
			continue
		}
		if *rsi.Hit < best {
			best, found = *rsi.Hit, true
		}
	}
	return best, found
}

// getNearestIntersectionCamIndex is the cam_index-indexed overload of
// getNearestIntersectionXY, resolving (x,y) against the refined camera's
// resolution.
func (rr *RefinementRaytracer) getNearestIntersectionCamIndex(camIndex int) (float64, bool) {
	width := rr.Refined.Camera.ResX
	return rr.getNearestIntersectionXY(camIndex%width, camIndex/width)
}

// traceRay computes one refined-resolution ray: adopted outright if it maps
// to a base pixel's exact center, otherwise searched with its start bounded
// by nearby base-pass hits minus Globals.RayBackoffRefinement.
func (rr *RefinementRaytracer) traceRay(camIndex int) progress.RSIntersection {
	width := rr.Refined.Camera.ResX
	x, y := camIndex%width, camIndex/width
	ray := rr.Refined.Camera.Ray(float64(x)+0.5, float64(y)+0.5)

	if rr.canRayBeAdopted(x, y) {
		px, py := x/rr.ResIncrease, y/rr.ResIncrease
		if rsi, ok := rr.Base.Store.LookupXY(px, py); ok {
			return progress.RSIntersection{CamIndex: camIndex, Ray: ray, Hit: rsi.Hit, RP: rsi.RP}
		}
	}

	beginAt := rr.Refined.Globals.Zero
	if nearest, ok := rr.getNearestIntersectionCamIndex(camIndex); ok {
		beginAt = math.Max(rr.Refined.Globals.Zero, nearest-rr.Refined.Globals.RayBackoffRefinement)
	}

	result := rr.Refined.Scene.Raytracing(ray, beginAt, math.Inf(1))
	rsi := progress.RSIntersection{CamIndex: camIndex, Ray: ray}
	if result.RecPoint != nil {
		hit := result.HitDistance
		rsi.Hit = &hit
		rsi.RP = result.RecPoint
	}
	return rsi
}

// Render runs the refinement pass over the increased-resolution camera,
// reusing Raytracer's worker pool machinery with traceRay as the per-pixel
// trace function.
func (rr *RefinementRaytracer) Render(ctx context.Context) error {
	return rr.Refined.renderWith(ctx, rr.traceRay)
}

// needsRetest detects a point where two 5D-neighboring pixels disagree on
// distance without being mutually consistent — the signal that a ray needs
// re-testing (spec §4.8 post-processing pass).
func (rr *RefinementRaytracer) needsRetest(x, y int) (progress.RSIntersection, bool) {
	width, height := rr.Refined.Camera.ResX, rr.Refined.Camera.ResY
	camIndex := y*width + x

	rsi, ok := rr.Refined.Store.Lookup(camIndex)
	if !ok || !rsi.IsHit() {
		return progress.RSIntersection{}, false
	}

	type offset struct{ dx, dy int }
	for _, o := range []offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nx, ny := x+o.dx, y+o.dy
		if nx < 0 || ny < 0 || nx >= width || ny >= height {
			continue
		}
		neighbor, nok := rr.Refined.Store.LookupXY(nx, ny)
		if !nok || !neighbor.IsHit() {
			continue
		}
		if *neighbor.Hit < *rsi.Hit && !rsi.IsNeighboring(neighbor, rr.Refined.Globals) {
			return rsi, true
		}
	}
	return progress.RSIntersection{}, false
}

// PostProcessing iteratively retests every pixel whose hit distance
// disagrees with a strictly nearer, non-5D-neighboring neighbor, narrowing
// the retest's search start the same way traceRay does. It repeats until a
// full sweep produces no changes, writing t0_postpr.ppm/tau_postpr.ppm after
// every sweep. Grounded on refraytracer.cpp's postProcessing.
func (rr *RefinementRaytracer) PostProcessing(ctx context.Context) error {
	width, height := rr.Refined.Camera.ResX, rr.Refined.Camera.ResY

	// completelyTested is allocated once for the whole post-processing run
	// (not per sweep) and marked the instant a pixel is retested, so a
	// pixel whose retest changes nothing is never retriggered by a later
	// sweep (spec §4.8; original_source/src/refraytracer.cpp).
	completelyTested := make([][]bool, height)
	for y := range completelyTested {
		completelyTested[y] = make([]bool, width)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		changed := false
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if completelyTested[y][x] {
					continue
				}
				rsi, needs := rr.needsRetest(x, y)
				if !needs {
					continue
				}
				completelyTested[y][x] = true

				beginAt := math.Max(rr.Refined.Globals.Zero, *rsi.Hit-rr.Refined.Globals.RayBackoffRefinement)
				result := rr.Refined.Scene.Raytracing(rsi.Ray, beginAt, math.Inf(1))

				updated := progress.RSIntersection{CamIndex: rsi.CamIndex, Ray: rsi.Ray}
				if result.RecPoint != nil {
					hit := result.HitDistance
					updated.Hit = &hit
					updated.RP = result.RecPoint
				}
				rr.Refined.recordResult(updated)
				if result.RecPoint != nil {
					changed = true
				}
			}
		}

		if err := rr.writePostProcessedTextures(); err != nil {
			return err
		}
		if !changed {
			return nil
		}
	}
}

func (rr *RefinementRaytracer) writePostProcessedTextures() error {
	if err := os.MkdirAll(rr.Refined.SaveDir, 0o755); err != nil {
		return err
	}

	width, height := rr.Refined.Camera.ResX, rr.Refined.Camera.ResY
	t0Tex := scenegeo.NewTexture(width, height)
	tauTex := scenegeo.NewTexture(width, height)
	for _, rsi := range rr.Refined.Store.Saved() {
		if !rsi.IsHit() {
			continue
		}
		x, y := rsi.CamIndex%width, rsi.CamIndex/width
		t0Tex.SetPixel(x, y, rr.Refined.Scene.T0Color(rsi.RP.T0))
		tauTex.SetPixel(x, y, rr.Refined.Scene.TauColor(rsi.RP.Tau))
	}

	if err := writeTexture(t0Tex, filepath.Join(rr.Refined.SaveDir, "t0_postpr.ppm")); err != nil {
		return err
	}
	return writeTexture(tauTex, filepath.Join(rr.Refined.SaveDir, "tau_postpr.ppm"))
}
