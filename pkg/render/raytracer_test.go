package render

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/critsearch"
	"github.com/dstelter/rsraytracer/pkg/flow"
	"github.com/dstelter/rsraytracer/pkg/progress"
	"github.com/dstelter/rsraytracer/pkg/recsurface"
	"github.com/dstelter/rsraytracer/pkg/scenegeo"
)

// emptyFlow never contains any point, so every ray's recirculation search
// misses immediately — used to keep these tests fast and deterministic.
type emptyFlow struct{}

func (emptyFlow) Velocity(core.Vec3, float64) (core.Vec3, bool) { return core.Vec3{}, false }
func (emptyFlow) IsInside(core.Vec3) bool                       { return false }
func (emptyFlow) Extent() core.AABB                             { return core.AABB{} }

func newTestRaytracer(t *testing.T, resX, resY int) *Raytracer {
	t.Helper()
	globals := config.DefaultGlobals()
	rs := recsurface.NewRecSurface(
		emptyFlow{},
		config.DefaultDataParams(),
		config.DefaultSearchParams(globals),
		critsearch.NewCritExtractor(config.DefaultCritSearchParams(), globals),
		flow.DefaultIntegratorConfig(),
		globals,
	)
	light := scenegeo.NewDirectionalLight(core.NewVec3(0, 0, -1), core.Vec3{})
	scene := scenegeo.NewScene(rs, light, core.NewVec3(0.1, 0.1, 0.1), 1, 1)
	scene.AddObject(scenegeo.NewBox(core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))))

	cam := scenegeo.NewPerspectiveCamera(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 0), 60, scenegeo.CamUpY, resX, resY, zerolog.Nop())

	dir := t.TempDir()
	return NewRaytracer(scene, cam, globals, dir, 2, zerolog.Nop())
}

func TestRaytracerRenderWritesOutputTextures(t *testing.T) {
	rt := newTestRaytracer(t, 4, 3)

	require.NoError(t, rt.Render(context.Background()))

	for _, name := range []string{"t0.ppm", "tau.ppm"} {
		_, err := os.Stat(rt.SaveDir + "/" + name)
		assert.NoError(t, err, "%s should have been written", name)
	}
}

func TestRaytracerRenderSpaceWritesSpaceTexture(t *testing.T) {
	rt := newTestRaytracer(t, 3, 3)

	require.NoError(t, rt.RenderSpace(context.Background()))

	_, err := os.Stat(rt.SaveDir + "/space.ppm")
	assert.NoError(t, err)
}

func TestWorkerPoolProcessesAllTasks(t *testing.T) {
	pool := NewWorkerPool(3, func(camIndex int) progress.RSIntersection {
		return progress.RSIntersection{CamIndex: camIndex}
	})
	pool.Start(context.Background())
	for i := 0; i < 10; i++ {
		pool.SubmitTask(RayTask{CamIndex: i})
	}
	pool.CloseTasks()

	go pool.Wait()

	count := 0
	for range pool.Results() {
		count++
	}
	assert.Equal(t, 10, count)
}
