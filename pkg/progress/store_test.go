package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/critsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hitAt(camIndex int, t float64, t0, tau float64) RSIntersection {
	h := t
	rp := critsearch.RecPoint{Pos: core.NewVec3(float64(camIndex), 0, 0), T0: t0, Tau: tau}
	return RSIntersection{CamIndex: camIndex, Ray: core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)), Hit: &h, RP: &rp}
}

func miss(camIndex int) RSIntersection {
	return RSIntersection{CamIndex: camIndex}
}

// TestStoreOrderingAscending covers spec property (6): saved results remain
// strictly cam_index-ascending regardless of arrival order.
func TestStoreOrderingAscending(t *testing.T) {
	store := NewStore(t.TempDir(), 4, 1)

	store.Update(miss(1))
	store.Update(hitAt(0, 1.0, 0, 1))
	store.Update(hitAt(2, 1.0, 0, 1))
	store.Update(miss(3))

	saved := store.Saved()
	require.Len(t, saved, 2)
	assert.Less(t, saved[0].CamIndex, saved[1].CamIndex)
	assert.Equal(t, 0, saved[0].CamIndex)
	assert.Equal(t, 2, saved[1].CamIndex)
	assert.Equal(t, 4, store.StartIndex())
}

func TestHistoricalUpdateIncreasesSavedByOne(t *testing.T) {
	store := NewStore(t.TempDir(), 4, 1)
	for i := 0; i < 4; i++ {
		store.Update(miss(i))
	}
	before := len(store.Saved())

	store.Update(hitAt(2, 0.5, 0, 1))

	assert.Equal(t, before+1, len(store.Saved()))
	result, ok := store.Lookup(2)
	require.True(t, ok)
	assert.InDelta(t, 0.5, *result.Hit, 1e-12)
}

// TestSaveLoadRoundTrip covers spec scenario S2: resume-after-abort
// consistency.
func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 4, 1)
	store.Update(hitAt(0, 1.0, 0, 2))
	store.Update(hitAt(1, 1.5, 0, 3))
	require.NoError(t, store.SaveData())

	reloaded := NewStore(dir, 4, 1)
	rayAt := func(camIndex int) core.Ray {
		return core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	}
	require.NoError(t, reloaded.LoadData(rayAt))

	assert.Equal(t, 2, store.StartIndex())
	assert.Equal(t, store.StartIndex(), reloaded.StartIndex())
	assert.Len(t, reloaded.Saved(), 2)
}

func TestLoadDataDiscardsTruncatedLastRecord(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "progress_start.txt"), []byte("2"), 0o644))
	// Second line is missing its tau field, simulating an interrupted write.
	content := "0 1.0 0 2\n1 1.5 0"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "progress_points.txt"), []byte(content), 0o644))

	store := NewStore(dir, 4, 1)
	rayAt := func(camIndex int) core.Ray {
		return core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	}
	require.NoError(t, store.LoadData(rayAt))

	require.Len(t, store.Saved(), 1)
	assert.Equal(t, 0, store.Saved()[0].CamIndex)
	assert.Equal(t, 1, store.StartIndex())
}
