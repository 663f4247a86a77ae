package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstelter/rsraytracer/pkg/critsearch"
	"github.com/dstelter/rsraytracer/pkg/progress"
)

func TestCanRayBeAdoptedOnlyAtOddMultiplierCenter(t *testing.T) {
	rr := &RefinementRaytracer{ResIncrease: 3}
	assert.True(t, rr.canRayBeAdopted(1, 1))
	assert.True(t, rr.canRayBeAdopted(4, 7))
	assert.False(t, rr.canRayBeAdopted(0, 1))
	assert.False(t, rr.canRayBeAdopted(1, 0))

	even := &RefinementRaytracer{ResIncrease: 2}
	assert.False(t, even.canRayBeAdopted(1, 1))
}

func TestGetNearestIntersectionXYFindsClosestNeighbor(t *testing.T) {
	base := newTestRaytracer(t, 4, 4)
	rr := &RefinementRaytracer{Base: base, ResIncrease: 3}

	far, near := 5.0, 2.0
	rp := critsearch.RecPoint{}
	for camIndex := 0; camIndex < 16; camIndex++ {
		switch camIndex {
		case 1*4 + 1:
			base.Store.Update(progress.RSIntersection{CamIndex: camIndex, Hit: &far, RP: &rp})
		case 1*4 + 2:
			base.Store.Update(progress.RSIntersection{CamIndex: camIndex, Hit: &near, RP: &rp})
		default:
			base.Store.Update(progress.RSIntersection{CamIndex: camIndex})
		}
	}

	nearest, ok := rr.getNearestIntersectionXY(1*3+1, 1*3+1) // lands in parent pixel (1,1)
	require.True(t, ok)
	assert.Equal(t, near, nearest)
}

func TestGetNearestIntersectionXYNoHitsReturnsNotOK(t *testing.T) {
	base := newTestRaytracer(t, 4, 4)
	rr := &RefinementRaytracer{Base: base, ResIncrease: 3}

	_, ok := rr.getNearestIntersectionXY(3, 3)
	assert.False(t, ok)
}
