package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeSearchParamsOverridesOnlyNonZero(t *testing.T) {
	g := DefaultGlobals()
	base := DefaultSearchParams(g)
	override := SearchParams{TauMax: 20.0}

	merged := MergeSearchParams(base, override)

	assert.Equal(t, base.T0Min, merged.T0Min)
	assert.Equal(t, base.T0Max, merged.T0Max)
	assert.Equal(t, 20.0, merged.TauMax)
}

func TestMergeCritSearchParams(t *testing.T) {
	base := DefaultCritSearchParams()
	override := CritSearchParams{MaxSteps: 100}

	merged := MergeCritSearchParams(base, override)

	assert.Equal(t, base.SearchPrecision, merged.SearchPrecision)
	assert.Equal(t, 100, merged.MaxSteps)
}

func TestDefaultCritSearchParamsMaxSteps(t *testing.T) {
	params := DefaultCritSearchParams()
	assert.Equal(t, 8*8*8*8*8*8*8, params.MaxSteps)
}
