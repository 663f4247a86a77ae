package scenegeo

import (
	"bytes"
	"testing"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureWritePPMThenReadPPMRoundTrips(t *testing.T) {
	tex := NewTexture(4, 3)
	tex.SetPixel(0, 0, core.NewVec3(1, 0, 0))
	tex.SetPixel(3, 2, core.NewVec3(0, 1, 0.5))
	tex.SetPixel(2, 1, core.NewVec3(0.25, 0.25, 0.25))

	var buf bytes.Buffer
	require.NoError(t, tex.WritePPM(&buf))

	loaded, err := ReadPPM(&buf)
	require.NoError(t, err)
	require.Equal(t, tex.Width, loaded.Width)
	require.Equal(t, tex.Height, loaded.Height)

	for y := 0; y < tex.Height; y++ {
		for x := 0; x < tex.Width; x++ {
			want := tex.Pixel(x, y)
			got := loaded.Pixel(x, y)
			assert.InDelta(t, want.X, got.X, 1.0/255)
			assert.InDelta(t, want.Y, got.Y, 1.0/255)
			assert.InDelta(t, want.Z, got.Z, 1.0/255)
		}
	}
}

func TestTextureSampleAtCornerMatchesPixel(t *testing.T) {
	tex := NewTexture(2, 2)
	tex.SetPixel(0, 0, core.NewVec3(1, 0, 0))
	tex.SetPixel(1, 0, core.NewVec3(0, 1, 0))
	tex.SetPixel(0, 1, core.NewVec3(0, 0, 1))
	tex.SetPixel(1, 1, core.NewVec3(1, 1, 1))

	got := tex.Sample(0, 0)
	assert.InDelta(t, 1, got.X, 1e-9)
	assert.InDelta(t, 0, got.Y, 1e-9)
}

func TestTextureSampleClampsOutOfRangeColors(t *testing.T) {
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, core.NewVec3(2, -1, 0.5))
	got := tex.Pixel(0, 0)
	assert.Equal(t, 1.0, got.X)
	assert.Equal(t, 0.0, got.Y)
}
