package framebuffer

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.RGBA{255, 0, 0, 255}
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

func TestNewRejectsEmptySize(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		_, err := New(size[0], size[1])
		assert.ErrorIs(t, err, ErrInvalidSize, "size %v", size)
	}
}

func TestClearResetsBothPlanes(t *testing.T) {
	b, err := New(4, 3)
	require.NoError(t, err)

	b.Set(1, 1, red, 0.25)
	b.Clear(white)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, white, b.At(x, y))
			assert.Equal(t, FarDepth, b.DepthAt(x, y))
		}
	}
}

func TestDepthTest(t *testing.T) {
	b, err := New(4, 4)
	require.NoError(t, err)

	assert.True(t, b.DepthTest(2, 2, 0.9))
	b.Set(2, 2, red, 0.5)
	assert.False(t, b.DepthTest(2, 2, 0.5), "equal depth must not pass")
	assert.False(t, b.DepthTest(2, 2, 0.7))
	assert.True(t, b.DepthTest(2, 2, 0.3))

	assert.False(t, b.DepthTest(-1, 0, 0))
	assert.False(t, b.DepthTest(4, 0, 0))
	assert.False(t, b.DepthTest(0, 4, 0))
}

func TestOutOfBoundsWritesAreDropped(t *testing.T) {
	b, err := New(2, 2)
	require.NoError(t, err)
	before := b.Clone()

	b.Set(-1, 0, red, 0)
	b.Set(2, 1, red, 0)
	b.SetColor(0, 5, red)
	b.Blend(9, 9, red, 0.5)
	assert.True(t, b.Equal(before))
}

func TestCloneIsIndependent(t *testing.T) {
	b, err := New(3, 3)
	require.NoError(t, err)
	c := b.Clone()
	require.True(t, b.Equal(c))

	c.Set(0, 0, red, 0.1)
	assert.False(t, b.Equal(c))
	assert.Equal(t, black, b.At(0, 0))
}

func TestDrawLineCoversEndpoints(t *testing.T) {
	b, err := New(10, 10)
	require.NoError(t, err)

	b.DrawLine(1, 1, 8, 5, white)
	assert.Equal(t, white, b.At(1, 1))
	assert.Equal(t, white, b.At(8, 5))

	// Clipped line: runs off the buffer on both ends without panicking.
	b.DrawLine(-20, 3, 30, 3, red)
	for x := 0; x < 10; x++ {
		assert.Equal(t, red, b.At(x, 3))
	}
}

func TestDrawLineDepthRespectsNearerPixels(t *testing.T) {
	b, err := New(5, 1)
	require.NoError(t, err)
	b.Set(2, 0, red, 0.2)

	b.DrawLineDepth(0, 0, 4, 0, 0.5, white)
	assert.Equal(t, white, b.At(1, 0))
	assert.Equal(t, red, b.At(2, 0))
	assert.Equal(t, float32(0.2), b.DepthAt(2, 0))
}

func TestFillRadialGradient(t *testing.T) {
	b, err := New(21, 21)
	require.NoError(t, err)
	inner := color.RGBA{40, 40, 80, 255}
	outer := color.RGBA{0, 0, 0, 255}

	b.FillRadialGradient(inner, outer)
	centre := b.At(10, 10)
	corner := b.At(0, 0)
	assert.Greater(t, centre.B, corner.B)
	assert.InDelta(t, 80, int(centre.B), 3)
	assert.Equal(t, FarDepth, b.DepthAt(10, 10), "background must not touch depth")
}

func TestDrawPointGlow(t *testing.T) {
	b, err := New(9, 9)
	require.NoError(t, err)

	b.DrawPoint(4, 4, 3, white)
	assert.Equal(t, white, b.At(4, 4))
	glow := b.At(5, 4)
	assert.Greater(t, glow.R, uint8(0))
	assert.Less(t, glow.R, uint8(255))
	assert.Equal(t, black, b.At(5, 5))
}

func TestDrawTextMarksPixels(t *testing.T) {
	b, err := New(80, 20)
	require.NoError(t, err)

	b.DrawText(nil, 2, 14, "FPS 60", white)
	lit := b.CountWhere(func(c color.RGBA) bool { return c.R > 0 })
	assert.Greater(t, lit, 10)
	assert.Equal(t, 13, LineHeight(nil))
}

func TestLoadFaceMissingFile(t *testing.T) {
	_, err := LoadFace(filepath.Join(t.TempDir(), "missing.ttf"), 12)
	assert.Error(t, err)
}

func TestPNGRoundTrip(t *testing.T) {
	b, err := New(6, 4)
	require.NoError(t, err)
	b.Set(3, 2, red, 0.5)

	var out bytes.Buffer
	require.NoError(t, b.WritePNG(&out))
	img, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	r, g, _, _ := img.At(3, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, b.SavePNG(path))
}
