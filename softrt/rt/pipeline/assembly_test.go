package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedAreaOrientation(t *testing.T) {
	a, b, c := screenVertex(0, 0, 0.5), screenVertex(10, 0, 0.5), screenVertex(0, 10, 0.5)
	assert.Equal(t, float32(100), SignedArea(a.Screen, b.Screen, c.Screen))
	assert.Equal(t, float32(-100), SignedArea(a.Screen, c.Screen, b.Screen))
}

func TestWindingConventions(t *testing.T) {
	assert.True(t, FrontClockwise.IsFront(5))
	assert.False(t, FrontClockwise.IsFront(-5))
	assert.True(t, FrontCounterClockwise.IsFront(-5))
	assert.False(t, FrontCounterClockwise.IsFront(5))
	assert.True(t, CullNone.IsFront(-5))

	for _, w := range []Winding{FrontClockwise, FrontCounterClockwise, CullNone} {
		parsed, err := ParseWinding(w.String())
		require.NoError(t, err)
		assert.Equal(t, w, parsed)
	}
	_, err := ParseWinding("sideways")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAssembleRejections(t *testing.T) {
	opts := AssembleOptions{Width: 100, Height: 100}
	behind := screenVertex(5, 5, 0.5)
	behind.Visible = false

	cases := []struct {
		name  string
		verts []TransformedVertex
		want  CullStats
	}{
		{"left of screen", []TransformedVertex{screenVertex(-30, 0, .5), screenVertex(-1, 0, .5), screenVertex(-30, 10, .5)}, CullStats{Frustum: 1}},
		{"right of screen", []TransformedVertex{screenVertex(100, 0, .5), screenVertex(130, 0, .5), screenVertex(100, 10, .5)}, CullStats{Frustum: 1}},
		{"above screen", []TransformedVertex{screenVertex(0, -20, .5), screenVertex(10, -20, .5), screenVertex(0, -5, .5)}, CullStats{Frustum: 1}},
		{"below screen", []TransformedVertex{screenVertex(0, 100, .5), screenVertex(10, 100, .5), screenVertex(0, 120, .5)}, CullStats{Frustum: 1}},
		{"before near plane", []TransformedVertex{screenVertex(0, 0, -.1), screenVertex(10, 0, -.2), screenVertex(0, 10, -.1)}, CullStats{Frustum: 1}},
		{"past far plane", []TransformedVertex{screenVertex(0, 0, 1.1), screenVertex(10, 0, 1.2), screenVertex(0, 10, 1.1)}, CullStats{Frustum: 1}},
		{"behind eye", []TransformedVertex{behind, screenVertex(10, 0, .5), screenVertex(0, 10, .5)}, CullStats{Behind: 1}},
		{"collinear", []TransformedVertex{screenVertex(0, 0, .5), screenVertex(5, 5, .5), screenVertex(10, 10, .5)}, CullStats{Degenerate: 1}},
		{"back-facing", []TransformedVertex{screenVertex(0, 0, .5), screenVertex(0, 10, .5), screenVertex(10, 0, .5)}, CullStats{Backface: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stats CullStats
			tris := Assemble([]uint32{0, 1, 2}, tc.verts, opts, false, nil, &stats)
			assert.Empty(t, tris)
			assert.Equal(t, tc.want, stats)
			assert.Equal(t, 1, stats.Total())
		})
	}
}

func TestAssembleKeepsPartiallyVisible(t *testing.T) {
	verts := []TransformedVertex{screenVertex(-50, -50, .5), screenVertex(150, -50, .5), screenVertex(-50, 150, .5)}
	tris := Assemble([]uint32{0, 1, 2}, verts, AssembleOptions{Width: 100, Height: 100}, true, nil, nil)
	require.Len(t, tris, 1)
	assert.True(t, tris[0].Emissive)
	assert.Greater(t, tris[0].Area, float32(0))
}

func TestAssemblePreservesInputOrder(t *testing.T) {
	verts := []TransformedVertex{
		screenVertex(0, 0, .5), screenVertex(10, 0, .5), screenVertex(0, 10, .5),
		screenVertex(20, 20, .2), screenVertex(30, 20, .2), screenVertex(20, 30, .2),
		screenVertex(50, 50, .9), screenVertex(60, 50, .9), screenVertex(50, 60, .9),
	}
	// Middle face is listed back-facing.
	indices := []uint32{0, 1, 2, 3, 5, 4, 6, 7, 8}

	first := Assemble(indices, verts, AssembleOptions{Width: 100, Height: 100}, false, nil, nil)
	require.Len(t, first, 2)
	assert.Equal(t, verts[0].Screen, first[0].V[0].Screen)
	assert.Equal(t, verts[6].Screen, first[1].V[0].Screen)

	for i := 0; i < 5; i++ {
		again := Assemble(indices, verts, AssembleOptions{Width: 100, Height: 100}, false, nil, nil)
		assert.Equal(t, first, again, "culling must be deterministic")
	}
}

func TestSortBackToFront(t *testing.T) {
	tris := []Triangle{
		screenTriangle(t, screenVertex(0, 0, .2), screenVertex(10, 0, .2), screenVertex(0, 10, .2)),
		screenTriangle(t, screenVertex(0, 0, .9), screenVertex(10, 0, .9), screenVertex(0, 10, .9)),
		screenTriangle(t, screenVertex(0, 0, .5), screenVertex(10, 0, .5), screenVertex(0, 10, .5)),
	}
	SortBackToFront(tris)
	assert.InDelta(t, .9, tris[0].CentroidDepth(), 1e-6)
	assert.InDelta(t, .5, tris[1].CentroidDepth(), 1e-6)
	assert.InDelta(t, .2, tris[2].CentroidDepth(), 1e-6)
}
