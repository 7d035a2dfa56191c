package pipeline

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullClip = Rect{MaxX: 100, MaxY: 100}

func TestLODStride(t *testing.T) {
	th := [3]float32{150, 300, 600}
	cases := []struct {
		distance float32
		want     int
	}{
		{0, 1}, {149.9, 1}, {150, 2}, {299, 2}, {300, 4}, {599, 4}, {600, 8}, {1e6, 8},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LODStride(tc.distance, th), "distance %v", tc.distance)
	}

	prev := 0
	for d := float32(0); d < 1000; d += 7 {
		s := LODStride(d, th)
		assert.GreaterOrEqual(t, s, prev)
		prev = s
	}
}

func TestLODFragmentCountMonotone(t *testing.T) {
	tri := screenTriangle(t, screenVertex(3, 5, .5), screenVertex(91, 11, .5), screenVertex(17, 88, .5))
	th := [3]float32{150, 300, 600}

	prev := -1
	for _, d := range []float32{10, 200, 450, 900} {
		n := countFragments(&tri, LODStride(d, th), fullClip)
		if prev >= 0 {
			assert.LessOrEqual(t, n, prev, "distance %v", d)
		}
		prev = n
	}
}

func TestBarycentricPartitionOfUnity(t *testing.T) {
	tris := []Triangle{
		screenTriangle(t, screenVertex(0, 0, .1), screenVertex(10, 0, .5), screenVertex(0, 10, .9)),
		screenTriangle(t, screenVertex(12.3, 4.7, .3), screenVertex(88.1, 40.2, .4), screenVertex(33.3, 97.6, .2)),
		screenTriangle(t, screenVertex(50, 2, .5), screenVertex(51, 98, .5), screenVertex(5, 50, .5)),
	}
	for i := range tris {
		for _, stride := range []int{1, 2, 8} {
			for frag := range Rasterize(&tris[i], stride, fullClip) {
				u, v, w := frag.Bary[0], frag.Bary[1], frag.Bary[2]
				require.InDelta(t, 1, u+v+w, 1e-4)
				require.GreaterOrEqual(t, u, float32(-EdgeEpsilon))
				require.GreaterOrEqual(t, v, float32(-EdgeEpsilon))
				require.GreaterOrEqual(t, w, float32(-EdgeEpsilon))
				require.GreaterOrEqual(t, frag.Depth, float32(0))
				require.LessOrEqual(t, frag.Depth, float32(1))
			}
		}
	}
}

func TestRasterizeSamplesGlobalLattice(t *testing.T) {
	tri := screenTriangle(t, screenVertex(13, 7, .5), screenVertex(77, 9, .5), screenVertex(21, 63, .5))
	n := 0
	for frag := range Rasterize(&tri, 4, fullClip) {
		assert.Zero(t, frag.X%4)
		assert.Zero(t, frag.Y%4)
		assert.Equal(t, 4, frag.Stride)
		n++
	}
	assert.Greater(t, n, 0)
}

func TestRasterizeSharedEdgeHasNoCracks(t *testing.T) {
	a := screenTriangle(t, screenVertex(0, 0, .5), screenVertex(16, 0, .5), screenVertex(0, 16, .5))
	b := screenTriangle(t, screenVertex(16, 0, .5), screenVertex(16, 16, .5), screenVertex(0, 16, .5))

	covered := map[[2]int]bool{}
	for _, tri := range []*Triangle{&a, &b} {
		for frag := range Rasterize(tri, 1, fullClip) {
			covered[[2]int{frag.X, frag.Y}] = true
		}
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			assert.True(t, covered[[2]int{x, y}], "pixel %d,%d missed", x, y)
		}
	}
}

func TestRasterizeClipsToRect(t *testing.T) {
	huge := screenTriangle(t, screenVertex(-500, -500, .5), screenVertex(900, -500, .5), screenVertex(-500, 900, .5))
	clip := Rect{MinX: 10, MinY: 20, MaxX: 40, MaxY: 30}

	n := 0
	for frag := range Rasterize(&huge, 1, clip) {
		require.True(t, frag.X >= 10 && frag.X < 40 && frag.Y >= 20 && frag.Y < 30, "fragment %d,%d", frag.X, frag.Y)
		n++
	}
	assert.Equal(t, 30*10, n)
}

func TestRasterizeIsRestartable(t *testing.T) {
	tri := screenTriangle(t, screenVertex(0, 0, .5), screenVertex(40, 0, .5), screenVertex(0, 40, .5))
	seq := Rasterize(&tri, 2, fullClip)

	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	assert.Equal(t, first, second)

	taken := 0
	for range seq {
		taken++
		if taken == 3 {
			break
		}
	}
	assert.Equal(t, 3, taken)
}

func TestRasterizeInterpolatesAttributes(t *testing.T) {
	a, b, c := screenVertex(0, 0, 0), screenVertex(30, 0, 0.5), screenVertex(0, 30, 1)
	a.Color, b.Color, c.Color = mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}
	tri := screenTriangle(t, a, b, c)

	for frag := range Rasterize(&tri, 1, fullClip) {
		want := frag.Bary[1]*0.5 + frag.Bary[2]*1
		require.InDelta(t, want, frag.Depth, 1e-5)
		require.InDelta(t, frag.Bary[0], frag.Color[0], 1e-5)
		require.InDelta(t, frag.Bary[2], frag.Color[2], 1e-5)
	}
}

func TestRasterizePerspectiveCorrectWeights(t *testing.T) {
	a, b, c := screenVertex(0, 0, .5), screenVertex(40, 0, .5), screenVertex(0, 40, .5)
	// b is four times farther away than a and c.
	b.InvW = 0.25
	a.Color, b.Color, c.Color = mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}
	tri := screenTriangle(t, a, b, c)

	for frag := range Rasterize(&tri, 1, fullClip) {
		if frag.Bary[1] > 0.1 && frag.Bary[1] < 0.9 {
			require.Less(t, frag.Color[0], frag.Bary[1], "far vertex must pull less than its screen weight")
		}
	}
}

func TestScenarioTriangleOffscreenEmitsNothing(t *testing.T) {
	tri := screenTriangle(t, screenVertex(200, 200, .5), screenVertex(210, 200, .5), screenVertex(200, 210, .5))
	assert.Zero(t, countFragments(&tri, 1, fullClip))

	var stats CullStats
	verts := []TransformedVertex{tri.V[0], tri.V[1], tri.V[2]}
	assert.Empty(t, Assemble([]uint32{0, 1, 2}, verts, AssembleOptions{Width: 100, Height: 100}, false, nil, &stats))
	assert.Equal(t, 1, stats.Frustum)
}
