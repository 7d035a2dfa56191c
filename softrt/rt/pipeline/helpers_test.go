package pipeline

import (
	"image/color"
	"testing"

	"github.com/gekko3d/orrery/softrt/rt/core"
	"github.com/gekko3d/orrery/softrt/rt/framebuffer"
	"github.com/gekko3d/orrery/softrt/rt/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

var (
	redLinear = mgl32.Vec3{1, 0, 0}
	facingZ   = mgl32.Vec3{0, 0, 1}
	white     = mgl32.Vec3{1, 1, 1}
)

// screenVertex builds a vertex that is already in pixel space.
func screenVertex(x, y, z float32) TransformedVertex {
	return TransformedVertex{
		Screen:  mgl32.Vec3{x, y, z},
		InvW:    1,
		ClipW:   1,
		Normal:  facingZ,
		Color:   redLinear,
		Visible: true,
	}
}

// screenTriangle skips assembly so tests can rasterize anything, including
// triangles assembly would reject.
func screenTriangle(t *testing.T, a, b, c TransformedVertex) Triangle {
	t.Helper()
	area := SignedArea(a.Screen, b.Screen, c.Screen)
	require.NotZero(t, area)
	return Triangle{V: [3]TransformedVertex{a, b, c}, Area: area}
}

func countFragments(tri *Triangle, stride int, clip Rect) int {
	n := 0
	for range Rasterize(tri, stride, clip) {
		n++
	}
	return n
}

func newSphere(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.UVSphere(16, 32)
	require.NoError(t, err)
	return m
}

func newBuffer(t *testing.T, cfg Config) *framebuffer.PixelBuffer {
	t.Helper()
	buf, err := framebuffer.New(cfg.Width, cfg.Height)
	require.NoError(t, err)
	return buf
}

// sphereCall places a sphere of the given radius at the origin, viewed from
// distance along +Z.
func sphereCall(m *mesh.Mesh, radius, distance float32) DrawCall {
	return DrawCall{
		Mesh:     m,
		Model:    core.Scale(radius, radius, radius),
		View:     core.LookAt(mgl32.Vec3{0, 0, distance}, mgl32.Vec3{}, core.Up),
		Color:    color.RGBA{90, 140, 220, 255},
		Distance: distance,
	}
}
