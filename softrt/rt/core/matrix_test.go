package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMatrices() map[string]Matrix4 {
	return map[string]Matrix4{
		"identity":    Identity(),
		"translation": Translation(10, -20, 30),
		"rotationX":   RotationX(0.7),
		"rotationY":   RotationY(-1.3),
		"rotationZ":   RotationZ(2.1),
		"scale":       Scale(2, 3, 0.5),
		"composed":    Translation(5, 0, -4).Mul(RotationY(0.4)).Mul(Scale(3, 3, 3)),
		"arbitrary": FromRows(
			mgl32.Vec4{1, 2, 3, 4},
			mgl32.Vec4{5, 6, 7, 8},
			mgl32.Vec4{9, 10, 11, 12},
			mgl32.Vec4{13, 14, 15, 16},
		),
	}
}

func TestMatrixIdentityLaw(t *testing.T) {
	for name, m := range sampleMatrices() {
		t.Run(name, func(t *testing.T) {
			assert.True(t, m.Mul(Identity()).ApproxEqual(m, 1e-5))
			assert.True(t, Identity().Mul(m).ApproxEqual(m, 1e-5))
		})
	}
}

func TestMatrixInverse(t *testing.T) {
	for name, m := range sampleMatrices() {
		if name == "arbitrary" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			inv, ok := m.Inverse()
			require.True(t, ok)
			assert.True(t, m.Mul(inv).ApproxEqual(Identity(), 1e-4), "M * inv(M) = %v", m.Mul(inv))
		})
	}

	_, ok := sampleMatrices()["arbitrary"].Inverse()
	assert.False(t, ok, "rank-deficient matrix must not invert")
	_, ok = Scale(1, 0, 1).Inverse()
	assert.False(t, ok)
}

func TestApproxEqualIsAbsolute(t *testing.T) {
	near := Identity()
	near[3] = 1e-6
	assert.True(t, Identity().ApproxEqual(near, 1e-4), "tiny residue next to a zero cell")
	assert.False(t, Identity().ApproxEqual(near, 1e-7))

	far := Identity()
	far[15] = 1.01
	assert.False(t, Identity().ApproxEqual(far, 1e-3))
	assert.True(t, Identity().ApproxEqual(far, 0.02))
}

func TestMatrixCompositionOrder(t *testing.T) {
	tr := Translation(10, 0, 0)
	s := Scale(2, 2, 2)
	p := mgl32.Vec3{1, 0, 0}

	// T*S scales first, then translates.
	got, ok := tr.Mul(s).TransformPoint(p)
	require.True(t, ok)
	assert.InDelta(t, 12, got.X(), 1e-5)

	got, ok = s.Mul(tr).TransformPoint(p)
	require.True(t, ok)
	assert.InDelta(t, 22, got.X(), 1e-5)
}

func TestTransposeRowAccess(t *testing.T) {
	m := sampleMatrices()["arbitrary"]
	assert.Equal(t, float32(2), m.At(0, 1))
	assert.Equal(t, float32(5), m.At(1, 0))
	tt := m.Transpose()
	assert.Equal(t, float32(5), tt.At(0, 1))
	assert.True(t, tt.Transpose().ApproxEqual(m, 0))
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translation(100, 200, 300).Mul(RotationZ(math.Pi / 2))
	d := m.TransformDirection(mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 0, d.X(), 1e-5)
	assert.InDelta(t, 1, d.Y(), 1e-5)
	assert.InDelta(t, 0, d.Z(), 1e-5)
}

func TestPerspectiveRejectsDegenerateParameters(t *testing.T) {
	cases := []struct {
		name                   string
		fov, aspect, near, far float32
	}{
		{"zero fov", 0, 1.5, 0.1, 100},
		{"fov over pi", 3.2, 1.5, 0.1, 100},
		{"zero aspect", 1, 0, 0.1, 100},
		{"negative near", 1, 1.5, -1, 100},
		{"far before near", 1, 1.5, 10, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Perspective(tc.fov, tc.aspect, tc.near, tc.far)
			assert.ErrorIs(t, err, ErrDegenerateProjection)
		})
	}
}

func TestPointBehindEyeIsNotRenderable(t *testing.T) {
	proj, err := Perspective(mgl32.DegToRad(45), 1.5, 0.1, 1000)
	require.NoError(t, err)

	// Camera looks down -Z; +Z is behind it.
	_, ok := proj.TransformPoint(mgl32.Vec3{0, 0, 5})
	assert.False(t, ok)
	_, ok = proj.TransformPoint(mgl32.Vec3{0, 0, 0})
	assert.False(t, ok)

	ndc, ok := proj.TransformPoint(mgl32.Vec3{0, 0, -5})
	require.True(t, ok)
	assert.True(t, ndc.Z() > -1 && ndc.Z() < 1, "ndc z %f", ndc.Z())
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj, err := Perspective(mgl32.DegToRad(60), 1, 1, 100)
	require.NoError(t, err)

	near, ok := proj.TransformPoint(mgl32.Vec3{0, 0, -1})
	require.True(t, ok)
	far, ok := proj.TransformPoint(mgl32.Vec3{0, 0, -100})
	require.True(t, ok)
	assert.InDelta(t, -1, near.Z(), 1e-4)
	assert.InDelta(t, 1, far.Z(), 1e-4)
}

func TestViewportFlipsVertical(t *testing.T) {
	vp := Viewport(0, 0, 1200, 800)

	topLeft, ok := vp.TransformPoint(mgl32.Vec3{-1, 1, -1})
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, topLeft)

	bottomRight, ok := vp.TransformPoint(mgl32.Vec3{1, -1, 1})
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1200, 800, 1}, bottomRight)

	centre, _ := vp.TransformPoint(mgl32.Vec3{0, 0, 0})
	assert.Equal(t, mgl32.Vec3{600, 400, 0.5}, centre)
}

func TestLookAtMovesTargetOntoNegativeZ(t *testing.T) {
	view := LookAt(mgl32.Vec3{0, 50, 100}, mgl32.Vec3{}, Up)
	p, ok := view.TransformPoint(mgl32.Vec3{})
	require.True(t, ok)

	dist := float32(math.Sqrt(50*50 + 100*100))
	assert.InDelta(t, 0, p.X(), 1e-3)
	assert.InDelta(t, 0, p.Y(), 1e-3)
	assert.InDelta(t, -dist, p.Z(), 1e-3)
}

func TestVecHelpers(t *testing.T) {
	assert.Equal(t, Up, NormalizeOr(mgl32.Vec3{}, Up))
	n := NormalizeOr(mgl32.Vec3{3, 4, 0}, Up)
	assert.InDelta(t, 1, n.Len(), 1e-6)

	b := Barycentric3(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, 0, 3}, 1.0/3, 1.0/3, 1.0/3)
	assert.InDelta(t, 1, b.X(), 1e-6)
	assert.InDelta(t, 1, b.Z(), 1e-6)

	assert.Equal(t, float32(0), SmoothStep(-1))
	assert.Equal(t, float32(1), SmoothStep(2))
	assert.InDelta(t, 0.5, SmoothStep(0.5), 1e-6)
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, Lerp3(mgl32.Vec3{}, mgl32.Vec3{10, 10, 10}, 0.5))
}
