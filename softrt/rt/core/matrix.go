package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// WEpsilon is the smallest homogeneous w accepted by TransformPoint.
// Anything at or below it sits on or behind the eye plane.
const WEpsilon = 1e-6

var ErrDegenerateProjection = errors.New("degenerate projection parameters")

// Matrix4 is a 4x4 transform. Storage is mgl32's column-major layout; vectors
// are columns, so A.Mul(B) applies B first.
type Matrix4 mgl32.Mat4

func (m Matrix4) Mat() mgl32.Mat4 {
	return mgl32.Mat4(m)
}

// At returns the cell at the given row and column.
func (m Matrix4) At(row, col int) float32 {
	return mgl32.Mat4(m).At(row, col)
}

func Identity() Matrix4 {
	return Matrix4(mgl32.Ident4())
}

// FromRows builds a matrix from its rows as they are written on paper.
func FromRows(r0, r1, r2, r3 mgl32.Vec4) Matrix4 {
	return Matrix4(mgl32.Mat4FromRows(r0, r1, r2, r3))
}

func (m Matrix4) Mul(other Matrix4) Matrix4 {
	return Matrix4(mgl32.Mat4(m).Mul4(mgl32.Mat4(other)))
}

func (m Matrix4) Transpose() Matrix4 {
	return Matrix4(mgl32.Mat4(m).Transpose())
}

// Inverse returns the inverse of m. ok is false for singular matrices.
func (m Matrix4) Inverse() (Matrix4, bool) {
	mm := mgl32.Mat4(m)
	if det := mm.Det(); math.Abs(float64(det)) < 1e-12 {
		return Matrix4{}, false
	}
	return Matrix4(mm.Inv()), true
}

// ApproxEqual reports whether every cell of m is within eps of other.
// The tolerance is absolute so cells near zero compare sanely.
func (m Matrix4) ApproxEqual(other Matrix4, eps float32) bool {
	for i := range m {
		if mgl32.Abs(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}

// TransformPoint4 applies m to the homogeneous point (p, 1) without dividing.
func (m Matrix4) TransformPoint4(p mgl32.Vec3) mgl32.Vec4 {
	return mgl32.Mat4(m).Mul4x1(p.Vec4(1))
}

// TransformPoint applies m to p with w=1 and divides by the resulting w.
// ok is false when w <= WEpsilon: the point is behind the eye and has no
// screen position.
func (m Matrix4) TransformPoint(p mgl32.Vec3) (mgl32.Vec3, bool) {
	h := m.TransformPoint4(p)
	w := h.W()
	if w == 1 {
		return h.Vec3(), true
	}
	if w <= WEpsilon {
		return h.Vec3(), false
	}
	return h.Vec3().Mul(1 / w), true
}

// TransformDirection applies m to v with w=0. Used for normals with the full
// model matrix, which is exact only for rotations and uniform scale.
func (m Matrix4) TransformDirection(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Mat4(m).Mul4x1(v.Vec4(0)).Vec3()
}

func Translation(x, y, z float32) Matrix4 {
	return Matrix4(mgl32.Translate3D(x, y, z))
}

func Scale(x, y, z float32) Matrix4 {
	return Matrix4(mgl32.Scale3D(x, y, z))
}

func RotationX(angle float32) Matrix4 {
	return Matrix4(mgl32.HomogRotate3DX(angle))
}

func RotationY(angle float32) Matrix4 {
	return Matrix4(mgl32.HomogRotate3DY(angle))
}

func RotationZ(angle float32) Matrix4 {
	return Matrix4(mgl32.HomogRotate3DZ(angle))
}

// LookAt builds a right-handed view matrix; the camera looks down -Z.
func LookAt(eye, target, up mgl32.Vec3) Matrix4 {
	return Matrix4(mgl32.LookAtV(eye, target, up))
}

// Perspective builds an OpenGL-style projection: clip w = -z_view and NDC z
// spans [-1, 1] between near and far.
func Perspective(fovY, aspect, near, far float32) (Matrix4, error) {
	switch {
	case fovY <= 0 || fovY >= math.Pi:
		return Matrix4{}, fmt.Errorf("%w: fov %.4f rad out of (0, pi)", ErrDegenerateProjection, fovY)
	case aspect <= 0:
		return Matrix4{}, fmt.Errorf("%w: aspect %.4f", ErrDegenerateProjection, aspect)
	case near <= 0:
		return Matrix4{}, fmt.Errorf("%w: near plane %.4f must be positive", ErrDegenerateProjection, near)
	case far <= near:
		return Matrix4{}, fmt.Errorf("%w: far plane %.4f must exceed near %.4f", ErrDegenerateProjection, far, near)
	}
	return Matrix4(mgl32.Perspective(fovY, aspect, near, far)), nil
}

// Viewport maps NDC [-1,1]^2 onto the pixel rectangle at (x, y) of size w*h.
// Y is flipped so NDC +1 lands on row 0; NDC z [-1,1] maps to depth [0,1].
func Viewport(x, y, w, h float32) Matrix4 {
	hw, hh := w/2, h/2
	return FromRows(
		mgl32.Vec4{hw, 0, 0, x + hw},
		mgl32.Vec4{0, -hh, 0, y + hh},
		mgl32.Vec4{0, 0, 0.5, 0.5},
		mgl32.Vec4{0, 0, 0, 1},
	)
}
