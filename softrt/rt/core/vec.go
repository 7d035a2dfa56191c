package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Up is the world up axis; the solar system orbits in the XZ plane.
var Up = mgl32.Vec3{0, 1, 0}

// NormalizeOr returns v scaled to unit length, or fallback when v has no length.
func NormalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return fallback
	}
	return v.Mul(1 / l)
}

// Barycentric3 returns w0*a + w1*b + w2*c.
func Barycentric3(a, b, c mgl32.Vec3, w0, w1, w2 float32) mgl32.Vec3 {
	return mgl32.Vec3{
		w0*a[0] + w1*b[0] + w2*c[0],
		w0*a[1] + w1*b[1] + w2*c[1],
		w0*a[2] + w1*b[2] + w2*c[2],
	}
}

func Lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SmoothStep eases t in [0,1] with zero slope at both ends.
func SmoothStep(t float32) float32 {
	t = mgl32.Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}
