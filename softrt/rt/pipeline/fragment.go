package pipeline

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/gekko3d/orrery/softrt/rt/core"
	"github.com/gekko3d/orrery/softrt/rt/framebuffer"
	"github.com/go-gl/mathgl/mgl32"
)

type LightKind int

const (
	Directional LightKind = iota
	Point
)

func (k LightKind) String() string {
	if k == Point {
		return "point"
	}
	return "directional"
}

func ParseLightKind(s string) (LightKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "directional":
		return Directional, nil
	case "point":
		return Point, nil
	}
	return 0, fmt.Errorf("%w: unknown light kind %q", ErrInvalidConfig, s)
}

// Lighting is the light setup the fragment stage shades with. Colors are
// linear [0,1] multipliers.
type Lighting struct {
	Ambient      float32
	AmbientColor mgl32.Vec3
	Diffuse      float32

	Kind LightKind
	// Direction points from the surface toward a directional light.
	Direction mgl32.Vec3
	// Position is the world position of a point light.
	Position mgl32.Vec3
	Color    mgl32.Vec3

	// Blinn-Phong highlight. Zero Specular disables it.
	Specular  float32
	Shininess float32
	Eye       mgl32.Vec3
}

// DefaultLighting is a white directional light from (-1,-1,-1) with 0.3
// ambient and 0.7 diffuse.
func DefaultLighting() Lighting {
	return Lighting{
		Ambient:      0.3,
		AmbientColor: mgl32.Vec3{1, 1, 1},
		Diffuse:      0.7,
		Kind:         Directional,
		Direction:    mgl32.Vec3{-1, -1, -1}.Normalize(),
		Color:        mgl32.Vec3{1, 1, 1},
		Shininess:    32,
	}
}

// toLight returns the unit vector from a surface point toward the light.
func (l *Lighting) toLight(world mgl32.Vec3) mgl32.Vec3 {
	if l.Kind == Point {
		return core.NormalizeOr(l.Position.Sub(world), core.Up)
	}
	return core.NormalizeOr(l.Direction, core.Up)
}

// Shade computes the final color of frag. Emissive fragments return their
// base color untouched. Everything else gets
// base * (ambient*ambientColor + diffuse*max(0, n.l)*lightColor), plus an
// optional specular term, clamped per channel.
func Shade(frag *Fragment, l *Lighting) color.RGBA {
	if frag.Emissive {
		return toRGBA(frag.Color)
	}

	n := core.NormalizeOr(frag.Normal, core.Up)
	dir := l.toLight(frag.World)
	nDotL := max(0, n.Dot(dir))

	var light mgl32.Vec3
	for i := 0; i < 3; i++ {
		light[i] = l.Ambient*l.AmbientColor[i] + l.Diffuse*nDotL*l.Color[i]
	}

	var spec float32
	if l.Specular > 0 && nDotL > 0 {
		view := core.NormalizeOr(l.Eye.Sub(frag.World), n)
		h := core.NormalizeOr(dir.Add(view), n)
		spec = l.Specular * float32(math.Pow(float64(max(0, n.Dot(h))), float64(l.Shininess)))
	}

	var out mgl32.Vec3
	for i := 0; i < 3; i++ {
		out[i] = frag.Color[i]*light[i] + spec*l.Color[i]
	}
	return toRGBA(out)
}

// WriteFragment depth-tests frag against buf and, when it is nearer, shades
// it and stores color and depth. It reports whether the pixel was written.
func WriteFragment(buf *framebuffer.PixelBuffer, frag *Fragment, l *Lighting) bool {
	if !buf.DepthTest(frag.X, frag.Y, frag.Depth) {
		return false
	}
	buf.Set(frag.X, frag.Y, Shade(frag, l), frag.Depth)
	return true
}

// FromRGBA converts an 8-bit color into the linear [0,1] form vertices carry.
func FromRGBA(c color.RGBA) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

func toRGBA(c mgl32.Vec3) color.RGBA {
	ch := func(v float32) uint8 {
		return uint8(mgl32.Clamp(v*255+0.5, 0, 255))
	}
	return color.RGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: 255}
}
