package pipeline

import (
	"iter"

	"github.com/gekko3d/orrery/softrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// EdgeEpsilon is how far below zero a normalized barycentric weight may fall
// before the sample counts as outside. It is the same for every triangle so
// shared edges do not crack.
const EdgeEpsilon = 1e-4

// Strides handed out by LODStride, nearest first.
var lodStrides = [4]int{1, 2, 4, 8}

// LODStride maps a camera distance onto a sampling stride in {1,2,4,8}. The
// thresholds must be ascending; a distance at or beyond thresholds[i] gets
// stride 2^(i+1).
func LODStride(distance float32, thresholds [3]float32) int {
	for i, t := range thresholds {
		if distance < t {
			return lodStrides[i]
		}
	}
	return lodStrides[3]
}

// Rect is a half-open pixel rectangle [MinX,MaxX) x [MinY,MaxY).
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

func (r Rect) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		MinX: max(r.MinX, o.MinX),
		MinY: max(r.MinY, o.MinY),
		MaxX: min(r.MaxX, o.MaxX),
		MaxY: min(r.MaxY, o.MaxY),
	}
}

// Fragment is one sample produced by Rasterize.
type Fragment struct {
	X, Y   int
	Depth  float32
	Normal mgl32.Vec3
	Color  mgl32.Vec3
	World  mgl32.Vec3
	// Bary are the screen-space barycentric weights of the sample.
	Bary     [3]float32
	Emissive bool
	Stride   int
}

// Rasterize yields the fragments covering tri inside clip. Only pixels whose
// coordinates are multiples of stride are sampled, so every triangle of a
// draw sees the same lattice regardless of its bounding box. Depth is
// interpolated linearly in screen space; normal, color and world position
// are interpolated perspective-correctly.
//
// The sequence holds no state between runs and may be ranged over again.
func Rasterize(tri *Triangle, stride int, clip Rect) iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		if stride < 1 {
			stride = 1
		}
		a, b, c := &tri.V[0], &tri.V[1], &tri.V[2]
		area := SignedArea(a.Screen, b.Screen, c.Screen)
		if area == 0 {
			return
		}
		invArea := 1 / area

		box := Rect{
			MinX: floorInt(min(a.Screen[0], b.Screen[0], c.Screen[0])),
			MinY: floorInt(min(a.Screen[1], b.Screen[1], c.Screen[1])),
			MaxX: ceilInt(max(a.Screen[0], b.Screen[0], c.Screen[0])) + 1,
			MaxY: ceilInt(max(a.Screen[1], b.Screen[1], c.Screen[1])) + 1,
		}.Intersect(clip)
		if box.Empty() {
			return
		}

		for y := alignUp(box.MinY, stride); y < box.MaxY; y += stride {
			py := float32(y) + 0.5
			for x := alignUp(box.MinX, stride); x < box.MaxX; x += stride {
				p := mgl32.Vec3{float32(x) + 0.5, py, 0}
				w0 := SignedArea(b.Screen, c.Screen, p) * invArea
				w1 := SignedArea(c.Screen, a.Screen, p) * invArea
				w2 := SignedArea(a.Screen, b.Screen, p) * invArea
				if w0 < -EdgeEpsilon || w1 < -EdgeEpsilon || w2 < -EdgeEpsilon {
					continue
				}

				// Perspective-correct weights for the attributes.
				p0, p1, p2 := w0*a.InvW, w1*b.InvW, w2*c.InvW
				if sum := p0 + p1 + p2; sum > 0 {
					p0, p1, p2 = p0/sum, p1/sum, p2/sum
				} else {
					p0, p1, p2 = w0, w1, w2
				}

				frag := Fragment{
					X:        x,
					Y:        y,
					Depth:    w0*a.Screen[2] + w1*b.Screen[2] + w2*c.Screen[2],
					Normal:   core.Barycentric3(a.Normal, b.Normal, c.Normal, p0, p1, p2),
					Color:    core.Barycentric3(a.Color, b.Color, c.Color, p0, p1, p2),
					World:    core.Barycentric3(a.World, b.World, c.World, p0, p1, p2),
					Bary:     [3]float32{w0, w1, w2},
					Emissive: tri.Emissive,
					Stride:   stride,
				}
				if !yield(frag) {
					return
				}
			}
		}
	}
}

// alignUp rounds v up to the next multiple of s. v is never negative here
// because the clip rect starts at or after the buffer origin.
func alignUp(v, s int) int {
	if r := v % s; r != 0 {
		return v + s - r
	}
	return v
}

// Screen coordinates are clamped before conversion so vertices projected
// absurdly far off screen cannot overflow int.
const coordLimit = 1 << 24

func floorInt(f float32) int {
	f = mgl32.Clamp(f, -coordLimit, coordLimit)
	i := int(f)
	if float32(i) > f {
		i--
	}
	return i
}

func ceilInt(f float32) int {
	f = mgl32.Clamp(f, -coordLimit, coordLimit)
	i := int(f)
	if float32(i) < f {
		i++
	}
	return i
}
