package pipeline

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultDegenerateArea is the smallest |SignedArea| a triangle may have and
// still be rasterized.
const DefaultDegenerateArea = 0.001

// Winding selects which screen-space orientation counts as front-facing.
type Winding int

const (
	// FrontClockwise treats triangles that appear clockwise on screen as
	// front-facing, i.e. positive SignedArea with y pointing down.
	FrontClockwise Winding = iota
	FrontCounterClockwise
	// CullNone disables backface culling.
	CullNone
)

func (w Winding) String() string {
	switch w {
	case FrontClockwise:
		return "cw"
	case FrontCounterClockwise:
		return "ccw"
	case CullNone:
		return "none"
	}
	return fmt.Sprintf("Winding(%d)", int(w))
}

func ParseWinding(s string) (Winding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cw", "clockwise":
		return FrontClockwise, nil
	case "ccw", "counterclockwise":
		return FrontCounterClockwise, nil
	case "none", "off":
		return CullNone, nil
	}
	return 0, fmt.Errorf("%w: unknown winding %q", ErrInvalidConfig, s)
}

// IsFront reports whether a triangle with the given signed area faces the
// viewer.
func (w Winding) IsFront(area float32) bool {
	switch w {
	case FrontCounterClockwise:
		return area < 0
	case CullNone:
		return true
	default:
		return area > 0
	}
}

// SignedArea is twice the signed area of the screen triangle abc (shoelace
// formula on x/y). With y pointing down it is positive when abc appears
// clockwise.
func SignedArea(a, b, c mgl32.Vec3) float32 {
	return (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
}

// Triangle is an assembled, rasterizable triangle.
type Triangle struct {
	V        [3]TransformedVertex
	Area     float32
	Emissive bool
}

// CentroidDepth is the mean screen depth of the three vertices.
func (t *Triangle) CentroidDepth() float32 {
	return (t.V[0].Screen[2] + t.V[1].Screen[2] + t.V[2].Screen[2]) / 3
}

// AssembleOptions bound the rejection tests of Assemble.
type AssembleOptions struct {
	Width, Height  int
	Winding        Winding
	DegenerateArea float32
}

// CullStats counts the triangles Assemble dropped, by reason.
type CullStats struct {
	Behind     int
	Frustum    int
	Degenerate int
	Backface   int
}

func (c CullStats) Total() int {
	return c.Behind + c.Frustum + c.Degenerate + c.Backface
}

func (c *CullStats) add(o CullStats) {
	c.Behind += o.Behind
	c.Frustum += o.Frustum
	c.Degenerate += o.Degenerate
	c.Backface += o.Backface
}

// Assemble groups verts into triangles by index and appends the survivors to
// dst in input order. A triangle is dropped when any vertex has no screen
// position, when all three vertices lie past the same clip boundary, when it
// is degenerate or when it faces away under opts.Winding. Partially visible
// triangles are kept whole; the rasterizer trims them to the buffer.
func Assemble(indices []uint32, verts []TransformedVertex, opts AssembleOptions, emissive bool, dst []Triangle, stats *CullStats) []Triangle {
	var local CullStats
	minArea := opts.DegenerateArea
	if minArea <= 0 {
		minArea = DefaultDegenerateArea
	}
	w, h := float32(opts.Width), float32(opts.Height)

	for f := 0; f+2 < len(indices); f += 3 {
		v0, v1, v2 := &verts[indices[f]], &verts[indices[f+1]], &verts[indices[f+2]]
		if !v0.Visible || !v1.Visible || !v2.Visible {
			local.Behind++
			continue
		}
		if outsideSameBoundary(v0.Screen, v1.Screen, v2.Screen, w, h) {
			local.Frustum++
			continue
		}
		area := SignedArea(v0.Screen, v1.Screen, v2.Screen)
		if mgl32.Abs(area) < minArea {
			local.Degenerate++
			continue
		}
		if !opts.Winding.IsFront(area) {
			local.Backface++
			continue
		}
		dst = append(dst, Triangle{V: [3]TransformedVertex{*v0, *v1, *v2}, Area: area, Emissive: emissive})
	}
	if stats != nil {
		stats.add(local)
	}
	return dst
}

func outsideSameBoundary(a, b, c mgl32.Vec3, w, h float32) bool {
	switch {
	case a[0] < 0 && b[0] < 0 && c[0] < 0:
		return true
	case a[0] >= w && b[0] >= w && c[0] >= w:
		return true
	case a[1] < 0 && b[1] < 0 && c[1] < 0:
		return true
	case a[1] >= h && b[1] >= h && c[1] >= h:
		return true
	case a[2] < 0 && b[2] < 0 && c[2] < 0:
		return true
	case a[2] > 1 && b[2] > 1 && c[2] > 1:
		return true
	}
	return false
}

// SortBackToFront orders tris far to near by centroid depth for painter's
// drawing. The sort is stable, so equal depths keep input order.
func SortBackToFront(tris []Triangle) {
	slices.SortStableFunc(tris, func(a, b Triangle) int {
		return cmp.Compare(b.CentroidDepth(), a.CentroidDepth())
	})
}
