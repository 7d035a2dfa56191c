package framebuffer

import (
	"image/color"
	"math"
)

// FillRadialGradient paints a background that fades from inner at the
// centre to outer at the corners. Depth is not touched.
func (b *PixelBuffer) FillRadialGradient(inner, outer color.RGBA) {
	cx, cy := float64(b.width)/2, float64(b.height)/2
	maxDist := math.Hypot(cx, cy)
	lerp := func(a, c uint8, t float64) uint8 {
		return uint8(float64(a) + (float64(c)-float64(a))*t + 0.5)
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			t := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / maxDist
			b.SetColor(x, y, color.RGBA{
				R: lerp(inner.R, outer.R, t),
				G: lerp(inner.G, outer.G, t),
				B: lerp(inner.B, outer.B, t),
				A: 255,
			})
		}
	}
}

// DrawLine draws a 1px Bresenham line. Pixels outside the buffer are skipped.
func (b *PixelBuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	bresenham(x0, y0, x1, y1, func(x, y int) {
		b.SetColor(x, y, c)
	})
}

// DrawLineDepth is DrawLine with a per-pixel depth test at a constant depth,
// so orbit rings pass behind nearer bodies.
func (b *PixelBuffer) DrawLineDepth(x0, y0, x1, y1 int, z float32, c color.RGBA) {
	bresenham(x0, y0, x1, y1, func(x, y int) {
		if b.DepthTest(x, y, z) {
			b.SetColor(x, y, c)
		}
	})
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPoint plots a star: a core pixel plus a faint cross-shaped glow when
// size > 1.
func (b *PixelBuffer) DrawPoint(x, y int, size int, c color.RGBA) {
	b.SetColor(x, y, c)
	if size <= 1 {
		return
	}
	for r := 1; r < size; r++ {
		alpha := 0.5 / float32(r)
		b.Blend(x+r, y, c, alpha)
		b.Blend(x-r, y, c, alpha)
		b.Blend(x, y+r, c, alpha)
		b.Blend(x, y-r, c, alpha)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
