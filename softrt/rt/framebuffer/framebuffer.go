package framebuffer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"slices"
)

// FarDepth is the depth every pixel holds after Clear. Any finite depth
// passes the test against it.
var FarDepth = float32(math.Inf(1))

var ErrInvalidSize = errors.New("invalid pixel buffer size")

// PixelBuffer is the render target: an RGBA image with a parallel depth
// plane, both row-major with the origin at the top-left.
type PixelBuffer struct {
	Color *image.RGBA
	Depth []float32

	width, height int
}

func New(width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	b := &PixelBuffer{
		Color:  image.NewRGBA(image.Rect(0, 0, width, height)),
		Depth:  make([]float32, width*height),
		width:  width,
		height: height,
	}
	b.Clear(color.RGBA{A: 255})
	return b, nil
}

func (b *PixelBuffer) Width() int  { return b.width }
func (b *PixelBuffer) Height() int { return b.height }

func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Pix exposes the raw RGBA bytes for presentation. Stride is 4*Width.
func (b *PixelBuffer) Pix() []byte { return b.Color.Pix }

// Clear fills the color plane with c and resets depth to FarDepth.
func (b *PixelBuffer) Clear(c color.RGBA) {
	draw.Draw(b.Color, b.Color.Rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
	for i := range b.Depth {
		b.Depth[i] = FarDepth
	}
}

// ClearDepth resets only the depth plane, keeping whatever background has been
// painted.
func (b *PixelBuffer) ClearDepth() {
	for i := range b.Depth {
		b.Depth[i] = FarDepth
	}
}

func (b *PixelBuffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// DepthTest reports whether depth z at (x, y) is nearer than what is stored.
// Out-of-bounds coordinates always fail.
func (b *PixelBuffer) DepthTest(x, y int, z float32) bool {
	if !b.InBounds(x, y) {
		return false
	}
	return z < b.Depth[y*b.width+x]
}

// Set writes color and depth at (x, y). Out-of-bounds writes are dropped.
func (b *PixelBuffer) Set(x, y int, c color.RGBA, z float32) {
	if !b.InBounds(x, y) {
		return
	}
	b.SetColor(x, y, c)
	b.Depth[y*b.width+x] = z
}

// SetColor writes color only, leaving depth untouched. Used for overlays.
func (b *PixelBuffer) SetColor(x, y int, c color.RGBA) {
	if !b.InBounds(x, y) {
		return
	}
	i := b.Color.PixOffset(x, y)
	p := b.Color.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// Blend mixes c over the existing color with weight alpha in [0,1].
func (b *PixelBuffer) Blend(x, y int, c color.RGBA, alpha float32) {
	if !b.InBounds(x, y) {
		return
	}
	if alpha >= 1 {
		b.SetColor(x, y, c)
		return
	}
	if alpha <= 0 {
		return
	}
	dst := b.At(x, y)
	mix := func(d, s uint8) uint8 {
		return uint8(float32(d)*(1-alpha) + float32(s)*alpha + 0.5)
	}
	b.SetColor(x, y, color.RGBA{mix(dst.R, c.R), mix(dst.G, c.G), mix(dst.B, c.B), 255})
}

func (b *PixelBuffer) At(x, y int) color.RGBA {
	return b.Color.RGBAAt(x, y)
}

// DepthAt returns the stored depth, or FarDepth outside the buffer.
func (b *PixelBuffer) DepthAt(x, y int) float32 {
	if !b.InBounds(x, y) {
		return FarDepth
	}
	return b.Depth[y*b.width+x]
}

func (b *PixelBuffer) Clone() *PixelBuffer {
	img := image.NewRGBA(b.Color.Rect)
	copy(img.Pix, b.Color.Pix)
	return &PixelBuffer{
		Color:  img,
		Depth:  slices.Clone(b.Depth),
		width:  b.width,
		height: b.height,
	}
}

// Equal reports whether both planes match exactly.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b.width != o.width || b.height != o.height {
		return false
	}
	return slices.Equal(b.Color.Pix, o.Color.Pix) && slices.Equal(b.Depth, o.Depth)
}

// CountWhere counts pixels whose color satisfies pred.
func (b *PixelBuffer) CountWhere(pred func(color.RGBA) bool) int {
	n := 0
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if pred(b.At(x, y)) {
				n++
			}
		}
	}
	return n
}
