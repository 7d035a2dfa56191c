package framebuffer

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultFace is the bitmap face used when no font file is configured.
var DefaultFace font.Face = basicfont.Face7x13

// LoadFace parses a TrueType/OpenType font file at the given pixel size.
func LoadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return face, nil
}

// DrawText writes s with its baseline starting at (x, y). Text is an
// overlay: it ignores and keeps depth. A nil face uses DefaultFace.
func (b *PixelBuffer) DrawText(face font.Face, x, y int, s string, c color.RGBA) {
	if face == nil {
		face = DefaultFace
	}
	d := &font.Drawer{
		Dst:  b.Color,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// LineHeight is the advance between HUD lines for face.
func LineHeight(face font.Face) int {
	if face == nil {
		face = DefaultFace
	}
	return face.Metrics().Height.Ceil()
}
