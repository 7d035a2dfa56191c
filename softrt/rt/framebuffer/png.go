package framebuffer

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"os"
)

func (b *PixelBuffer) WritePNG(w io.Writer) error {
	if err := png.Encode(w, b.Color); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func (b *PixelBuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := b.WritePNG(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
