// Package screenshot renders framebuffers to PNG images.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/machine"
	"golang.org/x/image/draw"
)

// Colors of unlit and lit pixels.
var palette = color.Palette{
	color.Gray{Y: 0x00},
	color.Gray{Y: 0xFF},
}

// ErrInvalidScale is returned for scales smaller than 1.
var ErrInvalidScale = errors.New("invalid scale")

// Image returns the framebuffer as an image enlarged by scale.
func Image(fb machine.Framebuffer, scale int) (image.Image, error) {
	if scale < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}

	src := image.NewPaletted(image.Rect(0, 0, machine.ScreenWidth, machine.ScreenHeight), palette)
	for i, pixel := range fb {
		if pixel != 0 {
			src.Pix[i] = 1
		}
	}
	if scale == 1 {
		return src, nil
	}

	dst := image.NewPaletted(image.Rect(0, 0, machine.ScreenWidth*scale, machine.ScreenHeight*scale), palette)
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// Encode writes the framebuffer as PNG to w.
func Encode(w io.Writer, fb machine.Framebuffer, scale int) error {
	img, err := Image(fb, scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// Save writes the framebuffer as PNG file.
func Save(path string, fb machine.Framebuffer, scale int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	if err := Encode(file, fb, scale); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	return nil
}
