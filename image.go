package lumen

import (
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// GrayImage wraps a row-major intensity buffer in an image.Gray of the
// given dimensions. The pixel data is copied.
func GrayImage(pixels []byte, width, height int) (*image.Gray, error) {
	if len(pixels) != width*height {
		return nil, fmt.Errorf("%w: pixel buffer length %d does not match %dx%d",
			ErrInvalidArgument, len(pixels), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)
	return img, nil
}

// PixelsFromImage converts an image into a width x height intensity
// buffer, scaling with bilinear filtering and reducing to 8-bit gray.
// Use it to bring externally decoded images into a buffer via
// drawing calls, or directly into Pack.
func PixelsFromImage(img image.Image, width, height int) ([]byte, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidArgument, width, height)
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst.Pix, nil
}

// UnpackImage expands a packed frame back into a black-and-white
// image.Gray, reversing the Pack layout. Set bits render as white.
// Useful for previewing exactly what a page-addressed panel will show.
func UnpackImage(frame []byte, width, height int) (*image.Gray, error) {
	if len(frame) != PackedLen(width, height) {
		return nil, fmt.Errorf("%w: frame length %d does not match %dx%d (want %d)",
			ErrInvalidArgument, len(frame), width, height, PackedLen(width, height))
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for page := 0; page < Pages(height); page++ {
		for col := 0; col < width; col++ {
			b := frame[page*width+col]
			for bit := 0; bit < 8; bit++ {
				row := page*8 + bit
				if row >= height {
					break
				}
				if b&(1<<bit) != 0 {
					img.Pix[row*width+col] = 255
				}
			}
		}
	}
	return img, nil
}

// SavePNG writes an intensity buffer to path as a grayscale PNG.
func SavePNG(path string, pixels []byte, width, height int) error {
	img, err := GrayImage(pixels, width, height)
	if err != nil {
		return err
	}
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, img)
}
