package lumen

import "fmt"

// DefaultThreshold is the intensity cutoff used by Session.Frame.
// Pixels strictly brighter than the threshold pack to 1.
const DefaultThreshold uint8 = Gray

// Pages returns the number of 8-row pages needed to cover height rows.
func Pages(height int) int {
	return (height + 7) / 8
}

// PackedLen returns the byte length of a packed frame for the given
// buffer dimensions: one byte per (page, column) cell.
func PackedLen(width, height int) int {
	return width * Pages(height)
}

// Pack converts a row-major intensity buffer into the page-addressed
// monochrome layout used by SSD1306-class display controllers.
//
// The output holds one byte per (page, column) cell in page-major,
// column-minor order: byte pack[p*width+c] covers rows p*8..p*8+7 of
// column c, with bit b (least significant first) set iff the pixel at
// row p*8+b is strictly brighter than threshold. Rows past the buffer
// height in the final partial page pack as 0.
//
// Pack is pure: it operates on pixel data already read out of a buffer
// and never touches the compute engine.
func Pack(pixels []byte, width, height int, threshold uint8) ([]byte, error) {
	if len(pixels) != width*height {
		return nil, fmt.Errorf("%w: pixel buffer length %d does not match %dx%d",
			ErrInvalidArgument, len(pixels), width, height)
	}

	pages := Pages(height)
	out := make([]byte, width*pages)

	i := 0
	for page := 0; page < pages; page++ {
		top := page * 8
		for col := 0; col < width; col++ {
			var b byte
			for bit := 0; bit < 8; bit++ {
				row := top + bit
				if row >= height {
					break
				}
				if pixels[row*width+col] > threshold {
					b |= 1 << bit
				}
			}
			out[i] = b
			i++
		}
	}
	return out, nil
}
