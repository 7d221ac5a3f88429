package lumen

// Monochrome intensity scale. Buffers hold one 8-bit intensity sample
// per pixel; packing reduces it to 1-bit via a threshold.
const (
	// Black is the minimum intensity (pixel off).
	Black uint8 = 0

	// Gray is the midpoint intensity, matching the default pack threshold.
	Gray uint8 = 128

	// White is the maximum intensity (pixel on).
	White uint8 = 255
)

// Default buffer dimensions, sized for the common 128x32 OLED panel.
const (
	DefaultWidth  = 128
	DefaultHeight = 32
)
