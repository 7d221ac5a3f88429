// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package display

import (
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// DefaultFont is the face WriteLine falls back to when the caller
// passes a nil font. Proggy TinySZ fits an 8-pixel page, which suits
// the small OLED panels these frames usually end up on.
var DefaultFont tinyfont.Fonter = &proggy.TinySZ8pt7b

// WriteLine draws s onto the canvas with its baseline at (x, y).
// A nil font selects DefaultFont.
func WriteLine(c *Canvas, font tinyfont.Fonter, x, y int, s string, intensity uint8) {
	if font == nil {
		font = DefaultFont
	}
	col := color.RGBA{R: intensity, G: intensity, B: intensity, A: 255}
	tinyfont.WriteLine(c, font, int16(x), int16(y), s, col)
}

// LineWidth reports the advance width of s in pixels, including the
// glyph side bearings. A nil font selects DefaultFont.
func LineWidth(font tinyfont.Fonter, s string) int {
	if font == nil {
		font = DefaultFont
	}
	_, outbox := tinyfont.LineWidth(font, s)
	return int(outbox)
}
