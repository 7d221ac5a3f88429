// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package display bridges lumen frames to TinyGo display drivers.
//
// Panel turns any drivers.Displayer into a lumen.FrameSink, so packed
// frames land on real hardware through whatever driver the host build
// provides. Canvas goes the other way: it exposes a session buffer as
// a drivers.Displayer, which lets TinyGo widgets like tinyfont draw
// straight into compute-engine buffers.
package display

import (
	"fmt"
	"image/color"

	"tinygo.org/x/drivers"

	"github.com/gogpu/lumen"
)

// Panel adapts a drivers.Displayer into a lumen.FrameSink.
//
// DrawFrame unpacks the page-addressed bytes and pushes them through
// SetPixel, then flushes with Display. On and Off select the colors
// for set and clear bits; monochrome drivers only care whether a color
// is non-zero.
type Panel struct {
	d   drivers.Displayer
	On  color.RGBA
	Off color.RGBA
}

var _ lumen.FrameSink = (*Panel)(nil)

// NewPanel wraps a displayer with white-on-black colors.
func NewPanel(d drivers.Displayer) *Panel {
	return &Panel{
		d:   d,
		On:  color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Off: color.RGBA{A: 255},
	}
}

// DrawFrame pushes a packed frame to the displayer and flushes it.
// Pixels outside the displayer's own bounds are the driver's problem;
// every driver in tinygo.org/x/drivers clips SetPixel itself.
func (p *Panel) DrawFrame(frame []byte, width, height int) error {
	if len(frame) != lumen.PackedLen(width, height) {
		return fmt.Errorf("%w: frame length %d does not match %dx%d",
			lumen.ErrInvalidArgument, len(frame), width, height)
	}

	for page := 0; page < lumen.Pages(height); page++ {
		for col := 0; col < width; col++ {
			b := frame[page*width+col]
			for bit := 0; bit < 8; bit++ {
				row := page*8 + bit
				if row >= height {
					break
				}
				c := p.Off
				if b&(1<<bit) != 0 {
					c = p.On
				}
				p.d.SetPixel(int16(col), int16(row), c)
			}
		}
	}
	return p.d.Display()
}
