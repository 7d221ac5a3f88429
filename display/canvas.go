// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package display

import (
	"fmt"
	"image/color"

	"tinygo.org/x/drivers"

	"github.com/gogpu/lumen"
)

// Canvas exposes a session buffer as a drivers.Displayer so that
// TinyGo widgets can render into it. Colors are collapsed to their
// gray value on write.
//
// The Displayer contract has no way to report a pixel write failure,
// so SetPixel drops errors after logging them at debug level. That
// only happens when the underlying buffer has been released while the
// canvas is still in use.
type Canvas struct {
	s      *lumen.Session
	id     uint64
	width  int
	height int
	sink   lumen.FrameSink
}

var _ drivers.Displayer = (*Canvas)(nil)

// NewCanvas wraps the buffer id of an existing session allocation.
func NewCanvas(s *lumen.Session, id uint64) (*Canvas, error) {
	info, ok := s.Describe(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", lumen.ErrUnknownBuffer, id)
	}
	return &Canvas{s: s, id: id, width: info.Width, height: info.Height}, nil
}

// WithSink attaches a sink that Display flushes to.
func (c *Canvas) WithSink(sink lumen.FrameSink) *Canvas {
	c.sink = sink
	return c
}

// Buffer returns the id of the wrapped buffer.
func (c *Canvas) Buffer() uint64 { return c.id }

// Size reports the buffer dimensions.
func (c *Canvas) Size() (int16, int16) {
	return int16(c.width), int16(c.height)
}

// SetPixel writes the gray value of col at (x, y). Out-of-bounds
// coordinates are ignored.
func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	g := color.GrayModel.Convert(col).(color.Gray)
	if err := c.s.DrawPixel(c.id, int(x), int(y), g.Y); err != nil {
		lumen.Logger().Debug("display: canvas pixel write failed", "id", c.id, "error", err)
	}
}

// Display flushes the buffer to the attached sink. Without a sink it
// is a no-op, which keeps the canvas usable as a plain draw target.
func (c *Canvas) Display() error {
	if c.sink == nil {
		return nil
	}
	return c.s.Present(c.id, c.sink)
}
