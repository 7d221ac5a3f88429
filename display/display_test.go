// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package display

import (
	"errors"
	"image/color"
	"testing"

	"tinygo.org/x/drivers"

	"github.com/gogpu/lumen"
)

// fakeDisplayer records every SetPixel call so tests can inspect what
// a driver would have received.
type fakeDisplayer struct {
	w, h     int16
	pixels   map[[2]int16]color.RGBA
	sets     int
	displays int
	err      error
}

var _ drivers.Displayer = (*fakeDisplayer)(nil)

func newFakeDisplayer(w, h int16) *fakeDisplayer {
	return &fakeDisplayer{w: w, h: h, pixels: make(map[[2]int16]color.RGBA)}
}

func (d *fakeDisplayer) Size() (int16, int16) { return d.w, d.h }

func (d *fakeDisplayer) SetPixel(x, y int16, c color.RGBA) {
	d.sets++
	d.pixels[[2]int16{x, y}] = c
}

func (d *fakeDisplayer) Display() error {
	d.displays++
	return d.err
}

// captureSink keeps the last frame handed to DrawFrame.
type captureSink struct {
	frames int
	width  int
	height int
	last   []byte
}

func (s *captureSink) DrawFrame(frame []byte, width, height int) error {
	s.frames++
	s.width, s.height = width, height
	s.last = append([]byte(nil), frame...)
	return nil
}

func newTestSession(t *testing.T) *lumen.Session {
	t.Helper()
	s, err := lumen.New(lumen.WithEngine("soft"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPanelDrawFrame(t *testing.T) {
	d := newFakeDisplayer(8, 8)
	p := NewPanel(d)

	frame := make([]byte, lumen.PackedLen(8, 8))
	frame[0] = 0b0000_0101 // column 0, rows 0 and 2
	frame[3] = 0b1000_0000 // column 3, row 7

	if err := p.DrawFrame(frame, 8, 8); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	if d.displays != 1 {
		t.Fatalf("displays = %d, want 1", d.displays)
	}
	if d.sets != 64 {
		t.Fatalf("SetPixel calls = %d, want 64", d.sets)
	}

	for _, tc := range []struct {
		x, y int16
		on   bool
	}{
		{0, 0, true},
		{0, 1, false},
		{0, 2, true},
		{3, 7, true},
		{3, 6, false},
	} {
		want := p.Off
		if tc.on {
			want = p.On
		}
		if got := d.pixels[[2]int16{tc.x, tc.y}]; got != want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tc.x, tc.y, got, want)
		}
	}
}

func TestPanelSkipsRowsBeyondHeight(t *testing.T) {
	d := newFakeDisplayer(4, 10)
	p := NewPanel(d)

	frame := make([]byte, lumen.PackedLen(4, 10))
	for i := range frame {
		frame[i] = 0xFF
	}
	if err := p.DrawFrame(frame, 4, 10); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	if d.sets != 4*10 {
		t.Fatalf("SetPixel calls = %d, want %d", d.sets, 4*10)
	}
}

func TestPanelFrameLengthMismatch(t *testing.T) {
	d := newFakeDisplayer(8, 8)
	p := NewPanel(d)

	err := p.DrawFrame(make([]byte, 3), 8, 8)
	if !errors.Is(err, lumen.ErrInvalidArgument) {
		t.Fatalf("DrawFrame error = %v, want ErrInvalidArgument", err)
	}
	if d.sets != 0 || d.displays != 0 {
		t.Fatalf("displayer touched on bad frame: sets=%d displays=%d", d.sets, d.displays)
	}
}

func TestPanelDisplayErrorSurfaces(t *testing.T) {
	d := newFakeDisplayer(8, 8)
	d.err = errors.New("i2c stall")
	p := NewPanel(d)

	err := p.DrawFrame(make([]byte, lumen.PackedLen(8, 8)), 8, 8)
	if !errors.Is(err, d.err) {
		t.Fatalf("DrawFrame error = %v, want %v", err, d.err)
	}
}

func TestCanvasRoundTrip(t *testing.T) {
	s := newTestSession(t)
	id, err := s.CreateBuffer(16, 8)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	c, err := NewCanvas(s, id)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}

	if w, h := c.Size(); w != 16 || h != 8 {
		t.Fatalf("Size = %dx%d, want 16x8", w, h)
	}
	if c.Buffer() != id {
		t.Fatalf("Buffer = %d, want %d", c.Buffer(), id)
	}

	c.SetPixel(3, 2, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	pix, err := s.Pixels(id)
	if err != nil {
		t.Fatalf("Pixels: %v", err)
	}
	if got := pix[2*16+3]; got != 200 {
		t.Fatalf("pixel (3,2) = %d, want 200", got)
	}
}

func TestCanvasIgnoresOutOfBounds(t *testing.T) {
	s := newTestSession(t)
	id, err := s.CreateBuffer(16, 8)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	c, err := NewCanvas(s, id)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	c.SetPixel(-1, 0, white)
	c.SetPixel(16, 0, white)
	c.SetPixel(0, 8, white)

	pix, err := s.Pixels(id)
	if err != nil {
		t.Fatalf("Pixels: %v", err)
	}
	for i, v := range pix {
		if v != 0 {
			t.Fatalf("pixel %d = %d after out-of-bounds writes, want 0", i, v)
		}
	}
}

func TestCanvasUnknownBuffer(t *testing.T) {
	s := newTestSession(t)
	if _, err := NewCanvas(s, 42); !errors.Is(err, lumen.ErrUnknownBuffer) {
		t.Fatalf("NewCanvas error = %v, want ErrUnknownBuffer", err)
	}
}

func TestCanvasWriteLine(t *testing.T) {
	s := newTestSession(t)
	id, err := s.CreateBuffer(64, 16)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	c, err := NewCanvas(s, id)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}

	WriteLine(c, nil, 2, 12, "Hi", lumen.White)

	pix, err := s.Pixels(id)
	if err != nil {
		t.Fatalf("Pixels: %v", err)
	}
	lit := 0
	for _, v := range pix {
		if v == lumen.White {
			lit++
		} else if v != lumen.Black {
			t.Fatalf("pixel value %d, want only %d or %d", v, lumen.Black, lumen.White)
		}
	}
	if lit == 0 {
		t.Fatal("WriteLine lit no pixels")
	}
}

func TestCanvasDisplayFlushesSink(t *testing.T) {
	s := newTestSession(t)
	id, err := s.CreateBuffer(16, 8)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	c, err := NewCanvas(s, id)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}

	if err := c.Display(); err != nil {
		t.Fatalf("Display without sink: %v", err)
	}

	sink := &captureSink{}
	c.WithSink(sink)
	c.SetPixel(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	if err := c.Display(); err != nil {
		t.Fatalf("Display: %v", err)
	}
	if sink.frames != 1 {
		t.Fatalf("sink frames = %d, want 1", sink.frames)
	}
	if sink.width != 16 || sink.height != 8 {
		t.Fatalf("sink frame size = %dx%d, want 16x8", sink.width, sink.height)
	}
	if len(sink.last) != lumen.PackedLen(16, 8) {
		t.Fatalf("sink frame length = %d, want %d", len(sink.last), lumen.PackedLen(16, 8))
	}
}

func TestLineWidth(t *testing.T) {
	short := LineWidth(nil, "hi")
	long := LineWidth(nil, "hi there")
	if short <= 0 {
		t.Fatalf("LineWidth(\"hi\") = %d, want > 0", short)
	}
	if long <= short {
		t.Fatalf("LineWidth(\"hi there\") = %d, want > %d", long, short)
	}
}
