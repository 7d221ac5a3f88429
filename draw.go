package lumen

import (
	"fmt"

	"github.com/gogpu/lumen/engine"
)

// MaxParticles bounds the particle count accepted by Particles.
const MaxParticles = 1024

// forward resolves id to its engine handle and runs fn against it.
// Engine failures come back wrapping ErrCompute with the op and id.
func (s *Session) forward(id uint64, op string, fn func(h engine.Handle) error) error {
	rec, err := s.reg.lookup(id)
	if err != nil {
		return err
	}
	if err := fn(rec.handle); err != nil {
		return fmt.Errorf("%w: %s on buffer %d: %v", ErrCompute, op, id, err)
	}
	return nil
}

// Clear fills the whole buffer with one intensity.
func (s *Session) Clear(id uint64, intensity uint8) error {
	return s.forward(id, "clear", func(h engine.Handle) error {
		return s.eng.Clear(h, intensity)
	})
}

// DrawPixel sets a single pixel. Coordinates outside the buffer are
// silently ignored: no write, no error.
func (s *Session) DrawPixel(id uint64, x, y int, intensity uint8) error {
	rec, err := s.reg.lookup(id)
	if err != nil {
		return err
	}
	if x < 0 || y < 0 || x >= rec.width || y >= rec.height {
		return nil
	}
	if err := s.eng.DrawPixel(rec.handle, x, y, intensity); err != nil {
		return fmt.Errorf("%w: pixel on buffer %d: %v", ErrCompute, id, err)
	}
	return nil
}

// DrawLine draws a line from (x0,y0) to (x1,y1), clipped to the buffer.
func (s *Session) DrawLine(id uint64, x0, y0, x1, y1 int, intensity uint8) error {
	return s.forward(id, "line", func(h engine.Handle) error {
		return s.eng.DrawLine(h, x0, y0, x1, y1, intensity)
	})
}

// DrawRect outlines a width x height rectangle anchored at (x,y).
func (s *Session) DrawRect(id uint64, x, y, width, height int, intensity uint8) error {
	return s.forward(id, "rect", func(h engine.Handle) error {
		return s.eng.DrawRect(h, x, y, width, height, intensity)
	})
}

// FillRect fills a width x height rectangle anchored at (x,y).
func (s *Session) FillRect(id uint64, x, y, width, height int, intensity uint8) error {
	return s.forward(id, "fill rect", func(h engine.Handle) error {
		return s.eng.FillRect(h, x, y, width, height, intensity)
	})
}

// DrawCircle outlines a circle of radius r centered at (cx,cy).
func (s *Session) DrawCircle(id uint64, cx, cy, r int, intensity uint8) error {
	return s.forward(id, "circle", func(h engine.Handle) error {
		return s.eng.DrawCircle(h, cx, cy, r, intensity)
	})
}

// FillCircle fills a circle of radius r centered at (cx,cy).
func (s *Session) FillCircle(id uint64, cx, cy, r int, intensity uint8) error {
	return s.forward(id, "fill circle", func(h engine.Handle) error {
		return s.eng.FillCircle(h, cx, cy, r, intensity)
	})
}

// Plasma renders an animated interference pattern. t advances the
// animation; scale controls the feature size and must be positive.
func (s *Session) Plasma(id uint64, t, scale float64) error {
	return s.forward(id, "plasma", func(h engine.Handle) error {
		return s.eng.Plasma(h, t, scale)
	})
}

// Mandelbrot renders the Mandelbrot set centered on (centerX, centerY)
// at the given zoom, using up to iterations escape steps per pixel.
func (s *Session) Mandelbrot(id uint64, zoom float64, iterations int, centerX, centerY float64) error {
	return s.forward(id, "mandelbrot", func(h engine.Handle) error {
		return s.eng.Mandelbrot(h, zoom, iterations, centerX, centerY)
	})
}

// Particles renders a deterministic particle burst under gravity and
// wind. count must be in [1, MaxParticles].
func (s *Session) Particles(id uint64, count int, gravity, wind float64) error {
	if count < 1 || count > MaxParticles {
		return fmt.Errorf("%w: particle count %d outside [1, %d]",
			ErrInvalidArgument, count, MaxParticles)
	}
	return s.forward(id, "particles", func(h engine.Handle) error {
		return s.eng.Particles(h, count, gravity, wind)
	})
}

// Wave renders a sine wave with the given amplitude and frequency,
// phase-shifted by t.
func (s *Session) Wave(id uint64, amplitude, frequency, t float64) error {
	return s.forward(id, "wave", func(h engine.Handle) error {
		return s.eng.Wave(h, amplitude, frequency, t)
	})
}

// Pixels reads the buffer back as a row-major intensity array of
// length width*height. The returned slice is the caller's to keep.
func (s *Session) Pixels(id uint64) ([]byte, error) {
	rec, err := s.reg.lookup(id)
	if err != nil {
		return nil, err
	}
	pix, err := s.eng.ReadPixels(rec.handle)
	if err != nil {
		return nil, fmt.Errorf("%w: read buffer %d: %v", ErrCompute, id, err)
	}
	return pix, nil
}

// Frame reads the buffer back and packs it with DefaultThreshold.
func (s *Session) Frame(id uint64) ([]byte, error) {
	return s.FrameThreshold(id, DefaultThreshold)
}

// FrameThreshold reads the buffer back and packs it into the
// page-addressed display layout. See Pack for the byte order.
func (s *Session) FrameThreshold(id uint64, threshold uint8) ([]byte, error) {
	rec, err := s.reg.lookup(id)
	if err != nil {
		return nil, err
	}
	pix, err := s.eng.ReadPixels(rec.handle)
	if err != nil {
		return nil, fmt.Errorf("%w: read buffer %d: %v", ErrCompute, id, err)
	}
	return Pack(pix, rec.width, rec.height, threshold)
}

// FrameSink consumes packed frames. Implementations carry the bytes to
// a display; the display package adapts TinyGo driver displays into
// sinks. lumen itself never performs hardware transfer.
type FrameSink interface {
	// DrawFrame receives a frame in the Pack byte layout along with
	// the pixel dimensions it was packed from.
	DrawFrame(frame []byte, width, height int) error
}

// Present packs the buffer with DefaultThreshold and hands the frame
// to sink. Sink errors return to the caller as-is.
func (s *Session) Present(id uint64, sink FrameSink) error {
	rec, err := s.reg.lookup(id)
	if err != nil {
		return err
	}
	pix, err := s.eng.ReadPixels(rec.handle)
	if err != nil {
		return fmt.Errorf("%w: read buffer %d: %v", ErrCompute, id, err)
	}
	frame, err := Pack(pix, rec.width, rec.height, DefaultThreshold)
	if err != nil {
		return err
	}
	return sink.DrawFrame(frame, rec.width, rec.height)
}
