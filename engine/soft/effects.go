// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gogpu/lumen/engine"
)

// Plasma renders the classic layered-sine interference pattern.
// Four phase-shifted sines are averaged per pixel and mapped onto the
// full intensity range.
func (e *Engine) Plasma(h engine.Handle, t, scale float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	if scale <= 0 {
		return fmt.Errorf("soft: plasma: scale must be positive, got %g", scale)
	}

	for y := 0; y < b.height; y++ {
		fy := float64(y)
		for x := 0; x < b.width; x++ {
			fx := float64(x)
			v := math.Sin(fx/scale+t) +
				math.Sin(fy/scale+t) +
				math.Sin((fx+fy)/(2*scale)+t) +
				math.Sin(math.Hypot(fx, fy)/scale)
			// v in [-4,4] → [0,255]
			b.pix[y*b.width+x] = uint8((v + 4) * (255.0 / 8.0))
		}
	}
	return nil
}

// Mandelbrot shades each pixel by its escape iteration count. Points
// inside the set render black; faster escapes render brighter.
func (e *Engine) Mandelbrot(h engine.Handle, zoom float64, iterations int, centerX, centerY float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	if zoom <= 0 {
		return fmt.Errorf("soft: mandelbrot: zoom must be positive, got %g", zoom)
	}
	if iterations < 1 {
		return fmt.Errorf("soft: mandelbrot: iterations must be at least 1, got %d", iterations)
	}

	// The visible span of the real axis is 3.5/zoom, the classic
	// full-set framing at zoom 1.
	span := 3.5 / zoom
	step := span / float64(b.width)
	for y := 0; y < b.height; y++ {
		ci := centerY + (float64(y)-float64(b.height)/2)*step
		for x := 0; x < b.width; x++ {
			cr := centerX + (float64(x)-float64(b.width)/2)*step

			var zr, zi float64
			n := 0
			for ; n < iterations; n++ {
				zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
				if zr*zr+zi*zi > 4 {
					break
				}
			}
			if n == iterations {
				b.pix[y*b.width+x] = 0
			} else {
				b.pix[y*b.width+x] = uint8(255 - (255*n)/iterations)
			}
		}
	}
	return nil
}

// Particles clears the buffer and renders count particles advanced along
// deterministic ballistic arcs under gravity and wind. The trajectory
// PRNG is fixed-seeded so identical calls produce identical frames.
func (e *Engine) Particles(h engine.Handle, count int, gravity, wind float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("soft: particles: count must not be negative, got %d", count)
	}

	for i := range b.pix {
		b.pix[i] = 0
	}

	rng := rand.New(rand.NewSource(42))
	w, ht := float64(b.width), float64(b.height)
	for i := 0; i < count; i++ {
		// Launch point along the bottom edge, upward velocity.
		px := rng.Float64() * w
		py := ht - 1
		vx := (rng.Float64() - 0.5) * 2
		vy := -(1 + rng.Float64()*2)
		life := 8 + rng.Intn(24)

		for step := 0; step < life; step++ {
			vx += wind * 0.1
			vy += gravity * 0.1
			px += vx
			py += vy
			if px < 0 || px >= w || py < 0 || py >= ht {
				break
			}
			// Older particles fade.
			fade := 255 - (step*255)/life
			b.set(int(px), int(py), uint8(fade))
		}
	}
	return nil
}

// Wave renders a sine curve across the width with bright crest pixels,
// a mid-intensity fill below the curve, and black above it.
func (e *Engine) Wave(h engine.Handle, amplitude, frequency, t float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}

	mid := float64(b.height) / 2
	for x := 0; x < b.width; x++ {
		crest := mid + amplitude*math.Sin(frequency*float64(x)+t)
		for y := 0; y < b.height; y++ {
			d := float64(y) - crest
			var v uint8
			switch {
			case math.Abs(d) < 1.5:
				v = 255
			case d > 0:
				v = 96
			default:
				v = 0
			}
			b.pix[y*b.width+x] = v
		}
	}
	return nil
}
