// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package soft provides the pure-Go reference compute engine.
//
// It keeps every buffer in host memory and runs all drawing and effect
// kernels on the CPU. It is always available and registers itself at
// priority 10, so lumen sessions fall back to it when no GPU engine is
// imported or usable.
package soft

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/lumen/engine"
)

// DefaultBudgetMB is the default buffer memory budget in mebibytes.
// One intensity buffer costs width*height bytes, so the default admits
// well over a thousand full-size (1024×1024) buffers.
const DefaultBudgetMB = 256

// ErrBudgetExceeded is returned by CreateBuffer when the allocation would
// push tracked buffer memory past the engine's budget.
var ErrBudgetExceeded = errors.New("soft: memory budget exceeded")

// errClosed is returned by operations invoked after Close.
var errClosed = errors.New("soft: engine closed")

// buffer is one tracked intensity raster.
type buffer struct {
	width  int
	height int
	pix    []byte // row-major, len == width*height
}

func (b *buffer) set(x, y int, v uint8) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.pix[y*b.width+x] = v
}

// Engine is the software compute engine. It is safe for concurrent use:
// all buffer operations serialize on one mutex.
type Engine struct {
	mu      sync.Mutex
	buffers map[engine.Handle]*buffer
	nextID  atomic.Uint64

	budget uint64 // bytes
	used   uint64 // bytes currently tracked
	closed bool
}

var _ engine.Engine = (*Engine)(nil)

// Option configures a soft engine.
type Option func(*Engine)

// WithBudgetMB overrides the buffer memory budget. Values below 1 MB are
// raised to 1 MB.
func WithBudgetMB(mb int) Option {
	return func(e *Engine) {
		if mb < 1 {
			mb = 1
		}
		e.budget = uint64(mb) * 1024 * 1024
	}
}

// New creates a software engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		buffers: make(map[engine.Handle]*buffer),
		budget:  DefaultBudgetMB * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func init() {
	engine.Register("soft", 10, func() (engine.Engine, error) {
		return New(), nil
	}, nil)
}

// Name returns "soft".
func (e *Engine) Name() string { return "soft" }

// DeviceInfo reports the host as the compute device: one multiprocessor
// per logical CPU and the configured budget as total memory.
func (e *Engine) DeviceInfo() (engine.DeviceInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.DeviceInfo{}, errClosed
	}
	return engine.DeviceInfo{
		Name:            "software",
		Major:           1,
		Minor:           0,
		MultiProcessors: runtime.NumCPU(),
		TotalMemory:     e.budget,
	}, nil
}

// CreateBuffer allocates a zeroed width×height raster.
func (e *Engine) CreateBuffer(width, height int) (engine.Handle, error) {
	if width <= 0 || height <= 0 {
		return engine.InvalidHandle, fmt.Errorf("soft: buffer size %dx%d must be positive", width, height)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.InvalidHandle, errClosed
	}

	size := uint64(width) * uint64(height)
	if e.used+size > e.budget {
		return engine.InvalidHandle, fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			ErrBudgetExceeded, size, e.used, e.budget)
	}

	h := engine.Handle(e.nextID.Add(1))
	e.buffers[h] = &buffer{
		width:  width,
		height: height,
		pix:    make([]byte, size),
	}
	e.used += size
	return h, nil
}

// DestroyBuffer releases the raster behind h.
func (e *Engine) DestroyBuffer(h engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.buffers[h]
	if !ok {
		return fmt.Errorf("%w: %d", engine.ErrUnknownHandle, h)
	}
	delete(e.buffers, h)
	e.used -= uint64(len(b.pix))
	return nil
}

// lookup resolves a handle. Must be called with the mutex held.
func (e *Engine) lookup(h engine.Handle) (*buffer, error) {
	if e.closed {
		return nil, errClosed
	}
	b, ok := e.buffers[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", engine.ErrUnknownHandle, h)
	}
	return b, nil
}

// Clear sets every pixel to intensity.
func (e *Engine) Clear(h engine.Handle, intensity uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	for i := range b.pix {
		b.pix[i] = intensity
	}
	return nil
}

// DrawPixel sets one pixel, clipping silently.
func (e *Engine) DrawPixel(h engine.Handle, x, y int, intensity uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	b.set(x, y, intensity)
	return nil
}

// DrawLine draws a line from (x0,y0) to (x1,y1) inclusive using
// Bresenham's algorithm.
func (e *Engine) DrawLine(h engine.Handle, x0, y0, x1, y1 int, intensity uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	errAcc := dx + dy
	for {
		b.set(x0, y0, intensity)
		if x0 == x1 && y0 == y1 {
			return nil
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			y0 += sy
		}
	}
}

// DrawRect outlines the rectangle with top-left (x,y).
func (e *Engine) DrawRect(h engine.Handle, x, y, width, height int, intensity uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return nil
	}
	for i := 0; i < width; i++ {
		b.set(x+i, y, intensity)
		b.set(x+i, y+height-1, intensity)
	}
	for j := 0; j < height; j++ {
		b.set(x, y+j, intensity)
		b.set(x+width-1, y+j, intensity)
	}
	return nil
}

// FillRect fills the rectangle with top-left (x,y).
func (e *Engine) FillRect(h engine.Handle, x, y, width, height int, intensity uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+width, b.width), min(y+height, b.height)
	for j := y0; j < y1; j++ {
		row := b.pix[j*b.width : j*b.width+b.width]
		for i := x0; i < x1; i++ {
			row[i] = intensity
		}
	}
	return nil
}

// DrawCircle outlines a circle using the midpoint algorithm.
func (e *Engine) DrawCircle(h engine.Handle, cx, cy, r int, intensity uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	if r < 0 {
		return nil
	}

	x, y := r, 0
	d := 1 - r
	for x >= y {
		b.set(cx+x, cy+y, intensity)
		b.set(cx+y, cy+x, intensity)
		b.set(cx-y, cy+x, intensity)
		b.set(cx-x, cy+y, intensity)
		b.set(cx-x, cy-y, intensity)
		b.set(cx-y, cy-x, intensity)
		b.set(cx+y, cy-x, intensity)
		b.set(cx+x, cy-y, intensity)
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
	return nil
}

// FillCircle fills a circle by scanning the bounding square.
func (e *Engine) FillCircle(h engine.Handle, cx, cy, r int, intensity uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	if r < 0 {
		return nil
	}
	rr := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= rr {
				b.set(cx+dx, cy+dy, intensity)
			}
		}
	}
	return nil
}

// WritePixels replaces the raster behind h. The source length must be
// exactly width*height. Not part of the engine.Engine contract: the wgpu
// engine uses it to land GPU readbacks in its host mirror.
func (e *Engine) WritePixels(h engine.Handle, pix []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return err
	}
	if len(pix) != len(b.pix) {
		return fmt.Errorf("soft: pixel data length %d does not match %dx%d buffer",
			len(pix), b.width, b.height)
	}
	copy(b.pix, pix)
	return nil
}

// ReadPixels copies the raster into a fresh slice.
func (e *Engine) ReadPixels(h engine.Handle) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b.pix))
	copy(out, b.pix)
	return out, nil
}

// Close drops every tracked buffer. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.buffers = nil
	e.used = 0
	e.closed = true
	return nil
}

// Stats is a point-in-time snapshot of buffer memory accounting.
type Stats struct {
	// BudgetBytes is the configured memory budget.
	BudgetBytes uint64
	// UsedBytes is the memory held by live buffers.
	UsedBytes uint64
	// Buffers is the number of live buffers.
	Buffers int
	// Utilization is UsedBytes/BudgetBytes in [0,1].
	Utilization float64
}

// Stats returns current memory accounting.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{
		BudgetBytes: e.budget,
		UsedBytes:   e.used,
		Buffers:     len(e.buffers),
	}
	if e.budget > 0 {
		s.Utilization = float64(e.used) / float64(e.budget)
	}
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
