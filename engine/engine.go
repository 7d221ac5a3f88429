// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package engine defines the compute-engine contract consumed by lumen.
//
// An Engine owns device resources and executes drawing and effect kernels
// against opaque buffer handles. Implementations register themselves with
// this package's registry (see Register); lumen selects one at session
// construction, either by name or by priority.
//
// Two implementations ship with lumen:
//   - engine/soft: pure-Go reference engine, always available.
//   - engine/wgpu: GPU engine over gogpu/wgpu, opt-in via blank import.
package engine

import "fmt"

// Handle identifies an engine-owned pixel buffer. Handles are opaque:
// only the engine that issued a handle can interpret it. The zero value
// is never a valid handle.
type Handle uint64

// InvalidHandle is the zero Handle, returned alongside errors.
const InvalidHandle Handle = 0

// IsValid reports whether h could refer to a live buffer.
func (h Handle) IsValid() bool { return h != InvalidHandle }

// DeviceInfo is a static snapshot of engine device capabilities,
// queried once per session and cached by the caller.
type DeviceInfo struct {
	// Name is the device name (e.g., "NVIDIA GeForce RTX 3080", "software").
	Name string

	// Major and Minor identify the device's compute generation.
	// Engines that cannot determine a generation report 0.0.
	Major int
	Minor int

	// MultiProcessors is the number of parallel compute units.
	// Zero when the backing API does not expose a count.
	MultiProcessors int

	// TotalMemory is the device memory budget in bytes.
	TotalMemory uint64
}

// Cores returns the derived total core count: MultiProcessors scaled by
// the per-multiprocessor core count of the device's compute generation.
// Returns 0 when the generation is unknown.
func (i DeviceInfo) Cores() int {
	return i.MultiProcessors * coresPerMP(i.Major)
}

// MemoryMB returns TotalMemory in whole mebibytes.
func (i DeviceInfo) MemoryMB() uint64 {
	return i.TotalMemory / (1024 * 1024)
}

// String returns a human-readable device summary.
func (i DeviceInfo) String() string {
	return fmt.Sprintf("%s (compute %d.%d, %d MP, %d MB)",
		i.Name, i.Major, i.Minor, i.MultiProcessors, i.MemoryMB())
}

// coresPerMP maps known compute generations to cores per multiprocessor.
func coresPerMP(major int) int {
	switch major {
	case 3:
		return 192
	case 5:
		return 128
	case 6, 7, 8:
		return 64
	case 9:
		return 128
	default:
		return 0
	}
}

// Engine executes buffer, drawing, and effect operations. All methods are
// synchronous and blocking; the engine is responsible for any internal
// concurrency. Methods that take a Handle fail with an error wrapping
// ErrUnknownHandle when the handle does not refer to a live buffer.
//
// Intensity values are 8-bit grayscale: 0 is black, 255 is white.
// Coordinates outside the buffer are clipped by the engine; only lumen's
// single-pixel bounds policy is decided above this interface.
type Engine interface {
	// Name returns the engine's registered name (e.g., "soft", "wgpu").
	Name() string

	// DeviceInfo queries static device capabilities.
	DeviceInfo() (DeviceInfo, error)

	// CreateBuffer allocates a width×height intensity buffer and returns
	// its handle. The buffer contents start at intensity 0.
	CreateBuffer(width, height int) (Handle, error)

	// DestroyBuffer releases the buffer behind h. Destroying an unknown
	// handle is an error (callers own idempotency).
	DestroyBuffer(h Handle) error

	// Clear sets every pixel to the given intensity.
	Clear(h Handle, intensity uint8) error

	// DrawPixel sets a single pixel. Out-of-bounds coordinates are
	// silently clipped.
	DrawPixel(h Handle, x, y int, intensity uint8) error

	// DrawLine draws a line from (x0,y0) to (x1,y1) inclusive.
	DrawLine(h Handle, x0, y0, x1, y1 int, intensity uint8) error

	// DrawRect outlines the rectangle with top-left (x,y).
	DrawRect(h Handle, x, y, width, height int, intensity uint8) error

	// FillRect fills the rectangle with top-left (x,y).
	FillRect(h Handle, x, y, width, height int, intensity uint8) error

	// DrawCircle outlines a circle centered at (cx,cy).
	DrawCircle(h Handle, cx, cy, r int, intensity uint8) error

	// FillCircle fills a circle centered at (cx,cy).
	FillCircle(h Handle, cx, cy, r int, intensity uint8) error

	// Plasma renders an animated interference pattern at time t.
	// Larger scale stretches the pattern.
	Plasma(h Handle, t, scale float64) error

	// Mandelbrot renders the Mandelbrot set around (centerX, centerY)
	// at the given zoom, shading by escape iteration count.
	Mandelbrot(h Handle, zoom float64, iterations int, centerX, centerY float64) error

	// Particles renders count ballistic particles under gravity and wind.
	// The caller validates count bounds; engines render what they are given.
	Particles(h Handle, count int, gravity, wind float64) error

	// Wave renders horizontal interference bands displaced by a sine wave
	// of the given amplitude and frequency at time t.
	Wave(h Handle, amplitude, frequency, t float64) error

	// ReadPixels copies the buffer contents into a fresh row-major
	// intensity slice of length width*height.
	ReadPixels(h Handle) ([]byte, error)

	// Close releases the engine's device resources. Buffers still alive
	// are torn down with it. Close is idempotent.
	Close() error
}
