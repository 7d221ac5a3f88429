// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/lumen/engine"
	"github.com/gogpu/lumen/engine/soft"
)

// DeviceHandle provides GPU device access from a host application.
//
// When a host already owns a GPU device (a gogpu app, or a gg canvas),
// pass it in with WithDevice and the engine reuses the shared device
// instead of creating its own instance. The provider must also expose
// direct HAL access (HalDevice/HalQueue) for the compute path.
type DeviceHandle = gpucontext.DeviceProvider

// gpuBuffer pairs an engine buffer with its HAL storage buffer.
// The host mirror inside the soft engine stays authoritative; storage
// holds one u32 per pixel for compute-kernel addressing.
type gpuBuffer struct {
	width   int
	height  int
	storage hal.Buffer // nil when the GPU path is down
}

// Engine is the wgpu compute engine.
//
// All buffer operations serialize on one mutex. Drawing primitives and
// iterative effects execute on the host mirror; plasma and wave dispatch
// GPU compute passes when the device is ready.
type Engine struct {
	mu sync.Mutex

	cpu *soft.Engine // host mirror, owns handles and rasters

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shaderModule hal.ShaderModule
	bindLayout   hal.BindGroupLayout
	pipeLayout   hal.PipelineLayout
	plasmaPipe   hal.ComputePipeline
	wavePipe     hal.ComputePipeline

	buffers map[engine.Handle]*gpuBuffer

	adapterName    string
	gpuReady       bool
	externalDevice bool // true when using a shared device (don't destroy on Close)
	closed         bool
}

var _ engine.Engine = (*Engine)(nil)

// Option configures engine construction.
type Option func(*options)

type options struct {
	device  DeviceHandle
	adapter string
}

// WithDevice makes the engine reuse a shared GPU device from the host
// application instead of creating its own Vulkan instance. The provider
// must expose HAL types via HalDevice/HalQueue.
func WithDevice(h DeviceHandle) Option {
	return func(o *options) {
		o.device = h
	}
}

// WithAdapterName prefers the adapter whose reported name contains the
// given substring (case-insensitive). Ignored with WithDevice, and when
// no adapter matches the usual discrete-first selection applies.
func WithAdapterName(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// New creates a wgpu engine. Construction fails only when no GPU device
// can be opened; prefer engine.New, which falls back to the software
// engine automatically.
func New(opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		cpu:     soft.New(),
		buffers: make(map[engine.Handle]*gpuBuffer),
	}

	var err error
	if o.device != nil {
		err = e.initShared(o.device)
	} else {
		err = e.initOwn(o.adapter)
	}
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func init() {
	engine.Register("wgpu", 100,
		func() (engine.Engine, error) { return New() },
		func() bool {
			_, ok := hal.GetBackend(gputypes.BackendVulkan)
			return ok
		})
}

// initOwn opens a dedicated Vulkan instance, adapter, and device.
// A non-empty prefer string selects the first adapter whose name
// contains it; otherwise discrete beats integrated beats anything.
func (e *Engine) initOwn(prefer string) error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("wgpu: create instance: %w", err)
	}
	e.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("wgpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	if prefer != "" {
		want := strings.ToLower(prefer)
		for i := range adapters {
			if strings.Contains(strings.ToLower(adapters[i].Info.Name), want) {
				selected = &adapters[i]
				break
			}
		}
	}
	if selected == nil {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
				adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("wgpu: open device: %w", err)
	}
	e.device = openDev.Device
	e.queue = openDev.Queue
	e.adapterName = selected.Info.Name

	if err := e.createPipelines(); err != nil {
		return err
	}
	e.gpuReady = true
	slogger().Info("wgpu: engine initialized (standalone)", "adapter", e.adapterName)
	return nil
}

// initShared adopts a device owned by the host application.
func (e *Engine) initShared(provider DeviceHandle) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu: device provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}

	e.device = device
	e.queue = queue
	e.externalDevice = true
	e.adapterName = "shared device"

	if err := e.createPipelines(); err != nil {
		return err
	}
	e.gpuReady = true
	slogger().Info("wgpu: engine initialized on shared device")
	return nil
}

// Name returns "wgpu".
func (e *Engine) Name() string { return "wgpu" }

// DeviceInfo reports the adapter name and the requested buffer-size limit
// as total memory. Vulkan exposes no multiprocessor count, so the
// generation fields stay zero.
func (e *Engine) DeviceInfo() (engine.DeviceInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.DeviceInfo{}, fmt.Errorf("wgpu: engine closed")
	}

	lim := gputypes.DefaultLimits()
	return engine.DeviceInfo{
		Name:        e.adapterName,
		TotalMemory: lim.MaxBufferSize,
	}, nil
}

// CreateBuffer allocates the host mirror and, when the GPU path is up,
// a matching HAL storage buffer.
func (e *Engine) CreateBuffer(width, height int) (engine.Handle, error) {
	h, err := e.cpu.CreateBuffer(width, height)
	if err != nil {
		return engine.InvalidHandle, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	gb := &gpuBuffer{width: width, height: height}
	if e.gpuReady {
		storage, err := e.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "lumen_pixels",
			Size:  uint64(width) * uint64(height) * 4,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			_ = e.cpu.DestroyBuffer(h)
			return engine.InvalidHandle, fmt.Errorf("wgpu: create storage buffer: %w", err)
		}
		gb.storage = storage
	}
	e.buffers[h] = gb
	return h, nil
}

// DestroyBuffer releases both sides of the buffer.
func (e *Engine) DestroyBuffer(h engine.Handle) error {
	e.mu.Lock()
	if gb, ok := e.buffers[h]; ok {
		if gb.storage != nil {
			e.device.DestroyBuffer(gb.storage)
		}
		delete(e.buffers, h)
	}
	e.mu.Unlock()

	return e.cpu.DestroyBuffer(h)
}

// Host-mirror operations. The mirror is authoritative for reads, so
// primitives never touch the GPU copy.

func (e *Engine) Clear(h engine.Handle, intensity uint8) error {
	return e.cpu.Clear(h, intensity)
}

func (e *Engine) DrawPixel(h engine.Handle, x, y int, intensity uint8) error {
	return e.cpu.DrawPixel(h, x, y, intensity)
}

func (e *Engine) DrawLine(h engine.Handle, x0, y0, x1, y1 int, intensity uint8) error {
	return e.cpu.DrawLine(h, x0, y0, x1, y1, intensity)
}

func (e *Engine) DrawRect(h engine.Handle, x, y, width, height int, intensity uint8) error {
	return e.cpu.DrawRect(h, x, y, width, height, intensity)
}

func (e *Engine) FillRect(h engine.Handle, x, y, width, height int, intensity uint8) error {
	return e.cpu.FillRect(h, x, y, width, height, intensity)
}

func (e *Engine) DrawCircle(h engine.Handle, cx, cy, r int, intensity uint8) error {
	return e.cpu.DrawCircle(h, cx, cy, r, intensity)
}

func (e *Engine) FillCircle(h engine.Handle, cx, cy, r int, intensity uint8) error {
	return e.cpu.FillCircle(h, cx, cy, r, intensity)
}

// Mandelbrot runs on the host mirror: the escape loop cannot be lowered
// through naga's SPIR-V path (loops only execute their first iteration).
func (e *Engine) Mandelbrot(h engine.Handle, zoom float64, iterations int, centerX, centerY float64) error {
	return e.cpu.Mandelbrot(h, zoom, iterations, centerX, centerY)
}

// Particles runs on the host mirror: per-particle trajectories are
// sequential and PRNG-driven, a poor fit for a compute pass.
func (e *Engine) Particles(h engine.Handle, count int, gravity, wind float64) error {
	return e.cpu.Particles(h, count, gravity, wind)
}

// ReadPixels serves from the host mirror, which effect dispatches keep
// current via fence-synchronized readback.
func (e *Engine) ReadPixels(h engine.Handle) ([]byte, error) {
	return e.cpu.ReadPixels(h)
}

// Close tears down pipelines, buffers, and (when owned) the device and
// instance. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	for h, gb := range e.buffers {
		if gb.storage != nil {
			e.device.DestroyBuffer(gb.storage)
		}
		delete(e.buffers, h)
	}
	e.destroyPipelines()

	if !e.externalDevice {
		if e.device != nil {
			e.device.Destroy()
		}
		if e.instance != nil {
			e.instance.Destroy()
		}
	}
	e.device = nil
	e.queue = nil
	e.instance = nil
	e.gpuReady = false

	return e.cpu.Close()
}

// SetLogger sets the logger for the engine and its dispatch path.
// Called by lumen.SetLogger to propagate logging configuration.
func (e *Engine) SetLogger(l *slog.Logger) {
	setLogger(l)
}
