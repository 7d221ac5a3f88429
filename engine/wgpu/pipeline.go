// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/lumen/engine"
)

//go:embed shaders/effects.wgsl
var effectsShaderWGSL string

// paramsSize is the byte size of the Params uniform in effects.wgsl.
const paramsSize = 32

// fenceTimeout bounds how long an effect dispatch waits for the GPU.
const fenceTimeout = 5 * time.Second

// createPipelines compiles the effect shader and builds one compute
// pipeline per kernel. Called once during engine construction.
func (e *Engine) createPipelines() error {
	spirv, err := compileToSPIRV(effectsShaderWGSL)
	if err != nil {
		return fmt.Errorf("wgpu: compile effects shader: %w", err)
	}

	shaderModule, err := e.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "lumen_effects",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create shader module: %w", err)
	}
	e.shaderModule = shaderModule

	bindLayout, err := e.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "lumen_effects_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	e.bindLayout = bindLayout

	pipeLayout, err := e.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "lumen_effects_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{e.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	e.pipeLayout = pipeLayout

	plasmaPipe, err := e.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "lumen_plasma",
		Layout:  e.pipeLayout,
		Compute: hal.ComputeState{Module: e.shaderModule, EntryPoint: "plasma_main"},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create plasma pipeline: %w", err)
	}
	e.plasmaPipe = plasmaPipe

	wavePipe, err := e.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "lumen_wave",
		Layout:  e.pipeLayout,
		Compute: hal.ComputeState{Module: e.shaderModule, EntryPoint: "wave_main"},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create wave pipeline: %w", err)
	}
	e.wavePipe = wavePipe

	return nil
}

// destroyPipelines releases shader resources in reverse creation order.
// Must be called with the mutex held.
func (e *Engine) destroyPipelines() {
	if e.device == nil {
		return
	}
	if e.wavePipe != nil {
		e.device.DestroyComputePipeline(e.wavePipe)
		e.wavePipe = nil
	}
	if e.plasmaPipe != nil {
		e.device.DestroyComputePipeline(e.plasmaPipe)
		e.plasmaPipe = nil
	}
	if e.pipeLayout != nil {
		e.device.DestroyPipelineLayout(e.pipeLayout)
		e.pipeLayout = nil
	}
	if e.bindLayout != nil {
		e.device.DestroyBindGroupLayout(e.bindLayout)
		e.bindLayout = nil
	}
	if e.shaderModule != nil {
		e.device.DestroyShaderModule(e.shaderModule)
		e.shaderModule = nil
	}
}

// compileToSPIRV compiles WGSL source through naga. SPIR-V words are
// little-endian 32-bit.
func compileToSPIRV(wgsl string) ([]uint32, error) {
	raw, err := naga.Compile(wgsl)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = uint32(raw[i*4]) |
			uint32(raw[i*4+1])<<8 |
			uint32(raw[i*4+2])<<16 |
			uint32(raw[i*4+3])<<24
	}
	return words, nil
}

// paramsBytes serializes the Params uniform (see effects.wgsl).
func paramsBytes(width, height uint32, p0, p1, p2, p3 float32) []byte {
	buf := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(buf[0:], width)
	binary.LittleEndian.PutUint32(buf[4:], height)
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(p0))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(p1))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(p2))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(p3))
	return buf
}

// Plasma dispatches the plasma kernel on the GPU when ready, falling
// back to the host mirror otherwise. The readback keeps the mirror
// authoritative either way.
func (e *Engine) Plasma(h engine.Handle, t, scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("wgpu: plasma: scale must be positive, got %g", scale)
	}

	e.mu.Lock()
	gb := e.buffers[h]
	if !e.gpuReady || gb == nil || gb.storage == nil {
		e.mu.Unlock()
		return e.cpu.Plasma(h, t, scale)
	}
	params := paramsBytes(uint32(gb.width), uint32(gb.height), float32(t), float32(scale), 0, 0)
	pix, err := e.dispatchLocked(e.plasmaPipe, params, gb)
	e.mu.Unlock()

	if err != nil {
		// GPU trouble is not fatal: render on the mirror instead.
		slogger().Warn("wgpu: plasma dispatch failed, using mirror", "error", err)
		return e.cpu.Plasma(h, t, scale)
	}
	return e.cpu.WritePixels(h, pix)
}

// Wave dispatches the wave kernel on the GPU when ready, falling back
// to the host mirror otherwise.
func (e *Engine) Wave(h engine.Handle, amplitude, frequency, t float64) error {
	e.mu.Lock()
	gb := e.buffers[h]
	if !e.gpuReady || gb == nil || gb.storage == nil {
		e.mu.Unlock()
		return e.cpu.Wave(h, amplitude, frequency, t)
	}
	params := paramsBytes(uint32(gb.width), uint32(gb.height), float32(amplitude), float32(frequency), float32(t), 0)
	pix, err := e.dispatchLocked(e.wavePipe, params, gb)
	e.mu.Unlock()

	if err != nil {
		slogger().Warn("wgpu: wave dispatch failed, using mirror", "error", err)
		return e.cpu.Wave(h, amplitude, frequency, t)
	}
	return e.cpu.WritePixels(h, pix)
}

// dispatchLocked runs one compute pass over the buffer's storage and
// reads the result back through a staging buffer: encode pass, copy to
// staging, submit with a fence, wait, read. Returns the intensity bytes.
// Must be called with the mutex held.
func (e *Engine) dispatchLocked(pipe hal.ComputePipeline, params []byte, gb *gpuBuffer) ([]byte, error) {
	pixelBufSize := uint64(gb.width) * uint64(gb.height) * 4

	uniformBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "lumen_params",
		Size:  paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create params buffer: %w", err)
	}
	defer e.device.DestroyBuffer(uniformBuf)
	e.queue.WriteBuffer(uniformBuf, 0, params)

	stagingBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "lumen_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer e.device.DestroyBuffer(stagingBuf)

	bindGroup, err := e.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "lumen_effects_bind",
		Layout: e.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: gb.storage.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer e.device.DestroyBindGroup(bindGroup)

	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "lumen_effect_encoder"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("lumen_effect"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "lumen_effect_pass"})
	pass.SetPipeline(pipe)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch((uint32(gb.width)+7)/8, (uint32(gb.height)+7)/8, 1)
	pass.End()

	encoder.CopyBufferToBuffer(gb.storage, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)

	fence, err := e.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer e.device.DestroyFence(fence)

	if err := e.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("wgpu: submit: %w", err)
	}
	fenceOK, err := e.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	if !fenceOK {
		return nil, fmt.Errorf("wgpu: wait for GPU: timeout after %v", fenceTimeout)
	}

	readback := make([]byte, pixelBufSize)
	if err := e.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}

	// One u32 per pixel, little-endian: intensity is the low byte.
	pix := make([]byte, gb.width*gb.height)
	for i := range pix {
		pix[i] = readback[i*4]
	}
	return pix, nil
}
