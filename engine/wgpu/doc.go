// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides the GPU compute engine over gogpu/wgpu.
//
// Import it for registration:
//
//	import _ "github.com/gogpu/lumen/engine/wgpu"
//
// The engine registers at priority 100, so lumen sessions prefer it over
// the software engine whenever a Vulkan adapter is present. Buffers live
// as HAL storage buffers with a host-side mirror; full-frame generator
// kernels (plasma, wave) dispatch on the GPU with fence-synchronized
// readback, while iterative kernels run on the mirror — naga's SPIR-V
// loop lowering is not reliable enough to ship loop-carrying shaders.
//
// Building with the nogpu tag strips the engine and its Vulkan
// dependency chain; the import then registers nothing and sessions fall
// back to the software engine.
package wgpu
