// Package lumen renders monochrome frames on a compute engine and packs
// them into the page-oriented bitmap format used by small OLED panels.
//
// # Overview
//
// lumen manages short-lived GPU-backed pixel buffers for embedded-style
// graphics: a session allocates buffers on a compute engine, drives
// drawing and effect calls against them, reads intensity data back, and
// converts it to the packed 1-bit page/column layout that SSD1306-class
// display controllers consume.
//
// # Quick Start
//
//	import "github.com/gogpu/lumen"
//
//	// Open a session on the best available engine.
//	s, err := lumen.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	// Allocate a display-sized buffer and draw.
//	id, _ := s.CreateBuffer(lumen.DefaultWidth, lumen.DefaultHeight)
//	s.Clear(id, lumen.Black)
//	s.FillCircle(id, 64, 16, 10, lumen.White)
//
//	// Pack to display bytes (one byte per page/column cell).
//	frame, _ := s.Frame(id)
//
// # Engines
//
// Rendering happens on a pluggable compute engine. The software engine
// (engine/soft) is always available; the GPU engine (engine/wgpu)
// registers itself when imported and takes over on machines with a
// Vulkan adapter:
//
//	import _ "github.com/gogpu/lumen/engine/wgpu"
//
// # Architecture
//
// The library is organized into:
//   - Public API: Session, packing (Pack), timing (Measure)
//   - engine: the compute engine contract and registry
//   - engine/soft, engine/wgpu: engine implementations
//   - display: sinks that carry packed frames to displays
//
// # Coordinate System
//
// Uses standard raster coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Intensities are 8-bit, 0 (black) to 255 (white)
package lumen

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
