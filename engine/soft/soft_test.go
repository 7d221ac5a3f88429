// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/lumen/engine"
)

func newBuffer(t *testing.T, e *Engine, w, h int) engine.Handle {
	t.Helper()
	handle, err := e.CreateBuffer(w, h)
	if err != nil {
		t.Fatalf("CreateBuffer(%d, %d) error: %v", w, h, err)
	}
	return handle
}

func pixels(t *testing.T, e *Engine, h engine.Handle) []byte {
	t.Helper()
	pix, err := e.ReadPixels(h)
	if err != nil {
		t.Fatalf("ReadPixels error: %v", err)
	}
	return pix
}

func TestRegistered(t *testing.T) {
	if _, ok := engine.Get("soft"); !ok {
		t.Fatal("soft engine not registered")
	}
}

func TestCreateBufferZeroed(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 128, 32)
	pix := pixels(t, e, h)
	if len(pix) != 128*32 {
		t.Fatalf("len(pix) = %d, want %d", len(pix), 128*32)
	}
	for i, v := range pix {
		if v != 0 {
			t.Fatalf("pix[%d] = %d, want 0 in fresh buffer", i, v)
		}
	}
}

func TestCreateBufferInvalidSize(t *testing.T) {
	e := New()
	defer e.Close()

	for _, dims := range [][2]int{{0, 32}, {128, 0}, {-1, 32}} {
		if _, err := e.CreateBuffer(dims[0], dims[1]); err == nil {
			t.Errorf("CreateBuffer(%d, %d) succeeded, want error", dims[0], dims[1])
		}
	}
}

func TestHandlesNeverReused(t *testing.T) {
	e := New()
	defer e.Close()

	h1 := newBuffer(t, e, 8, 8)
	if err := e.DestroyBuffer(h1); err != nil {
		t.Fatalf("DestroyBuffer error: %v", err)
	}
	h2 := newBuffer(t, e, 8, 8)
	if h2 <= h1 {
		t.Errorf("handle %d after destroying %d, want strictly greater", h2, h1)
	}
}

func TestDestroyUnknownHandle(t *testing.T) {
	e := New()
	defer e.Close()

	err := e.DestroyBuffer(engine.Handle(999))
	if !errors.Is(err, engine.ErrUnknownHandle) {
		t.Errorf("error = %v, want ErrUnknownHandle", err)
	}
}

func TestBudget(t *testing.T) {
	e := New(WithBudgetMB(1))
	defer e.Close()

	// 1024×1024 = 1 MiB exactly fills the budget.
	h := newBuffer(t, e, 1024, 1024)

	if _, err := e.CreateBuffer(1, 1); !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("over-budget error = %v, want ErrBudgetExceeded", err)
	}

	// Releasing frees budget for new allocations.
	if err := e.DestroyBuffer(h); err != nil {
		t.Fatalf("DestroyBuffer error: %v", err)
	}
	newBuffer(t, e, 64, 64)
}

func TestStats(t *testing.T) {
	e := New()
	defer e.Close()

	newBuffer(t, e, 100, 10)
	s := e.Stats()
	if s.Buffers != 1 {
		t.Errorf("Stats.Buffers = %d, want 1", s.Buffers)
	}
	if s.UsedBytes != 1000 {
		t.Errorf("Stats.UsedBytes = %d, want 1000", s.UsedBytes)
	}
	if s.Utilization <= 0 {
		t.Errorf("Stats.Utilization = %g, want > 0", s.Utilization)
	}
}

func TestClear(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 16, 16)
	if err := e.Clear(h, 200); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	for i, v := range pixels(t, e, h) {
		if v != 200 {
			t.Fatalf("pix[%d] = %d, want 200", i, v)
		}
	}
}

func TestDrawPixel(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 16, 8)
	if err := e.DrawPixel(h, 3, 2, 255); err != nil {
		t.Fatalf("DrawPixel error: %v", err)
	}
	pix := pixels(t, e, h)
	if pix[2*16+3] != 255 {
		t.Error("pixel (3,2) not set")
	}

	// Out-of-bounds coordinates clip silently.
	for _, pt := range [][2]int{{-1, 0}, {16, 0}, {0, -1}, {0, 8}} {
		if err := e.DrawPixel(h, pt[0], pt[1], 255); err != nil {
			t.Errorf("DrawPixel(%d, %d) error: %v, want silent clip", pt[0], pt[1], err)
		}
	}
}

func TestDrawLine(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 8, 8)
	if err := e.DrawLine(h, 0, 0, 7, 7, 255); err != nil {
		t.Fatalf("DrawLine error: %v", err)
	}
	pix := pixels(t, e, h)
	for i := 0; i < 8; i++ {
		if pix[i*8+i] != 255 {
			t.Errorf("diagonal pixel (%d,%d) not set", i, i)
		}
	}
}

func TestDrawLineHorizontal(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 8, 4)
	if err := e.DrawLine(h, 7, 2, 0, 2, 128); err != nil {
		t.Fatalf("DrawLine error: %v", err)
	}
	pix := pixels(t, e, h)
	for x := 0; x < 8; x++ {
		if pix[2*8+x] != 128 {
			t.Errorf("pixel (%d,2) = %d, want 128", x, pix[2*8+x])
		}
	}
}

func TestFillRectClips(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 8, 8)
	// Rect extends past every edge; only the intersection fills.
	if err := e.FillRect(h, -2, -2, 20, 20, 50); err != nil {
		t.Fatalf("FillRect error: %v", err)
	}
	for i, v := range pixels(t, e, h) {
		if v != 50 {
			t.Fatalf("pix[%d] = %d, want 50", i, v)
		}
	}
}

func TestDrawRectOutlineOnly(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 8, 8)
	if err := e.DrawRect(h, 1, 1, 6, 6, 255); err != nil {
		t.Fatalf("DrawRect error: %v", err)
	}
	pix := pixels(t, e, h)
	if pix[1*8+1] != 255 || pix[6*8+6] != 255 {
		t.Error("rect corners not set")
	}
	if pix[3*8+3] != 0 {
		t.Error("rect interior set, want outline only")
	}
}

func TestCircle(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 16, 16)
	if err := e.DrawCircle(h, 8, 8, 5, 255); err != nil {
		t.Fatalf("DrawCircle error: %v", err)
	}
	pix := pixels(t, e, h)
	// Cardinal points lie exactly on the circle.
	for _, pt := range [][2]int{{13, 8}, {3, 8}, {8, 13}, {8, 3}} {
		if pix[pt[1]*16+pt[0]] != 255 {
			t.Errorf("circle point (%d,%d) not set", pt[0], pt[1])
		}
	}
	if pix[8*16+8] != 0 {
		t.Error("circle center set, want outline only")
	}
}

func TestFillCircle(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 16, 16)
	if err := e.FillCircle(h, 8, 8, 5, 255); err != nil {
		t.Fatalf("FillCircle error: %v", err)
	}
	pix := pixels(t, e, h)
	if pix[8*16+8] != 255 {
		t.Error("filled circle center not set")
	}
	if pix[0] != 0 {
		t.Error("corner outside circle set")
	}
}

func TestPlasma(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 32, 32)
	if err := e.Plasma(h, 0.5, 8); err != nil {
		t.Fatalf("Plasma error: %v", err)
	}
	pix := pixels(t, e, h)

	varied := false
	for _, v := range pix {
		if v != pix[0] {
			varied = true
			break
		}
	}
	if !varied {
		t.Error("plasma produced a flat frame")
	}

	// Deterministic for identical parameters.
	h2 := newBuffer(t, e, 32, 32)
	if err := e.Plasma(h2, 0.5, 8); err != nil {
		t.Fatalf("Plasma error: %v", err)
	}
	if !bytes.Equal(pix, pixels(t, e, h2)) {
		t.Error("plasma frames differ for identical parameters")
	}
}

func TestPlasmaInvalidScale(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 8, 8)
	if err := e.Plasma(h, 0, 0); err == nil {
		t.Error("Plasma with scale 0 succeeded, want error")
	}
}

func TestMandelbrot(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 64, 64)
	if err := e.Mandelbrot(h, 1, 32, -0.5, 0); err != nil {
		t.Fatalf("Mandelbrot error: %v", err)
	}
	pix := pixels(t, e, h)

	// The frame center maps to (-0.5, 0), inside the set: black.
	if v := pix[32*64+32]; v != 0 {
		t.Errorf("in-set pixel = %d, want 0", v)
	}
	// The left edge maps far outside the set: bright fast escape.
	if v := pix[32*64+0]; v < 200 {
		t.Errorf("fast-escape pixel = %d, want >= 200", v)
	}
}

func TestMandelbrotInvalidArgs(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 8, 8)
	if err := e.Mandelbrot(h, 0, 16, 0, 0); err == nil {
		t.Error("zoom 0 succeeded, want error")
	}
	if err := e.Mandelbrot(h, 1, 0, 0, 0); err == nil {
		t.Error("iterations 0 succeeded, want error")
	}
}

func TestParticlesDeterministic(t *testing.T) {
	e := New()
	defer e.Close()

	h1 := newBuffer(t, e, 64, 32)
	h2 := newBuffer(t, e, 64, 32)
	if err := e.Particles(h1, 50, 0.5, 0.1); err != nil {
		t.Fatalf("Particles error: %v", err)
	}
	if err := e.Particles(h2, 50, 0.5, 0.1); err != nil {
		t.Fatalf("Particles error: %v", err)
	}
	if !bytes.Equal(pixels(t, e, h1), pixels(t, e, h2)) {
		t.Error("particle frames differ for identical parameters")
	}
}

func TestParticlesZeroCountClears(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 16, 16)
	if err := e.Clear(h, 255); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if err := e.Particles(h, 0, 1, 0); err != nil {
		t.Fatalf("Particles error: %v", err)
	}
	for i, v := range pixels(t, e, h) {
		if v != 0 {
			t.Fatalf("pix[%d] = %d, want 0 after zero-count particles", i, v)
		}
	}
}

func TestWave(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 64, 32)
	if err := e.Wave(h, 8, 0.2, 0); err != nil {
		t.Fatalf("Wave error: %v", err)
	}
	pix := pixels(t, e, h)

	crest := 0
	for _, v := range pix {
		if v == 255 {
			crest++
		}
	}
	if crest < 64 {
		t.Errorf("crest pixels = %d, want at least one per column", crest)
	}
}

func TestReadPixelsCopies(t *testing.T) {
	e := New()
	defer e.Close()

	h := newBuffer(t, e, 4, 4)
	pix := pixels(t, e, h)
	pix[0] = 99

	again := pixels(t, e, h)
	if again[0] != 0 {
		t.Error("ReadPixels returned a live reference, want a copy")
	}
}

func TestUnknownHandleOperations(t *testing.T) {
	e := New()
	defer e.Close()

	bogus := engine.Handle(12345)
	if err := e.Clear(bogus, 0); !errors.Is(err, engine.ErrUnknownHandle) {
		t.Errorf("Clear error = %v, want ErrUnknownHandle", err)
	}
	if _, err := e.ReadPixels(bogus); !errors.Is(err, engine.ErrUnknownHandle) {
		t.Errorf("ReadPixels error = %v, want ErrUnknownHandle", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	e := New()
	h := newBuffer(t, e, 8, 8)

	if err := e.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	if _, err := e.ReadPixels(h); err == nil {
		t.Error("ReadPixels after Close succeeded, want error")
	}
	if _, err := e.CreateBuffer(8, 8); err == nil {
		t.Error("CreateBuffer after Close succeeded, want error")
	}
}

func TestDeviceInfo(t *testing.T) {
	e := New()
	defer e.Close()

	info, err := e.DeviceInfo()
	if err != nil {
		t.Fatalf("DeviceInfo error: %v", err)
	}
	if info.Name != "software" {
		t.Errorf("Name = %q, want software", info.Name)
	}
	if info.MultiProcessors < 1 {
		t.Errorf("MultiProcessors = %d, want >= 1", info.MultiProcessors)
	}
	if info.TotalMemory == 0 {
		t.Error("TotalMemory = 0, want configured budget")
	}
}
