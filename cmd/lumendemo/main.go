// Command lumendemo renders compute effects into an offscreen buffer,
// benchmarks them, and writes the final frame as a PNG.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gogpu/lumen"
	"github.com/gogpu/lumen/display"

	// GPU engine, preferred automatically when a Vulkan adapter exists.
	_ "github.com/gogpu/lumen/engine/wgpu"
)

func main() {
	var (
		width      = flag.Int("width", lumen.DefaultWidth, "buffer width")
		height     = flag.Int("height", lumen.DefaultHeight, "buffer height")
		engineName = flag.String("engine", "", "engine name (empty = best available)")
		effect     = flag.String("effect", "plasma", "effect: plasma, mandelbrot, particles, wave, shapes")
		iterations = flag.Int("bench", 30, "benchmark iterations (0 = skip)")
		label      = flag.String("label", "", "text drawn over the frame")
		output     = flag.String("output", "demo.png", "output file")
	)
	flag.Parse()

	var opts []lumen.Option
	if *engineName != "" {
		opts = append(opts, lumen.WithEngine(*engineName))
	}
	s, err := lumen.New(opts...)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	defer func() { _ = s.Close() }()

	log.Printf("Engine %s: %s", s.Engine().Name(), s.DeviceInfo())

	id, err := s.CreateBuffer(*width, *height)
	if err != nil {
		log.Fatalf("Failed to allocate %dx%d buffer: %v", *width, *height, err)
	}

	if err := render(s, id, *effect, 1.0); err != nil {
		log.Fatalf("Failed to render %s: %v", *effect, err)
	}
	if *label != "" {
		if err := drawLabel(s, id, *label); err != nil {
			log.Fatalf("Failed to draw label: %v", err)
		}
	}

	pixels, err := s.Pixels(id)
	if err != nil {
		log.Fatalf("Failed to read buffer: %v", err)
	}
	if err := lumen.SavePNG(*output, pixels, *width, *height); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	frame, err := s.Frame(id)
	if err != nil {
		log.Fatalf("Failed to pack frame: %v", err)
	}
	log.Printf("Saved %s (%dx%d, %d packed bytes)", *output, *width, *height, len(frame))

	if *iterations > 0 {
		tick := 0.0
		stats, err := lumen.Measure(func() error {
			tick += 0.1
			return render(s, id, *effect, tick)
		}, *iterations)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
		log.Printf("%s: %s", *effect, stats)
	}
}

func render(s *lumen.Session, id uint64, effect string, tick float64) error {
	switch effect {
	case "plasma":
		return s.Plasma(id, tick, 10)
	case "mandelbrot":
		return s.Mandelbrot(id, 1.0+tick*0.2, 32, -0.5, 0.0)
	case "particles":
		return s.Particles(id, 256, 0.12, 0.02)
	case "wave":
		return s.Wave(id, 10, 0.2, tick)
	case "shapes":
		return shapes(s, id)
	default:
		return fmt.Errorf("unknown effect %q (want plasma, mandelbrot, particles, wave, or shapes)", effect)
	}
}

func shapes(s *lumen.Session, id uint64) error {
	info, ok := s.Describe(id)
	if !ok {
		return fmt.Errorf("buffer %d not found", id)
	}
	w, h := info.Width, info.Height

	if err := s.Clear(id, lumen.Black); err != nil {
		return err
	}
	if err := s.DrawRect(id, 0, 0, w, h, lumen.White); err != nil {
		return err
	}
	if err := s.FillCircle(id, w/4, h/2, h/3, lumen.Gray); err != nil {
		return err
	}
	if err := s.DrawCircle(id, w/2, h/2, h/3, lumen.White); err != nil {
		return err
	}
	if err := s.FillRect(id, 3*w/4-4, h/2-4, 8, 8, lumen.White); err != nil {
		return err
	}
	return s.DrawLine(id, 2, h-3, w-3, 2, lumen.White)
}

func drawLabel(s *lumen.Session, id uint64, text string) error {
	c, err := display.NewCanvas(s, id)
	if err != nil {
		return err
	}
	display.WriteLine(c, nil, 2, 10, text, lumen.White)
	return nil
}
