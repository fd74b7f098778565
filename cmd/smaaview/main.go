//go:build !nogl

// Command smaaview shows the SMAA pipeline in a window.
//
// Keys 1-4 select the quality preset (low to ultra). E, B and S show the
// edge, blend and source targets; N returns to the composite. Resizing the
// window rebuilds the pipeline at the new size.
package main

import (
	"flag"
	"log"
	"log/slog"
	"math"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa"
	glbackend "github.com/gogpu/smaa/backend/gl"
	"github.com/gogpu/smaa/gpu"
)

func init() {
	runtime.LockOSThread() // GL calls must stay on the main thread
}

var qualityKeys = map[glfw.Key]smaa.Quality{
	glfw.Key1: smaa.QualityLow,
	glfw.Key2: smaa.QualityMedium,
	glfw.Key3: smaa.QualityHigh,
	glfw.Key4: smaa.QualityUltra,
}

var debugKeys = map[glfw.Key]smaa.DebugMode{
	glfw.KeyN: smaa.DebugNone,
	glfw.KeyE: smaa.DebugEdges,
	glfw.KeyB: smaa.DebugBlend,
	glfw.KeyS: smaa.DebugSource,
}

func main() {
	var (
		width   = flag.Int("width", 800, "initial window width")
		height  = flag.Int("height", 600, "initial window height")
		verbose = flag.Bool("v", false, "debug logging")
		quality = smaa.QualityUltra
	)
	flag.TextVar(&quality, "quality", smaa.QualityUltra, "initial quality preset")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	smaa.SetLogger(logger)

	if err := glfw.Init(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(*width, *height, "smaa", nil, nil)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	fbw, fbh := window.GetFramebufferSize()
	dev, err := glbackend.New(fbw, fbh)
	if err != nil {
		log.Fatalf("Failed to open GL device: %v", err)
	}
	defer dev.Close()
	dev.SetLogger(logger)

	aa, err := smaa.New(dev, fbw, fbh, smaa.WithQuality(quality), smaa.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	defer aa.Close()
	populate(aa, fbw, fbh, 0)

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if key == glfw.KeyEscape {
			w.SetShouldClose(true)
			return
		}
		if q, ok := qualityKeys[key]; ok {
			if err := aa.SetQuality(q); err != nil {
				logger.Warn("set quality", "quality", q, "err", err)
			}
			return
		}
		if m, ok := debugKeys[key]; ok {
			if err := aa.SetDebug(m); err != nil {
				logger.Warn("set debug mode", "mode", m, "err", err)
			}
		}
	})
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		if w <= 0 || h <= 0 {
			return // minimized
		}
		if err := dev.Resize(w, h); err != nil {
			logger.Warn("resize device", "err", err)
			return
		}
		if err := aa.SetSize(w, h); err != nil {
			logger.Warn("resize pipeline", "width", w, "height", h, "err", err)
		}
	})

	for !window.ShouldClose() {
		w, h := aa.Size()
		populate(aa, w, h, glfw.GetTime())

		dev.BindFramebuffer(nil)
		dev.Clear(gpu.Black)
		if err := aa.Draw(smaa.Frame{}); err != nil {
			logger.Warn("draw", "err", err)
		}
		window.SwapBuffers()
		glfw.PollEvents()
	}
}

// populate replaces the children with a spinning fan of triangles sized
// to the window.
func populate(aa *smaa.Antialiaser, width, height int, t float64) {
	aa.RemoveAll()
	w, h := float32(width), float32(height)
	aa.Add(smaa.Rect(0, 0, w, h, gpu.Color{R: 0.15, G: 0.15, B: 0.2, A: 1}))

	center := mgl32.Vec2{w / 2, h / 2}
	r := min(w, h) * 0.4
	const blades = 12
	for i := range blades {
		a0 := t*0.3 + float64(i)*2*math.Pi/blades
		a1 := a0 + math.Pi/blades
		p0 := center.Add(mgl32.Vec2{r * float32(math.Cos(a0)), r * float32(math.Sin(a0))})
		p1 := center.Add(mgl32.Vec2{r * float32(math.Cos(a1)), r * float32(math.Sin(a1))})
		shade := float32(i) / blades
		aa.Add(smaa.Triangle(center, p0, p1, gpu.Color{R: 1, G: shade, B: 1 - shade, A: 1}))
	}
}
