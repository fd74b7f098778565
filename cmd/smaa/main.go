// Command smaa renders a scene or an image through the SMAA pipeline on a
// headless device and writes the result as PNG.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/smaa"
	"github.com/gogpu/smaa/backend"
	_ "github.com/gogpu/smaa/backend/software"
	_ "github.com/gogpu/smaa/backend/wgpu"
	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/lut"
)

func main() {
	var (
		width    = flag.Int("width", 800, "image width")
		height   = flag.Int("height", 600, "image height")
		input    = flag.String("in", "", "input image (png, jpeg, bmp, tiff, webp); empty draws the demo scene")
		output   = flag.String("out", "smaa.png", "output file")
		name     = flag.String("backend", "", "device backend ("+strings.Join(backend.Available(), ", ")+"); empty picks the best available")
		lutDir   = flag.String("lut-dir", "", "directory holding "+lut.AreaFile+" and "+lut.SearchFile+"; empty generates the tables")
		writeLUT = flag.String("write-lut", "", "write the generated lookup tables into this directory and exit")
		trace    = flag.Bool("trace", false, "print every device call of the frame")
		verbose  = flag.Bool("v", false, "debug logging")
		quality  = smaa.QualityUltra
		debug    = smaa.DebugNone
	)
	flag.TextVar(&quality, "quality", smaa.QualityUltra, "quality preset: low, medium, high, ultra")
	flag.TextVar(&debug, "debug", smaa.DebugNone, "debug view: none, edges, blend, source")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	smaa.SetLogger(logger)

	if *writeLUT != "" {
		if err := lut.Generate().WriteFiles(*writeLUT); err != nil {
			log.Fatalf("Failed to write lookup tables: %v", err)
		}
		log.Printf("Lookup tables written to %s", *writeLUT)
		return
	}

	if err := run(config{
		width:   *width,
		height:  *height,
		input:   *input,
		output:  *output,
		backend: *name,
		lutDir:  *lutDir,
		trace:   *trace,
		quality: quality,
		debug:   debug,
		logger:  logger,
	}); err != nil {
		log.Fatal(err)
	}
}

type config struct {
	width, height int
	input         string
	output        string
	backend       string
	lutDir        string
	trace         bool
	quality       smaa.Quality
	debug         smaa.DebugMode
	logger        *slog.Logger
}

func run(cfg config) error {
	name, dev, err := openDevice(cfg.backend, cfg.width, cfg.height)
	if err != nil {
		return err
	}
	if c, ok := dev.(interface{ Close() }); ok {
		defer c.Close()
	}
	cfg.logger.Info("device ready", "backend", name)

	var traced *gpu.Trace
	if cfg.trace {
		traced = gpu.NewTrace(dev)
		dev = traced
	}

	opts := []smaa.Option{
		smaa.WithQuality(cfg.quality),
		smaa.WithDebug(cfg.debug),
		smaa.WithLogger(cfg.logger),
	}
	if cfg.lutDir != "" {
		opts = append(opts, smaa.WithLookupFS(os.DirFS(cfg.lutDir), lut.AreaFile, lut.SearchFile))
	}
	aa, err := smaa.New(dev, cfg.width, cfg.height, opts...)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer aa.Close()

	if cfg.input != "" {
		img, err := decodeImage(cfg.input)
		if err != nil {
			return err
		}
		tex, err := uploadImage(dev, img, cfg.width, cfg.height)
		if err != nil {
			return err
		}
		defer dev.DestroyTexture(tex)
		aa.Add(smaa.Image(tex, 0, 0, float32(cfg.width), float32(cfg.height)))
	} else {
		for _, c := range demoScene(float32(cfg.width), float32(cfg.height)) {
			aa.Add(c)
		}
	}

	if traced != nil {
		traced.Reset()
	}
	if err := aa.Draw(smaa.Frame{}); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	if traced != nil {
		for _, op := range traced.Ops() {
			fmt.Println(op)
		}
	}

	reader, ok := dev.(gpu.Reader)
	if !ok {
		return fmt.Errorf("backend %s cannot read pixels back", name)
	}
	out, err := surfaceImage(reader, cfg.width, cfg.height)
	if err != nil {
		return err
	}

	f, err := os.Create(cfg.output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", cfg.output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Saved %s (%dx%d, %s, debug %s)", cfg.output, cfg.width, cfg.height, cfg.quality, cfg.debug)
	return nil
}

func openDevice(name string, width, height int) (string, gpu.Device, error) {
	if name == "" {
		return backend.Default(width, height)
	}
	dev, err := backend.Open(name, width, height)
	return name, dev, err
}
