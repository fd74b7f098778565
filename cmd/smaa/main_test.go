package main

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/smaa"
	"github.com/gogpu/smaa/backend/software"
	"github.com/gogpu/smaa/gpu"
)

func TestRunSoftware(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	err := run(config{
		width:   64,
		height:  48,
		output:  out,
		backend: "software",
		quality: smaa.QualityLow,
		debug:   smaa.DebugNone,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("output is %dx%d, want 64x48", b.Dx(), b.Dy())
	}
}

func TestRunUnknownBackend(t *testing.T) {
	err := run(config{
		width:   8,
		height:  8,
		output:  filepath.Join(t.TempDir(), "out.png"),
		backend: "nope",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestUploadImageKeepsOrientation(t *testing.T) {
	dev, err := software.New(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 1, color.NRGBA{B: 255, A: 255})

	tex, err := uploadImage(dev, src, 2, 2)
	if err != nil {
		t.Fatalf("uploadImage: %v", err)
	}
	got, err := dev.TextureImage(tex)
	if err != nil {
		t.Fatal(err)
	}
	if c := got.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("top-left = %v, want red", c)
	}
	if c := got.NRGBAAt(1, 1); c != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("bottom-right = %v, want blue", c)
	}
}

func TestSurfaceImageFlips(t *testing.T) {
	dev, err := software.New(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	dev.Clear(gpu.White)
	img, err := surfaceImage(dev, 1, 2)
	if err != nil {
		t.Fatalf("surfaceImage: %v", err)
	}
	if c := img.NRGBAAt(0, 1); c != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("pixel = %v, want white", c)
	}
	if _, err := surfaceImage(dev, 2, 2); err == nil {
		t.Error("size mismatch must fail")
	}
}
