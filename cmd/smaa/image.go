package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/smaa/gpu"
)

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// uploadImage scales img to width x height and uploads it as an RGBA8
// texture. Texture rows are bottom-up, image rows top-down.
func uploadImage(dev gpu.Device, img image.Image, width, height int) (gpu.Texture, error) {
	scaled := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	tex, err := dev.CreateTexture(gpu.TextureDescriptor{
		Label:  "input",
		Width:  width,
		Height: height,
		Format: gpu.FormatRGBA8,
		Filter: gpu.FilterLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("create input texture: %w", err)
	}
	if err := dev.WriteTexture(tex, flipRows(scaled)); err != nil {
		dev.DestroyTexture(tex)
		return nil, fmt.Errorf("upload input: %w", err)
	}
	return tex, nil
}

func flipRows(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, 0, w*h*4)
	for y := h - 1; y >= 0; y-- {
		out = append(out, img.Pix[y*img.Stride:y*img.Stride+w*4]...)
	}
	return out
}

// surfaceImage reads the default surface back as an 8-bit image.
func surfaceImage(r gpu.Reader, width, height int) (*image.NRGBA, error) {
	pix, err := r.ReadPixels(nil)
	if err != nil {
		return nil, fmt.Errorf("read surface: %w", err)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("read surface: got %d values for %dx%d", len(pix), width, height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		src := pix[y*width*4 : (y+1)*width*4]
		dst := img.Pix[(height-1-y)*img.Stride:]
		for i, v := range src {
			dst[i] = unorm8(v)
		}
	}
	return img, nil
}

func unorm8(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}
