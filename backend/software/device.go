package software

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/gogpu/smaa/backend"
	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/shader"
)

func init() {
	backend.Register(backend.BackendSoftware, func(width, height int) (gpu.Device, error) {
		return New(width, height)
	})
}

// Device is a CPU implementation of gpu.Device with an owned surface.
type Device struct {
	surface *Texture
	bound   *Framebuffer
	blend   bool
	log     *slog.Logger
}

var (
	_ gpu.Device  = (*Device)(nil)
	_ gpu.Reader  = (*Device)(nil)
	_ gpu.Resizer = (*Device)(nil)
)

// New creates a device whose default surface is width x height.
func New(width, height int) (*Device, error) {
	d := &Device{blend: true, log: slog.New(nopHandler{})}
	if err := d.Resize(width, height); err != nil {
		return nil, err
	}
	return d, nil
}

// SetLogger sets the device logger. Nil restores the silent default.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	d.log = l
}

// Resize replaces the default surface. Its contents are cleared.
func (d *Device) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("software: invalid surface size %dx%d", width, height)
	}
	d.surface = newTexture(d, gpu.TextureDescriptor{
		Label:  "surface",
		Width:  width,
		Height: height,
		Format: gpu.FormatRGBA16Float,
	})
	return nil
}

// Surface returns the default surface texture.
func (d *Device) Surface() gpu.Texture { return d.surface }

func (d *Device) Language() shader.Language { return shader.GLSL }

func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("software: texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	t := newTexture(d, desc)
	d.log.Debug("software: texture created", "label", desc.Label, "width", desc.Width, "height", desc.Height, "format", desc.Format)
	return t, nil
}

func (d *Device) texture(tex gpu.Texture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.dev != d {
		return nil, gpu.ErrForeignHandle
	}
	if t.destroyed {
		return nil, fmt.Errorf("%w: texture %q", gpu.ErrDestroyed, t.label)
	}
	return t, nil
}

// WriteTexture uploads 8-bit normalized data. Float formats are not
// writable from bytes.
func (d *Device) WriteTexture(tex gpu.Texture, data []byte) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if t.format == gpu.FormatRGBA16Float {
		return fmt.Errorf("%w: write to %s texture", gpu.ErrUnsupported, t.format)
	}
	ch := t.format.Channels()
	if want := t.width * t.height * ch; len(data) != want {
		return fmt.Errorf("software: texture %q: got %d bytes, want %d", t.label, len(data), want)
	}
	for p := 0; p < t.width*t.height; p++ {
		c := rgba{0, 0, 0, 1}
		for k := 0; k < ch; k++ {
			c[k] = float32(data[p*ch+k]) / 255
		}
		copy(t.pix[p*4:p*4+4], c[:])
	}
	return nil
}

func (d *Device) DestroyTexture(tex gpu.Texture) {
	if t, err := d.texture(tex); err == nil {
		t.destroyed = true
		t.pix = nil
	}
}

func (d *Device) CreateFramebuffer(tex gpu.Texture) (gpu.Framebuffer, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	return &Framebuffer{dev: d, tex: t}, nil
}

func (d *Device) framebuffer(fb gpu.Framebuffer) (*Framebuffer, error) {
	f, ok := fb.(*Framebuffer)
	if !ok || f == nil || f.dev != d {
		return nil, gpu.ErrForeignHandle
	}
	if f.destroyed || f.tex.destroyed {
		return nil, fmt.Errorf("%w: framebuffer %q", gpu.ErrDestroyed, f.tex.label)
	}
	return f, nil
}

func (d *Device) DestroyFramebuffer(fb gpu.Framebuffer) {
	f, err := d.framebuffer(fb)
	if err != nil {
		return
	}
	f.destroyed = true
	if d.bound == f {
		d.bound = nil
	}
}

func (d *Device) CreateProgram(src shader.Program) (gpu.Program, error) {
	p, err := compile(d, src)
	if err != nil {
		return nil, fmt.Errorf("software: compile %s: %w", src.Stage, err)
	}
	d.log.Debug("software: program compiled", "stage", p.stage, "threshold", p.threshold, "steps", p.steps)
	return p, nil
}

func (d *Device) program(p gpu.Program) (*Program, error) {
	prog, ok := p.(*Program)
	if !ok || prog == nil || prog.dev != d {
		return nil, gpu.ErrForeignHandle
	}
	if prog.destroyed {
		return nil, fmt.Errorf("%w: program %s", gpu.ErrDestroyed, prog.stage)
	}
	return prog, nil
}

func (d *Device) SetSampler(p gpu.Program, name string, unit int) error {
	prog, err := d.program(p)
	if err != nil {
		return err
	}
	if !prog.declared[name] {
		return fmt.Errorf("software: program %s has no sampler %q", prog.stage, name)
	}
	if unit < 0 {
		return fmt.Errorf("software: invalid texture unit %d", unit)
	}
	prog.units[name] = unit
	return nil
}

func (d *Device) DestroyProgram(p gpu.Program) {
	if prog, err := d.program(p); err == nil {
		prog.destroyed = true
	}
}

// BindFramebuffer selects the draw target. Unknown or destroyed handles
// select the surface.
func (d *Device) BindFramebuffer(fb gpu.Framebuffer) {
	if fb == nil {
		d.bound = nil
		return
	}
	f, err := d.framebuffer(fb)
	if err != nil {
		d.log.Warn("software: bind framebuffer", "err", err)
		d.bound = nil
		return
	}
	d.bound = f
}

func (d *Device) Framebuffer() gpu.Framebuffer {
	if d.bound == nil {
		return nil
	}
	return d.bound
}

func (d *Device) SetBlend(enabled bool) { d.blend = enabled }

// Blend reports whether blending is enabled.
func (d *Device) Blend() bool { return d.blend }

func (d *Device) target() *Texture {
	if d.bound != nil {
		return d.bound.tex
	}
	return d.surface
}

func (d *Device) Clear(c gpu.Color) {
	d.target().fill(rgba{c.R, c.G, c.B, c.A})
}

func (d *Device) Draw(dc gpu.DrawCall) error {
	if len(dc.Vertices)%3 != 0 {
		return fmt.Errorf("software: draw %q: %d vertices is not a triangle list", dc.Label, len(dc.Vertices))
	}
	shade, err := d.shader(dc)
	if err != nil {
		return fmt.Errorf("software: draw %q: %w", dc.Label, err)
	}
	target := d.target()
	mvp := dc.MVP()
	for i := 0; i+2 < len(dc.Vertices); i += 3 {
		d.rasterize(target, project(mvp, dc.Vertices[i:i+3], target), shade)
	}
	return nil
}

// ReadPixels returns a copy of the RGBA floats of fb, rows bottom-up.
func (d *Device) ReadPixels(fb gpu.Framebuffer) ([]float32, error) {
	t := d.surface
	if fb != nil {
		f, err := d.framebuffer(fb)
		if err != nil {
			return nil, err
		}
		t = f.tex
	}
	return append([]float32(nil), t.pix...), nil
}

// Image converts the surface to an 8-bit image, top row first.
func (d *Device) Image() *image.NRGBA {
	return toImage(d.surface)
}

// TextureImage converts any texture of this device to an 8-bit image.
func (d *Device) TextureImage(tex gpu.Texture) (*image.NRGBA, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	return toImage(t), nil
}

func toImage(t *Texture) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			c := t.at(x, y)
			img.SetNRGBA(x, t.height-1-y, color.NRGBA{
				R: unorm8(c[0]), G: unorm8(c[1]), B: unorm8(c[2]), A: unorm8(c[3]),
			})
		}
	}
	return img
}

func unorm8(v float32) uint8 {
	return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
}
