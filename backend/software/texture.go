package software

import (
	"math"

	"github.com/gogpu/smaa/gpu"
)

// rgba is one texel or fragment value.
type rgba [4]float32

func (c rgba) add(o rgba) rgba {
	return rgba{c[0] + o[0], c[1] + o[1], c[2] + o[2], c[3] + o[3]}
}

func (c rgba) scale(s float32) rgba {
	return rgba{c[0] * s, c[1] * s, c[2] * s, c[3] * s}
}

func (c rgba) mul(o rgba) rgba {
	return rgba{c[0] * o[0], c[1] * o[1], c[2] * o[2], c[3] * o[3]}
}

func lerp(a, b rgba, t float32) rgba {
	return a.scale(1 - t).add(b.scale(t))
}

// Texture is a CPU texture. Pixels are stored as four floats regardless of
// format; channels a format lacks read as 0 for color and 1 for alpha.
type Texture struct {
	dev       *Device
	label     string
	width     int
	height    int
	format    gpu.TextureFormat
	filter    gpu.Filter
	pix       []float32
	destroyed bool
}

func newTexture(dev *Device, desc gpu.TextureDescriptor) *Texture {
	t := &Texture{
		dev:    dev,
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		filter: desc.Filter,
		pix:    make([]float32, desc.Width*desc.Height*4),
	}
	return t
}

func (t *Texture) Label() string             { return t.label }
func (t *Texture) Width() int                { return t.width }
func (t *Texture) Height() int               { return t.height }
func (t *Texture) Format() gpu.TextureFormat { return t.format }

// at returns the texel at integer coordinates, clamped to the edge.
func (t *Texture) at(x, y int) rgba {
	x = min(max(x, 0), t.width-1)
	y = min(max(y, 0), t.height-1)
	i := (y*t.width + x) * 4
	return rgba{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

func (t *Texture) set(x, y int, c rgba) {
	i := (y*t.width + x) * 4
	copy(t.pix[i:i+4], c[:])
}

// sample reads normalized coordinates with the texture's filter.
func (t *Texture) sample(u, v float64) rgba {
	if t.filter == gpu.FilterNearest {
		return t.nearest(u, v)
	}
	return t.linear(u, v)
}

func (t *Texture) nearest(u, v float64) rgba {
	return t.at(int(math.Floor(u*float64(t.width))), int(math.Floor(v*float64(t.height))))
}

func (t *Texture) linear(u, v float64) rgba {
	x := u*float64(t.width) - 0.5
	y := v*float64(t.height) - 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := float32(x-x0), float32(y-y0)
	i, j := int(x0), int(y0)

	bottom := lerp(t.at(i, j), t.at(i+1, j), fx)
	top := lerp(t.at(i, j+1), t.at(i+1, j+1), fx)
	return lerp(bottom, top, fy)
}

func (t *Texture) fill(c rgba) {
	for i := 0; i < len(t.pix); i += 4 {
		copy(t.pix[i:i+4], c[:])
	}
}

// Framebuffer wraps a Texture as a render target.
type Framebuffer struct {
	dev       *Device
	tex       *Texture
	destroyed bool
}

func (f *Framebuffer) Label() string        { return f.tex.label }
func (f *Framebuffer) Texture() gpu.Texture { return f.tex }
