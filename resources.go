// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/lut"
	"github.com/gogpu/smaa/shader"
)

// TargetKind names one of the three render targets.
type TargetKind uint8

const (
	// TargetAlbedo receives the children and feeds the edge and
	// neighborhood passes.
	TargetAlbedo TargetKind = iota
	// TargetEdges is written by the edge detection pass.
	TargetEdges
	// TargetBlend is written by the blending weight pass.
	TargetBlend
)

func (k TargetKind) String() string {
	switch k {
	case TargetAlbedo:
		return "albedo"
	case TargetEdges:
		return "edges"
	case TargetBlend:
		return "blend"
	default:
		return fmt.Sprintf("TargetKind(%d)", k)
	}
}

// targetFormat is fixed per role. All three targets are float RGBA.
const targetFormat = gpu.FormatRGBA16Float

// RenderTarget is a color texture with its framebuffer. Its size always
// equals the size of the pipeline that owns it.
type RenderTarget struct {
	Kind        TargetKind
	Texture     gpu.Texture
	Framebuffer gpu.Framebuffer
	Width       int
	Height      int
	Format      gpu.TextureFormat
}

// LookupTexture is one of the two static tables.
type LookupTexture struct {
	Name    string
	Texture gpu.Texture
	Width   int
	Height  int
	Format  gpu.TextureFormat
	Filter  gpu.Filter
}

// ShaderProgram is a compiled pass with its source and sampler bindings.
type ShaderProgram struct {
	Source shader.Program
	Handle gpu.Program
}

// resources is everything one pipeline generation allocates on the
// device. It is released as a whole.
type resources struct {
	targets  [3]*RenderTarget
	area     *LookupTexture
	search   *LookupTexture
	programs [3]*ShaderProgram // indexed by shader.Stage
}

// allocate creates targets, lookup textures and programs in that order.
// On failure everything created so far is released before returning.
func allocate(dev gpu.Device, width, height int, tables *lut.Tables, src shader.Sources, log *slog.Logger) (_ *resources, err error) {
	r := &resources{}
	defer func() {
		if err != nil {
			r.release(dev)
		}
	}()

	for _, kind := range []TargetKind{TargetAlbedo, TargetEdges, TargetBlend} {
		t, err := newRenderTarget(dev, kind, width, height)
		if err != nil {
			return nil, err
		}
		r.targets[kind] = t
		log.Debug("smaa: render target allocated", "target", kind, "width", width, "height", height, "format", t.Format)
	}

	if r.area, err = newLookupTexture(dev, "area", lut.AreaWidth, lut.AreaHeight, gpu.FormatRG8, gpu.FilterLinear, tables.Area); err != nil {
		return nil, err
	}
	if r.search, err = newLookupTexture(dev, "search", lut.SearchWidth, lut.SearchHeight, gpu.FormatR8, gpu.FilterNearest, tables.Search); err != nil {
		return nil, err
	}

	for _, stage := range shader.Stages {
		p, err := newShaderProgram(dev, *src.Program(stage))
		if err != nil {
			return nil, err
		}
		r.programs[stage] = p
		log.Debug("smaa: program created", "stage", stage, "samplers", len(p.Source.Samplers))
	}
	return r, nil
}

func newRenderTarget(dev gpu.Device, kind TargetKind, width, height int) (*RenderTarget, error) {
	tex, err := dev.CreateTexture(gpu.TextureDescriptor{
		Label:  kind.String(),
		Width:  width,
		Height: height,
		Format: targetFormat,
		Filter: gpu.FilterLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s texture: %w", ErrAllocation, kind, err)
	}
	fb, err := dev.CreateFramebuffer(tex)
	if err != nil {
		dev.DestroyTexture(tex)
		return nil, fmt.Errorf("%w: %s framebuffer: %w", ErrAllocation, kind, err)
	}
	return &RenderTarget{
		Kind:        kind,
		Texture:     tex,
		Framebuffer: fb,
		Width:       width,
		Height:      height,
		Format:      targetFormat,
	}, nil
}

func newLookupTexture(dev gpu.Device, name string, w, h int, format gpu.TextureFormat, filter gpu.Filter, data []byte) (*LookupTexture, error) {
	tex, err := dev.CreateTexture(gpu.TextureDescriptor{
		Label:  name,
		Width:  w,
		Height: h,
		Format: format,
		Filter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s table: %w", ErrAllocation, name, err)
	}
	if err := dev.WriteTexture(tex, data); err != nil {
		dev.DestroyTexture(tex)
		return nil, fmt.Errorf("%w: upload %s table: %w", ErrAllocation, name, err)
	}
	return &LookupTexture{Name: name, Texture: tex, Width: w, Height: h, Format: format, Filter: filter}, nil
}

// newShaderProgram compiles src and binds its samplers once.
func newShaderProgram(dev gpu.Device, src shader.Program) (*ShaderProgram, error) {
	h, err := dev.CreateProgram(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, src.Stage, err)
	}
	for _, s := range src.Samplers {
		if err := dev.SetSampler(h, s.Name, s.Unit); err != nil {
			dev.DestroyProgram(h)
			return nil, fmt.Errorf("%w: %s: sampler %s: %w", ErrShaderCompile, src.Stage, s.Name, err)
		}
	}
	return &ShaderProgram{Source: src, Handle: h}, nil
}

// release destroys every resource. It is safe on a partially allocated
// set and on an already released one.
func (r *resources) release(dev gpu.Device) {
	for i, p := range r.programs {
		if p != nil {
			dev.DestroyProgram(p.Handle)
			r.programs[i] = nil
		}
	}
	for _, lt := range []**LookupTexture{&r.area, &r.search} {
		if *lt != nil {
			dev.DestroyTexture((*lt).Texture)
			*lt = nil
		}
	}
	for i, t := range r.targets {
		if t != nil {
			dev.DestroyFramebuffer(t.Framebuffer)
			dev.DestroyTexture(t.Texture)
			r.targets[i] = nil
		}
	}
}

// texture returns the texture bound to a sampler name.
func (r *resources) texture(sampler string) gpu.Texture {
	switch sampler {
	case shader.SamplerAlbedo:
		return r.targets[TargetAlbedo].Texture
	case shader.SamplerEdges:
		return r.targets[TargetEdges].Texture
	case shader.SamplerBlend:
		return r.targets[TargetBlend].Texture
	case shader.SamplerArea:
		return r.area.Texture
	case shader.SamplerSearch:
		return r.search.Texture
	default:
		return nil
	}
}

// inputs orders the textures a program samples by texture unit.
func (r *resources) inputs(p *ShaderProgram) []gpu.Texture {
	n := 0
	for _, s := range p.Source.Samplers {
		n = max(n, s.Unit+1)
	}
	out := make([]gpu.Texture, n)
	for _, s := range p.Source.Samplers {
		out[s.Unit] = r.texture(s.Name)
	}
	return out
}
