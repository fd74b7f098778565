// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/shader"
)

// copyPitchAlignment is the required BytesPerRow alignment of
// texture-to-buffer copies.
const copyPitchAlignment = 256

func (d *Device) Draw(dc gpu.DrawCall) error {
	if len(dc.Vertices)%3 != 0 {
		return fmt.Errorf("wgpu: draw %q: %d vertices is not a triangle list", dc.Label, len(dc.Vertices))
	}
	if len(dc.Vertices) == 0 {
		return nil
	}

	prog := d.builtin
	if dc.Program != nil {
		p, err := d.program(dc.Program)
		if err != nil {
			return fmt.Errorf("wgpu: draw %q: %w", dc.Label, err)
		}
		prog = p
	}

	units := make([]*Texture, len(prog.samplers))
	for i, s := range prog.samplers {
		if s.Unit < len(dc.Textures) && dc.Textures[s.Unit] != nil {
			t, err := d.texture(dc.Textures[s.Unit])
			if err != nil {
				return fmt.Errorf("wgpu: draw %q: unit %d: %w", dc.Label, s.Unit, err)
			}
			units[i] = t
			continue
		}
		if prog != d.builtin {
			return fmt.Errorf("wgpu: draw %q: no texture on unit %d (%s)", dc.Label, s.Unit, s.Name)
		}
		units[i] = d.white
	}

	target := d.target()
	rp, err := d.pipeline(prog, target.tex.native)
	if err != nil {
		return fmt.Errorf("wgpu: draw %q: %w", dc.Label, err)
	}

	uniform, err := d.upload(dc.Label+"_uniform", uniformBytes(dc), gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("wgpu: draw %q: %w", dc.Label, err)
	}
	defer d.device.DestroyBuffer(uniform)

	vertices, err := d.upload(dc.Label+"_vertices", vertexBytes(dc.Vertices), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("wgpu: draw %q: %w", dc.Label, err)
	}
	defer d.device.DestroyBuffer(vertices)

	entries := []gputypes.BindGroupEntry{{
		Binding:  0,
		Resource: gputypes.BufferBinding{Buffer: uniform.NativeHandle(), Offset: 0, Size: uniformSize},
	}}
	for i, s := range prog.samplers {
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  shader.TextureBinding(s.Unit),
				Resource: gputypes.TextureViewBinding{TextureView: units[i].view.NativeHandle()},
			},
			gputypes.BindGroupEntry{
				Binding:  shader.SamplerBinding(s.Unit),
				Resource: gputypes.SamplerBinding{Sampler: d.sampler(units[i]).NativeHandle()},
			},
		)
	}
	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   dc.Label + "_bind_group",
		Layout:  prog.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: draw %q: create bind group: %w", dc.Label, err)
	}
	defer d.device.DestroyBindGroup(bindGroup)

	count := uint32(len(dc.Vertices)) //nolint:gosec // bounded by the slice
	return d.submit(dc.Label, func(enc hal.CommandEncoder) {
		d.transition(enc, gputypes.TextureUsageTextureBinding, units...)
		d.transition(enc, gputypes.TextureUsageRenderAttachment, target.tex)
		pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: dc.Label,
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:    target.tex.view,
				LoadOp:  gputypes.LoadOpLoad,
				StoreOp: gputypes.StoreOpStore,
			}},
		})
		pass.SetPipeline(rp)
		pass.SetBindGroup(0, bindGroup, nil)
		pass.SetVertexBuffer(0, vertices, 0)
		pass.Draw(count, 1, 0, 0)
		pass.End()
	})
}

func (d *Device) clearTarget(fb *Framebuffer, c gpu.Color) error {
	return d.submit("clear_"+fb.Label(), func(enc hal.CommandEncoder) {
		d.transition(enc, gputypes.TextureUsageRenderAttachment, fb.tex)
		pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "clear_" + fb.Label(),
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       fb.tex.view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
			}},
		})
		pass.End()
	})
}

// ReadPixels copies fb, or the surface for nil, into a staging buffer and
// converts it to RGBA floats.
func (d *Device) ReadPixels(fb gpu.Framebuffer) ([]float32, error) {
	target := d.surface
	if fb != nil {
		f, err := d.framebuffer(fb)
		if err != nil {
			return nil, err
		}
		target = f
	}
	t := target.tex

	w, h := uint32(t.width), uint32(t.height) //nolint:gosec // positive sizes
	bpp := uint32(t.format.BytesPerPixel())   //nolint:gosec // at most 8
	rowBytes := w * bpp
	pitch := (rowBytes + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(pitch) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: t.label + "_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: read %q: create staging buffer: %w", t.label, err)
	}
	defer d.device.DestroyBuffer(staging)

	err = d.submit("read_"+t.label, func(enc hal.CommandEncoder) {
		d.transition(enc, gputypes.TextureUsageCopySrc, t)
		enc.CopyTextureToBuffer(t.raw, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: t.raw, MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
	})
	if err != nil {
		return nil, err
	}

	raw, err := d.readBuffer(staging, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: read %q: %w", t.label, err)
	}
	return decodePixels(raw, t, int(pitch)), nil
}

// readBuffer copies size bytes out of a host-visible buffer. The buffer
// must have been created with BufferUsageMapRead and no submission may
// still be writing it.
func (d *Device) readBuffer(buf hal.Buffer, size uint64) ([]byte, error) {
	m, err := d.device.MapBuffer(buf, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map buffer: %w", err)
	}
	raw := make([]byte, size)
	copy(raw, unsafe.Slice((*byte)(m.Ptr), size))
	if err := d.device.UnmapBuffer(buf); err != nil {
		return nil, fmt.Errorf("unmap buffer: %w", err)
	}
	return raw, nil
}

// submit records one command buffer, submits it and waits until the
// queue reports its submission index as completed.
func (d *Device) submit(label string, record func(enc hal.CommandEncoder)) error {
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("wgpu: %s: create command encoder: %w", label, err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return fmt.Errorf("wgpu: %s: begin encoding: %w", label, err)
	}
	record(enc)
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: %s: end encoding: %w", label, err)
	}
	defer d.device.FreeCommandBuffer(cmd)

	index, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		return fmt.Errorf("wgpu: %s: submit: %w", label, err)
	}
	if d.queue.PollCompleted() >= index {
		return nil
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: %s: wait for GPU: %w", label, err)
	}
	return nil
}

// transition moves textures into usage, skipping those already there.
func (d *Device) transition(enc hal.CommandEncoder, usage gputypes.TextureUsage, textures ...*Texture) {
	var barriers []hal.TextureBarrier
	for _, t := range textures {
		if t.usage == usage {
			continue
		}
		if t.usage != 0 {
			barriers = append(barriers, hal.TextureBarrier{
				Texture: t.raw,
				Usage:   hal.TextureUsageTransition{OldUsage: t.usage, NewUsage: usage},
			})
		}
		t.usage = usage
	}
	if len(barriers) > 0 {
		enc.TransitionTextures(barriers)
	}
}

func (d *Device) upload(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		d.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("write %s: %w", label, err)
	}
	return buf, nil
}

// uniformBytes packs the transform uniform: model-view, projection (zero
// matrices become the identity) and the draw color.
func uniformBytes(dc gpu.DrawCall) []byte {
	mv, proj := dc.ModelView, dc.Projection
	if mv == (mgl32.Mat4{}) {
		mv = mgl32.Ident4()
	}
	if proj == (mgl32.Mat4{}) {
		proj = mgl32.Ident4()
	}
	b := make([]byte, 0, uniformSize)
	for _, v := range mv {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	for _, v := range proj {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	for _, v := range [4]float32{dc.Color.R, dc.Color.G, dc.Color.B, dc.Color.A} {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

func vertexBytes(vs []gpu.Vertex) []byte {
	b := make([]byte, 0, len(vs)*vertexStride)
	for _, v := range vs {
		for _, f := range [4]float32{v.Position.X(), v.Position.Y(), v.TexCoord.X(), v.TexCoord.Y()} {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
		}
	}
	return b
}

// decodePixels converts a padded readback of t into RGBA floats.
func decodePixels(raw []byte, t *Texture, pitch int) []float32 {
	out := make([]float32, 0, t.width*t.height*4)
	bpp := t.format.BytesPerPixel()
	bgra := t.native == gputypes.TextureFormatBGRA8Unorm
	for y := 0; y < t.height; y++ {
		row := raw[y*pitch : y*pitch+t.width*bpp]
		for x := 0; x < t.width; x++ {
			px := row[x*bpp : (x+1)*bpp]
			var c [4]float32
			switch t.format {
			case gpu.FormatRGBA16Float:
				for i := range c {
					c[i] = halfToFloat(binary.LittleEndian.Uint16(px[2*i:]))
				}
			case gpu.FormatRG8:
				c = [4]float32{unorm(px[0]), unorm(px[1]), 0, 1}
			case gpu.FormatR8:
				c = [4]float32{unorm(px[0]), 0, 0, 1}
			default:
				c = [4]float32{unorm(px[0]), unorm(px[1]), unorm(px[2]), unorm(px[3])}
				if bgra {
					c[0], c[2] = c[2], c[0]
				}
			}
			out = append(out, c[:]...)
		}
	}
	return out
}

func unorm(b byte) float32 { return float32(b) / 255 }

// halfToFloat decodes an IEEE 754 binary16 value.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff
	switch {
	case exp == 0 && frac == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// Subnormal: value is frac * 2^-24.
		v := float32(frac) / (1 << 24)
		if sign != 0 {
			v = -v
		}
		return v
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | frac<<13)
	default:
		return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
	}
}
