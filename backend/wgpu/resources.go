// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/smaa/gpu"
)

// textureUsage is shared by every texture: any texture may be sampled,
// rendered to, uploaded or read back.
const textureUsage = gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageCopySrc |
	gputypes.TextureUsageCopyDst

// Texture is a HAL texture with its default view.
type Texture struct {
	dev       *Device
	raw       hal.Texture
	view      hal.TextureView
	label     string
	width     int
	height    int
	format    gpu.TextureFormat
	native    gputypes.TextureFormat
	filter    gpu.Filter
	usage     gputypes.TextureUsage
	destroyed bool
}

func (t *Texture) Label() string             { return t.label }
func (t *Texture) Width() int                { return t.width }
func (t *Texture) Height() int               { return t.height }
func (t *Texture) Format() gpu.TextureFormat { return t.format }

// Framebuffer renders into one texture.
type Framebuffer struct {
	dev       *Device
	tex       *Texture
	destroyed bool
}

func (f *Framebuffer) Label() string        { return f.tex.label }
func (f *Framebuffer) Texture() gpu.Texture { return f.tex }

func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	native := desc.Format.ToWGPUFormat()
	if native == gputypes.TextureFormatUndefined {
		return nil, fmt.Errorf("wgpu: texture %q: format %s: %w", desc.Label, desc.Format, gpu.ErrUnsupported)
	}
	t, err := d.createTexture(desc, native)
	if err != nil {
		return nil, err
	}
	d.log.Debug("wgpu: texture created", "label", desc.Label, "width", desc.Width, "height", desc.Height, "format", desc.Format)
	return t, nil
}

func (d *Device) createTexture(desc gpu.TextureDescriptor, native gputypes.TextureFormat) (*Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("wgpu: texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1}, //nolint:gosec // positive sizes
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        native,
		Usage:         textureUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        native,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(raw)
		return nil, fmt.Errorf("wgpu: create view %q: %w", desc.Label, err)
	}
	return &Texture{
		dev:    d,
		raw:    raw,
		view:   view,
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		native: native,
		filter: desc.Filter,
	}, nil
}

func (d *Device) WriteTexture(tex gpu.Texture, data []byte) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if t.format == gpu.FormatRGBA16Float {
		return fmt.Errorf("wgpu: write %q: %w", t.label, gpu.ErrUnsupported)
	}
	bpp := t.format.BytesPerPixel()
	if want := t.width * t.height * bpp; len(data) != want {
		return fmt.Errorf("wgpu: write %q: got %d bytes, want %d", t.label, len(data), want)
	}
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.raw, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(t.width * bpp), RowsPerImage: uint32(t.height)}, //nolint:gosec // positive sizes
		&hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},              //nolint:gosec // positive sizes
	)
	if err != nil {
		return fmt.Errorf("wgpu: write %q: %w", t.label, err)
	}
	t.usage = gputypes.TextureUsageCopyDst
	return nil
}

func (d *Device) DestroyTexture(tex gpu.Texture) {
	t, err := d.texture(tex)
	if err != nil {
		return
	}
	d.destroyTexture(t)
}

func (d *Device) destroyTexture(t *Texture) {
	if t.destroyed {
		return
	}
	d.device.DestroyTextureView(t.view)
	d.device.DestroyTexture(t.raw)
	t.destroyed = true
}

func (d *Device) CreateFramebuffer(tex gpu.Texture) (gpu.Framebuffer, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	return &Framebuffer{dev: d, tex: t}, nil
}

func (d *Device) DestroyFramebuffer(fb gpu.Framebuffer) {
	f, err := d.framebuffer(fb)
	if err != nil {
		return
	}
	if d.bound == f {
		d.bound = nil
	}
	f.destroyed = true
}

func (d *Device) sampler(t *Texture) hal.Sampler {
	if t.filter == gpu.FilterNearest {
		return d.nearest
	}
	return d.linear
}

func (d *Device) texture(tex gpu.Texture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t.dev != d {
		return nil, gpu.ErrForeignHandle
	}
	if t.destroyed {
		return nil, fmt.Errorf("wgpu: texture %q: %w", t.label, gpu.ErrDestroyed)
	}
	return t, nil
}

func (d *Device) framebuffer(fb gpu.Framebuffer) (*Framebuffer, error) {
	f, ok := fb.(*Framebuffer)
	if !ok || f.dev != d {
		return nil, gpu.ErrForeignHandle
	}
	if f.destroyed || f.tex.destroyed {
		return nil, fmt.Errorf("wgpu: framebuffer %q: %w", f.tex.label, gpu.ErrDestroyed)
	}
	return f, nil
}
