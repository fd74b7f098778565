// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogl

package gl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/smaa/gpu"
)

// Texture is a GL 2D texture.
type Texture struct {
	dev       *Device
	id        uint32
	label     string
	width     int
	height    int
	format    gpu.TextureFormat
	destroyed bool
}

func (t *Texture) Label() string             { return t.label }
func (t *Texture) Width() int                { return t.width }
func (t *Texture) Height() int               { return t.height }
func (t *Texture) Format() gpu.TextureFormat { return t.format }

// ID returns the GL texture name.
func (t *Texture) ID() uint32 { return t.id }

// Framebuffer is a GL framebuffer object with one color attachment.
type Framebuffer struct {
	dev       *Device
	id        uint32
	tex       *Texture
	destroyed bool
}

func (f *Framebuffer) Label() string        { return f.tex.label }
func (f *Framebuffer) Texture() gpu.Texture { return f.tex }

// glFormat returns the internal format, pixel format and component type.
func glFormat(f gpu.TextureFormat) (internal int32, format, xtype uint32, err error) {
	switch f {
	case gpu.FormatRGBA16Float:
		return gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT, nil
	case gpu.FormatRGBA8:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, nil
	case gpu.FormatRG8:
		return gl.RG8, gl.RG, gl.UNSIGNED_BYTE, nil
	case gpu.FormatR8:
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE, nil
	default:
		return 0, 0, 0, fmt.Errorf("gl: format %s: %w", f, gpu.ErrUnsupported)
	}
}

func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("gl: texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	internal, format, xtype, err := glFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	filter := int32(gl.LINEAR)
	if desc.Filter == gpu.FilterNearest {
		filter = gl.NEAREST
	}

	t := &Texture{dev: d, label: desc.Label, width: desc.Width, height: desc.Height, format: desc.Format}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(desc.Width), int32(desc.Height), 0, format, xtype, nil)
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &t.id)
		return nil, fmt.Errorf("gl: texture %q: error 0x%x", desc.Label, code)
	}
	return t, nil
}

func (d *Device) WriteTexture(tex gpu.Texture, data []byte) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if t.format == gpu.FormatRGBA16Float {
		return fmt.Errorf("gl: write %q: %w", t.label, gpu.ErrUnsupported)
	}
	if want := t.width * t.height * t.format.BytesPerPixel(); len(data) != want {
		return fmt.Errorf("gl: write %q: got %d bytes, want %d", t.label, len(data), want)
	}
	_, format, xtype, err := glFormat(t.format)
	if err != nil {
		return err
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(t.width), int32(t.height), format, xtype, gl.Ptr(data))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl: write %q: error 0x%x", t.label, code)
	}
	return nil
}

func (d *Device) DestroyTexture(tex gpu.Texture) {
	t, err := d.texture(tex)
	if err != nil {
		return
	}
	gl.DeleteTextures(1, &t.id)
	t.destroyed = true
}

func (d *Device) CreateFramebuffer(tex gpu.Texture) (gpu.Framebuffer, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	f := &Framebuffer{dev: d, tex: t}
	gl.GenFramebuffers(1, &f.id)
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.id)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.id, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)

	prev := uint32(0)
	if d.bound != nil {
		prev = d.bound.id
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, prev)

	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &f.id)
		return nil, fmt.Errorf("%w: %q status 0x%x", ErrIncompleteFramebuffer, t.label, status)
	}
	return f, nil
}

func (d *Device) DestroyFramebuffer(fb gpu.Framebuffer) {
	f, err := d.framebuffer(fb)
	if err != nil {
		return
	}
	if d.bound == f {
		d.BindFramebuffer(nil)
	}
	gl.DeleteFramebuffers(1, &f.id)
	f.destroyed = true
}

func (d *Device) texture(tex gpu.Texture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t.dev != d {
		return nil, gpu.ErrForeignHandle
	}
	if t.destroyed {
		return nil, fmt.Errorf("gl: texture %q: %w", t.label, gpu.ErrDestroyed)
	}
	return t, nil
}

func (d *Device) framebuffer(fb gpu.Framebuffer) (*Framebuffer, error) {
	f, ok := fb.(*Framebuffer)
	if !ok || f.dev != d {
		return nil, gpu.ErrForeignHandle
	}
	if f.destroyed {
		return nil, fmt.Errorf("gl: framebuffer %q: %w", f.tex.label, gpu.ErrDestroyed)
	}
	return f, nil
}
