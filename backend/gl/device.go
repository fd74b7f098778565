//go:build !nogl

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/shader"
)

// ErrIncompleteFramebuffer is returned when a texture cannot be used as a
// color attachment.
var ErrIncompleteFramebuffer = errors.New("gl: framebuffer incomplete")

// floatsPerVertex is position (2) plus texture coordinate (2).
const floatsPerVertex = 4

// Device is an OpenGL implementation of gpu.Device.
type Device struct {
	width   int
	height  int
	vao     uint32
	vbo     uint32
	builtin *Program
	bound   *Framebuffer
	blend   bool
	log     *slog.Logger
	scratch []float32
}

var (
	_ gpu.Device  = (*Device)(nil)
	_ gpu.Reader  = (*Device)(nil)
	_ gpu.Resizer = (*Device)(nil)
)

// New initializes the GL bindings on the current context. width and
// height are the size of the default framebuffer.
func New(width, height int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl: init: %w", err)
	}
	d := &Device{log: slog.New(nopHandler{})}
	if err := d.Resize(width, height); err != nil {
		return nil, err
	}

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointer(attribPosition, 2, gl.FLOAT, false, floatsPerVertex*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(attribTexCoord)
	gl.VertexAttribPointer(attribTexCoord, 2, gl.FLOAT, false, floatsPerVertex*4, gl.PtrOffset(2*4))

	prog, err := link(shader.Stage(0), builtinVertex, builtinFragment)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("gl: built-in program: %w", err)
	}
	prog.dev = d
	d.builtin = prog

	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	d.SetBlend(true)

	d.log.Info("gl: device ready", "version", gl.GoStr(gl.GetString(gl.VERSION)), "renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	return d, nil
}

// SetLogger sets the device logger. Nil restores the silent default.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	d.log = l
}

// Resize records the size of the default framebuffer.
func (d *Device) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gl: invalid surface size %dx%d", width, height)
	}
	d.width, d.height = width, height
	return nil
}

// Close deletes the objects owned by the device itself.
func (d *Device) Close() {
	if d.builtin != nil {
		gl.DeleteProgram(d.builtin.id)
		d.builtin = nil
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
		d.vbo = 0
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func (d *Device) Language() shader.Language { return shader.GLSL }

func (d *Device) SetBlend(enabled bool) {
	if enabled {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
	d.blend = enabled
}

func (d *Device) BindFramebuffer(fb gpu.Framebuffer) {
	if fb == nil {
		d.bound = nil
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	f, err := d.framebuffer(fb)
	if err != nil {
		d.log.Warn("gl: bind framebuffer", "err", err)
		d.bound = nil
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	d.bound = f
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.id)
}

func (d *Device) Framebuffer() gpu.Framebuffer {
	if d.bound == nil {
		return nil
	}
	return d.bound
}

func (d *Device) viewport() (int32, int32) {
	if d.bound != nil {
		return int32(d.bound.tex.width), int32(d.bound.tex.height)
	}
	return int32(d.width), int32(d.height)
}

func (d *Device) Clear(c gpu.Color) {
	w, h := d.viewport()
	gl.Viewport(0, 0, w, h)
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) Draw(dc gpu.DrawCall) error {
	if len(dc.Vertices)%3 != 0 {
		return fmt.Errorf("gl: draw %q: %d vertices is not a triangle list", dc.Label, len(dc.Vertices))
	}
	if len(dc.Vertices) == 0 {
		return nil
	}

	prog := d.builtin
	if dc.Program != nil {
		p, err := d.program(dc.Program)
		if err != nil {
			return fmt.Errorf("gl: draw %q: %w", dc.Label, err)
		}
		prog = p
	}
	gl.UseProgram(prog.id)

	d.setTransforms(prog, dc)

	textured := int32(0)
	for unit, tex := range dc.Textures {
		if tex == nil {
			continue
		}
		t, err := d.texture(tex)
		if err != nil {
			return fmt.Errorf("gl: draw %q: unit %d: %w", dc.Label, unit, err)
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		if unit == 0 {
			textured = 1
		}
	}
	if prog == d.builtin {
		gl.Uniform4f(prog.uniform("color"), dc.Color.R, dc.Color.G, dc.Color.B, dc.Color.A)
		gl.Uniform1i(prog.uniform("textured"), textured)
		gl.Uniform1i(prog.uniform("texture0"), 0)
	}

	d.scratch = d.scratch[:0]
	for _, v := range dc.Vertices {
		d.scratch = append(d.scratch, v.Position.X(), v.Position.Y(), v.TexCoord.X(), v.TexCoord.Y())
	}
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(d.scratch)*4, gl.Ptr(d.scratch), gl.STREAM_DRAW)

	w, h := d.viewport()
	gl.Viewport(0, 0, w, h)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(dc.Vertices)))

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl: draw %q: error 0x%x", dc.Label, code)
	}
	return nil
}

// setTransforms uploads the model-view and projection uniforms, with
// zero matrices replaced by the identity.
func (d *Device) setTransforms(p *Program, dc gpu.DrawCall) {
	mv, proj := dc.ModelView, dc.Projection
	if mv == (mgl32.Mat4{}) {
		mv = mgl32.Ident4()
	}
	if proj == (mgl32.Mat4{}) {
		proj = mgl32.Ident4()
	}
	gl.UniformMatrix4fv(p.modelView, 1, false, &mv[0])
	gl.UniformMatrix4fv(p.projection, 1, false, &proj[0])
}

// ReadPixels reads fb, or the default framebuffer for nil, as RGBA floats
// with rows bottom-up.
func (d *Device) ReadPixels(fb gpu.Framebuffer) ([]float32, error) {
	id := uint32(0)
	w, h := d.width, d.height
	if fb != nil {
		f, err := d.framebuffer(fb)
		if err != nil {
			return nil, err
		}
		id, w, h = f.id, f.tex.width, f.tex.height
	}

	prev := d.bound
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, id)
	pix := make([]float32, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.FLOAT, gl.Ptr(pix))
	if prev != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, prev.id)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, fmt.Errorf("gl: read pixels: error 0x%x", code)
	}
	return pix, nil
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
