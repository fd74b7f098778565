// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa/shader"
)

// Common device errors.
var (
	// ErrForeignHandle is returned when a handle created by another device
	// is passed to a device.
	ErrForeignHandle = errors.New("gpu: handle belongs to another device")

	// ErrDestroyed is returned when a destroyed handle is used.
	ErrDestroyed = errors.New("gpu: handle already destroyed")

	// ErrUnsupported is returned for operations a device cannot perform.
	ErrUnsupported = errors.New("gpu: unsupported operation")
)

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width and Height are the texture size in pixels.
	Width  int
	Height int

	// Format is the texture pixel format.
	Format TextureFormat

	// Filter selects linear or nearest sampling. Coordinates outside the
	// texture always clamp to the edge.
	Filter Filter
}

// Texture is a 2D texture owned by a device.
type Texture interface {
	Label() string
	Width() int
	Height() int
	Format() TextureFormat
}

// Framebuffer is a render target wrapping one color texture.
type Framebuffer interface {
	Label() string
	Texture() Texture
}

// Program is a compiled pass program.
type Program interface {
	Label() string
	Stage() shader.Stage
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = Color{}
	Black       = Color{A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
)

// Vertex is one quad or triangle corner.
type Vertex struct {
	Position mgl32.Vec2
	TexCoord mgl32.Vec2
}

// DrawCall describes one draw of a triangle list.
type DrawCall struct {
	// Label names the draw in traces and logs.
	Label string

	// Program is the pass program, or nil for the device's built-in
	// program: Color, multiplied by Textures[0] when present.
	Program Program

	// Textures are bound to units by index.
	Textures []Texture

	Color Color

	// ModelView and Projection transform vertex positions. A zero matrix
	// is treated as the identity.
	ModelView  mgl32.Mat4
	Projection mgl32.Mat4

	// Vertices holds whole triangles.
	Vertices []Vertex
}

// MVP returns Projection * ModelView with zero matrices replaced by the
// identity.
func (dc *DrawCall) MVP() mgl32.Mat4 {
	mv, proj := dc.ModelView, dc.Projection
	if mv == (mgl32.Mat4{}) {
		mv = mgl32.Ident4()
	}
	if proj == (mgl32.Mat4{}) {
		proj = mgl32.Ident4()
	}
	return proj.Mul4(mv)
}

// Device is the rendering contract of the pipeline. A device is used from
// a single goroutine.
type Device interface {
	// Language is the shading language CreateProgram accepts.
	Language() shader.Language

	CreateTexture(desc TextureDescriptor) (Texture, error)

	// WriteTexture uploads a full image in the texture's format, rows
	// bottom-up.
	WriteTexture(tex Texture, data []byte) error
	DestroyTexture(tex Texture)

	CreateFramebuffer(tex Texture) (Framebuffer, error)
	DestroyFramebuffer(fb Framebuffer)

	CreateProgram(src shader.Program) (Program, error)

	// SetSampler binds a sampler uniform to a texture unit. Bindings are
	// set once after creation and stay for the program's lifetime.
	SetSampler(p Program, name string, unit int) error
	DestroyProgram(p Program)

	// BindFramebuffer selects the draw target; nil is the default surface.
	BindFramebuffer(fb Framebuffer)

	// Framebuffer returns the bound framebuffer, nil for the surface.
	Framebuffer() Framebuffer

	// SetBlend enables or disables source-alpha blending.
	SetBlend(enabled bool)

	// Clear fills the bound framebuffer.
	Clear(c Color)

	Draw(dc DrawCall) error
}

// Reader is implemented by devices that can read pixels back.
type Reader interface {
	// ReadPixels returns RGBA float values of fb, rows bottom-up. A nil
	// fb reads the default surface.
	ReadPixels(fb Framebuffer) ([]float32, error)
}

// Resizer is implemented by devices that own their default surface.
type Resizer interface {
	Resize(width, height int) error
}
