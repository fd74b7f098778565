// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa/gpu"
)

// Child is scene content drawn into the albedo target every frame.
type Child interface {
	Draw(ctx *DrawContext) error
}

// ChildFunc adapts a function to Child. Function values are not
// comparable, so a ChildFunc can only be detached with RemoveAll.
type ChildFunc func(ctx *DrawContext) error

// Draw calls f(ctx).
func (f ChildFunc) Draw(ctx *DrawContext) error { return f(ctx) }

// DrawContext is passed to children while the albedo target is bound.
// Coordinates are pixels of the pipeline size, origin at the bottom left.
type DrawContext struct {
	Device     gpu.Device
	Width      int
	Height     int
	ModelView  mgl32.Mat4
	Projection mgl32.Mat4
}

// Draw issues dc with the context transforms filled in where dc leaves
// them zero.
func (c *DrawContext) Draw(dc gpu.DrawCall) error {
	if dc.ModelView == (mgl32.Mat4{}) {
		dc.ModelView = c.ModelView
	}
	if dc.Projection == (mgl32.Mat4{}) {
		dc.Projection = c.Projection
	}
	return c.Device.Draw(dc)
}

// Shape is a solid or textured triangle list in pixel coordinates.
type Shape struct {
	Label    string
	Color    gpu.Color
	Texture  gpu.Texture
	Vertices []gpu.Vertex
}

// Draw issues the shape as one draw call in the context's pixel space.
func (s *Shape) Draw(ctx *DrawContext) error {
	dc := gpu.DrawCall{Label: s.Label, Color: s.Color, Vertices: s.Vertices}
	if s.Texture != nil {
		dc.Textures = []gpu.Texture{s.Texture}
	}
	return ctx.Draw(dc)
}

// Triangle returns a solid triangle.
func Triangle(a, b, c mgl32.Vec2, color gpu.Color) *Shape {
	return &Shape{
		Label: "triangle",
		Color: color,
		Vertices: []gpu.Vertex{
			{Position: a}, {Position: b}, {Position: c},
		},
	}
}

// Rect returns a solid axis-aligned rectangle.
func Rect(x0, y0, x1, y1 float32, color gpu.Color) *Shape {
	return &Shape{Label: "rect", Color: color, Vertices: gpu.Quad(x0, y0, x1, y1)}
}

// Image returns a rectangle showing tex.
func Image(tex gpu.Texture, x0, y0, x1, y1 float32) *Shape {
	return &Shape{Label: "image", Color: gpu.White, Texture: tex, Vertices: gpu.Quad(x0, y0, x1, y1)}
}
