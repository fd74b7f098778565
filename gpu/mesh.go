// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "github.com/go-gl/mathgl/mgl32"

// Quad returns two triangles covering the rectangle (x0, y0)-(x1, y1) with
// texture coordinates (0, 0)-(1, 1).
func Quad(x0, y0, x1, y1 float32) []Vertex {
	bl := Vertex{Position: mgl32.Vec2{x0, y0}, TexCoord: mgl32.Vec2{0, 0}}
	br := Vertex{Position: mgl32.Vec2{x1, y0}, TexCoord: mgl32.Vec2{1, 0}}
	tr := Vertex{Position: mgl32.Vec2{x1, y1}, TexCoord: mgl32.Vec2{1, 1}}
	tl := Vertex{Position: mgl32.Vec2{x0, y1}, TexCoord: mgl32.Vec2{0, 1}}
	return []Vertex{bl, br, tr, bl, tr, tl}
}

// FullScreen is a clip-space quad for use with identity transforms.
var FullScreen = Quad(-1, -1, 1, 1)

// PixelProjection maps pixel coordinates of a width x height target to
// clip space, origin at the bottom left.
func PixelProjection(width, height int) mgl32.Mat4 {
	return mgl32.Ortho2D(0, float32(width), 0, float32(height))
}
