package software

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa/gpu"
)

// winVertex is a vertex in window coordinates, y up.
type winVertex struct {
	x, y float64
	u, v float64
}

// shadeFunc returns the fragment color at texture coordinates (u, v), or
// false to discard the fragment.
type shadeFunc func(u, v float64) (rgba, bool)

// project maps three vertices through mvp into the window of target.
func project(mvp mgl32.Mat4, tri []gpu.Vertex, target *Texture) [3]winVertex {
	var out [3]winVertex
	w, h := float64(target.width), float64(target.height)
	for i, v := range tri[:3] {
		clip := mvp.Mul4x1(mgl32.Vec4{v.Position.X(), v.Position.Y(), 0, 1})
		cw := float64(clip.W())
		if cw == 0 {
			cw = 1
		}
		out[i] = winVertex{
			x: (float64(clip.X())/cw + 1) / 2 * w,
			y: (float64(clip.Y())/cw + 1) / 2 * h,
			u: float64(v.TexCoord.X()),
			v: float64(v.TexCoord.Y()),
		}
	}
	return out
}

// edgeFn is twice the signed area of (a, b, p). It is evaluated from the
// lexicographically smaller endpoint so that edgeFn(b, a, p) is exactly
// -edgeFn(a, b, p) in floating point.
func edgeFn(a, b winVertex, px, py float64) float64 {
	if b.x < a.x || (b.x == a.x && b.y < a.y) {
		return -edgeFn(b, a, px, py)
	}
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// owns reports whether a pixel center lying exactly on edge a->b of a
// counter-clockwise triangle belongs to it. Shared edges are traversed in
// opposite directions by their two triangles, so exactly one owns them.
func owns(a, b winVertex) bool {
	dy, dx := b.y-a.y, b.x-a.x
	return dy > 0 || (dy == 0 && dx < 0)
}

func covered(w float64, a, b winVertex) bool {
	return w > 0 || (w == 0 && owns(a, b))
}

// rasterize fills one triangle into target, blending when enabled.
func (d *Device) rasterize(target *Texture, tri [3]winVertex, shade shadeFunc) {
	v0, v1, v2 := tri[0], tri[1], tri[2]
	area := edgeFn(v0, v1, v2.x, v2.y)
	if area == 0 || math.IsNaN(area) {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	minX := max(0, int(math.Floor(min(v0.x, v1.x, v2.x))))
	maxX := min(target.width-1, int(math.Ceil(max(v0.x, v1.x, v2.x))))
	minY := max(0, int(math.Floor(min(v0.y, v1.y, v2.y))))
	maxY := min(target.height-1, int(math.Ceil(max(v0.y, v1.y, v2.y))))

	for j := minY; j <= maxY; j++ {
		py := float64(j) + 0.5
		for i := minX; i <= maxX; i++ {
			px := float64(i) + 0.5
			w0 := edgeFn(v1, v2, px, py)
			w1 := edgeFn(v2, v0, px, py)
			w2 := edgeFn(v0, v1, px, py)
			if !covered(w0, v1, v2) || !covered(w1, v2, v0) || !covered(w2, v0, v1) {
				continue
			}
			b0, b1, b2 := w0/area, w1/area, w2/area
			u := b0*v0.u + b1*v1.u + b2*v2.u
			v := b0*v0.v + b1*v1.v + b2*v2.v

			src, ok := shade(u, v)
			if !ok {
				continue
			}
			if d.blend {
				a := src[3]
				src = src.scale(a).add(target.at(i, j).scale(1 - a))
			}
			target.set(i, j, src)
		}
	}
}
