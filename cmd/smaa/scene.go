package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa"
	"github.com/gogpu/smaa/gpu"
)

// demoScene draws hard-edged geometry in pixel coordinates, origin at the
// bottom left: a gradient background, overlapping triangles, rotated squares
// and a star.
func demoScene(w, h float32) []smaa.Child {
	var out []smaa.Child

	const steps = 32
	for i := range steps {
		t := float32(i) / steps
		c := gpu.Color{R: 0.1 + t*0.4, G: 0.2 + t*0.3, B: 0.4 + t*0.2, A: 1}
		out = append(out, smaa.Rect(0, h*t, w, h*(t+1.0/steps), c))
	}

	s := min(w, h) / 600
	at := func(x, y float32) mgl32.Vec2 { return mgl32.Vec2{x * s, y * s} }

	out = append(out,
		smaa.Triangle(at(90, 380), at(260, 520), at(230, 330), gpu.Color{R: 1, G: 0.3, B: 0.3, A: 0.8}),
		smaa.Triangle(at(140, 300), at(320, 470), at(330, 280), gpu.Color{R: 0.3, G: 1, B: 0.3, A: 0.8}),
		smaa.Rect(350*s, 420*s, 470*s, 500*s, gpu.Color{R: 1, G: 0.8, A: 1}),
	)

	center := at(620, 450)
	for i := range 8 {
		rot := mgl32.Rotate2D(float32(i) * math.Pi / 16)
		var pts [4]mgl32.Vec2
		for j, p := range [4]mgl32.Vec2{{-30, -30}, {30, -30}, {30, 30}, {-30, 30}} {
			pts[j] = center.Add(rot.Mul2x1(p.Mul(s)))
		}
		hue := float64(i) / 8
		c := gpu.Color{R: float32(0.5 + 0.5*math.Cos(2*math.Pi*hue)), G: float32(0.5 + 0.5*math.Cos(2*math.Pi*(hue+1.0/3))), B: float32(0.5 + 0.5*math.Cos(2*math.Pi*(hue+2.0/3))), A: 0.7}
		out = append(out,
			smaa.Triangle(pts[0], pts[1], pts[2], c),
			smaa.Triangle(pts[0], pts[2], pts[3], c),
		)
	}

	out = append(out, star(at(400, 180), 90*s, 45*s, gpu.Color{R: 1, G: 1, A: 1})...)
	return out
}

// star returns a five-pointed star as a fan of triangles around center.
func star(center mgl32.Vec2, outer, inner float32, c gpu.Color) []smaa.Child {
	const points = 5
	var rim []mgl32.Vec2
	for i := range points * 2 {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := float64(i)*math.Pi/points + math.Pi/2
		rim = append(rim, center.Add(mgl32.Vec2{r * float32(math.Cos(angle)), r * float32(math.Sin(angle))}))
	}
	out := make([]smaa.Child, 0, len(rim))
	for i := range rim {
		out = append(out, smaa.Triangle(center, rim[i], rim[(i+1)%len(rim)], c))
	}
	return out
}
