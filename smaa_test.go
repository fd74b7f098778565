// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"errors"
	"math"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa/backend/software"
	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/lut"
	"github.com/gogpu/smaa/shader"
)

func newSoftware(t *testing.T, w, h int) *software.Device {
	t.Helper()
	dev, err := software.New(w, h)
	if err != nil {
		t.Fatalf("software.New() error = %v", err)
	}
	return dev
}

func newAA(t *testing.T, dev gpu.Device, w, h int, opts ...Option) *Antialiaser {
	t.Helper()
	aa, err := New(dev, w, h, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { aa.Close() })
	return aa
}

func readPixels(t *testing.T, dev gpu.Device, fb gpu.Framebuffer) []float32 {
	t.Helper()
	pix, err := dev.(gpu.Reader).ReadPixels(fb)
	if err != nil {
		t.Fatalf("ReadPixels() error = %v", err)
	}
	return pix
}

func pixel(pix []float32, w, x, y int) [4]float32 {
	i := (y*w + x) * 4
	return [4]float32{pix[i], pix[i+1], pix[i+2], pix[i+3]}
}

// testTriangle is the opaque white triangle used by the end-to-end tests.
func testTriangle(w, h float32) *Shape {
	return Triangle(
		mgl32.Vec2{w / 8, h / 6},
		mgl32.Vec2{w * 7 / 8, h / 4},
		mgl32.Vec2{w / 2, h * 5 / 6},
		gpu.White,
	)
}

func TestConfigErrorsBeforeGPUWork(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		opts []Option
		want error
	}{
		{"quality", 8, 8, []Option{WithQuality(Quality(9))}, ErrInvalidQuality},
		{"debug", 8, 8, []Option{WithDebug(DebugMode(7))}, ErrInvalidDebugMode},
		{"zero width", 0, 8, nil, ErrInvalidSize},
		{"negative height", 8, -1, nil, ErrInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace := gpu.NewTrace(newSoftware(t, 8, 8))
			_, err := New(trace, tt.w, tt.h, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("New() error = %v, want %v", err, tt.want)
			}
			if ops := trace.Ops(); len(ops) != 0 {
				t.Errorf("device used before validation: %v", ops)
			}
		})
	}
}

func TestSetterValidation(t *testing.T) {
	trace := gpu.NewTrace(newSoftware(t, 16, 16))
	aa := newAA(t, trace, 16, 16)
	trace.Reset()

	if err := aa.SetQuality(Quality(4)); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("SetQuality(4) error = %v", err)
	}
	if err := aa.SetDebug(DebugMode(4)); !errors.Is(err, ErrInvalidDebugMode) {
		t.Errorf("SetDebug(4) error = %v", err)
	}
	if err := aa.SetSize(0, 0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("SetSize(0, 0) error = %v", err)
	}
	if ops := trace.Ops(); len(ops) != 0 {
		t.Errorf("invalid configuration reached the device: %v", ops)
	}
	if aa.Quality() != QualityUltra || aa.Debug() != DebugNone {
		t.Errorf("configuration changed by rejected values: %v %v", aa.Quality(), aa.Debug())
	}
}

func TestDeterministicSources(t *testing.T) {
	for _, q := range Qualities {
		dev := newSoftware(t, 32, 24)
		aa := newAA(t, dev, 32, 24, WithQuality(q))
		first := aa.Pipeline().Sources()

		// Force a real rebuild back to the same configuration.
		other := QualityLow
		if q == QualityLow {
			other = QualityHigh
		}
		if err := aa.SetQuality(other); err != nil {
			t.Fatalf("SetQuality(%v) error = %v", other, err)
		}
		if err := aa.SetQuality(q); err != nil {
			t.Fatalf("SetQuality(%v) error = %v", q, err)
		}
		second := aa.Pipeline().Sources()

		for _, stage := range shader.Stages {
			a, b := first.Program(stage), second.Program(stage)
			if a.Vertex != b.Vertex || a.Fragment != b.Fragment {
				t.Errorf("%v/%v: sources differ between builds", q, stage)
			}
		}
	}
}

func TestEndToEndTriangle(t *testing.T) {
	const w, h = 800, 600
	dev := newSoftware(t, w, h)
	aa := newAA(t, dev, w, h, WithQuality(QualityUltra))
	aa.Add(testTriangle(w, h))

	if err := aa.Draw(Frame{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	surface := readPixels(t, dev, nil)

	// Centroid of the triangle.
	if c := pixel(surface, w, 400, 250); c != [4]float32{1, 1, 1, 1} {
		t.Errorf("interior pixel = %v, want opaque white", c)
	}
	if c := pixel(surface, w, 5, 5); c != [4]float32{} {
		t.Errorf("background pixel = %v, want transparent", c)
	}

	partial := 0
	for i := 0; i < len(surface); i += 4 {
		if r := surface[i]; r > 0.02 && r < 0.98 {
			partial++
		}
	}
	if partial == 0 {
		t.Error("no intermediate pixels: edges were not antialiased")
	}
}

func TestDebugEdgesShowsEdgeTarget(t *testing.T) {
	const w, h = 800, 600
	dev := newSoftware(t, w, h)
	aa := newAA(t, dev, w, h)
	aa.Add(testTriangle(w, h))

	if err := aa.Draw(Frame{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	targets, _ := aa.Targets()
	before := map[TargetKind][]float32{
		TargetAlbedo: readPixels(t, dev, targets.Albedo.Framebuffer),
		TargetEdges:  readPixels(t, dev, targets.Edges.Framebuffer),
		TargetBlend:  readPixels(t, dev, targets.Blend.Framebuffer),
	}

	if err := aa.SetDebug(DebugEdges); err != nil {
		t.Fatalf("SetDebug() error = %v", err)
	}
	if ov := aa.Overlay(); ov == nil || ov.Source != targets.Edges {
		t.Fatalf("Overlay() = %+v, want the edge target", ov)
	}
	if err := aa.Draw(Frame{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	edges := readPixels(t, dev, targets.Edges.Framebuffer)
	surface := readPixels(t, dev, nil)
	nonZero := 0
	for i := 0; i < len(surface); i += 4 {
		for c := 0; c < 3; c++ {
			if math.Abs(float64(surface[i+c]-edges[i+c])) > 1e-3 {
				t.Fatalf("surface texel %d = %v, want edge texel %v", i/4, surface[i:i+4], edges[i:i+4])
			}
		}
		if edges[i] != 0 || edges[i+1] != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Error("edge target is empty")
	}
	if c := pixel(surface, w, 400, 250); c[0] != 0 || c[1] != 0 {
		t.Errorf("interior of the edge view = %v, want no edges", c)
	}

	for kind, want := range before {
		got := readPixels(t, dev, aa.Pipeline().Target(kind).Framebuffer)
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%v target changed by the debug overlay at %d", kind, i)
				break
			}
		}
	}
}

func TestDebugModesSelectTargets(t *testing.T) {
	aa := newAA(t, newSoftware(t, 16, 16), 16, 16)
	targets, ok := aa.Targets()
	if !ok {
		t.Fatal("Targets() not available on a built pipeline")
	}
	want := map[DebugMode]*RenderTarget{
		DebugEdges:  targets.Edges,
		DebugBlend:  targets.Blend,
		DebugSource: targets.Albedo,
	}
	for mode, target := range want {
		if err := aa.SetDebug(mode); err != nil {
			t.Fatalf("SetDebug(%v) error = %v", mode, err)
		}
		ov := aa.Overlay()
		if ov == nil || ov.Mode != mode || ov.Source != target {
			t.Errorf("SetDebug(%v): overlay = %+v", mode, ov)
		}
	}
	if err := aa.SetDebug(DebugNone); err != nil {
		t.Fatalf("SetDebug(none) error = %v", err)
	}
	if aa.Overlay() != nil {
		t.Error("overlay still active after DebugNone")
	}
}

func TestBlendSequence(t *testing.T) {
	trace := gpu.NewTrace(newSoftware(t, 32, 32))
	aa := newAA(t, trace, 32, 32)
	aa.Add(testTriangle(32, 32))

	check := func(want []bool) {
		t.Helper()
		trace.Reset()
		if err := aa.Draw(Frame{}); err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
		got := trace.BlendChanges()
		if len(got) != len(want) {
			t.Fatalf("blend changes = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("blend changes = %v, want %v", got, want)
			}
		}
	}

	check([]bool{true, false, true})

	draws := map[string]gpu.Op{}
	for _, op := range trace.Filter(gpu.OpDraw) {
		draws[op.Label] = op
	}
	wantDraws := map[string]struct {
		blend  bool
		target string
	}{
		"triangle":              {true, "albedo"},
		"edge_detection":        {false, "edges"},
		"blending_weight":       {false, "blend"},
		"neighborhood_blending": {true, "surface"},
	}
	for label, want := range wantDraws {
		op, ok := draws[label]
		if !ok {
			t.Errorf("no %s draw recorded", label)
			continue
		}
		if op.Blend != want.blend || op.Target != want.target {
			t.Errorf("%s: blend=%t target=%s, want blend=%t target=%s", label, op.Blend, op.Target, want.blend, want.target)
		}
	}

	if err := aa.SetDebug(DebugBlend); err != nil {
		t.Fatalf("SetDebug() error = %v", err)
	}
	check([]bool{true, false, true, false, true})
}

func TestFrameTransformAppliesToCompositeOnly(t *testing.T) {
	const size = 64
	trace := gpu.NewTrace(newSoftware(t, size, size))
	aa := newAA(t, trace, size, size)
	aa.Add(Rect(4, 4, 16, 16, gpu.White))

	move := mgl32.Translate3D(size/2, size/2, 0)
	trace.Reset()
	if err := aa.Draw(Frame{ModelView: move}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	pixelSpace := gpu.PixelProjection(size, size)
	wantMVP := map[string]mgl32.Mat4{
		"rect":                  pixelSpace,
		"edge_detection":        mgl32.Ident4(),
		"blending_weight":       mgl32.Ident4(),
		"neighborhood_blending": pixelSpace.Mul4(move),
	}
	for _, op := range trace.Filter(gpu.OpDraw) {
		want, ok := wantMVP[op.Label]
		if !ok {
			continue
		}
		if !op.MVP.ApproxEqual(want) {
			t.Errorf("%s: MVP = %v, want %v", op.Label, op.MVP, want)
		}
		delete(wantMVP, op.Label)
	}
	for label := range wantMVP {
		t.Errorf("no %s draw recorded", label)
	}

	targets, ok := aa.Targets()
	if !ok {
		t.Fatal("Targets() not built")
	}
	albedo := readPixels(t, trace, targets.Albedo.Framebuffer)
	if c := pixel(albedo, size, 8, 8); c != [4]float32{1, 1, 1, 1} {
		t.Errorf("albedo(8,8) = %v, want opaque white", c)
	}
	if c := pixel(albedo, size, 40, 40); c != [4]float32{} {
		t.Errorf("albedo(40,40) = %v, want transparent", c)
	}

	// Internal targets keep the scene in place.
	for name, fb := range map[string]gpu.Framebuffer{
		"edges": targets.Edges.Framebuffer,
		"blend": targets.Blend.Framebuffer,
	} {
		pix := readPixels(t, trace, fb)
		var near, far float32
		for y := range size {
			for x := range size {
				c := pixel(pix, size, x, y)
				v := c[0] + c[1] + c[2] + c[3]
				if x < 20 && y < 20 {
					near += v
				} else {
					far += v
				}
			}
		}
		if near == 0 {
			t.Errorf("%s: nothing around the rectangle", name)
		}
		if far != 0 {
			t.Errorf("%s: content outside the rectangle's neighborhood", name)
		}
	}

	surface := readPixels(t, trace, nil)
	if c := pixel(surface, size, 8, 8); c != [4]float32{} {
		t.Errorf("surface(8,8) = %v, want transparent", c)
	}
	if c := pixel(surface, size, 40, 40); c != [4]float32{1, 1, 1, 1} {
		t.Errorf("surface(40,40) = %v, want opaque white", c)
	}
}

func TestFrameClearsTargets(t *testing.T) {
	trace := gpu.NewTrace(newSoftware(t, 16, 16))
	aa := newAA(t, trace, 16, 16)
	trace.Reset()
	if err := aa.Draw(Frame{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	cleared := map[string]bool{}
	for _, op := range trace.Ops() {
		if op.Kind == gpu.OpDraw {
			break
		}
		if op.Kind == gpu.OpClear {
			cleared[op.Target] = true
		}
	}
	for _, name := range []string{"albedo", "edges", "blend"} {
		if !cleared[name] {
			t.Errorf("%s not cleared before the passes", name)
		}
	}
}

func TestDrawRestoresFramebuffer(t *testing.T) {
	dev := newSoftware(t, 16, 16)
	aa := newAA(t, dev, 16, 16)

	tex, _ := dev.CreateTexture(gpu.TextureDescriptor{Label: "host", Width: 16, Height: 16})
	fb, _ := dev.CreateFramebuffer(tex)
	dev.BindFramebuffer(fb)

	if err := aa.Draw(Frame{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if dev.Framebuffer() != fb {
		t.Error("Draw() did not restore the host framebuffer")
	}
	if !dev.Blend() {
		t.Error("Draw() left blending disabled")
	}
}

func TestResizeReallocatesTargets(t *testing.T) {
	dev := newSoftware(t, 64, 48)
	aa := newAA(t, dev, 64, 48)
	old, _ := aa.Targets()

	if err := aa.SetSize(40, 30); err != nil {
		t.Fatalf("SetSize() error = %v", err)
	}
	targets, ok := aa.Targets()
	if !ok {
		t.Fatal("Targets() unavailable after resize")
	}
	for _, rt := range []*RenderTarget{targets.Albedo, targets.Edges, targets.Blend} {
		if rt.Width != 40 || rt.Height != 30 {
			t.Errorf("%v target = %dx%d, want 40x30", rt.Kind, rt.Width, rt.Height)
		}
		if rt.Texture.Width() != 40 || rt.Texture.Height() != 30 {
			t.Errorf("%v texture = %dx%d, want 40x30", rt.Kind, rt.Texture.Width(), rt.Texture.Height())
		}
	}
	if targets.Albedo == old.Albedo || targets.Albedo.Texture == old.Albedo.Texture {
		t.Error("resize reused the old albedo target")
	}
	if w, h := aa.Size(); w != 40 || h != 30 {
		t.Errorf("Size() = %dx%d", w, h)
	}
}

func TestDebugDoesNotReallocate(t *testing.T) {
	trace := gpu.NewTrace(newSoftware(t, 16, 16))
	aa := newAA(t, trace, 16, 16)
	before, _ := aa.Targets()
	pipeline := aa.Pipeline()
	trace.Reset()

	for _, m := range []DebugMode{DebugEdges, DebugSource, DebugNone} {
		if err := aa.SetDebug(m); err != nil {
			t.Fatalf("SetDebug(%v) error = %v", m, err)
		}
	}
	if err := aa.SetQuality(aa.Quality()); err != nil {
		t.Fatalf("SetQuality(same) error = %v", err)
	}
	if err := aa.SetSize(16, 16); err != nil {
		t.Fatalf("SetSize(same) error = %v", err)
	}

	after, _ := aa.Targets()
	if aa.Pipeline() != pipeline || after != before {
		t.Error("targets were replaced")
	}
	if after.Edges.Texture != before.Edges.Texture || after.Blend.Framebuffer != before.Blend.Framebuffer {
		t.Error("handles changed")
	}
	if ops := trace.Ops(); len(ops) != 0 {
		t.Errorf("device calls without a rebuild: %v", ops)
	}
}

func TestSamplerUnitsBoundOnce(t *testing.T) {
	trace := gpu.NewTrace(newSoftware(t, 16, 16))
	aa := newAA(t, trace, 16, 16)

	want := []string{
		"SetSampler(edge_detection, albedo_tex=0)",
		"SetSampler(blending_weight, edge_tex=0)",
		"SetSampler(blending_weight, area_tex=1)",
		"SetSampler(blending_weight, search_tex=2)",
		"SetSampler(neighborhood_blending, albedo_tex=0)",
		"SetSampler(neighborhood_blending, blend_tex=1)",
	}
	got := trace.Filter(gpu.OpSetSampler)
	if len(got) != len(want) {
		t.Fatalf("SetSampler calls = %v", got)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}

	trace.Reset()
	if err := aa.Draw(Frame{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if n := len(trace.Filter(gpu.OpSetSampler)); n != 0 {
		t.Errorf("%d SetSampler calls during a frame", n)
	}
}

// flakyDevice fails texture creation on demand and counts live textures.
type flakyDevice struct {
	gpu.Device
	failAfter int // creations left before failing; negative never fails
	live      int
}

func (d *flakyDevice) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if d.failAfter == 0 {
		return nil, errors.New("out of memory")
	}
	if d.failAfter > 0 {
		d.failAfter--
	}
	tex, err := d.Device.CreateTexture(desc)
	if err == nil {
		d.live++
	}
	return tex, err
}

func (d *flakyDevice) DestroyTexture(tex gpu.Texture) {
	d.live--
	d.Device.DestroyTexture(tex)
}

func TestFailedRebuildLeavesUnbuilt(t *testing.T) {
	dev := &flakyDevice{Device: newSoftware(t, 16, 16), failAfter: -1}
	aa := newAA(t, dev, 16, 16, WithDebug(DebugEdges))
	child := testTriangle(16, 16)
	aa.Add(child)

	dev.failAfter = 2
	err := aa.SetSize(20, 20)
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("SetSize() error = %v, want ErrAllocation", err)
	}
	if aa.Built() || aa.Pipeline() != nil {
		t.Error("pipeline exposed after a failed rebuild")
	}
	if _, ok := aa.Targets(); ok {
		t.Error("Targets() available after a failed rebuild")
	}
	if dev.live != 0 {
		t.Errorf("%d textures leaked", dev.live)
	}
	if err := aa.Draw(Frame{}); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Draw() error = %v, want ErrNotBuilt", err)
	}
	if len(aa.Children()) != 1 {
		t.Errorf("children lost: %d", len(aa.Children()))
	}

	dev.failAfter = -1
	if err := aa.SetSize(20, 20); err != nil {
		t.Fatalf("retry SetSize() error = %v", err)
	}
	if !aa.Built() {
		t.Fatal("pipeline not built after retry")
	}
	if ov := aa.Overlay(); ov == nil || ov.Mode != DebugEdges {
		t.Errorf("debug mode not restored: %+v", ov)
	}
	if err := aa.Draw(Frame{}); err != nil {
		t.Errorf("Draw() after retry error = %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"missing table files", WithLookupFS(fstest.MapFS{}, lut.AreaFile, lut.SearchFile), lut.ErrMissing},
		{"short area table", WithLookupTables(&lut.Tables{Area: make([]byte, 3), Search: make([]byte, lut.SearchBytes)}), lut.ErrAreaSize},
		{"nil tables", WithLookupTables(nil), lut.ErrMissing},
		{"broken library", WithLibrary("#error \"broken\"\n", ""), ErrShaderCompile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &flakyDevice{Device: newSoftware(t, 8, 8), failAfter: -1}
			_, err := New(dev, 8, 8, tt.opt)
			if !errors.Is(err, tt.want) {
				t.Fatalf("New() error = %v, want %v", err, tt.want)
			}
			if dev.live != 0 {
				t.Errorf("%d textures leaked", dev.live)
			}
		})
	}
}

func TestLookupFromFS(t *testing.T) {
	tables := lut.Generate()
	fsys := fstest.MapFS{
		"a.raw": {Data: tables.Area},
		"s.raw": {Data: tables.Search},
	}
	aa := newAA(t, newSoftware(t, 8, 8), 8, 8, WithLookupFS(fsys, "a.raw", "s.raw"))
	area, search := aa.Pipeline().Lookup()
	if area.Width != lut.AreaWidth || area.Height != lut.AreaHeight || area.Format != gpu.FormatRG8 {
		t.Errorf("area texture = %+v", area)
	}
	if search.Filter != gpu.FilterNearest || search.Format != gpu.FormatR8 {
		t.Errorf("search texture = %+v", search)
	}
}

func TestReentrantCalls(t *testing.T) {
	aa := newAA(t, newSoftware(t, 8, 8), 8, 8)
	var inner []error
	aa.Add(ChildFunc(func(*DrawContext) error {
		inner = append(inner, aa.SetQuality(QualityLow), aa.Draw(Frame{}), aa.Close())
		return nil
	}))

	if err := aa.Draw(Frame{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	for i, err := range inner {
		if !errors.Is(err, ErrInFrame) {
			t.Errorf("inner call %d error = %v, want ErrInFrame", i, err)
		}
	}
	if aa.Quality() != QualityUltra {
		t.Error("quality changed from inside a frame")
	}
}

func TestChildErrorAbortsFrame(t *testing.T) {
	dev := newSoftware(t, 8, 8)
	aa := newAA(t, dev, 8, 8)
	boom := errors.New("boom")
	aa.Add(ChildFunc(func(*DrawContext) error { return boom }))

	if err := aa.Draw(Frame{}); !errors.Is(err, boom) {
		t.Errorf("Draw() error = %v, want boom", err)
	}
	if !dev.Blend() || dev.Framebuffer() != nil {
		t.Error("device state not restored after a failed frame")
	}
}

// labeled wraps another child. It is comparable by type but not when it
// holds a ChildFunc.
type labeled struct {
	name  string
	inner Child
}

func (l labeled) Draw(ctx *DrawContext) error { return l.inner.Draw(ctx) }

func TestRemoveUncomparableValues(t *testing.T) {
	aa := newAA(t, newSoftware(t, 8, 8), 8, 8)
	fn := ChildFunc(func(*DrawContext) error { return nil })
	wrappedFn := labeled{name: "fn", inner: fn}
	rect := Rect(0, 0, 4, 4, gpu.White)
	wrappedRect := labeled{name: "rect", inner: rect}
	aa.Add(wrappedFn)
	aa.Add(wrappedRect)

	tests := []struct {
		name  string
		child Child
		want  bool
	}{
		{"struct holding func", labeled{name: "fn", inner: fn}, false},
		{"struct holding func, no match", labeled{name: "other", inner: fn}, false},
		{"struct holding pointer", labeled{name: "rect", inner: rect}, true},
		{"already removed", wrappedRect, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Remove() panicked: %v", r)
				}
			}()
			if got := aa.Remove(tt.child); got != tt.want {
				t.Errorf("Remove() = %v, want %v", got, tt.want)
			}
		})
	}
	if n := len(aa.Children()); n != 1 {
		t.Errorf("Children() = %d, want 1", n)
	}
}

func TestChildren(t *testing.T) {
	aa := newAA(t, newSoftware(t, 8, 8), 8, 8)
	rect := Rect(0, 0, 4, 4, gpu.White)
	fn := ChildFunc(func(*DrawContext) error { return nil })
	aa.Add(rect)
	aa.Add(fn)
	aa.Add(nil)

	if n := len(aa.Children()); n != 2 {
		t.Fatalf("Children() = %d, want 2", n)
	}
	if aa.Remove(fn) {
		t.Error("Remove(ChildFunc) = true")
	}
	if !aa.Remove(rect) {
		t.Error("Remove(rect) = false")
	}
	if aa.Remove(rect) {
		t.Error("second Remove(rect) = true")
	}
	aa.RemoveAll()
	if n := len(aa.Children()); n != 0 {
		t.Errorf("Children() after RemoveAll = %d", n)
	}
}

func TestClose(t *testing.T) {
	dev := &flakyDevice{Device: newSoftware(t, 8, 8), failAfter: -1}
	aa, err := New(dev, 8, 8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := aa.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if dev.live != 0 {
		t.Errorf("%d textures alive after Close", dev.live)
	}
	if err := aa.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := aa.Draw(Frame{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Draw() error = %v, want ErrClosed", err)
	}
	if err := aa.SetQuality(QualityLow); !errors.Is(err, ErrClosed) {
		t.Errorf("SetQuality() error = %v, want ErrClosed", err)
	}
	if err := aa.SetDebug(DebugEdges); !errors.Is(err, ErrClosed) {
		t.Errorf("SetDebug() error = %v, want ErrClosed", err)
	}
}
