package software

import (
	"testing"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/lut"
	"github.com/gogpu/smaa/shader"
)

func TestEdgeDetectionVerticalStep(t *testing.T) {
	const w, h = 8, 4
	d := newDevice(t, w, h)
	src := assemble(t, shader.PresetUltra, w, h)

	albedo, _ := d.CreateTexture(gpu.TextureDescriptor{Label: "albedo", Width: w, Height: h})
	albedoFB, _ := d.CreateFramebuffer(albedo)
	edges, _ := d.CreateTexture(gpu.TextureDescriptor{Label: "edges", Width: w, Height: h})
	edgesFB, _ := d.CreateFramebuffer(edges)

	d.BindFramebuffer(albedoFB)
	d.Clear(gpu.Black)
	d.SetBlend(false)
	if err := d.Draw(gpu.DrawCall{Color: gpu.White, Projection: gpu.PixelProjection(w, h), Vertices: gpu.Quad(w/2, 0, w, h)}); err != nil {
		t.Fatalf("Draw(albedo) error = %v", err)
	}

	p, err := d.CreateProgram(src.Edge)
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	if err := d.SetSampler(p, shader.SamplerAlbedo, 0); err != nil {
		t.Fatalf("SetSampler() error = %v", err)
	}
	d.BindFramebuffer(edgesFB)
	d.Clear(gpu.Transparent)
	if err := d.Draw(gpu.DrawCall{Program: p, Textures: []gpu.Texture{albedo}, Vertices: gpu.FullScreen}); err != nil {
		t.Fatalf("Draw(edges) error = %v", err)
	}

	pix, _ := d.ReadPixels(edgesFB)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := rgba{}
			if x == w/2 {
				want = rgba{1, 0, 0, 0}
			}
			if got := pixelAt(pix, w, x, y); got != want {
				t.Errorf("edge (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestEdgeLocalContrast(t *testing.T) {
	d := newDevice(t, 1, 1)
	alb := newTexture(d, gpu.TextureDescriptor{Width: 4, Height: 1})
	// A weak step next to a strong one is suppressed.
	alb.set(0, 0, rgba{0, 0, 0, 1})
	alb.set(1, 0, rgba{1, 1, 1, 1})
	alb.set(2, 0, rgba{0.9, 0.9, 0.9, 1})
	alb.set(3, 0, rgba{0.9, 0.9, 0.9, 1})
	k := &kernel{prog: &Program{threshold: 0.05, steps: 4, pixel: [2]float64{1.0 / 4, 1}}, albedo: alb}

	if e, _ := k.edges(2.5/4, 0.5); e != (rgba{}) {
		t.Errorf("edge at x=2 = %v, want it suppressed by the stronger step at x=1", e)
	}
	if e, ok := k.edges(1.5/4, 0.5); !ok || e[0] != 1 {
		t.Errorf("edge at x=1 = %v, %v; want r=1", e, ok)
	}
}

func searchKernel(t *testing.T, w, h int) *kernel {
	t.Helper()
	d := newDevice(t, 1, 1)
	tables := lut.Generate()

	search := newTexture(d, gpu.TextureDescriptor{Width: lut.SearchWidth, Height: lut.SearchHeight, Format: gpu.FormatR8, Filter: gpu.FilterNearest})
	if err := d.WriteTexture(search, tables.Search); err != nil {
		t.Fatalf("WriteTexture(search) error = %v", err)
	}
	area := newTexture(d, gpu.TextureDescriptor{Width: lut.AreaWidth, Height: lut.AreaHeight, Format: gpu.FormatRG8})
	if err := d.WriteTexture(area, tables.Area); err != nil {
		t.Fatalf("WriteTexture(area) error = %v", err)
	}
	return &kernel{
		prog:    &Program{steps: 32, pixel: [2]float64{1 / float64(w), 1 / float64(h)}},
		edgeTex: newTexture(d, gpu.TextureDescriptor{Width: w, Height: h}),
		area:    area,
		search:  search,
	}
}

func TestSearchFindsLineEnds(t *testing.T) {
	const w, h = 48, 48
	runs := [][2]int{{2, 9}, {3, 9}, {3, 8}, {10, 10}, {5, 6}, {1, 40}, {20, 45}}

	for _, run := range runs {
		kx := searchKernel(t, w, h)
		ky := searchKernel(t, w, h)
		for i := run[0]; i <= run[1]; i++ {
			kx.edgeTex.set(i, 7, rgba{0, 1, 0, 0})  // horizontal line on row 7
			ky.edgeTex.set(30, i, rgba{1, 0, 0, 0}) // vertical line on column 30
		}
		for p := run[0]; p <= run[1]; p++ {
			if got := kx.searchXLeft(p, 7); got != run[0] {
				t.Errorf("run %v: searchXLeft(%d) = %d", run, p, got)
			}
			if got := kx.searchXRight(p, 7); got != run[1] {
				t.Errorf("run %v: searchXRight(%d) = %d", run, p, got)
			}
			if got := ky.searchYUp(30, p); got != run[0] {
				t.Errorf("run %v: searchYUp(%d) = %d", run, p, got)
			}
			if got := ky.searchYDown(30, p); got != run[1] {
				t.Errorf("run %v: searchYDown(%d) = %d", run, p, got)
			}
		}
	}
}

func TestSearchStopsAtCrossingEdge(t *testing.T) {
	k := searchKernel(t, 32, 16)
	for x := 2; x <= 20; x++ {
		k.edgeTex.set(x, 5, rgba{0, 1, 0, 0})
	}
	// A vertical edge crossing the line on its left side at x=8.
	k.edgeTex.set(8, 5, rgba{1, 1, 0, 0})

	if got := k.searchXLeft(12, 5); got != 8 {
		t.Errorf("searchXLeft(12) = %d, want 8", got)
	}
	if got := k.searchXRight(4, 5); got != 7 {
		t.Errorf("searchXRight(4) = %d, want 7", got)
	}
}

func TestStraightLineHasNoWeights(t *testing.T) {
	const w, h = 32, 16
	k := searchKernel(t, w, h)
	for x := 0; x < w; x++ {
		k.edgeTex.set(x, 8, rgba{0, 1, 0, 0})
	}
	for x := 0; x < w; x++ {
		wt, ok := k.weights((float64(x)+0.5)/w, 8.5/h)
		if !ok || wt != (rgba{}) {
			t.Fatalf("weights at x=%d = %v, want zero", x, wt)
		}
	}
}

func TestNeighborhoodPassThrough(t *testing.T) {
	d := newDevice(t, 1, 1)
	alb := newTexture(d, gpu.TextureDescriptor{Width: 2, Height: 2})
	alb.fill(rgba{0.2, 0.4, 0.6, 1})
	alb.set(1, 1, rgba{1, 0, 0, 1})
	k := &kernel{
		prog:   &Program{pixel: [2]float64{0.5, 0.5}},
		albedo: alb,
		blend:  newTexture(d, gpu.TextureDescriptor{Width: 2, Height: 2}),
	}
	if c, _ := k.neighborhood(0.25, 0.25); c != (rgba{0.2, 0.4, 0.6, 1}) {
		t.Errorf("zero weights = %v, want the albedo", c)
	}

	// Full weight towards the right neighbor on pixel (0,1).
	k.blend.set(1, 1, rgba{0, 0, 0, 1})
	c, _ := k.neighborhood(0.25, 0.75)
	if !near(c[0], 1) || !near(c[1], 0) {
		t.Errorf("blended = %v, want the right neighbor", c)
	}
}
