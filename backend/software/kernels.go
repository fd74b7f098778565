package software

import "math"

// Weights of the two-texel bilinear fetches the search loops use to read
// four edge values at once: near/far along the line, current/previous
// row (or column) across it.
const (
	wFarPrev  = 1
	wNearPrev = 3
	wFarCur   = 7
	wNearCur  = 21

	lineFull = 27 // 32 * 0.8281, rounded up
)

// kernel evaluates one pass at a fragment. Textures are read with integer
// pixel coordinates derived from the pixel size compiled into the program.
type kernel struct {
	prog    *Program
	albedo  *Texture
	edgeTex *Texture
	area    *Texture
	search  *Texture
	blend   *Texture
}

func (k *kernel) pixel(u, v float64) (int, int) {
	return int(math.Floor(u / k.prog.pixel[0])), int(math.Floor(v / k.prog.pixel[1]))
}

func maxDelta(a, b rgba) float32 {
	return max(abs32(a[0]-b[0]), abs32(a[1]-b[1]), abs32(a[2]-b[2]))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func step(edge, x float32) float32 {
	if x >= edge {
		return 1
	}
	return 0
}

func bit(v float32) int {
	if v > 0.5 {
		return 1
	}
	return 0
}

// edges is the color edge detection pass. r marks an edge with the left
// neighbor, g an edge with the previous row. Fragments without edges are
// discarded.
func (k *kernel) edges(u, v float64) (rgba, bool) {
	x, y := k.pixel(u, v)
	t, th := k.albedo, k.prog.threshold

	c := t.at(x, y)
	left := t.at(x-1, y)
	top := t.at(x, y-1)
	dl, dt := maxDelta(c, left), maxDelta(c, top)

	ex, ey := step(th, dl), step(th, dt)
	if ex+ey == 0 {
		return rgba{}, false
	}

	mx := max(dl, maxDelta(c, t.at(x+1, y)), maxDelta(left, t.at(x-2, y)))
	my := max(dt, maxDelta(c, t.at(x, y+1)), maxDelta(top, t.at(x, y-2)))
	final := max(mx, my)

	ex *= step(final, 2*dl)
	ey *= step(final, 2*dt)
	return rgba{ex, ey, 0, 0}, true
}

// fetchX packs the edges of pixels near and far on rows y and y-1 the way
// a bilinear fetch between them does. Channel g is the line, r crosses it.
func (k *kernel) fetchX(near, far, y int) (line, cross int) {
	e := k.edgeTex
	pack := func(ch int) int {
		return wFarPrev*bit(e.at(far, y-1)[ch]) + wNearPrev*bit(e.at(near, y-1)[ch]) +
			wFarCur*bit(e.at(far, y)[ch]) + wNearCur*bit(e.at(near, y)[ch])
	}
	return pack(1), pack(0)
}

// fetchY is fetchX transposed: columns x and x-1, rows near and far, r is
// the line.
func (k *kernel) fetchY(x, near, far int) (line, cross int) {
	e := k.edgeTex
	pack := func(ch int) int {
		return wFarPrev*bit(e.at(x-1, far)[ch]) + wNearPrev*bit(e.at(x-1, near)[ch]) +
			wFarCur*bit(e.at(x, far)[ch]) + wNearCur*bit(e.at(x, near)[ch])
	}
	return pack(0), pack(1)
}

// searchLength decodes the search table: how many pixels of the last two
// fetched belong to the line. side is 0 for left/up, 1 for right/down.
func (k *kernel) searchLength(line, cross, side int) int {
	v := k.search.at(cross+33*side, line)[0]
	return int(math.Round(255.0 / 127.0 * float64(v)))
}

func (k *kernel) searchXLeft(x, y int) int {
	c, line, cross := x, 32, 0
	for i := 0; i < k.prog.steps && line >= lineFull && cross == 0; i++ {
		c = x - 2*i
		line, cross = k.fetchX(c, c-1, y)
	}
	return c + 1 - k.searchLength(line, cross, 0)
}

func (k *kernel) searchXRight(x, y int) int {
	c, line, cross := x+1, 32, 0
	for i := 0; i < k.prog.steps && line >= lineFull && cross == 0; i++ {
		c = x + 1 + 2*i
		line, cross = k.fetchX(c, c+1, y)
	}
	return c - 1 + k.searchLength(line, cross, 1)
}

func (k *kernel) searchYUp(x, y int) int {
	c, line, cross := y, 32, 0
	for i := 0; i < k.prog.steps && line >= lineFull && cross == 0; i++ {
		c = y - 2*i
		line, cross = k.fetchY(x, c, c-1)
	}
	return c + 1 - k.searchLength(line, cross, 0)
}

func (k *kernel) searchYDown(x, y int) int {
	c, line, cross := y+1, 32, 0
	for i := 0; i < k.prog.steps && line >= lineFull && cross == 0; i++ {
		c = y + 1 + 2*i
		line, cross = k.fetchY(x, c, c+1)
	}
	return c - 1 + k.searchLength(line, cross, 1)
}

// areaWeights reads the precomputed coverage for a line with the given
// distances to its ends and crossing edge patterns.
func (k *kernel) areaWeights(d1, d2, e1, e2 int) (float32, float32) {
	u := (16*float64(e1) + math.Sqrt(float64(d1)) + 0.5) / float64(k.area.width)
	v := (16*float64(e2) + math.Sqrt(float64(d2)) + 0.5) / float64(k.area.height)
	a := k.area.linear(u, v)
	return a[0], a[1]
}

func crossing(near, far float32) int {
	return 3*bit(near) + bit(far)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// weights is the blending weight pass. rg holds the weights of the edge
// with the previous row (a horizontal line, searched along x), ba those
// of the edge with the left neighbor.
func (k *kernel) weights(u, v float64) (rgba, bool) {
	x, y := k.pixel(u, v)
	e := k.edgeTex
	edge := e.at(x, y)
	var w rgba

	if edge[1] > 0 {
		left := k.searchXLeft(x, y)
		right := k.searchXRight(x, y)
		e1 := crossing(e.at(left, y)[0], e.at(left, y-1)[0])
		e2 := crossing(e.at(right+1, y)[0], e.at(right+1, y-1)[0])
		w[0], w[1] = k.areaWeights(absInt(left-x), absInt(right-x), e1, e2)
	}

	if edge[0] > 0 {
		up := k.searchYUp(x, y)
		down := k.searchYDown(x, y)
		e1 := crossing(e.at(x, up)[1], e.at(x-1, up)[1])
		e2 := crossing(e.at(x, down+1)[1], e.at(x-1, down+1)[1])
		w[2], w[3] = k.areaWeights(absInt(up-y), absInt(down-y), e1, e2)
	}

	return w, true
}

// neighborhood blends each pixel with the neighbor its weights point to.
func (k *kernel) neighborhood(u, v float64) (rgba, bool) {
	x, y := k.pixel(u, v)
	b := k.blend.at(x, y)
	right, top := k.blend.at(x+1, y)[3], k.blend.at(x, y+1)[1]
	ax, ay, az, aw := right, top, b[2], b[0]

	if ax+ay+az+aw < 1e-5 {
		return k.albedo.at(x, y), true
	}

	px, py := k.prog.pixel[0], k.prog.pixel[1]
	var off [4]float64
	var w1, w2 float32
	if max(ax, az) > max(ay, aw) {
		off = [4]float64{float64(ax), 0, float64(az), 0}
		w1, w2 = ax, az
	} else {
		off = [4]float64{0, float64(ay), 0, float64(aw)}
		w1, w2 = ay, aw
	}
	sum := w1 + w2
	w1, w2 = w1/sum, w2/sum

	c1 := k.albedo.linear(u+off[0]*px, v+off[1]*py)
	c2 := k.albedo.linear(u-off[2]*px, v-off[3]*py)
	return c1.scale(w1).add(c2.scale(w2)), true
}
