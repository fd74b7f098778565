package lut

import "math"

// Area table layout: seven subsample blocks of 80 rows each. Within a
// block, the 16x16 cell at (16*e1, 16*e2) holds pattern (e1, e2), where e1
// and e2 are the crossing-edge values 0, 1, 3 or 4 at both line ends.
// Texel (x, y) of a cell stores the coverage areas for distances x*x and
// y*y to the left and right ends. The right half (diagonal patterns) is
// left empty.
const (
	orthoSize         = 16
	orthoBlockHeight  = 5 * orthoSize
	smoothMaxDistance = 32
)

var subsampleOffsets = [7]float64{0.0, -0.25, 0.25, -0.125, 0.125, -0.375, 0.375}

// Crossing-edge values of the 16 orthogonal patterns. Bits 0 and 1 of the
// pattern index are crossings on the current-row side at the left and
// right end, bits 2 and 3 the same on the previous-row side.
var orthoEdges = [16][2]int{
	{0, 0}, {3, 0}, {0, 3}, {3, 3},
	{1, 0}, {4, 0}, {1, 3}, {4, 3},
	{0, 1}, {3, 1}, {0, 4}, {3, 4},
	{1, 1}, {4, 1}, {1, 4}, {4, 4},
}

type point struct{ x, y float64 }

type pair [2]float64

func (a pair) add(b pair) pair      { return pair{a[0] + b[0], a[1] + b[1]} }
func (a pair) scale(s float64) pair { return pair{a[0] * s, a[1] * s} }
func lerp(a, b, t float64) float64  { return a + (b-a)*t }
func saturate(v float64) float64    { return math.Max(0, math.Min(1, v)) }

// area returns the coverage of pixel column x between the edge (y = 0)
// and the segment p1-p2 as (area at y < 0, area at y > 0). Negative y is
// the current-row side.
func area(p1, p2 point, x int) pair {
	dx, dy := p2.x-p1.x, p2.y-p1.y
	x1, x2 := float64(x), float64(x)+1
	y1 := p1.y + dy*(x1-p1.x)/dx
	y2 := p1.y + dy*(x2-p1.x)/dx

	inside := (x1 >= p1.x && x1 < p2.x) || (x2 > p1.x && x2 <= p2.x)
	if !inside {
		return pair{}
	}

	trapezoid := math.Signbit(y1) == math.Signbit(y2) || math.Abs(y1) < 1e-4 || math.Abs(y2) < 1e-4
	if trapezoid {
		a := (y1 + y2) / 2
		if a < 0 {
			return pair{-a, 0}
		}
		return pair{0, a}
	}

	// The segment crosses the edge inside the column: two triangles.
	xc := p1.x - p1.y*dx/dy
	_, frac := math.Modf(xc)
	var a1, a2 float64
	if xc > p1.x {
		a1 = y1 * frac / 2
	}
	if xc < p2.x {
		a2 = y2 * (1 - frac) / 2
	}
	var r pair
	for _, a := range [2]float64{a1, a2} {
		if a < 0 {
			r[0] -= a
		} else {
			r[1] += a
		}
	}
	return r
}

// smoothArea blends the two halves of a U pattern towards their square
// roots for short lines.
func smoothArea(d float64, a1, a2 pair) pair {
	p := saturate(d / smoothMaxDistance)
	var r pair
	for i := range r {
		b1 := math.Sqrt(a1[i]*2) * 0.5
		b2 := math.Sqrt(a2[i]*2) * 0.5
		r[i] = lerp(b1, a1[i], p) + lerp(b2, a2[i], p)
	}
	return r
}

// areaOrtho returns the coverage at distance left from the left end of a
// line of total length left+right+1 for one of the 16 crossing patterns.
func areaOrtho(pattern, left, right int, offset float64) pair {
	d := float64(left + right + 1)
	o1 := 0.5 + offset
	o2 := offset - 0.5
	half := point{d / 2, 0}

	switch pattern {
	case 0, 5, 10, 15:
		return pair{}
	case 1:
		if left <= right {
			return area(point{0, o2}, half, left)
		}
		return pair{}
	case 2:
		if left >= right {
			return area(half, point{d, o2}, left)
		}
		return pair{}
	case 3:
		a1 := area(point{0, o2}, half, left)
		a2 := area(half, point{d, o2}, left)
		return smoothArea(d, a1, a2)
	case 4:
		if left <= right {
			return area(point{0, o1}, half, left)
		}
		return pair{}
	case 6:
		return zArea(point{0, o1}, point{d, o2}, half, left, offset)
	case 7:
		return area(point{0, o1}, point{d, o2}, left)
	case 8:
		if left >= right {
			return area(half, point{d, o1}, left)
		}
		return pair{}
	case 9:
		return zArea(point{0, o2}, point{d, o1}, half, left, offset)
	case 11:
		return area(point{0, o2}, point{d, o1}, left)
	case 12:
		a1 := area(point{0, o1}, half, left)
		a2 := area(half, point{d, o1}, left)
		return smoothArea(d, a1, a2)
	case 13:
		return area(point{0, o2}, point{d, o1}, left)
	case 14:
		return area(point{0, o1}, point{d, o2}, left)
	}
	return pair{}
}

// zArea averages the full Z segment with two half L segments when the
// pattern is offset, so Z and L detections converge.
func zArea(start, end, half point, left int, offset float64) pair {
	full := area(start, end, left)
	if offset == 0 {
		return full
	}
	split := area(start, half, left).add(area(half, end, left))
	return full.add(split).scale(0.5)
}

func generateArea() []byte {
	out := make([]byte, AreaBytes)
	for block, offset := range subsampleOffsets {
		for pattern, e := range orthoEdges {
			for left := 0; left < orthoSize; left++ {
				for right := 0; right < orthoSize; right++ {
					v := areaOrtho(pattern, left*left, right*right, offset)
					x := orthoSize*e[0] + left
					y := orthoBlockHeight*block + orthoSize*e[1] + right
					i := (y*AreaWidth + x) * AreaChannels
					out[i] = byte(math.Round(255 * saturate(v[0])))
					out[i+1] = byte(math.Round(255 * saturate(v[1])))
				}
			}
		}
	}
	return out
}
