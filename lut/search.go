package lut

// The search table resolves where a line ends after the last bilinear
// fetch of a line search. A fetch covers two pixels along the search
// ("near" at weight 0.75, "far" at 0.25) and two across it ("cur" at
// 0.875, "prev" at 0.125), so every channel value times 32 is
//
//	far_prev + 3*near_prev + 7*far_cur + 21*near_cur
//
// which is unique for each of the 16 bit combinations. The table is
// indexed by (crossing channel + 33*side, line channel) and stores the
// number of pixels, 0 to 2, the line extends from the near pixel, scaled
// by 127.

const searchHalf = 33

var bitWeights = [4]int{1, 3, 7, 21}

// decodeBits returns the four edge bits encoded in n, or false if n is not
// a valid encoding.
func decodeBits(n int) ([4]bool, bool) {
	var bits [4]bool
	for mask := 0; mask < 16; mask++ {
		sum := 0
		for i, w := range bitWeights {
			if mask&(1<<i) != 0 {
				sum += w
			}
		}
		if sum == n {
			for i := range bits {
				bits[i] = mask&(1<<i) != 0
			}
			return bits, true
		}
	}
	return bits, false
}

// Bit order: 0 far_prev, 1 near_prev, 2 far_cur, 3 near_cur.
const (
	farPrev = iota
	nearPrev
	farCur
	nearCur
)

// deltaLeft applies to searches towards lower coordinates. A crossing
// edge on the near pixel ends the line there.
func deltaLeft(line, cross [4]bool) int {
	if !line[nearCur] {
		return 0
	}
	if line[farCur] && !cross[nearPrev] && !cross[nearCur] {
		return 2
	}
	return 1
}

// deltaRight applies to searches towards higher coordinates. The crossing
// channel of a pixel describes its lower boundary, so a crossing on the
// near pixel ends the line before it.
func deltaRight(line, cross [4]bool) int {
	if !line[nearCur] || cross[nearPrev] || cross[nearCur] {
		return 0
	}
	if line[farCur] && !cross[farPrev] && !cross[farCur] {
		return 2
	}
	return 1
}

func generateSearch() []byte {
	out := make([]byte, SearchBytes)
	for side := 0; side < 2; side++ {
		for nc := 0; nc < searchHalf; nc++ {
			cross, ok := decodeBits(nc)
			if !ok {
				continue
			}
			for nl := 0; nl < SearchHeight; nl++ {
				line, ok := decodeBits(nl)
				if !ok {
					continue
				}
				d := deltaLeft(line, cross)
				if side == 1 {
					d = deltaRight(line, cross)
				}
				out[nl*SearchWidth+nc+searchHalf*side] = byte(127 * d)
			}
		}
	}
	return out
}
