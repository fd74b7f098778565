package lut

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestGenerateSizes(t *testing.T) {
	tables := Generate()
	if err := tables.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if len(tables.Area) != 160*560*2 {
		t.Errorf("area len = %d", len(tables.Area))
	}
	if len(tables.Search) != 66*33 {
		t.Errorf("search len = %d", len(tables.Search))
	}
}

func TestGenerateReturnsCopies(t *testing.T) {
	a := Generate()
	a.Area[0] = 99
	a.Search[0] = 99
	b := Generate()
	if b.Area[0] == 99 || b.Search[0] == 99 {
		t.Error("Generate() shares storage between calls")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	if !bytes.Equal(generateArea(), generateArea()) {
		t.Error("area table differs between runs")
	}
	if !bytes.Equal(generateSearch(), generateSearch()) {
		t.Error("search table differs between runs")
	}
}

func TestDecodeBits(t *testing.T) {
	valid := 0
	for n := 0; n <= 32; n++ {
		if _, ok := decodeBits(n); ok {
			valid++
		}
	}
	if valid != 16 {
		t.Errorf("valid encodings = %d, want 16", valid)
	}
	bits, ok := decodeBits(28)
	if !ok || bits != [4]bool{false, false, true, true} {
		t.Errorf("decodeBits(28) = %v, %v", bits, ok)
	}
}

func searchValue(tables *Tables, side int, cross, line [4]bool) byte {
	enc := func(b [4]bool) int {
		n := 0
		for i, w := range bitWeights {
			if b[i] {
				n += w
			}
		}
		return n
	}
	return tables.Search[enc(line)*SearchWidth+enc(cross)+33*side]
}

func TestSearchTable(t *testing.T) {
	tables := Generate()
	none := [4]bool{}
	both := [4]bool{false, false, true, true}
	nearOnly := [4]bool{false, false, false, true}
	crossNear := [4]bool{false, false, false, true}
	crossFar := [4]bool{false, false, true, false}

	tests := []struct {
		name        string
		side        int
		cross, line [4]bool
		want        byte
	}{
		{"left no line", 0, none, none, 0},
		{"left near only", 0, none, nearOnly, 127},
		{"left continues", 0, none, both, 254},
		{"left crossing at near", 0, crossNear, both, 127},
		{"left crossing at far", 0, crossFar, both, 254},
		{"right no line", 1, none, none, 0},
		{"right near only", 1, none, nearOnly, 127},
		{"right continues", 1, none, both, 254},
		{"right crossing at near", 1, crossNear, both, 0},
		{"right crossing at far", 1, crossFar, both, 127},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchValue(tables, tt.side, tt.cross, tt.line); got != tt.want {
				t.Errorf("search value = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAreaTable(t *testing.T) {
	tables := Generate()
	at := func(x, y int) (byte, byte) {
		i := (y*AreaWidth + x) * AreaChannels
		return tables.Area[i], tables.Area[i+1]
	}

	// Pattern 0 (no crossings) and the diagonal half are empty.
	for y := 0; y < AreaHeight; y++ {
		for x := 0; x < AreaWidth; x++ {
			inPattern0 := x < orthoSize && y%orthoBlockHeight < orthoSize
			if !inPattern0 && x < AreaWidth/2 {
				continue
			}
			if r, g := at(x, y); r != 0 || g != 0 {
				t.Fatalf("texel (%d,%d) = (%d,%d), want empty", x, y, r, g)
			}
		}
	}

	// A Z pattern (crossing on the previous side at the left end and on
	// the current side at the right end) covers the current-row side near
	// the right end and the previous-row side near the left end.
	left, right := 0, 2 // distances 0 and 4, line length 5
	r, g := at(orthoSize*1+left, orthoSize*3+right)
	if r != 0 || g == 0 {
		t.Errorf("Z pattern near left end = (%d,%d), want (0,>0)", r, g)
	}
	r, g = at(orthoSize*1+right, orthoSize*3+left)
	if r == 0 || g != 0 {
		t.Errorf("Z pattern near right end = (%d,%d), want (>0,0)", r, g)
	}
}

func TestAreaFunction(t *testing.T) {
	// Segment from (0, 0.5) to (4, -0.5): the first column is a trapezoid
	// entirely above the edge.
	got := area(point{0, 0.5}, point{4, -0.5}, 0)
	if got[0] != 0 || got[1] != 0.375 {
		t.Errorf("area column 0 = %v, want [0 0.375]", got)
	}
	// Columns outside the segment are empty.
	if got := area(point{0, 0.5}, point{4, -0.5}, 4); got != (pair{}) {
		t.Errorf("area column 4 = %v, want empty", got)
	}
}

func TestReadValidatesSize(t *testing.T) {
	tests := []struct {
		name   string
		area   int
		search int
		want   error
	}{
		{"short area", AreaBytes - 1, SearchBytes, ErrAreaSize},
		{"long area", AreaBytes + 1, SearchBytes, ErrAreaSize},
		{"short search", AreaBytes, SearchBytes - 2, ErrSearchSize},
		{"long search", AreaBytes, SearchBytes + 5, ErrSearchSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(make([]byte, tt.area)), bytes.NewReader(make([]byte, tt.search)))
			if !errors.Is(err, tt.want) {
				t.Errorf("Read() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	gen := Generate()
	fsys := fstest.MapFS{
		AreaFile:   {Data: gen.Area},
		SearchFile: {Data: gen.Search},
		"bad.raw":  {Data: []byte{1, 2, 3}},
	}

	got, err := Load(fsys, AreaFile, SearchFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got.Area, gen.Area) || !bytes.Equal(got.Search, gen.Search) {
		t.Error("loaded tables differ from source")
	}

	if _, err := Load(fsys, "missing.raw", SearchFile); !errors.Is(err, ErrMissing) {
		t.Errorf("Load(missing) error = %v, want ErrMissing", err)
	}
	if _, err := Load(fsys, AreaFile, "bad.raw"); !errors.Is(err, ErrSearchSize) {
		t.Errorf("Load(bad) error = %v, want ErrSearchSize", err)
	}
}

func TestWriteFilesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	gen := Generate()
	if err := gen.WriteFiles(dir); err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}
	got, err := Load(os.DirFS(dir), AreaFile, SearchFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got.Area, gen.Area) {
		t.Error("area table changed on disk")
	}
	if _, err := os.Stat(filepath.Join(dir, SearchFile)); err != nil {
		t.Errorf("search file missing: %v", err)
	}

	bad := &Tables{Area: []byte{1}}
	if err := bad.WriteFiles(dir); !errors.Is(err, ErrAreaSize) {
		t.Errorf("WriteFiles(bad) error = %v, want ErrAreaSize", err)
	}
}
