// Package lut provides the two precomputed SMAA lookup tables.
//
// Both tables are raw, row-major pixel buffers without a header:
//
//	area    160x560, two 8-bit channels per pixel
//	search   66x33,  one 8-bit channel per pixel
//
// Tables can be loaded from files in that format or generated with
// [Generate].
package lut

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Table dimensions.
const (
	AreaWidth    = 160
	AreaHeight   = 560
	AreaChannels = 2
	AreaBytes    = AreaWidth * AreaHeight * AreaChannels

	SearchWidth    = 66
	SearchHeight   = 33
	SearchChannels = 1
	SearchBytes    = SearchWidth * SearchHeight * SearchChannels
)

// Default file names used by WriteFiles and the command line tools.
const (
	AreaFile   = "smaa_area.raw"
	SearchFile = "smaa_search.raw"
)

var (
	// ErrAreaSize is returned when the area table has the wrong length.
	ErrAreaSize = errors.New("lut: area table must be 160x560x2 bytes")

	// ErrSearchSize is returned when the search table has the wrong length.
	ErrSearchSize = errors.New("lut: search table must be 66x33 bytes")

	// ErrMissing is returned when a table file cannot be opened.
	ErrMissing = errors.New("lut: table not found")
)

// Tables holds both lookup tables. Tables are immutable once loaded.
type Tables struct {
	Area   []byte
	Search []byte
}

// Validate checks both tables have their exact fixed size.
func (t *Tables) Validate() error {
	if len(t.Area) != AreaBytes {
		return fmt.Errorf("%w: got %d bytes", ErrAreaSize, len(t.Area))
	}
	if len(t.Search) != SearchBytes {
		return fmt.Errorf("%w: got %d bytes", ErrSearchSize, len(t.Search))
	}
	return nil
}

// Read reads both tables in their raw format. Each reader must supply
// exactly the table size.
func Read(area, search io.Reader) (*Tables, error) {
	a, err := readExact(area, AreaBytes, ErrAreaSize)
	if err != nil {
		return nil, err
	}
	s, err := readExact(search, SearchBytes, ErrSearchSize)
	if err != nil {
		return nil, err
	}
	return &Tables{Area: a, Search: s}, nil
}

func readExact(r io.Reader, n int, sizeErr error) ([]byte, error) {
	// One extra byte detects oversized input.
	buf, err := io.ReadAll(io.LimitReader(r, int64(n)+1))
	if err != nil {
		return nil, fmt.Errorf("lut: read: %w", err)
	}
	if len(buf) != n {
		return nil, fmt.Errorf("%w: got %d bytes", sizeErr, len(buf))
	}
	return buf, nil
}

// Load reads the named tables from fsys.
func Load(fsys fs.FS, areaName, searchName string) (*Tables, error) {
	af, err := fsys.Open(areaName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissing, err)
	}
	defer af.Close()

	sf, err := fsys.Open(searchName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissing, err)
	}
	defer sf.Close()

	t, err := Read(af, sf)
	if err != nil {
		return nil, fmt.Errorf("lut: load %s, %s: %w", areaName, searchName, err)
	}
	return t, nil
}

// WriteFiles writes both tables into dir as AreaFile and SearchFile.
func (t *Tables) WriteFiles(dir string) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, AreaFile), t.Area, 0o644); err != nil {
		return fmt.Errorf("lut: write area table: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SearchFile), t.Search, 0o644); err != nil {
		return fmt.Errorf("lut: write search table: %w", err)
	}
	return nil
}
