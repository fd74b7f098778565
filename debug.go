// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"
	"strings"
)

// DebugMode selects an intermediate target to show instead of the
// composite.
type DebugMode uint8

const (
	DebugNone DebugMode = iota
	DebugEdges
	DebugBlend
	DebugSource
)

// DebugModes lists every debug mode.
var DebugModes = []DebugMode{DebugNone, DebugEdges, DebugBlend, DebugSource}

// Valid reports whether m is one of the four debug modes.
func (m DebugMode) Valid() bool {
	switch m {
	case DebugNone, DebugEdges, DebugBlend, DebugSource:
		return true
	default:
		return false
	}
}

func (m DebugMode) String() string {
	switch m {
	case DebugNone:
		return "none"
	case DebugEdges:
		return "edges"
	case DebugBlend:
		return "blend"
	case DebugSource:
		return "source"
	default:
		return fmt.Sprintf("DebugMode(%d)", m)
	}
}

// target returns the render target a mode displays.
func (m DebugMode) target() (TargetKind, bool) {
	switch m {
	case DebugEdges:
		return TargetEdges, true
	case DebugBlend:
		return TargetBlend, true
	case DebugSource:
		return TargetAlbedo, true
	default:
		return 0, false
	}
}

// ParseDebugMode parses a debug mode name, ignoring case. The empty
// string is DebugNone.
func ParseDebugMode(s string) (DebugMode, error) {
	if s == "" {
		return DebugNone, nil
	}
	for _, m := range DebugModes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDebugMode, s)
}

func (m DebugMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDebugMode, m)
	}
	return []byte(m.String()), nil
}

func (m *DebugMode) UnmarshalText(text []byte) error {
	v, err := ParseDebugMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
