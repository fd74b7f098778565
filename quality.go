// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"
	"strings"

	"github.com/gogpu/smaa/shader"
)

// Quality selects the compile-time preset of the edge and blending-weight
// passes.
type Quality uint8

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
	QualityUltra
)

// Qualities lists every quality, lowest first.
var Qualities = []Quality{QualityLow, QualityMedium, QualityHigh, QualityUltra}

// Valid reports whether q is one of the four qualities.
func (q Quality) Valid() bool {
	switch q {
	case QualityLow, QualityMedium, QualityHigh, QualityUltra:
		return true
	default:
		return false
	}
}

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	case QualityUltra:
		return "ultra"
	default:
		return fmt.Sprintf("Quality(%d)", q)
	}
}

// preset maps a quality to its shader preset.
func (q Quality) preset() (shader.Preset, error) {
	switch q {
	case QualityLow:
		return shader.PresetLow, nil
	case QualityMedium:
		return shader.PresetMedium, nil
	case QualityHigh:
		return shader.PresetHigh, nil
	case QualityUltra:
		return shader.PresetUltra, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuality, q)
	}
}

// ParseQuality parses a quality name, ignoring case.
func ParseQuality(s string) (Quality, error) {
	for _, q := range Qualities {
		if strings.EqualFold(s, q.String()) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, s)
}

func (q Quality) MarshalText() ([]byte, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, q)
	}
	return []byte(q.String()), nil
}

func (q *Quality) UnmarshalText(text []byte) error {
	v, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}
