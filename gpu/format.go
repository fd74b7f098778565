// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// TextureFormat is the pixel format of a texture.
type TextureFormat uint8

const (
	// FormatRGBA16Float is a half-float RGBA format, used for render targets.
	FormatRGBA16Float TextureFormat = iota

	// FormatRGBA8 is 8-bit normalized RGBA, used for uploaded images and
	// presentable surfaces.
	FormatRGBA8

	// FormatRG8 is two-channel 8-bit normalized, used for the area table.
	FormatRG8

	// FormatR8 is single-channel 8-bit normalized, used for the search table.
	FormatR8
)

// String returns a human-readable name for the format.
func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA16Float:
		return "RGBA16Float"
	case FormatRGBA8:
		return "RGBA8"
	case FormatRG8:
		return "RG8"
	case FormatR8:
		return "R8"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// Channels returns the number of color channels.
func (f TextureFormat) Channels() int {
	switch f {
	case FormatRG8:
		return 2
	case FormatR8:
		return 1
	default:
		return 4
	}
}

// BytesPerPixel returns the size of one pixel in bytes.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA16Float:
		return 8
	case FormatRGBA8:
		return 4
	case FormatRG8:
		return 2
	case FormatR8:
		return 1
	default:
		return 4
	}
}

// ToWGPUFormat converts to the gputypes texture format.
func (f TextureFormat) ToWGPUFormat() gputypes.TextureFormat {
	switch f {
	case FormatRGBA16Float:
		return gputypes.TextureFormatRGBA16Float
	case FormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm
	case FormatRG8:
		return gputypes.TextureFormatRG8Unorm
	case FormatR8:
		return gputypes.TextureFormatR8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// Filter is the sampling filter of a texture.
type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

func (f Filter) String() string {
	if f == FilterNearest {
		return "nearest"
	}
	return "linear"
}

// ToWGPUFilter converts to the gputypes filter mode.
func (f Filter) ToWGPUFilter() gputypes.FilterMode {
	if f == FilterNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}
