// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import "github.com/gogpu/smaa/gpu"

// Overlay replaces the composite with one intermediate target. At most one
// overlay is active; it is swapped as a whole.
type Overlay struct {
	Mode   DebugMode
	Source *RenderTarget
}

// newOverlay returns the overlay showing mode on p, or nil for DebugNone.
func newOverlay(p *Pipeline, mode DebugMode) *Overlay {
	kind, ok := mode.target()
	if !ok || p == nil {
		return nil
	}
	return &Overlay{Mode: mode, Source: p.res.targets[kind]}
}

// passes draws a black backdrop and the source target over the composite,
// both as opaque replacement.
func (o *Overlay) passes() []pass {
	return []pass{
		{label: "overlay_clear", color: gpu.Black, space: spaceFrame},
		{
			label:  "overlay_" + o.Mode.String(),
			color:  gpu.White,
			inputs: []gpu.Texture{o.Source.Texture},
			space:  spaceFrame,
		},
	}
}
