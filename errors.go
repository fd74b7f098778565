// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import "errors"

// Configuration errors are returned before any GPU work is done.
var (
	// ErrInvalidQuality is returned for a quality outside Low..Ultra.
	ErrInvalidQuality = errors.New("smaa: invalid quality")

	// ErrInvalidDebugMode is returned for a debug mode outside None..Source.
	ErrInvalidDebugMode = errors.New("smaa: invalid debug mode")

	// ErrInvalidSize is returned when width or height is not positive.
	ErrInvalidSize = errors.New("smaa: invalid size")
)

// Build errors abort pipeline construction. Everything allocated before
// the failure is released.
var (
	// ErrShaderCompile is returned when a device rejects a generated
	// program or one of its sampler bindings.
	ErrShaderCompile = errors.New("smaa: shader compile failed")

	// ErrAllocation is returned when a render target or lookup texture
	// cannot be created or uploaded.
	ErrAllocation = errors.New("smaa: resource allocation failed")
)

// Lifecycle errors.
var (
	// ErrNotBuilt is returned when drawing while no pipeline is built,
	// for example after a failed rebuild.
	ErrNotBuilt = errors.New("smaa: pipeline not built")

	// ErrRebuilding is returned for a draw or reconfiguration issued while
	// a rebuild is in progress.
	ErrRebuilding = errors.New("smaa: pipeline is rebuilding")

	// ErrInFrame is returned for a reconfiguration issued from inside a
	// frame, such as from a child's Draw.
	ErrInFrame = errors.New("smaa: reconfiguration during a frame")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("smaa: antialiaser closed")
)
