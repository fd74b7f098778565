// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogl

// Package gl implements gpu.Device on OpenGL 4.1 core through go-gl.
//
// The device does not create a context: New must be called with a
// context current on the calling goroutine (for example a GLFW window),
// and every method must be called from that goroutine. The default
// framebuffer of the context is the device surface.
//
// Build with the nogl tag to exclude this package from cgo-free builds.
package gl
