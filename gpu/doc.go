// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu defines the device contract the SMAA pipeline renders
// through.
//
// A [Device] owns textures, framebuffers and compiled programs and executes
// full-screen or transformed quad draws with an explicit blend state. The
// contract mirrors a minimal OpenGL-style state machine: one bound
// framebuffer, one global blend flag, programs with sampler units fixed at
// creation.
//
// Implementations live under backend/: a CPU reference device
// (backend/software), OpenGL 4.1 (backend/gl) and WebGPU through
// gogpu/wgpu (backend/wgpu).
//
// [Trace] wraps any device and records every call, for instrumentation and
// tests.
package gpu
