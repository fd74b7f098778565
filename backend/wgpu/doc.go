// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package wgpu implements gpu.Device on the gogpu/wgpu HAL.
//
// Programs are assembled as WGSL and compiled to SPIR-V with naga. Every
// Clear and Draw is recorded into its own render pass and submitted
// immediately, so the device has no frame boundary of its own and reads
// back exactly what the pipeline wrote.
//
// The package registers itself as the "wgpu" backend; a headless device is
// opened on the Vulkan HAL. A host that already owns a device passes it
// through NewFromProvider.
//
// Build with the nogpu tag to exclude this package.
package wgpu
