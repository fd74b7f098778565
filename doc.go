// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package smaa implements Enhanced Subpixel Morphological Antialiasing as
// a post-process pipeline.
//
// # Overview
//
// Scene content ("children") is drawn into an offscreen albedo target.
// Three passes then derive an antialiased composite without supersampling:
//
//  1. edge detection: albedo -> edges
//  2. blending weight calculation: edges + area/search tables -> weights
//  3. neighborhood blending: albedo + weights -> the frame target
//
// The first two passes are content-replacement writes with blending off.
// Blending is on for the children and the final composite.
//
// # Quick Start
//
//	dev, _ := software.New(800, 600)
//	aa, err := smaa.New(dev, 800, 600, smaa.WithQuality(smaa.QualityUltra))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer aa.Close()
//
//	aa.Add(smaa.Triangle(mgl32.Vec2{100, 100}, mgl32.Vec2{700, 150}, mgl32.Vec2{400, 500}, gpu.White))
//	if err := aa.Draw(smaa.Frame{}); err != nil {
//		log.Fatal(err)
//	}
//
// # Reconfiguration
//
// Quality and size are compiled into the pass programs, so SetQuality and
// SetSize rebuild every resource. A rebuild is synchronous: it either
// completes with a fully valid pipeline or leaves the antialiaser unbuilt,
// in which case Draw returns ErrNotBuilt until a later SetQuality or
// SetSize succeeds. Children stay attached across rebuilds.
//
// SetDebug only swaps the overlay descriptor. With a debug mode set, the
// selected intermediate target is drawn opaquely over the composite.
//
// # Devices
//
// Rendering goes through the gpu.Device interface. Implementations live in
// backend/software (CPU reference), backend/gl (OpenGL 4.1) and
// backend/wgpu (WebGPU through gogpu/wgpu).
package smaa
