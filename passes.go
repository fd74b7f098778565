// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/shader"
)

// space selects the transform of a pass draw.
type space uint8

const (
	// spaceTarget is a full-screen clip-space quad with identity
	// transforms, used by the internal passes.
	spaceTarget space = iota
	// spaceFrame is a quad of the pipeline size drawn with the frame's
	// model-view and projection, used for everything the host sees.
	spaceFrame
)

// pass is one entry of the declarative pass list. The runner enables or
// disables blending before each pass and binds its target.
type pass struct {
	label string
	blend bool

	// target is the render target written, nil for the frame target.
	target *RenderTarget

	// children draws the attached children instead of a quad.
	children bool

	// program is nil for the device's built-in textured program.
	program *ShaderProgram
	inputs  []gpu.Texture
	color   gpu.Color
	space   space
}

// passList returns the fixed pass list of a pipeline.
func (p *Pipeline) passList() []pass {
	r := p.res
	edge := r.programs[shader.StageEdgeDetection]
	weights := r.programs[shader.StageBlendingWeight]
	composite := r.programs[shader.StageNeighborhoodBlending]
	return []pass{
		{label: "source", blend: true, target: r.targets[TargetAlbedo], children: true},
		{label: "edge_detection", target: r.targets[TargetEdges], program: edge, inputs: r.inputs(edge)},
		{label: "blending_weight", target: r.targets[TargetBlend], program: weights, inputs: r.inputs(weights)},
		{label: "neighborhood_blending", blend: true, program: composite, inputs: r.inputs(composite), space: spaceFrame},
	}
}

// frameState is the per-frame input of the runner.
type frameState struct {
	target     gpu.Framebuffer
	modelView  mgl32.Mat4
	projection mgl32.Mat4
	children   []Child
}

// run executes passes in order. Blend state is only sent when it changes,
// and the device is left with blending enabled.
func (p *Pipeline) run(passes []pass, fs frameState) (err error) {
	dev := p.dev
	blend, known := false, false
	defer func() {
		if known && !blend {
			dev.SetBlend(true)
		}
	}()

	for i := range passes {
		ps := &passes[i]
		if !known || ps.blend != blend {
			dev.SetBlend(ps.blend)
			blend, known = ps.blend, true
		}
		if ps.target != nil {
			dev.BindFramebuffer(ps.target.Framebuffer)
		} else {
			dev.BindFramebuffer(fs.target)
		}
		p.log.Debug("smaa: pass", "pass", ps.label, "blend", ps.blend)

		if ps.children {
			if err := p.drawChildren(fs.children); err != nil {
				return err
			}
			continue
		}

		dc := gpu.DrawCall{
			Label:    ps.label,
			Textures: ps.inputs,
			Color:    ps.color,
			Vertices: gpu.FullScreen,
		}
		if ps.program != nil {
			dc.Program = ps.program.Handle
		}
		if ps.space == spaceFrame {
			dc.ModelView = fs.modelView
			dc.Projection = fs.projection
			dc.Vertices = gpu.Quad(0, 0, float32(p.width), float32(p.height))
		}
		if err := dev.Draw(dc); err != nil {
			return fmt.Errorf("smaa: pass %s: %w", ps.label, err)
		}
	}
	return nil
}

func (p *Pipeline) drawChildren(children []Child) error {
	ctx := &DrawContext{
		Device:     p.dev,
		Width:      p.width,
		Height:     p.height,
		ModelView:  mgl32.Ident4(),
		Projection: gpu.PixelProjection(p.width, p.height),
	}
	for i, c := range children {
		if err := c.Draw(ctx); err != nil {
			return fmt.Errorf("smaa: child %d: %w", i, err)
		}
	}
	return nil
}
