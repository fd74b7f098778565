// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/lut"
	"github.com/gogpu/smaa/shader"
)

// Pipeline is one generation of GPU resources: three render targets, two
// lookup textures and three programs wired into the fixed pass list. A
// Pipeline is either fully built or does not exist.
type Pipeline struct {
	dev     gpu.Device
	log     *slog.Logger
	quality Quality
	width   int
	height  int
	sources shader.Sources
	res     *resources
	passes  []pass
}

// buildConfig is everything a pipeline generation depends on.
type buildConfig struct {
	quality Quality
	width   int
	height  int
	library string
	tables  func() (*lut.Tables, error)
}

func buildPipeline(dev gpu.Device, cfg buildConfig, log *slog.Logger) (*Pipeline, error) {
	preset, err := cfg.quality.preset()
	if err != nil {
		return nil, err
	}
	src, err := shader.Assemble(shader.Config{
		Language: dev.Language(),
		Preset:   preset,
		Width:    cfg.width,
		Height:   cfg.height,
		Library:  cfg.library,
	})
	if err != nil {
		return nil, fmt.Errorf("smaa: assemble: %w", err)
	}
	tables, err := cfg.tables()
	if err != nil {
		return nil, fmt.Errorf("smaa: lookup tables: %w", err)
	}

	res, err := allocate(dev, cfg.width, cfg.height, tables, src, log)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		dev:     dev,
		log:     log,
		quality: cfg.quality,
		width:   cfg.width,
		height:  cfg.height,
		sources: src,
		res:     res,
	}
	p.passes = p.passList()
	log.Info("smaa: pipeline built", "quality", cfg.quality, "width", cfg.width, "height", cfg.height, "language", dev.Language())
	return p, nil
}

// Quality returns the quality the pipeline was built with.
func (p *Pipeline) Quality() Quality { return p.quality }

// Size returns the size of every render target.
func (p *Pipeline) Size() (width, height int) { return p.width, p.height }

// Sources returns the generated programs.
func (p *Pipeline) Sources() shader.Sources { return p.sources }

// Target returns one of the three render targets.
func (p *Pipeline) Target(kind TargetKind) *RenderTarget {
	if int(kind) >= len(p.res.targets) {
		return nil
	}
	return p.res.targets[kind]
}

// Lookup returns the area and search textures.
func (p *Pipeline) Lookup() (area, search *LookupTexture) {
	return p.res.area, p.res.search
}

// Program returns the compiled program of a stage.
func (p *Pipeline) Program(stage shader.Stage) *ShaderProgram {
	if int(stage) >= len(p.res.programs) {
		return nil
	}
	return p.res.programs[stage]
}

// clear resets the three targets to transparent black.
func (p *Pipeline) clear() {
	for _, t := range p.res.targets {
		p.dev.BindFramebuffer(t.Framebuffer)
		p.dev.Clear(gpu.Transparent)
	}
}

// Frame is the host side of one draw.
type Frame struct {
	// Target receives the composite. Nil draws into the framebuffer bound
	// when Draw is called.
	Target gpu.Framebuffer

	// ModelView and Projection place the composite. Zero values select the
	// identity and a pixel projection of the pipeline size.
	ModelView  mgl32.Mat4
	Projection mgl32.Mat4
}

// draw clears the targets, runs the pass list and the overlay, and
// restores the framebuffer that was bound before.
func (p *Pipeline) draw(f Frame, children []Child, ov *Overlay) error {
	prev := p.dev.Framebuffer()
	defer p.dev.BindFramebuffer(prev)

	fs := frameState{
		target:     f.Target,
		modelView:  f.ModelView,
		projection: f.Projection,
		children:   children,
	}
	if fs.target == nil {
		fs.target = prev
	}
	if fs.modelView == (mgl32.Mat4{}) {
		fs.modelView = mgl32.Ident4()
	}
	if fs.projection == (mgl32.Mat4{}) {
		fs.projection = gpu.PixelProjection(p.width, p.height)
	}

	p.clear()
	passes := p.passes
	if ov != nil {
		passes = append(slices.Clip(passes), ov.passes()...)
	}
	return p.run(passes, fs)
}

// release destroys every resource of the generation.
func (p *Pipeline) release() {
	p.res.release(p.dev)
	p.passes = nil
	p.log.Debug("smaa: pipeline released", "quality", p.quality, "width", p.width, "height", p.height)
}
