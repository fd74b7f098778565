// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/shader"
)

// uniformSize is two mat4x4<f32> plus the built-in program's color.
const uniformSize = 2*64 + 16

// vertexStride is position plus texture coordinate, two float32 each.
const vertexStride = 16

// builtinSampler names unit 0 of the built-in program.
const builtinSampler = "texture0"

const builtinWGSL = `
struct Transform {
    modelview: mat4x4<f32>,
    projection: mat4x4<f32>,
    color: vec4<f32>,
}

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) texcoord: vec2<f32>,
}

struct Varyings {
    @builtin(position) position: vec4<f32>,
    @location(0) texcoord: vec2<f32>,
}

@group(0) @binding(0) var<uniform> transform: Transform;
@group(0) @binding(1) var texture0: texture_2d<f32>;
@group(0) @binding(2) var sampler0: sampler;

@vertex
fn vs_main(input: VertexInput) -> Varyings {
    var out: Varyings;
    var p = transform.projection * transform.modelview * vec4<f32>(input.position, 0.0, 1.0);
    p.y = -p.y;
    out.position = p;
    out.texcoord = input.texcoord;
    return out;
}

@fragment
fn fs_main(input: Varyings) -> @location(0) vec4<f32> {
    return transform.color * textureSample(texture0, sampler0, input.texcoord);
}
`

// Program holds the shader modules and layouts of one pass.
type Program struct {
	dev        *Device
	stage      shader.Stage
	label      string
	vertex     hal.ShaderModule
	fragment   hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	samplers   []shader.Sampler
	destroyed  bool
}

func (p *Program) Label() string       { return p.label }
func (p *Program) Stage() shader.Stage { return p.stage }

// pipelineKey selects a render pipeline: blend state and target format are
// baked into WebGPU pipelines.
type pipelineKey struct {
	prog   *Program
	blend  bool
	format gputypes.TextureFormat
}

func (d *Device) CreateProgram(src shader.Program) (gpu.Program, error) {
	if src.Language != shader.WGSL {
		return nil, fmt.Errorf("wgpu: %s program: %w", src.Language, gpu.ErrUnsupported)
	}
	p, err := d.createProgram(src.Stage.String(), src.Vertex, src.Fragment, src.Samplers)
	if err != nil {
		return nil, fmt.Errorf("wgpu: %s: %w", src.Stage, err)
	}
	p.stage = src.Stage
	d.log.Debug("wgpu: program created", "stage", src.Stage)
	return p, nil
}

func (d *Device) createBuiltin() (*Program, error) {
	p, err := d.createProgram("builtin", builtinWGSL, builtinWGSL, []shader.Sampler{{Name: builtinSampler, Unit: 0}})
	if err != nil {
		return nil, fmt.Errorf("wgpu: built-in program: %w", err)
	}
	return p, nil
}

func (d *Device) createProgram(label, vertexSrc, fragmentSrc string, samplers []shader.Sampler) (*Program, error) {
	p := &Program{dev: d, label: label, samplers: samplers}
	var err error
	if p.vertex, err = d.createModule(label+"_vs", vertexSrc); err != nil {
		return nil, err
	}
	if p.fragment, err = d.createModule(label+"_fs", fragmentSrc); err != nil {
		d.destroyProgram(p)
		return nil, err
	}

	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    shader.TransformBinding,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}
	for _, s := range samplers {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    shader.TextureBinding(s.Unit),
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    shader.SamplerBinding(s.Unit),
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	p.bindLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		d.destroyProgram(p)
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}
	p.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		d.destroyProgram(p)
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	return p, nil
}

func (d *Device) createModule(label, wgsl string) (hal.ShaderModule, error) {
	spirv, err := compileSPIRV(wgsl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	m, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create shader module: %w", label, err)
	}
	return m, nil
}

// compileSPIRV compiles WGSL to little-endian SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	b, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not word aligned", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

// SetSampler checks that the named sampler sits on unit. WGSL bindings are
// fixed when the program is assembled.
func (d *Device) SetSampler(prog gpu.Program, name string, unit int) error {
	p, err := d.program(prog)
	if err != nil {
		return err
	}
	for _, s := range p.samplers {
		if s.Name != name {
			continue
		}
		if s.Unit != unit {
			return fmt.Errorf("wgpu: %s: sampler %q is bound to unit %d, not %d", p.label, name, s.Unit, unit)
		}
		return nil
	}
	return fmt.Errorf("wgpu: %s: no sampler %q", p.label, name)
}

func (d *Device) DestroyProgram(prog gpu.Program) {
	p, err := d.program(prog)
	if err != nil {
		return
	}
	d.destroyProgram(p)
}

func (d *Device) destroyProgram(p *Program) {
	for key, rp := range d.pipelines {
		if key.prog == p {
			d.device.DestroyRenderPipeline(rp)
			delete(d.pipelines, key)
		}
	}
	if p.pipeLayout != nil {
		d.device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		d.device.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.fragment != nil {
		d.device.DestroyShaderModule(p.fragment)
	}
	if p.vertex != nil {
		d.device.DestroyShaderModule(p.vertex)
	}
	p.destroyed = true
}

func (d *Device) program(prog gpu.Program) (*Program, error) {
	p, ok := prog.(*Program)
	if !ok || p.dev != d {
		return nil, gpu.ErrForeignHandle
	}
	if p.destroyed {
		return nil, fmt.Errorf("wgpu: program %s: %w", p.label, gpu.ErrDestroyed)
	}
	return p, nil
}

// pipeline returns the render pipeline of p for the current blend state
// and the target format, creating it on first use.
func (d *Device) pipeline(p *Program, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	key := pipelineKey{prog: p, blend: d.blend, format: format}
	if rp, ok := d.pipelines[key]; ok {
		return rp, nil
	}

	target := gputypes.ColorTargetState{Format: format, WriteMask: gputypes.ColorWriteMaskAll}
	if d.blend {
		target.Blend = &sourceAlphaBlend
	}
	rp, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vertex,
			EntryPoint: shader.VertexEntryPoint,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: vertexStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				},
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragment,
			EntryPoint: shader.FragmentEntryPoint,
			Targets:    []gputypes.ColorTargetState{target},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline %s: %w", p.label, err)
	}
	d.pipelines[key] = rp
	d.log.Debug("wgpu: pipeline created", "program", p.label, "blend", d.blend, "format", format)
	return rp, nil
}

// sourceAlphaBlend is src*a + dst*(1-a) on every channel.
var sourceAlphaBlend = gputypes.BlendState{
	Color: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	},
	Alpha: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	},
}
