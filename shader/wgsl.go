package shader

import (
	"fmt"
	"strings"
)

// TransformBinding is the binding of the model-view/projection uniform in
// every WGSL program.
const TransformBinding = 0

// TextureBinding returns the WGSL binding of the texture on a unit.
func TextureBinding(unit int) uint32 { return uint32(1 + 2*unit) } //nolint:gosec // units are 0..2

// SamplerBinding returns the WGSL binding of the sampler on a unit.
func SamplerBinding(unit int) uint32 { return uint32(2 + 2*unit) } //nolint:gosec // units are 0..2

const wgslTransform = `
struct Transform {
    modelview: mat4x4<f32>,
    projection: mat4x4<f32>,
}

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) texcoord: vec2<f32>,
}
`

var wgslVaryings = map[Stage]string{
	StageEdgeDetection: `
struct Varyings {
    @builtin(position) position: vec4<f32>,
    @location(0) texcoord: vec2<f32>,
    @location(1) offset0: vec4<f32>,
    @location(2) offset1: vec4<f32>,
    @location(3) offset2: vec4<f32>,
}
`,
	StageBlendingWeight: `
struct Varyings {
    @builtin(position) position: vec4<f32>,
    @location(0) texcoord: vec2<f32>,
    @location(1) pixcoord: vec2<f32>,
    @location(2) offset0: vec4<f32>,
    @location(3) offset1: vec4<f32>,
}
`,
	StageNeighborhoodBlending: `
struct Varyings {
    @builtin(position) position: vec4<f32>,
    @location(0) texcoord: vec2<f32>,
    @location(1) offset0: vec4<f32>,
    @location(2) offset1: vec4<f32>,
}
`,
}

func wgslInterface(stage Stage) string {
	return wgslTransform + wgslVaryings[stage]
}

func wgslBindings(stage Stage) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, s := range SamplersFor(stage) {
		name := strings.TrimSuffix(s.Name, "_tex")
		fmt.Fprintf(&b, "@group(0) @binding(%d) var %s_tex: texture_2d<f32>;\n", TextureBinding(s.Unit), name)
		fmt.Fprintf(&b, "@group(0) @binding(%d) var %s_smp: sampler;\n", SamplerBinding(s.Unit), name)
	}
	return b.String()
}

// Row 0 of every target is the bottom row, as in OpenGL, so clip space is
// flipped vertically.
const wgslVertexPrelude = `
@group(0) @binding(0) var<uniform> transform: Transform;

fn smaa_clip_position(position: vec2<f32>) -> vec4<f32> {
    var p = transform.projection * transform.modelview * vec4<f32>(position, 0.0, 1.0);
    p.y = -p.y;
    return p;
}
`

var wgslVertexEntry = map[Stage]string{
	StageEdgeDetection: wgslVertexPrelude + `
@vertex
fn vs_main(input: VertexInput) -> Varyings {
    var out: Varyings;
    out.position = smaa_clip_position(input.position);
    out.texcoord = input.texcoord;
    let offset = smaa_edge_detection_offsets(input.texcoord);
    out.offset0 = offset[0];
    out.offset1 = offset[1];
    out.offset2 = offset[2];
    return out;
}
`,
	StageBlendingWeight: wgslVertexPrelude + `
@vertex
fn vs_main(input: VertexInput) -> Varyings {
    var out: Varyings;
    out.position = smaa_clip_position(input.position);
    out.texcoord = input.texcoord;
    out.pixcoord = input.texcoord / SMAA_PIXEL_SIZE;
    let offset = smaa_blending_weight_offsets(input.texcoord);
    out.offset0 = offset[0];
    out.offset1 = offset[1];
    return out;
}
`,
	StageNeighborhoodBlending: wgslVertexPrelude + `
@vertex
fn vs_main(input: VertexInput) -> Varyings {
    var out: Varyings;
    out.position = smaa_clip_position(input.position);
    out.texcoord = input.texcoord;
    let offset = smaa_neighborhood_blending_offsets(input.texcoord);
    out.offset0 = offset[0];
    out.offset1 = offset[1];
    return out;
}
`,
}

var wgslFragmentEntry = map[Stage]string{
	StageEdgeDetection: `
@fragment
fn fs_main(input: Varyings) -> @location(0) vec4<f32> {
    let edges = smaa_color_edge_detection(input.texcoord, input.offset0, input.offset1, input.offset2, albedo_tex, albedo_smp);
    if (edges.x + edges.y == 0.0) {
        discard;
    }
    return edges;
}
`,
	StageBlendingWeight: `
@fragment
fn fs_main(input: Varyings) -> @location(0) vec4<f32> {
    return smaa_blending_weight_calculation(input.texcoord, input.pixcoord, input.offset0, input.offset1,
        edge_tex, edge_smp, area_tex, area_smp, search_tex, search_smp);
}
`,
	StageNeighborhoodBlending: `
@fragment
fn fs_main(input: Varyings) -> @location(0) vec4<f32> {
    return smaa_neighborhood_blending(input.texcoord, input.offset1, albedo_tex, albedo_smp, blend_tex, blend_smp);
}
`,
}

// Entry points of every WGSL program.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)
