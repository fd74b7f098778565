// Package shader assembles the source text of the three SMAA pass programs.
//
// Every program is the concatenation of a configuration header, the shared
// effect library and a stage entry point:
//
//	header   version, reciprocal pixel size, one quality preset flag
//	library  SMAA helper and pass functions (smaa.glsl or smaa.wgsl)
//	entry    stage varyings, uniforms and main
//
// Assembly is deterministic: the same [Config] always yields byte-identical
// [Sources]. Quality is selected at compile time through the preset flag, so
// each [Preset] produces textually different programs.
//
// Texture units are fixed per program and reported through
// [Program.Samplers]:
//
//	edge detection           albedo_tex=0
//	blending weights         edge_tex=0, area_tex=1, search_tex=2
//	neighborhood blending    albedo_tex=0, blend_tex=1
package shader
