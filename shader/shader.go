package shader

import (
	"errors"
	"fmt"
)

// Errors returned by Assemble.
var (
	// ErrUnknownPreset is returned for a preset outside Low..Ultra.
	ErrUnknownPreset = errors.New("shader: unknown quality preset")

	// ErrUnknownLanguage is returned for a language other than GLSL or WGSL.
	ErrUnknownLanguage = errors.New("shader: unknown shading language")

	// ErrInvalidSize is returned when width or height is not positive.
	ErrInvalidSize = errors.New("shader: invalid size")
)

// Language selects the shading language of the generated programs.
type Language uint8

const (
	// GLSL produces "#version 410 core" programs for OpenGL and the
	// software device.
	GLSL Language = iota

	// WGSL produces WebGPU programs with one vertex and one fragment entry
	// point per module.
	WGSL
)

// String returns the language name.
func (l Language) String() string {
	switch l {
	case GLSL:
		return "glsl"
	case WGSL:
		return "wgsl"
	default:
		return fmt.Sprintf("Language(%d)", l)
	}
}

// Stage identifies one of the three SMAA passes.
type Stage uint8

const (
	// StageEdgeDetection reads the albedo target and writes edges.
	StageEdgeDetection Stage = iota

	// StageBlendingWeight reads edges plus the lookup tables and writes
	// blending weights.
	StageBlendingWeight

	// StageNeighborhoodBlending reads albedo and weights and writes the
	// composite.
	StageNeighborhoodBlending
)

// Stages lists the passes in execution order.
var Stages = [3]Stage{StageEdgeDetection, StageBlendingWeight, StageNeighborhoodBlending}

// String returns the stage name used for labels and logs.
func (s Stage) String() string {
	switch s {
	case StageEdgeDetection:
		return "edge_detection"
	case StageBlendingWeight:
		return "blending_weight"
	case StageNeighborhoodBlending:
		return "neighborhood_blending"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}

// Sampler binds a sampler uniform to a texture unit.
type Sampler struct {
	Name string
	Unit int
}

// Program is the generated source of one pass.
type Program struct {
	Stage    Stage
	Language Language
	Vertex   string
	Fragment string

	// Samplers lists the texture units in declaration order. The units
	// are set once when the program is created.
	Samplers []Sampler
}

// Unit returns the texture unit bound to the named sampler.
func (p Program) Unit(name string) (int, bool) {
	for _, s := range p.Samplers {
		if s.Name == name {
			return s.Unit, true
		}
	}
	return 0, false
}

// Sources holds the three generated programs.
type Sources struct {
	Edge         Program
	Blend        Program
	Neighborhood Program
}

// Program returns the program for the given stage.
func (s *Sources) Program(stage Stage) *Program {
	switch stage {
	case StageEdgeDetection:
		return &s.Edge
	case StageBlendingWeight:
		return &s.Blend
	default:
		return &s.Neighborhood
	}
}

// Sampler names shared by all languages.
const (
	SamplerAlbedo = "albedo_tex"
	SamplerEdges  = "edge_tex"
	SamplerArea   = "area_tex"
	SamplerSearch = "search_tex"
	SamplerBlend  = "blend_tex"
)

var stageSamplers = map[Stage][]Sampler{
	StageEdgeDetection:        {{SamplerAlbedo, 0}},
	StageBlendingWeight:       {{SamplerEdges, 0}, {SamplerArea, 1}, {SamplerSearch, 2}},
	StageNeighborhoodBlending: {{SamplerAlbedo, 0}, {SamplerBlend, 1}},
}

// SamplersFor returns a copy of the fixed sampler bindings of a stage.
func SamplersFor(stage Stage) []Sampler {
	return append([]Sampler(nil), stageSamplers[stage]...)
}
