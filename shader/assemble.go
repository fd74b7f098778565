package shader

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
)

//go:embed smaa.glsl
var glslLibrary string

//go:embed smaa.wgsl
var wgslLibrary string

// Library returns the embedded effect library for a language, or "" for an
// unknown language.
func Library(lang Language) string {
	switch lang {
	case GLSL:
		return glslLibrary
	case WGSL:
		return wgslLibrary
	default:
		return ""
	}
}

// Config selects the programs to assemble.
type Config struct {
	Language Language
	Preset   Preset
	Width    int
	Height   int

	// Library replaces the embedded effect library when not empty.
	Library string
}

// Assemble builds the three pass programs for cfg. The configuration is
// validated before any text is produced.
func Assemble(cfg Config) (Sources, error) {
	params, err := cfg.Preset.Params()
	if err != nil {
		return Sources{}, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Sources{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, cfg.Width, cfg.Height)
	}
	lib := cfg.Library
	if lib == "" {
		lib = Library(cfg.Language)
	}

	var build func(Stage) Program
	switch cfg.Language {
	case GLSL:
		header := glslHeader(cfg)
		build = func(stage Stage) Program {
			return Program{
				Stage:    stage,
				Language: GLSL,
				Vertex:   header + "#define SMAA_ONLY_COMPILE_VS 1\n" + lib + glslVertexEntry[stage],
				Fragment: header + "#define SMAA_ONLY_COMPILE_PS 1\n" + lib + glslFragmentEntry[stage],
				Samplers: SamplersFor(stage),
			}
		}
	case WGSL:
		header := wgslHeader(cfg, params)
		build = func(stage Stage) Program {
			iface := wgslInterface(stage)
			return Program{
				Stage:    stage,
				Language: WGSL,
				Vertex:   header + lib + iface + wgslVertexEntry[stage],
				Fragment: header + lib + iface + wgslBindings(stage) + wgslFragmentEntry[stage],
				Samplers: SamplersFor(stage),
			}
		}
	default:
		return Sources{}, fmt.Errorf("%w: %v", ErrUnknownLanguage, cfg.Language)
	}

	return Sources{
		Edge:         build(StageEdgeDetection),
		Blend:        build(StageBlendingWeight),
		Neighborhood: build(StageNeighborhoodBlending),
	}, nil
}

func glslHeader(cfg Config) string {
	var b strings.Builder
	b.WriteString("#version 410 core\n")
	fmt.Fprintf(&b, "#define SMAA_PIXEL_SIZE vec2(1.0 / %d.0, 1.0 / %d.0)\n", cfg.Width, cfg.Height)
	fmt.Fprintf(&b, "#define %s 1\n", cfg.Preset.Flag())
	b.WriteString("#define SMAA_GLSL_4 1\n")
	return b.String()
}

// WGSL has no preprocessor: the preset flag and its constants are emitted
// directly.
func wgslHeader(cfg Config, p Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "const SMAA_PIXEL_SIZE: vec2<f32> = vec2<f32>(1.0 / %d.0, 1.0 / %d.0);\n", cfg.Width, cfg.Height)
	fmt.Fprintf(&b, "const %s: bool = true;\n", cfg.Preset.Flag())
	fmt.Fprintf(&b, "const SMAA_THRESHOLD: f32 = %s;\n", wgslFloat(p.Threshold))
	fmt.Fprintf(&b, "const SMAA_MAX_SEARCH_STEPS: i32 = %d;\n\n", p.MaxSearchSteps)
	return b.String()
}

func wgslFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Vertex attribute names shared by every GLSL program.
const (
	AttribPosition = "vPosition"
	AttribTexCoord = "vTexCoords0"
)

// Transform uniforms of every GLSL program.
const (
	UniformModelView  = "modelview_mat"
	UniformProjection = "projection_mat"
)

const glslVertexPrelude = `
in vec2 vPosition;
in vec2 vTexCoords0;
uniform mat4 modelview_mat;
uniform mat4 projection_mat;
out vec2 texcoord;
`

var glslVertexEntry = map[Stage]string{
	StageEdgeDetection: glslVertexPrelude + `out vec4 offset[3];

void main() {
    texcoord = vTexCoords0;
    SMAAEdgeDetectionVS(texcoord, offset);
    gl_Position = projection_mat * modelview_mat * vec4(vPosition, 0.0, 1.0);
}
`,
	StageBlendingWeight: glslVertexPrelude + `out vec2 pixcoord;
out vec4 offset[2];

void main() {
    texcoord = vTexCoords0;
    SMAABlendingWeightCalculationVS(texcoord, pixcoord, offset);
    gl_Position = projection_mat * modelview_mat * vec4(vPosition, 0.0, 1.0);
}
`,
	StageNeighborhoodBlending: glslVertexPrelude + `out vec4 offset[2];

void main() {
    texcoord = vTexCoords0;
    SMAANeighborhoodBlendingVS(texcoord, offset);
    gl_Position = projection_mat * modelview_mat * vec4(vPosition, 0.0, 1.0);
}
`,
}

var glslFragmentEntry = map[Stage]string{
	StageEdgeDetection: `
in vec2 texcoord;
in vec4 offset[3];
uniform sampler2D albedo_tex;
out vec4 fragColor;

void main() {
    fragColor = SMAAColorEdgeDetectionPS(texcoord, offset, albedo_tex);
}
`,
	StageBlendingWeight: `
in vec2 texcoord;
in vec2 pixcoord;
in vec4 offset[2];
uniform sampler2D edge_tex;
uniform sampler2D area_tex;
uniform sampler2D search_tex;
out vec4 fragColor;

void main() {
    fragColor = SMAABlendingWeightCalculationPS(texcoord, pixcoord, offset, edge_tex, area_tex, search_tex);
}
`,
	StageNeighborhoodBlending: `
in vec2 texcoord;
in vec4 offset[2];
uniform sampler2D albedo_tex;
uniform sampler2D blend_tex;
out vec4 fragColor;

void main() {
    fragColor = SMAANeighborhoodBlendingPS(texcoord, offset, albedo_tex, blend_tex);
}
`,
}
