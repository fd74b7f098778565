package software

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/shader"
)

var errNoMain = errors.New("no main() in active source")

var (
	pixelSizeRE = regexp.MustCompile(`^vec2\(\s*1\.0\s*/\s*([0-9.]+)\s*,\s*1\.0\s*/\s*([0-9.]+)\s*\)$`)
	samplerRE   = regexp.MustCompile(`uniform\s+sampler2D\s+(\w+)\s*;`)
)

// entryCalls maps the pass function called from a fragment main() to its
// stage.
var entryCalls = []struct {
	call  string
	stage shader.Stage
}{
	{"SMAAColorEdgeDetectionPS(", shader.StageEdgeDetection},
	{"SMAABlendingWeightCalculationPS(", shader.StageBlendingWeight},
	{"SMAANeighborhoodBlendingPS(", shader.StageNeighborhoodBlending},
}

// Program is a compiled pass. The preset constants are taken from the
// preprocessed source, not from the stage's defaults.
type Program struct {
	dev       *Device
	stage     shader.Stage
	threshold float32
	steps     int
	pixel     [2]float64 // SMAA_PIXEL_SIZE
	declared  map[string]bool
	units     map[string]int
	destroyed bool
}

func (p *Program) Label() string       { return p.stage.String() }
func (p *Program) Stage() shader.Stage { return p.stage }

func compile(d *Device, src shader.Program) (*Program, error) {
	if src.Language != shader.GLSL {
		return nil, fmt.Errorf("%w: %s programs", gpu.ErrUnsupported, src.Language)
	}
	vs, err := preprocess(src.Vertex)
	if err != nil {
		return nil, fmt.Errorf("vertex: %w", err)
	}
	if !strings.Contains(vs.text, "void main()") {
		return nil, fmt.Errorf("vertex: %w", errNoMain)
	}
	fs, err := preprocess(src.Fragment)
	if err != nil {
		return nil, fmt.Errorf("fragment: %w", err)
	}

	stage, err := fragmentStage(fs.text)
	if err != nil {
		return nil, fmt.Errorf("fragment: %w", err)
	}
	if stage != src.Stage {
		return nil, fmt.Errorf("fragment calls the %s pass, program is %s", stage, src.Stage)
	}

	p := &Program{
		dev:      d,
		stage:    stage,
		declared: make(map[string]bool),
		units:    make(map[string]int),
	}
	if p.pixel, err = pixelSize(fs.defines); err != nil {
		return nil, err
	}
	if stage != shader.StageNeighborhoodBlending {
		if p.threshold, p.steps, err = presetConstants(fs.defines); err != nil {
			return nil, err
		}
	}
	for _, m := range samplerRE.FindAllStringSubmatch(fs.text, -1) {
		p.declared[m[1]] = true
	}
	return p, nil
}

func fragmentStage(text string) (shader.Stage, error) {
	i := strings.Index(text, "void main()")
	if i < 0 {
		return 0, errNoMain
	}
	body := text[i:]
	for _, e := range entryCalls {
		if strings.Contains(body, e.call) {
			return e.stage, nil
		}
	}
	return 0, errors.New("main() calls no known pass")
}

func pixelSize(defines map[string]string) ([2]float64, error) {
	v, ok := defines["SMAA_PIXEL_SIZE"]
	if !ok {
		return [2]float64{}, errors.New("SMAA_PIXEL_SIZE is not defined")
	}
	m := pixelSizeRE.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return [2]float64{}, fmt.Errorf("SMAA_PIXEL_SIZE: unsupported value %q", v)
	}
	w, err := strconv.ParseFloat(m[1], 64)
	if err != nil || w <= 0 {
		return [2]float64{}, fmt.Errorf("SMAA_PIXEL_SIZE: bad width %q", m[1])
	}
	h, err := strconv.ParseFloat(m[2], 64)
	if err != nil || h <= 0 {
		return [2]float64{}, fmt.Errorf("SMAA_PIXEL_SIZE: bad height %q", m[2])
	}
	return [2]float64{1 / w, 1 / h}, nil
}

func presetConstants(defines map[string]string) (float32, int, error) {
	ts, ok := defines["SMAA_THRESHOLD"]
	if !ok {
		return 0, 0, errors.New("SMAA_THRESHOLD is not defined")
	}
	threshold, err := strconv.ParseFloat(strings.TrimSpace(ts), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("SMAA_THRESHOLD: %w", err)
	}
	ss, ok := defines["SMAA_MAX_SEARCH_STEPS"]
	if !ok {
		return 0, 0, errors.New("SMAA_MAX_SEARCH_STEPS is not defined")
	}
	steps, err := strconv.Atoi(strings.TrimSpace(ss))
	if err != nil || steps <= 0 {
		return 0, 0, fmt.Errorf("SMAA_MAX_SEARCH_STEPS: bad value %q", ss)
	}
	return float32(threshold), steps, nil
}

// shader resolves the program and textures of a draw into a fragment
// function.
func (d *Device) shader(dc gpu.DrawCall) (shadeFunc, error) {
	textures := make([]*Texture, len(dc.Textures))
	for i, tex := range dc.Textures {
		if tex == nil {
			continue
		}
		t, err := d.texture(tex)
		if err != nil {
			return nil, fmt.Errorf("texture unit %d: %w", i, err)
		}
		textures[i] = t
	}

	if dc.Program == nil {
		tint := rgba{dc.Color.R, dc.Color.G, dc.Color.B, dc.Color.A}
		if len(textures) == 0 || textures[0] == nil {
			return func(float64, float64) (rgba, bool) { return tint, true }, nil
		}
		tex := textures[0]
		return func(u, v float64) (rgba, bool) { return tint.mul(tex.sample(u, v)), true }, nil
	}

	p, err := d.program(dc.Program)
	if err != nil {
		return nil, err
	}
	k := &kernel{prog: p}
	bind := func(name string) (*Texture, error) {
		unit, ok := p.units[name]
		if !ok {
			return nil, fmt.Errorf("sampler %q has no texture unit", name)
		}
		if unit >= len(textures) || textures[unit] == nil {
			return nil, fmt.Errorf("sampler %q: no texture on unit %d", name, unit)
		}
		return textures[unit], nil
	}

	switch p.stage {
	case shader.StageEdgeDetection:
		if k.albedo, err = bind(shader.SamplerAlbedo); err != nil {
			return nil, err
		}
		return k.edges, nil
	case shader.StageBlendingWeight:
		if k.edgeTex, err = bind(shader.SamplerEdges); err != nil {
			return nil, err
		}
		if k.area, err = bind(shader.SamplerArea); err != nil {
			return nil, err
		}
		if k.search, err = bind(shader.SamplerSearch); err != nil {
			return nil, err
		}
		return k.weights, nil
	default:
		if k.albedo, err = bind(shader.SamplerAlbedo); err != nil {
			return nil, err
		}
		if k.blend, err = bind(shader.SamplerBlend); err != nil {
			return nil, err
		}
		return k.neighborhood, nil
	}
}
