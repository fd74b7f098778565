package software

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/shader"
)

func assemble(t *testing.T, preset shader.Preset, w, h int) shader.Sources {
	t.Helper()
	src, err := shader.Assemble(shader.Config{Language: shader.GLSL, Preset: preset, Width: w, Height: h})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return src
}

func TestCompileReadsPresetConstants(t *testing.T) {
	d := newDevice(t, 1, 1)
	for _, preset := range []shader.Preset{shader.PresetLow, shader.PresetMedium, shader.PresetHigh, shader.PresetUltra} {
		want, _ := preset.Params()
		src := assemble(t, preset, 200, 100)
		for _, stage := range shader.Stages {
			p, err := d.CreateProgram(*src.Program(stage))
			if err != nil {
				t.Fatalf("%s/%s: CreateProgram() error = %v", preset, stage, err)
			}
			prog := p.(*Program)
			if prog.Stage() != stage {
				t.Errorf("%s: Stage() = %s", stage, prog.Stage())
			}
			if prog.pixel != [2]float64{1.0 / 200, 1.0 / 100} {
				t.Errorf("%s: pixel size = %v", stage, prog.pixel)
			}
			if stage == shader.StageNeighborhoodBlending {
				continue
			}
			if prog.threshold != float32(want.Threshold) || prog.steps != want.MaxSearchSteps {
				t.Errorf("%s/%s: constants = (%v, %d), want (%v, %d)",
					preset, stage, prog.threshold, prog.steps, want.Threshold, want.MaxSearchSteps)
			}
		}
	}
}

func TestCompileErrors(t *testing.T) {
	d := newDevice(t, 1, 1)
	src := assemble(t, shader.PresetUltra, 8, 8)

	noPreset := src.Edge
	noPreset.Fragment = strings.Replace(noPreset.Fragment, "#define SMAA_PRESET_ULTRA 1\n", "", 1)

	noSize := src.Blend
	noSize.Fragment = strings.Replace(noSize.Fragment, "#define SMAA_PIXEL_SIZE", "#define SMAA_PIXEL_SIZE_UNUSED", 1)

	mismatch := src.Edge
	mismatch.Stage = shader.StageBlendingWeight

	noMain := src.Neighborhood
	noMain.Vertex = "#version 410 core\n"

	tests := []struct {
		name string
		prog shader.Program
		want string
	}{
		{"missing preset", noPreset, "no quality preset"},
		{"missing pixel size", noSize, "SMAA_PIXEL_SIZE"},
		{"stage mismatch", mismatch, "edge_detection"},
		{"missing vertex main", noMain, "main()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreateProgram(tt.prog)
			if err == nil {
				t.Fatal("CreateProgram() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCompileRejectsWGSL(t *testing.T) {
	d := newDevice(t, 1, 1)
	src, err := shader.Assemble(shader.Config{Language: shader.WGSL, Preset: shader.PresetLow, Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if _, err := d.CreateProgram(src.Edge); !errors.Is(err, gpu.ErrUnsupported) {
		t.Errorf("CreateProgram(WGSL) error = %v, want ErrUnsupported", err)
	}
}

func TestSetSampler(t *testing.T) {
	d := newDevice(t, 1, 1)
	src := assemble(t, shader.PresetHigh, 8, 8)
	p, err := d.CreateProgram(src.Blend)
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	for _, s := range src.Blend.Samplers {
		if err := d.SetSampler(p, s.Name, s.Unit); err != nil {
			t.Errorf("SetSampler(%q) error = %v", s.Name, err)
		}
	}
	if err := d.SetSampler(p, shader.SamplerAlbedo, 0); err == nil {
		t.Error("SetSampler() for an undeclared sampler error = nil")
	}

	d.DestroyProgram(p)
	if err := d.SetSampler(p, shader.SamplerEdges, 0); !errors.Is(err, gpu.ErrDestroyed) {
		t.Errorf("SetSampler(destroyed) error = %v, want ErrDestroyed", err)
	}
}

func TestDrawUnboundSampler(t *testing.T) {
	d := newDevice(t, 4, 4)
	src := assemble(t, shader.PresetLow, 4, 4)
	p, err := d.CreateProgram(src.Edge)
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	err = d.Draw(gpu.DrawCall{Label: "edges", Program: p, Vertices: gpu.FullScreen})
	if err == nil || !strings.Contains(err.Error(), shader.SamplerAlbedo) {
		t.Errorf("Draw() error = %v, want unbound sampler error", err)
	}
}
