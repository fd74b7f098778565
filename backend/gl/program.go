// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogl

package gl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/shader"
)

// Fixed attribute locations, bound before linking.
const (
	attribPosition = 0
	attribTexCoord = 1
)

const builtinVertex = `#version 410 core
in vec2 vPosition;
in vec2 vTexCoords0;
uniform mat4 modelview_mat;
uniform mat4 projection_mat;
out vec2 texcoord;

void main() {
    texcoord = vTexCoords0;
    gl_Position = projection_mat * modelview_mat * vec4(vPosition, 0.0, 1.0);
}
`

const builtinFragment = `#version 410 core
in vec2 texcoord;
uniform vec4 color;
uniform int textured;
uniform sampler2D texture0;
out vec4 fragColor;

void main() {
    vec4 c = color;
    if (textured != 0) {
        c *= texture(texture0, texcoord);
    }
    fragColor = c;
}
`

// Program is a linked GL program.
type Program struct {
	dev        *Device
	id         uint32
	stage      shader.Stage
	modelView  int32
	projection int32
	destroyed  bool
}

func (p *Program) Label() string       { return p.stage.String() }
func (p *Program) Stage() shader.Stage { return p.stage }

func (p *Program) uniform(name string) int32 {
	return gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
}

func (d *Device) CreateProgram(src shader.Program) (gpu.Program, error) {
	if src.Language != shader.GLSL {
		return nil, fmt.Errorf("gl: %s program: %w", src.Language, gpu.ErrUnsupported)
	}
	p, err := link(src.Stage, src.Vertex, src.Fragment)
	if err != nil {
		return nil, fmt.Errorf("gl: %s: %w", src.Stage, err)
	}
	p.dev = d
	d.log.Debug("gl: program linked", "stage", src.Stage, "id", p.id)
	return p, nil
}

func (d *Device) SetSampler(prog gpu.Program, name string, unit int) error {
	p, err := d.program(prog)
	if err != nil {
		return err
	}
	loc := p.uniform(name)
	if loc < 0 {
		return fmt.Errorf("gl: %s: no sampler %q", p.stage, name)
	}
	gl.UseProgram(p.id)
	gl.Uniform1i(loc, int32(unit))
	return nil
}

func (d *Device) DestroyProgram(prog gpu.Program) {
	p, err := d.program(prog)
	if err != nil {
		return
	}
	gl.DeleteProgram(p.id)
	p.destroyed = true
}

func (d *Device) program(prog gpu.Program) (*Program, error) {
	p, ok := prog.(*Program)
	if !ok || p.dev != d {
		return nil, gpu.ErrForeignHandle
	}
	if p.destroyed {
		return nil, fmt.Errorf("gl: program %s: %w", p.stage, gpu.ErrDestroyed)
	}
	return p, nil
}

func link(stage shader.Stage, vertexSrc, fragmentSrc string) (*Program, error) {
	vs, err := compile(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex: %w", err)
	}
	fs, err := compile(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return nil, fmt.Errorf("fragment: %w", err)
	}

	id := gl.CreateProgram()
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.BindAttribLocation(id, attribPosition, gl.Str(shader.AttribPosition+"\x00"))
	gl.BindAttribLocation(id, attribTexCoord, gl.Str(shader.AttribTexCoord+"\x00"))
	gl.LinkProgram(id)
	gl.DetachShader(id, vs)
	gl.DetachShader(id, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := programLog(id)
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("link: %s", msg)
	}

	p := &Program{id: id, stage: stage}
	p.modelView = p.uniform(shader.UniformModelView)
	p.projection = p.uniform(shader.UniformProjection)
	return p, nil
}

func compile(source string, kind uint32) (uint32, error) {
	id := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, csources, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(id, n, nil, gl.Str(msg))
		gl.DeleteShader(id)
		return 0, fmt.Errorf("compile: %s", strings.TrimRight(msg, "\x00"))
	}
	return id, nil
}

func programLog(id uint32) string {
	var n int32
	gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &n)
	msg := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(id, n, nil, gl.Str(msg))
	return strings.TrimRight(msg, "\x00")
}
