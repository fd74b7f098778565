// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/smaa/shader"
)

// OpKind identifies a recorded device call.
type OpKind uint8

const (
	OpCreateTexture OpKind = iota
	OpWriteTexture
	OpDestroyTexture
	OpCreateFramebuffer
	OpDestroyFramebuffer
	OpCreateProgram
	OpSetSampler
	OpDestroyProgram
	OpBindFramebuffer
	OpSetBlend
	OpClear
	OpDraw
)

var opNames = [...]string{
	OpCreateTexture:      "CreateTexture",
	OpWriteTexture:       "WriteTexture",
	OpDestroyTexture:     "DestroyTexture",
	OpCreateFramebuffer:  "CreateFramebuffer",
	OpDestroyFramebuffer: "DestroyFramebuffer",
	OpCreateProgram:      "CreateProgram",
	OpSetSampler:         "SetSampler",
	OpDestroyProgram:     "DestroyProgram",
	OpBindFramebuffer:    "BindFramebuffer",
	OpSetBlend:           "SetBlend",
	OpClear:              "Clear",
	OpDraw:               "Draw",
}

func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", k)
}

// Op is one recorded call.
type Op struct {
	Kind OpKind

	// Label is the handle or draw label the call operates on.
	Label string

	// Target is the label of the bound framebuffer, "surface" for the
	// default one.
	Target string

	// Blend is the blend state when the call was made, or the new state
	// for OpSetBlend.
	Blend bool

	// Sampler and Unit are set for OpSetSampler.
	Sampler string
	Unit    int

	// MVP is the combined transform of an OpDraw.
	MVP mgl32.Mat4
}

func (o Op) String() string {
	switch o.Kind {
	case OpSetBlend:
		return fmt.Sprintf("SetBlend(%t)", o.Blend)
	case OpDraw, OpClear:
		return fmt.Sprintf("%s(%s -> %s, blend=%t)", o.Kind, o.Label, o.Target, o.Blend)
	case OpSetSampler:
		return fmt.Sprintf("SetSampler(%s, %s=%d)", o.Label, o.Sampler, o.Unit)
	default:
		return fmt.Sprintf("%s(%s)", o.Kind, o.Label)
	}
}

// Trace is a Device that records every call before forwarding it.
type Trace struct {
	dev   Device
	ops   []Op
	blend bool

	// Log receives every op at debug level when not nil.
	Log *slog.Logger
}

// NewTrace wraps dev.
func NewTrace(dev Device) *Trace {
	return &Trace{dev: dev}
}

// Unwrap returns the wrapped device.
func (t *Trace) Unwrap() Device { return t.dev }

// Ops returns a copy of the recorded calls.
func (t *Trace) Ops() []Op {
	return append([]Op(nil), t.ops...)
}

// Reset discards the recorded calls.
func (t *Trace) Reset() { t.ops = t.ops[:0] }

// Filter returns the recorded calls of the given kinds.
func (t *Trace) Filter(kinds ...OpKind) []Op {
	var out []Op
	for _, op := range t.ops {
		for _, k := range kinds {
			if op.Kind == k {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

// BlendChanges returns the arguments of every SetBlend call in order.
func (t *Trace) BlendChanges() []bool {
	var out []bool
	for _, op := range t.ops {
		if op.Kind == OpSetBlend {
			out = append(out, op.Blend)
		}
	}
	return out
}

func (t *Trace) record(op Op) {
	if op.Kind != OpSetBlend {
		op.Blend = t.blend
	}
	t.ops = append(t.ops, op)
	if t.Log != nil && t.Log.Enabled(context.Background(), slog.LevelDebug) {
		t.Log.Debug("gpu", "op", op.String())
	}
}

func (t *Trace) target() string {
	return labelOf(t.dev.Framebuffer())
}

func labelOf(h interface{ Label() string }) string {
	if h == nil {
		return "surface"
	}
	return h.Label()
}

func (t *Trace) Language() shader.Language { return t.dev.Language() }

func (t *Trace) CreateTexture(desc TextureDescriptor) (Texture, error) {
	t.record(Op{Kind: OpCreateTexture, Label: desc.Label})
	return t.dev.CreateTexture(desc)
}

func (t *Trace) WriteTexture(tex Texture, data []byte) error {
	t.record(Op{Kind: OpWriteTexture, Label: tex.Label()})
	return t.dev.WriteTexture(tex, data)
}

func (t *Trace) DestroyTexture(tex Texture) {
	t.record(Op{Kind: OpDestroyTexture, Label: tex.Label()})
	t.dev.DestroyTexture(tex)
}

func (t *Trace) CreateFramebuffer(tex Texture) (Framebuffer, error) {
	t.record(Op{Kind: OpCreateFramebuffer, Label: tex.Label()})
	return t.dev.CreateFramebuffer(tex)
}

func (t *Trace) DestroyFramebuffer(fb Framebuffer) {
	t.record(Op{Kind: OpDestroyFramebuffer, Label: fb.Label()})
	t.dev.DestroyFramebuffer(fb)
}

func (t *Trace) CreateProgram(src shader.Program) (Program, error) {
	t.record(Op{Kind: OpCreateProgram, Label: src.Stage.String()})
	return t.dev.CreateProgram(src)
}

func (t *Trace) SetSampler(p Program, name string, unit int) error {
	t.record(Op{Kind: OpSetSampler, Label: p.Label(), Sampler: name, Unit: unit})
	return t.dev.SetSampler(p, name, unit)
}

func (t *Trace) DestroyProgram(p Program) {
	t.record(Op{Kind: OpDestroyProgram, Label: p.Label()})
	t.dev.DestroyProgram(p)
}

func (t *Trace) BindFramebuffer(fb Framebuffer) {
	t.record(Op{Kind: OpBindFramebuffer, Label: labelOf(fb)})
	t.dev.BindFramebuffer(fb)
}

func (t *Trace) Framebuffer() Framebuffer { return t.dev.Framebuffer() }

func (t *Trace) SetBlend(enabled bool) {
	t.blend = enabled
	t.record(Op{Kind: OpSetBlend, Blend: enabled})
	t.dev.SetBlend(enabled)
}

func (t *Trace) Clear(c Color) {
	t.record(Op{Kind: OpClear, Label: fmt.Sprintf("%v", c), Target: t.target()})
	t.dev.Clear(c)
}

func (t *Trace) Draw(dc DrawCall) error {
	t.record(Op{Kind: OpDraw, Label: dc.Label, Target: t.target(), MVP: dc.MVP()})
	return t.dev.Draw(dc)
}

// ReadPixels forwards to the wrapped device when it is a Reader.
func (t *Trace) ReadPixels(fb Framebuffer) ([]float32, error) {
	r, ok := t.dev.(Reader)
	if !ok {
		return nil, fmt.Errorf("%w: ReadPixels", ErrUnsupported)
	}
	return r.ReadPixels(fb)
}

// Resize forwards to the wrapped device when it is a Resizer.
func (t *Trace) Resize(width, height int) error {
	r, ok := t.dev.(Resizer)
	if !ok {
		return fmt.Errorf("%w: Resize", ErrUnsupported)
	}
	return r.Resize(width, height)
}

var (
	_ Device  = (*Trace)(nil)
	_ Reader  = (*Trace)(nil)
	_ Resizer = (*Trace)(nil)
)
