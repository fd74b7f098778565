// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/gogpu/smaa/gpu"
)

type state uint8

const (
	stateUnbuilt state = iota
	stateActive
	stateRebuilding
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateUnbuilt:
		return "unbuilt"
	case stateActive:
		return "active"
	case stateRebuilding:
		return "rebuilding"
	default:
		return "closed"
	}
}

// Antialiaser owns a pipeline and rebuilds it when quality or size
// change. Children attached to it survive every rebuild.
//
// An Antialiaser is used from the goroutine that owns its device. Only
// Debug and Overlay may be called concurrently with a frame.
type Antialiaser struct {
	dev  gpu.Device
	opts options
	log  *slog.Logger

	quality Quality
	width   int
	height  int
	debug   atomic.Uint32 // DebugMode

	state    state
	drawing  bool
	pipeline *Pipeline
	overlay  atomic.Pointer[Overlay]
	children []Child
}

// New validates the configuration and builds the first pipeline.
func New(dev gpu.Device, width, height int, opts ...Option) (*Antialiaser, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.quality.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, o.quality)
	}
	if !o.debug.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDebugMode, o.debug)
	}
	if err := validSize(width, height); err != nil {
		return nil, err
	}

	log := o.logger
	if log == nil {
		log = Logger()
	}
	propagateLogger(dev, log)

	a := &Antialiaser{
		dev:     dev,
		opts:    o,
		log:     log,
		quality: o.quality,
		width:   width,
		height:  height,
	}
	a.debug.Store(uint32(o.debug))
	if err := a.rebuild(); err != nil {
		return nil, err
	}
	return a, nil
}

func validSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}

// Quality returns the configured quality.
func (a *Antialiaser) Quality() Quality { return a.quality }

// Size returns the configured size.
func (a *Antialiaser) Size() (width, height int) { return a.width, a.height }

// Debug returns the current debug mode.
func (a *Antialiaser) Debug() DebugMode { return DebugMode(a.debug.Load()) }

// Overlay returns the active overlay descriptor, nil when the composite
// is shown.
func (a *Antialiaser) Overlay() *Overlay { return a.overlay.Load() }

// Pipeline returns the current pipeline, nil when not built.
func (a *Antialiaser) Pipeline() *Pipeline { return a.pipeline }

// Device returns the device the antialiaser draws with.
func (a *Antialiaser) Device() gpu.Device { return a.dev }

// Built reports whether a pipeline is ready to draw.
func (a *Antialiaser) Built() bool { return a.state == stateActive }

// SetQuality rebuilds the pipeline with q. Setting the current quality on
// a built pipeline does nothing; on an unbuilt one it retries the build.
func (a *Antialiaser) SetQuality(q Quality) error {
	if !q.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, q)
	}
	return a.reconfigure(q, a.width, a.height)
}

// SetSize rebuilds the pipeline for a new size.
func (a *Antialiaser) SetSize(width, height int) error {
	if err := validSize(width, height); err != nil {
		return err
	}
	return a.reconfigure(a.quality, width, height)
}

// SetDebug switches the overlay. It never reallocates resources. On an
// unbuilt pipeline the mode is applied by the next successful build.
func (a *Antialiaser) SetDebug(m DebugMode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDebugMode, m)
	}
	if a.state == stateClosed {
		return ErrClosed
	}
	a.debug.Store(uint32(m))
	if a.state == stateActive {
		a.overlay.Store(newOverlay(a.pipeline, m))
	}
	a.log.Debug("smaa: debug mode", "mode", m)
	return nil
}

func (a *Antialiaser) reconfigure(q Quality, width, height int) error {
	switch {
	case a.state == stateClosed:
		return ErrClosed
	case a.state == stateRebuilding:
		return ErrRebuilding
	case a.drawing:
		return ErrInFrame
	}
	if a.state == stateActive && q == a.quality && width == a.width && height == a.height {
		return nil
	}
	a.quality, a.width, a.height = q, width, height
	return a.rebuild()
}

// rebuild replaces the pipeline with one built from the configured
// quality and size. On failure the antialiaser is left unbuilt, and the
// children stay attached to the controller.
func (a *Antialiaser) rebuild() error {
	a.state = stateRebuilding
	mode := a.Debug()
	a.overlay.Store(nil)

	if a.pipeline != nil {
		a.pipeline.release()
		a.pipeline = nil
	}

	p, err := buildPipeline(a.dev, buildConfig{
		quality: a.quality,
		width:   a.width,
		height:  a.height,
		library: a.opts.library[a.dev.Language()],
		tables:  a.opts.tables,
	}, a.log)
	if err != nil {
		a.state = stateUnbuilt
		a.log.Warn("smaa: pipeline build failed", "quality", a.quality, "width", a.width, "height", a.height, "err", err)
		return err
	}

	a.pipeline = p
	a.overlay.Store(newOverlay(p, mode))
	a.state = stateActive
	return nil
}

// Add attaches a child. Children draw in the order they were added.
func (a *Antialiaser) Add(c Child) {
	if c != nil {
		a.children = append(a.children, c)
	}
}

// Remove detaches the first child equal to c and reports whether one was
// found. Children whose values are not comparable, including structs
// holding a ChildFunc, are never matched.
func (a *Antialiaser) Remove(c Child) bool {
	if c == nil || !reflect.ValueOf(c).Comparable() {
		return false
	}
	for i, have := range a.children {
		if reflect.ValueOf(have).Comparable() && have == c {
			a.children = slices.Delete(a.children, i, i+1)
			return true
		}
	}
	return false
}

// RemoveAll detaches every child.
func (a *Antialiaser) RemoveAll() {
	a.children = nil
}

// Children returns a copy of the attached children.
func (a *Antialiaser) Children() []Child {
	return slices.Clone(a.children)
}

// Targets are the three render targets of the current pipeline.
type Targets struct {
	Albedo *RenderTarget
	Edges  *RenderTarget
	Blend  *RenderTarget
}

// Targets returns the render targets for inspection. The second result
// is false when no pipeline is built.
func (a *Antialiaser) Targets() (Targets, bool) {
	if a.state != stateActive {
		return Targets{}, false
	}
	p := a.pipeline
	return Targets{
		Albedo: p.Target(TargetAlbedo),
		Edges:  p.Target(TargetEdges),
		Blend:  p.Target(TargetBlend),
	}, true
}

// Draw renders one frame: the children into the albedo target, the three
// passes, and the overlay when a debug mode is set.
func (a *Antialiaser) Draw(f Frame) error {
	switch {
	case a.state == stateClosed:
		return ErrClosed
	case a.state == stateRebuilding:
		return ErrRebuilding
	case a.drawing:
		return ErrInFrame
	case a.state != stateActive:
		return ErrNotBuilt
	}
	a.drawing = true
	defer func() { a.drawing = false }()

	return a.pipeline.draw(f, a.children, a.overlay.Load())
}

// Close releases the pipeline. The device is not closed.
func (a *Antialiaser) Close() error {
	if a.state == stateClosed {
		return nil
	}
	if a.drawing {
		return ErrInFrame
	}
	a.overlay.Store(nil)
	if a.pipeline != nil {
		a.pipeline.release()
		a.pipeline = nil
	}
	a.state = stateClosed
	return nil
}
