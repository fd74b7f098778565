//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the Vulkan HAL backend

	"github.com/gogpu/smaa/backend"
	"github.com/gogpu/smaa/gpu"
	"github.com/gogpu/smaa/shader"
)

func init() {
	backend.Register(backend.BackendWGPU, func(width, height int) (gpu.Device, error) {
		return New(width, height)
	})
}

// Errors returned when opening a device.
var (
	// ErrNoAdapter is returned when the HAL reports no usable adapter.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter")

	// ErrNoHAL is returned when a provider does not expose HAL objects.
	ErrNoHAL = errors.New("wgpu: provider does not expose HAL device and queue")
)

// Device is a gogpu/wgpu implementation of gpu.Device.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool

	surfaceFormat gputypes.TextureFormat
	surface       *Framebuffer
	bound         *Framebuffer
	blend         bool

	linear  hal.Sampler
	nearest hal.Sampler
	white   *Texture

	builtin   *Program
	pipelines map[pipelineKey]hal.RenderPipeline

	log *slog.Logger
}

var (
	_ gpu.Device  = (*Device)(nil)
	_ gpu.Reader  = (*Device)(nil)
	_ gpu.Resizer = (*Device)(nil)
)

// New opens a headless device on the first discrete or integrated GPU, with
// an RGBA8 surface of the given size.
func New(width, height int) (*Device, error) {
	be, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan", backend.ErrBackendNotAvailable)
	}
	instance, err := be.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	d, err := newDevice(open.Device, open.Queue, gputypes.TextureFormatRGBA8Unorm, width, height)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.log.Info("wgpu: device opened", "adapter", selected.Info.Name)
	return d, nil
}

// NewFromProvider shares the HAL device of a host. The provider must also
// implement HalDevice() and HalQueue(); the surface uses the provider's
// surface format. Close leaves the shared device open.
func NewFromProvider(provider gpucontext.DeviceProvider, width, height int) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, ErrNoHAL
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, ErrNoHAL
	}

	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	d, err := newDevice(device, queue, format, width, height)
	if err != nil {
		return nil, err
	}
	d.external = true
	return d, nil
}

// newDevice creates the samplers, the built-in program and the surface on
// an open HAL device.
func newDevice(device hal.Device, queue hal.Queue, surfaceFormat gputypes.TextureFormat, width, height int) (*Device, error) {
	d := &Device{
		device:        device,
		queue:         queue,
		surfaceFormat: surfaceFormat,
		blend:         true,
		pipelines:     make(map[pipelineKey]hal.RenderPipeline),
		log:           slog.New(nopHandler{}),
	}

	var err error
	if d.linear, err = d.createSampler(gpu.FilterLinear); err != nil {
		return nil, err
	}
	if d.nearest, err = d.createSampler(gpu.FilterNearest); err != nil {
		d.Close()
		return nil, err
	}
	if d.builtin, err = d.createBuiltin(); err != nil {
		d.Close()
		return nil, err
	}

	white, err := d.CreateTexture(gpu.TextureDescriptor{Label: "white", Width: 1, Height: 1, Format: gpu.FormatRGBA8})
	if err != nil {
		d.Close()
		return nil, err
	}
	d.white = white.(*Texture)
	if err := d.WriteTexture(d.white, []byte{255, 255, 255, 255}); err != nil {
		d.Close()
		return nil, err
	}

	if err := d.Resize(width, height); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) createSampler(f gpu.Filter) (hal.Sampler, error) {
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "smaa_" + f.String(),
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    f.ToWGPUFilter(),
		MinFilter:    f.ToWGPUFilter(),
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s sampler: %w", f, err)
	}
	return s, nil
}

// SetLogger sets the device logger. Nil restores the silent default.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	d.log = l
}

// Resize replaces the surface. Its contents are cleared.
func (d *Device) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("wgpu: invalid surface size %dx%d", width, height)
	}
	tex, err := d.createTexture(gpu.TextureDescriptor{Label: "surface", Width: width, Height: height, Format: gpu.FormatRGBA8}, d.surfaceFormat)
	if err != nil {
		return err
	}
	fb := &Framebuffer{dev: d, tex: tex}

	if d.surface != nil {
		if d.bound == d.surface {
			d.bound = nil
		}
		d.destroyTexture(d.surface.tex)
	}
	d.surface = fb
	return d.clearTarget(fb, gpu.Transparent)
}

// Surface returns the surface texture, for hosts that present or blit it.
func (d *Device) Surface() gpu.Texture { return d.surface.tex }

// HalTexture returns the HAL texture behind a texture of this device.
func (d *Device) HalTexture(tex gpu.Texture) (hal.Texture, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	return t.raw, nil
}

// Close releases every object the device created. A device opened by New
// is destroyed as well.
func (d *Device) Close() {
	for key, p := range d.pipelines {
		d.device.DestroyRenderPipeline(p)
		delete(d.pipelines, key)
	}
	if d.builtin != nil {
		d.destroyProgram(d.builtin)
		d.builtin = nil
	}
	if d.white != nil {
		d.destroyTexture(d.white)
		d.white = nil
	}
	if d.surface != nil {
		d.destroyTexture(d.surface.tex)
		d.surface = nil
	}
	if d.nearest != nil {
		d.device.DestroySampler(d.nearest)
		d.nearest = nil
	}
	if d.linear != nil {
		d.device.DestroySampler(d.linear)
		d.linear = nil
	}
	if !d.external && d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

func (d *Device) Language() shader.Language { return shader.WGSL }

func (d *Device) SetBlend(enabled bool) { d.blend = enabled }

func (d *Device) BindFramebuffer(fb gpu.Framebuffer) {
	if fb == nil {
		d.bound = nil
		return
	}
	f, err := d.framebuffer(fb)
	if err != nil {
		d.log.Warn("wgpu: bind framebuffer", "err", err)
		d.bound = nil
		return
	}
	d.bound = f
}

func (d *Device) Framebuffer() gpu.Framebuffer {
	if d.bound == nil {
		return nil
	}
	return d.bound
}

func (d *Device) target() *Framebuffer {
	if d.bound != nil {
		return d.bound
	}
	return d.surface
}

func (d *Device) Clear(c gpu.Color) {
	if err := d.clearTarget(d.target(), c); err != nil {
		d.log.Warn("wgpu: clear", "target", d.target().Label(), "err", err)
	}
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
