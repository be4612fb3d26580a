package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/camera"
	"github.com/Carmen-Shannon/scrollbot/engine/geometry"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/material"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// OffscreenFormat is the color format of the offscreen and bloom targets.
const OffscreenFormat = wgpu.TextureFormatRGBA16Float

// bloomSmoothing is the width of the soft knee above the bloom threshold.
const bloomSmoothing = 0.01

// ErrMaterialUnbound is returned when a material carries neither uniforms nor a texture.
var ErrMaterialUnbound = errors.New("renderer: material has no uniforms or texture")

// post-processing steps, one bind group provider each.
const (
	postBright = iota
	postBlurH
	postBlurV
	postComposite
	postStepCount
)

// colorTarget is a color attachment with an optional multisampled companion and depth.
type colorTarget struct {
	msaa      *wgpu.Texture
	msaaView  *wgpu.TextureView
	color     *wgpu.Texture
	colorView *wgpu.TextureView
	depth     *wgpu.Texture
	depthView *wgpu.TextureView
}

func (t *colorTarget) release() {
	for _, v := range []*wgpu.TextureView{t.msaaView, t.colorView, t.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, tex := range []*wgpu.Texture{t.msaa, t.color, t.depth} {
		if tex != nil {
			tex.Release()
		}
	}
	*t = colorTarget{}
}

type materialBinding struct {
	provider  bind_group_provider.BindGroupProvider
	layoutKey string
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *slog.Logger
	lib    shader.Library

	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	width, height int

	presentMode wgpu.PresentMode // defaults to PresentModeFifo (VSync)
	sampleCount MSAASampleCount  // MSAA sample count for mesh passes

	// screen holds the MSAA color and depth attachments; its resolve target is the swapchain view.
	screen    colorTarget
	offscreen colorTarget
	bloomA    colorTarget
	bloomB    colorTarget

	layouts        map[string]*wgpu.BindGroupLayout
	pipelines      map[string]pipeline.Pipeline
	failedVersions map[string]int

	meshes    map[uuid.UUID]bind_group_provider.BindGroupProvider
	objects   map[uuid.UUID]bind_group_provider.BindGroupProvider
	materials map[material.Material]materialBinding
	cameras   []bind_group_provider.BindGroupProvider
	post      [postStepCount]bind_group_provider.BindGroupProvider

	// Frame state for batched rendering across multiple passes
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	passTarget   RenderTarget
	passIndex    int
	writes       []bind_group_provider.BufferWrite
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(
	surfaceDescriptor *wgpu.SurfaceDescriptor,
	lib shader.Library,
	logger *slog.Logger,
	forceFallbackAdapter bool,
	sampleCount MSAASampleCount,
) (*wgpuRendererBackendImpl, error) {
	if lib == nil {
		return nil, errors.New("shader library is required")
	}
	w := &wgpuRendererBackendImpl{
		mu:             &sync.Mutex{},
		logger:         logger,
		lib:            lib,
		instance:       wgpu.CreateInstance(nil),
		presentMode:    wgpu.PresentModeFifo,
		sampleCount:    max(sampleCount, MSAAOff),
		layouts:        make(map[string]*wgpu.BindGroupLayout),
		pipelines:      make(map[string]pipeline.Pipeline),
		failedVersions: make(map[string]int),
		meshes:         make(map[uuid.UUID]bind_group_provider.BindGroupProvider),
		objects:        make(map[uuid.UUID]bind_group_provider.BindGroupProvider),
		materials:      make(map[material.Material]materialBinding),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	for i := range w.post {
		w.post[i] = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Post %d", i))
	}
	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return ErrSurfaceUnavailable
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return ErrSurfaceUnavailable
	}
	b.surfaceFormat = pickSurfaceFormat(capabilities.Formats)

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.width, b.height = width, height

	for _, t := range []*colorTarget{&b.screen, &b.offscreen, &b.bloomA, &b.bloomB} {
		t.release()
	}

	count := uint32(b.sampleCount)
	var err error
	if count > 1 {
		if b.screen.msaa, b.screen.msaaView, err = b.createTexture("MSAA Texture", width, height, count, b.surfaceFormat, wgpu.TextureUsageRenderAttachment); err != nil {
			return err
		}
		if b.offscreen.msaa, b.offscreen.msaaView, err = b.createTexture("Offscreen MSAA Texture", width, height, count, OffscreenFormat, wgpu.TextureUsageRenderAttachment); err != nil {
			return err
		}
	}
	// Depth texture sample count must match the color attachment.
	if b.screen.depth, b.screen.depthView, err = b.createTexture("Depth Texture", width, height, count, pipeline.DepthFormat, wgpu.TextureUsageRenderAttachment); err != nil {
		return err
	}
	if b.offscreen.depth, b.offscreen.depthView, err = b.createTexture("Offscreen Depth Texture", width, height, count, pipeline.DepthFormat, wgpu.TextureUsageRenderAttachment); err != nil {
		return err
	}

	sampled := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	if b.offscreen.color, b.offscreen.colorView, err = b.createTexture("Offscreen Texture", width, height, 1, OffscreenFormat, sampled); err != nil {
		return err
	}
	hw, hh := halfSize(width, height)
	if b.bloomA.color, b.bloomA.colorView, err = b.createTexture("Bloom A", hw, hh, 1, OffscreenFormat, sampled); err != nil {
		return err
	}
	if b.bloomB.color, b.bloomB.colorView, err = b.createTexture("Bloom B", hw, hh, 1, OffscreenFormat, sampled); err != nil {
		return err
	}

	// Post bind groups reference the old views.
	for _, p := range b.post {
		p.SetBindGroup(nil)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, acquiring another one
	// fails validation with "Surface image is already acquired".
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}
	if b.width == 0 || b.height == 0 {
		return ErrSurfaceUnavailable
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.passIndex = 0
	b.writes = b.writes[:0]
	return nil
}

func (b *wgpuRendererBackendImpl) BeginPass(opts PassOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	if b.framePass != nil {
		return errors.New("previous pass not ended")
	}

	cam, err := b.cameraProvider(b.passIndex)
	if err != nil {
		return err
	}
	uniform := camera.GPUCameraUniform{ViewProj: opts.Camera.ViewProj, CameraPosition: opts.Camera.Position}
	b.writes = append(b.writes, bind_group_provider.BufferWrite{Provider: cam, Binding: 0, Data: uniform.Marshal()})

	target := &b.screen
	resolve := b.frameView
	if opts.Target == TargetOffscreen {
		target = &b.offscreen
		resolve = b.offscreen.colorView
	}

	colorLoad, depthLoad := wgpu.LoadOpLoad, wgpu.LoadOpLoad
	if opts.ClearColor {
		colorLoad = wgpu.LoadOpClear
	}
	if opts.ClearDepth {
		depthLoad = wgpu.LoadOpClear
	}

	// Every pass stores so a later pass in the same frame can load the result.
	desc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			colorAttachment(target, resolve, colorLoad, opts.Color),
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            target.depthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	}

	b.framePass = b.frameEncoder.BeginRenderPass(desc)
	b.framePass.SetBindGroup(bind_group_provider.GroupCamera, cam.BindGroup(), nil)
	b.passTarget = opts.Target
	b.passIndex++
	return nil
}

func (b *wgpuRendererBackendImpl) Draw(item DrawItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("draw outside of a pass")
	}

	mesh, err := b.meshProvider(item.Geometry)
	if err != nil {
		return err
	}
	mat, err := b.materialProvider(item.Material)
	if err != nil {
		return err
	}
	obj, err := b.objectProvider(item.NodeID, item.Name)
	if err != nil {
		return err
	}

	format := b.surfaceFormat
	if b.passTarget == TargetOffscreen {
		format = OffscreenFormat
	}
	p, err := b.meshPipeline(item.Material, mat, format)
	if err != nil {
		return err
	}

	color := item.Material.Color()
	b.writes = append(b.writes, bind_group_provider.BufferWrite{
		Provider: obj,
		Binding:  0,
		Data:     common.Float32sToBytes(append(item.Model[:], color[:]...)...),
	})
	if u := item.Material.Uniforms(); u != nil {
		b.writes = append(b.writes, bind_group_provider.BufferWrite{Provider: mat.provider, Binding: 0, Data: u.Marshal()})
	}

	b.framePass.SetPipeline(p.RenderPipeline())
	b.framePass.SetBindGroup(bind_group_provider.GroupObject, obj.BindGroup(), nil)
	b.framePass.SetBindGroup(bind_group_provider.GroupMaterial, mat.provider.BindGroup(), nil)
	b.framePass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(mesh.IndexCount()), 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndPass() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endPass()
}

// endPass closes the open render pass, if any. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) endPass() {
	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) Bloom(params BloomParams) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	b.endPass()

	hw, hh := halfSize(b.width, b.height)
	texel := [2]float32{1 / float32(hw), 1 / float32(hh)}

	steps := [postStepCount]struct {
		program string
		source  *wgpu.TextureView
		aux     *wgpu.TextureView
		params  []float32
	}{
		postBright:    {shader.ProgramBloomBright, b.offscreen.colorView, b.offscreen.colorView, []float32{params.Threshold, params.Strength, params.Radius, bloomSmoothing, 0, 0, texel[0], texel[1]}},
		postBlurH:     {shader.ProgramBloomBlur, b.bloomA.colorView, b.bloomA.colorView, []float32{params.Threshold, params.Strength, params.Radius, bloomSmoothing, 1, 0, texel[0], texel[1]}},
		postBlurV:     {shader.ProgramBloomBlur, b.bloomB.colorView, b.bloomB.colorView, []float32{params.Threshold, params.Strength, params.Radius, bloomSmoothing, 0, 1, texel[0], texel[1]}},
		postComposite: {shader.ProgramBloomComposite, b.offscreen.colorView, b.bloomA.colorView, []float32{params.Threshold, params.Strength, params.Radius, bloomSmoothing, 0, 0, texel[0], texel[1]}},
	}
	targets := [postStepCount]*colorTarget{&b.bloomA, &b.bloomB, &b.bloomA, &b.screen}

	for i, step := range steps {
		provider := b.post[i]
		if provider.BindGroup() == nil {
			provider.SetTexture(bind_group_provider.PostBindingSource, nil, step.source)
			provider.SetTexture(bind_group_provider.PostBindingAux, nil, step.aux)
			if provider.Sampler(bind_group_provider.PostBindingSampler) == nil {
				if err := b.initSampler(provider, bind_group_provider.PostBindingSampler, common.SamplerStagingData{
					AddressModeU: wgpu.AddressModeClampToEdge,
					AddressModeV: wgpu.AddressModeClampToEdge,
					AddressModeW: wgpu.AddressModeClampToEdge,
				}); err != nil {
					return err
				}
			}
			layout, err := b.layoutFor("post", bind_group_provider.PostLayout())
			if err != nil {
				return err
			}
			if err := b.initBindGroup(provider, layout, bind_group_provider.PostLayout()); err != nil {
				return err
			}
		}
		b.writes = append(b.writes, bind_group_provider.BufferWrite{
			Provider: provider,
			Binding:  bind_group_provider.PostBindingParams,
			Data:     common.Float32sToBytes(step.params...),
		})

		target := targets[i]
		format, count, resolve := OffscreenFormat, uint32(1), (*wgpu.TextureView)(nil)
		if target == &b.screen {
			format, count, resolve = b.surfaceFormat, uint32(b.sampleCount), b.frameView
		}
		p, err := b.postPipeline(step.program, format, count)
		if err != nil {
			return err
		}

		// The composite overwrites every screen pixel, so nothing needs clearing.
		load := wgpu.LoadOpClear
		if target == &b.screen {
			load = wgpu.LoadOpLoad
		}
		pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label:            step.program,
			ColorAttachments: []wgpu.RenderPassColorAttachment{colorAttachment(target, resolve, load, [4]float32{})},
		})
		pass.SetPipeline(p.RenderPipeline())
		pass.SetBindGroup(0, provider.BindGroup(), nil)
		pass.Draw(3, 1, 0, 0)
		pass.End()
		pass.Release()
	}
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	b.endPass()
	b.writeBuffers(b.writes)
	b.writes = b.writes[:0]

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameSurface = nil
		b.frameView = nil
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	for _, p := range b.meshes {
		p.Release()
	}
	for _, p := range b.objects {
		p.Release()
	}
	for _, m := range b.materials {
		m.provider.Release()
	}
	for _, p := range b.cameras {
		p.Release()
	}
	for _, p := range b.post {
		if p != nil {
			p.Release()
		}
	}
	for _, l := range b.layouts {
		l.Release()
	}
	for _, t := range []*colorTarget{&b.screen, &b.offscreen, &b.bloomA, &b.bloomB} {
		t.release()
	}
	b.pipelines, b.meshes, b.objects, b.materials, b.cameras, b.layouts = nil, nil, nil, nil, nil, nil

	b.queue = nil
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// --- resource helpers; callers hold the mutex ---

func (b *wgpuRendererBackendImpl) createTexture(label string, width, height int, sampleCount uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) layoutFor(key string, descriptor wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	if l, ok := b.layouts[key]; ok {
		return l, nil
	}
	l, err := b.device.CreateBindGroupLayout(&descriptor)
	if err != nil {
		return nil, fmt.Errorf("create bind group layout %s: %w", key, err)
	}
	b.layouts[key] = l
	return l, nil
}

// initBindGroup creates GPU buffers for the buffer entries of a layout that the provider
// does not have yet, and builds the bind group from them plus the provider's views and samplers.
func (b *wgpuRendererBackendImpl) initBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout, descriptor wgpu.BindGroupLayoutDescriptor) error {
	provider.SetBindGroupLayout(layout)

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		switch {
		case isTexture:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%s: texture binding %d has no texture view", provider.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case isSampler:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler", provider.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: samp}
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				var err error
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: provider.Label() + " Buffer",
					Size:  entry.Buffer.MinBindingSize,
					Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) initSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
	})
	if err != nil {
		return err
	}
	provider.SetSampler(binding, samp)
	return nil
}

func (b *wgpuRendererBackendImpl) writeBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

// cameraProvider returns the camera uniform for the n-th pass of the frame. Each pass gets its
// own buffer because all queued writes land before the frame's commands execute.
func (b *wgpuRendererBackendImpl) cameraProvider(n int) (bind_group_provider.BindGroupProvider, error) {
	for len(b.cameras) <= n {
		p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Camera %d", len(b.cameras)))
		layout, err := b.layoutFor("camera", bind_group_provider.CameraLayout())
		if err != nil {
			return nil, err
		}
		if err := b.initBindGroup(p, layout, bind_group_provider.CameraLayout()); err != nil {
			return nil, err
		}
		b.cameras = append(b.cameras, p)
	}
	return b.cameras[n], nil
}

func (b *wgpuRendererBackendImpl) objectProvider(id uuid.UUID, name string) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := b.objects[id]; ok {
		return p, nil
	}
	p := bind_group_provider.NewBindGroupProvider("Object " + name)
	layout, err := b.layoutFor("object", bind_group_provider.ObjectLayout())
	if err != nil {
		return nil, err
	}
	if err := b.initBindGroup(p, layout, bind_group_provider.ObjectLayout()); err != nil {
		return nil, err
	}
	b.objects[id] = p
	return p, nil
}

func (b *wgpuRendererBackendImpl) meshProvider(g *geometry.Geometry) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := b.meshes[g.ID()]; ok {
		return p, nil
	}
	p := bind_group_provider.NewBindGroupProvider(g.Label(), bind_group_provider.WithIndexCount(g.IndexCount()))

	vertexData, indexData := g.VertexBytes(), g.IndexBytes()
	if len(vertexData) == 0 || len(indexData) == 0 {
		return nil, fmt.Errorf("mesh %s is empty", g.Label())
	}
	vbuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            g.Label() + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(vbuf, 0, vertexData)
	p.SetVertexBuffer(vbuf)

	ibuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            g.Label() + " Index Buffer",
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		p.Release()
		return nil, err
	}
	b.queue.WriteBuffer(ibuf, 0, indexData)
	p.SetIndexBuffer(ibuf)

	b.meshes[g.ID()] = p
	return p, nil
}

func (b *wgpuRendererBackendImpl) materialProvider(m material.Material) (materialBinding, error) {
	if mb, ok := b.materials[m]; ok {
		return mb, nil
	}

	p := bind_group_provider.NewBindGroupProvider("Material " + m.Name())
	var mb materialBinding
	switch {
	case m.Uniforms() != nil:
		size := uint64(max(m.Uniforms().Size(), 16))
		descriptor := bind_group_provider.UniformMaterialLayout(size)
		key := fmt.Sprintf("uniform%d", size)
		layout, err := b.layoutFor(key, descriptor)
		if err != nil {
			return mb, err
		}
		if err := b.initBindGroup(p, layout, descriptor); err != nil {
			return mb, err
		}
		mb = materialBinding{provider: p, layoutKey: key}

	case m.Texture() != nil:
		if err := b.initTextureView(p, 0, *m.Texture()); err != nil {
			return mb, err
		}
		if err := b.initSampler(p, 1, m.Sampler()); err != nil {
			p.Release()
			return mb, err
		}
		descriptor := bind_group_provider.TextureMaterialLayout()
		layout, err := b.layoutFor("texture", descriptor)
		if err != nil {
			return mb, err
		}
		if err := b.initBindGroup(p, layout, descriptor); err != nil {
			p.Release()
			return mb, err
		}
		mb = materialBinding{provider: p, layoutKey: "texture"}

	default:
		return mb, fmt.Errorf("%w: %s", ErrMaterialUnbound, m.Name())
	}

	b.materials[m] = mb
	return mb, nil
}

func (b *wgpuRendererBackendImpl) initTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	format := wgpu.TextureFormatRGBA8Unorm
	if stagingData.SRGB {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     provider.Label() + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	provider.SetTexture(binding, tex, view)
	return nil
}

// --- pipelines ---

func (b *wgpuRendererBackendImpl) meshPipeline(m material.Material, mb materialBinding, format wgpu.TextureFormat) (pipeline.Pipeline, error) {
	variant := fmt.Sprintf("%s/blend=%t/depthwrite=%t/side=%d", mb.layoutKey, m.Transparent(), m.DepthWrite(), m.Side())
	key := pipeline.Key(m.Program(), format, uint32(b.sampleCount), variant)

	camLayout, err := b.layoutFor("camera", bind_group_provider.CameraLayout())
	if err != nil {
		return nil, err
	}
	objLayout, err := b.layoutFor("object", bind_group_provider.ObjectLayout())
	if err != nil {
		return nil, err
	}
	groups := []*wgpu.BindGroupLayout{camLayout, objLayout, b.layouts[mb.layoutKey]}

	return b.pipelineFor(key, pipeline.PipelineTypeMesh, m.Program(), groups,
		pipeline.WithColorFormat(format),
		pipeline.WithSampleCount(uint32(b.sampleCount)),
		pipeline.WithBlendEnabled(m.Transparent()),
		pipeline.WithDepthWriteEnabled(m.DepthWrite()),
		pipeline.WithCullMode(cullMode(m.Side())),
	)
}

func (b *wgpuRendererBackendImpl) postPipeline(program string, format wgpu.TextureFormat, sampleCount uint32) (pipeline.Pipeline, error) {
	layout, err := b.layoutFor("post", bind_group_provider.PostLayout())
	if err != nil {
		return nil, err
	}
	key := pipeline.Key(program, format, sampleCount, "post")
	return b.pipelineFor(key, pipeline.PipelineTypePost, program, []*wgpu.BindGroupLayout{layout},
		pipeline.WithColorFormat(format),
		pipeline.WithSampleCount(sampleCount),
		pipeline.WithBlendEnabled(false),
	)
}

// pipelineFor returns the cached pipeline for key, building it on first use and rebuilding it
// when the program was reloaded. A failed rebuild keeps the previous pipeline.
func (b *wgpuRendererBackendImpl) pipelineFor(
	key string,
	pipelineType pipeline.PipelineType,
	program string,
	groups []*wgpu.BindGroupLayout,
	opts ...pipeline.PipelineBuilderOption,
) (pipeline.Pipeline, error) {
	current, err := b.lib.Shader(program)
	if err != nil {
		return nil, err
	}

	cached, ok := b.pipelines[key]
	if ok && !cached.Stale(current) {
		return cached, nil
	}
	if ok && b.failedVersions[key] == current.Version() {
		return cached, nil
	}

	next := pipeline.NewPipeline(key, pipelineType, current, opts...)
	rp, err := b.buildRenderPipeline(next, groups)
	if err != nil {
		if ok {
			b.failedVersions[key] = current.Version()
			b.logger.Warn("shader rebuild failed, keeping previous pipeline",
				"program", program, "version", current.Version(), "err", err)
			return cached, nil
		}
		return nil, fmt.Errorf("build pipeline %s: %w", key, err)
	}
	next.SetRenderPipeline(rp)
	if ok {
		cached.Release()
		b.logger.Info("pipeline rebuilt", "program", program, "version", current.Version())
	}
	b.pipelines[key] = next
	return next, nil
}

func (b *wgpuRendererBackendImpl) buildRenderPipeline(p pipeline.Pipeline, groups []*wgpu.BindGroupLayout) (*wgpu.RenderPipeline, error) {
	module, err := b.device.CreateShaderModule(p.Program().Module())
	if err != nil {
		return nil, err
	}
	defer module.Release()

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: groups,
	})
	if err != nil {
		return nil, err
	}
	defer layout.Release()

	return b.device.CreateRenderPipeline(p.Descriptor(module, layout))
}

// --- small helpers ---

func colorAttachment(target *colorTarget, resolve *wgpu.TextureView, load wgpu.LoadOp, clear [4]float32) wgpu.RenderPassColorAttachment {
	a := wgpu.RenderPassColorAttachment{
		View:    target.colorView,
		LoadOp:  load,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(clear[0]), G: float64(clear[1]), B: float64(clear[2]), A: float64(clear[3]),
		},
	}
	// With MSAA the multisampled texture is drawn into and resolved into the real target.
	if target.msaaView != nil {
		a.View = target.msaaView
		a.ResolveTarget = resolve
	} else if resolve != nil {
		a.View = resolve
	}
	return a
}

func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	return formats[0]
}

func cullMode(side material.Side) wgpu.CullMode {
	switch side {
	case material.SideFront:
		return wgpu.CullModeBack
	case material.SideBack:
		return wgpu.CullModeFront
	default:
		return wgpu.CullModeNone
	}
}

func halfSize(width, height int) (int, int) {
	return max(width/2, 1), max(height/2, 1)
}
