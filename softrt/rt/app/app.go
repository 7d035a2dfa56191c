package app

import (
	"fmt"

	"github.com/gekko3d/orrery"
	"github.com/gekko3d/orrery/softrt/rt/session"
	"github.com/gekko3d/orrery/softrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// App presents the CPU-rendered frame in a glfw window. The frame is
// uploaded to a texture every frame and stretched over the surface with a
// fullscreen triangle, so the window can be resized freely while the
// raster resolution stays as configured.
type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	RenderPipeline *wgpu.RenderPipeline
	FrameTexture   *wgpu.Texture
	FrameView      *wgpu.TextureView
	Sampler        *wgpu.Sampler
	RenderBG       *wgpu.BindGroup

	Session *session.Session
	Log     orrery.Logger

	LastTime float64
	Dragging bool
	MouseX   float64
	MouseY   float64
	panX     float32
	panY     float32

	FrameCount int
	FPS        float64
	FPSTime    float64
}

func NewApp(window *glfw.Window, s *session.Session, log orrery.Logger) *App {
	if log == nil {
		log = orrery.NewNopLogger()
	}
	return &App{
		Window:  window,
		Session: s,
		Log:     log,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceLowPower,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	format := caps.Formats[0]
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	module, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Fullscreen VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.FullscreenWGSL},
	})
	if err != nil {
		return fmt.Errorf("blit shader: %w", err)
	}

	a.RenderPipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("blit pipeline: %w", err)
	}

	a.Sampler, err = a.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("sampler: %w", err)
	}

	if err := a.setupFrameTexture(); err != nil {
		return err
	}
	a.LastTime = glfw.GetTime()
	a.Log.Infof("window %dx%d, raster %dx%d", width, height, a.Session.Frame.Width(), a.Session.Frame.Height())
	return nil
}

// setupFrameTexture creates the texture the CPU frame is copied into and
// the bind group the blit samples it through.
func (a *App) setupFrameTexture() error {
	if a.FrameTexture != nil {
		a.FrameTexture.Release()
	}
	w, h := a.Session.Frame.Width(), a.Session.Frame.Height()

	var err error
	a.FrameTexture, err = a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "CPU Frame",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("frame texture: %w", err)
	}
	a.FrameView, err = a.FrameTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("frame view: %w", err)
	}

	a.RenderBG, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.RenderPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.FrameView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("blit bind group: %w", err)
	}
	return nil
}

func (a *App) Resize(w, h int) {
	if w > 0 && h > 0 {
		a.Config.Width = uint32(w)
		a.Config.Height = uint32(h)
		a.Surface.Configure(a.Adapter, a.Device, a.Config)
	}
}

// Update steps the session by the wall time since the last call and
// rasterizes the next frame on the CPU.
func (a *App) Update() {
	now := glfw.GetTime()
	dt := float32(now - a.LastTime)
	a.LastTime = now

	in := a.pollInput()
	in.PanX, in.PanY = a.panX, a.panY
	a.panX, a.panY = 0, 0

	a.Session.Step(dt, in)
	st := a.Session.Render()

	a.FrameCount++
	a.FPSTime += float64(dt)
	if a.FPSTime >= 1.0 {
		a.FPS = float64(a.FrameCount) / a.FPSTime
		a.FrameCount = 0
		a.FPSTime = 0
		a.Window.SetTitle(fmt.Sprintf("Orrery - %.1f fps", a.FPS))
		a.Log.Debugf("%.1f fps, %d triangles, %d fragments\n%s", a.FPS, st.Triangles, st.Fragments, a.Session.Profiler.StatsString())
	}
}

// Render uploads the frame and presents it.
func (a *App) Render() {
	prof := a.Session.Profiler
	prof.BeginScope("upload")
	frame := a.Session.Frame
	w, h := uint32(frame.Width()), uint32(frame.Height())
	a.Queue.WriteTexture(a.FrameTexture.AsImageCopy(), frame.Pix(), &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  4 * w,
		RowsPerImage: h,
	}, &wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1})
	prof.EndScope("upload")

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Log.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Log.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Log.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{0, 0, 0, 1},
		}},
	})
	rPass.SetPipeline(a.RenderPipeline)
	rPass.SetBindGroup(0, a.RenderBG, nil)
	rPass.Draw(3, 1, 0, 0)
	if err := rPass.End(); err != nil {
		a.Log.Errorf("Render pass End failed: %v", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Log.Errorf("Encoder Finish failed: %v", err)
		return
	}
	a.Queue.Submit(cmd)
	a.Surface.Present()
}
