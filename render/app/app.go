package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/prism"
	"github.com/gekko3d/prism/render/assets"
	"github.com/gekko3d/prism/render/core"
	"github.com/gekko3d/prism/render/gpu"
	"github.com/gekko3d/prism/render/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// ClearColor is the background of frames without an environment.
var ClearColor = wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// maxAcquireFailures is how many frames in a row may fail to get a surface texture
// before Render gives up and reports the error.
const maxAcquireFailures = 3

type App struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Layouts *gpu.Layouts

	RenderPipeline      *wgpu.RenderPipeline
	LightPipeline       *wgpu.RenderPipeline
	PlaceholderPipeline *wgpu.RenderPipeline
	renderLayout        *wgpu.PipelineLayout
	lightLayout         *wgpu.PipelineLayout
	placeholderLayout   *wgpu.PipelineLayout

	DepthTexture *gpu.Texture
	Fallback     *gpu.Texture
	Model        *gpu.Model

	Camera        *core.Camera
	Projection    *core.Projection
	CameraUniform core.CameraUniform
	cameraBuffer  *gpu.Uniform
	controller    *core.CameraController

	Light       core.LightUniform
	lightBuffer *gpu.Uniform

	Instances      []core.Instance
	instanceBuffer *wgpu.Buffer

	Hdr         *gpu.HdrPipeline
	HdrLoader   *gpu.HdrLoader
	Environment *gpu.CubeTexture
	Sky         *gpu.SkyPipeline

	Shaders  *shaders.Library
	Assets   *assets.AssetServer
	Profiler *Profiler

	Placeholder bool
	LightPaused bool

	window          *prism.WindowState
	cfg             prism.Config
	logger          prism.Logger
	reloads         <-chan string
	stopWatch       context.CancelFunc
	acquireFailures int
}

func NewApp(window *prism.WindowState, cfg prism.Config, logger prism.Logger) *App {
	return &App{
		window:      window,
		cfg:         cfg,
		logger:      prism.OrNop(logger),
		Profiler:    NewProfiler(),
		Placeholder: cfg.Render.Placeholder,
	}
}

// Init brings up the device and every resource the first frame needs. Assets are read
// from fsys; a nil fsys reads the configured assets directory.
func (a *App) Init(ctx context.Context, fsys fs.FS) error {
	if err := a.initDevice(); err != nil {
		return err
	}

	a.Shaders = shaders.NewLibrary(a.cfg.Render.ShaderDir, a.logger)
	if fsys == nil {
		fsys = os.DirFS(a.cfg.Assets.Dir)
	}
	a.Assets = assets.NewAssetServer(fsys, a.logger)

	var err error
	if a.Layouts, err = gpu.CreateLayouts(a.Device); err != nil {
		return err
	}
	if a.DepthTexture, err = gpu.CreateDepthTexture(a.Device, a.Config.Width, a.Config.Height); err != nil {
		return err
	}

	c := a.cfg.Camera
	a.Camera = core.NewCamera(mgl32.Vec3(c.Position), c.Yaw, c.Pitch)
	a.Projection = core.NewProjection(a.Config.Width, a.Config.Height, c.FovY, c.ZNear, c.ZFar)
	a.controller = core.NewCameraController(c.Speed, c.Sensitivity)
	a.CameraUniform = core.NewCameraUniform()
	a.CameraUniform.Update(a.Camera, a.Projection)
	if a.cameraBuffer, err = gpu.NewUniform(a.Device, a.Queue, a.Layouts.Camera, a.CameraUniform.Bytes(), "Camera Buffer"); err != nil {
		return err
	}

	a.Light = core.LightUniform{Position: a.cfg.Light.Position, Color: a.cfg.Light.Color}
	if a.lightBuffer, err = gpu.NewUniform(a.Device, a.Queue, a.Layouts.Light, a.Light.Bytes(), "Light VB"); err != nil {
		return err
	}

	a.Instances = core.InstanceGrid(a.cfg.Render.InstancesPerRow, a.cfg.Render.InstanceSpacing)
	a.instanceBuffer, err = a.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Instance Buffer",
		Contents: core.InstanceBytes(a.Instances),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("instance buffer: %w", err)
	}

	if a.cfg.Render.HDR {
		src, err := a.Shaders.Source(shaders.Hdr)
		if err != nil {
			return err
		}
		if a.Hdr, err = gpu.NewHdrPipeline(a.Device, a.Config.Width, a.Config.Height, a.Config.Format, src); err != nil {
			return err
		}
	}

	if err := a.loadScene(ctx); err != nil {
		return err
	}
	if err := a.buildPipelines(); err != nil {
		return err
	}

	if a.cfg.Render.ShaderDir != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		reloads, err := a.Shaders.Watch(watchCtx)
		if err != nil {
			cancel()
			a.logger.Warnf("shader hot reload disabled: %v", err)
		} else {
			a.reloads, a.stopWatch = reloads, cancel
			a.logger.Infof("watching %s for shader changes, overrides: %v", a.cfg.Render.ShaderDir, a.Shaders.Overrides())
		}
	}
	return nil
}

func (a *App) initDevice() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.window.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Main Device"})
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.window.FramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	if len(caps.AlphaModes) == 0 {
		return errors.New("surface is not compatible with the adapter")
	}
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      surfaceFormat(caps.Formats),
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: presentMode(a.cfg.Render.PresentMode, caps.PresentModes),
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	a.logger.Infof("surface %dx%d format=%v present=%v", a.Config.Width, a.Config.Height, a.Config.Format, a.Config.PresentMode)
	return nil
}

// sceneFormat is the colour target of the scene passes: the HDR target when tonemapping,
// otherwise the surface itself.
func (a *App) sceneFormat() wgpu.TextureFormat {
	if a.Hdr != nil {
		return a.Hdr.Format()
	}
	return a.Config.Format
}

// sceneRequests splits the configured assets into those the scene cannot do without
// and the diffuse fallback, which is replaced by white when it fails to load.
func sceneRequests(ac prism.AssetsConfig) (required, optional []assets.Request) {
	required = []assets.Request{{Kind: assets.KindModel, Path: ac.Model}}
	if ac.Environment != "" {
		required = append(required, assets.Request{Kind: assets.KindEnvironment, Path: ac.Environment})
	}
	if ac.Diffuse != "" {
		optional = append(optional, assets.Request{Kind: assets.KindTexture, Path: ac.Diffuse})
	}
	return required, optional
}

// loadScene decodes the configured assets concurrently, then uploads them.
func (a *App) loadScene(ctx context.Context) error {
	ac := a.cfg.Assets
	required, optional := sceneRequests(ac)
	a.Profiler.BeginScope("load")
	err := a.Assets.PreloadWith(ctx, required, optional)
	a.Profiler.EndScope("load")
	if err != nil {
		return err
	}

	if err := a.loadFallback(); err != nil {
		return err
	}

	model, err := a.Assets.LoadModel(ac.Model)
	if err != nil {
		return err
	}
	if a.Model, err = gpu.UploadModel(a.Device, a.Queue, a.Layouts.Texture, model, a.Fallback, a.logger); err != nil {
		return err
	}

	if ac.Environment != "" {
		if err := a.loadEnvironment(ac.Environment, ac.CubeSize); err != nil {
			return err
		}
	}
	return nil
}

// loadFallback uploads the texture used by meshes without a material. A missing
// diffuse image only costs the texture, so it falls back to white.
func (a *App) loadFallback() error {
	var err error
	if p := a.cfg.Assets.Diffuse; p != "" {
		tex, lerr := a.Assets.LoadTexture(p)
		if lerr == nil {
			a.Fallback, err = gpu.TextureFromImage(a.Device, a.Queue, tex.Image, p)
			return err
		}
		a.logger.Warnf("diffuse texture %s: %v", p, lerr)
	}
	a.Fallback, err = gpu.SolidTexture(a.Device, a.Queue, [4]uint8{255, 255, 255, 255}, "White")
	return err
}

func (a *App) loadEnvironment(p string, size uint32) error {
	env, err := a.Assets.LoadEnvironment(p)
	if err != nil {
		return err
	}
	src, err := a.Shaders.Source(shaders.Equirectangular)
	if err != nil {
		return err
	}
	if a.HdrLoader, err = gpu.NewHdrLoader(a.Device, a.Queue, src); err != nil {
		return err
	}

	start := time.Now()
	if a.Environment, err = a.HdrLoader.FromEquirectangular(env.Image, size, p); err != nil {
		return err
	}
	a.logger.Debugf("environment %s: %dx%d -> cube %d in %v", p, env.Image.Width, env.Image.Height, size, time.Since(start))

	if src, err = a.Shaders.Source(shaders.Sky); err != nil {
		return err
	}
	a.Sky, err = gpu.NewSkyPipeline(a.Device, a.Queue, a.Layouts.Cube, a.Environment, a.sceneFormat(), src)
	return err
}

func (a *App) buildPipelines() error {
	var err error
	if a.renderLayout, err = gpu.CreatePipelineLayout(a.Device, "Render Pipeline Layout", a.Layouts.Texture, a.Layouts.Camera, a.Layouts.Light); err != nil {
		return err
	}
	if a.lightLayout, err = gpu.CreatePipelineLayout(a.Device, "Light Pipeline Layout", a.Layouts.Camera, a.Layouts.Light); err != nil {
		return err
	}
	if a.placeholderLayout, err = gpu.CreatePipelineLayout(a.Device, "Placeholder Pipeline Layout"); err != nil {
		return err
	}
	for _, name := range []string{shaders.Shader, shaders.Light, shaders.Fullscreen} {
		if err := a.reload(name); err != nil {
			return err
		}
	}
	return nil
}

// Resize reconfigures the surface and every size-dependent resource. Zero sizes, as
// reported for a minimised window, are ignored.
func (a *App) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	a.Config.Width = uint32(width)
	a.Config.Height = uint32(height)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	a.Projection.Resize(a.Config.Width, a.Config.Height)

	depth, err := gpu.CreateDepthTexture(a.Device, a.Config.Width, a.Config.Height)
	if err != nil {
		return err
	}
	a.DepthTexture.Release()
	a.DepthTexture = depth

	if a.Hdr != nil {
		if err := a.Hdr.Resize(a.Config.Width, a.Config.Height); err != nil {
			return err
		}
	}
	return nil
}

// Update advances the camera and light by dt and uploads their uniforms.
func (a *App) Update(dt time.Duration) error {
	a.Profiler.BeginScope("update")
	defer a.Profiler.EndScope("update")

	a.applyReloads()

	a.controller.UpdateCamera(a.Camera, dt)
	a.CameraUniform.Update(a.Camera, a.Projection)
	if err := a.cameraBuffer.Write(a.CameraUniform.Bytes()); err != nil {
		return fmt.Errorf("camera uniform: %w", err)
	}
	if a.Sky != nil {
		var sky core.SkyUniform
		sky.Update(a.Camera, a.Projection)
		if err := a.Sky.Update(sky); err != nil {
			return fmt.Errorf("sky uniform: %w", err)
		}
	}

	if !a.LightPaused {
		a.Light.Orbit(a.cfg.Light.OrbitDegrees)
	}
	if err := a.lightBuffer.Write(a.Light.Bytes()); err != nil {
		return fmt.Errorf("light uniform: %w", err)
	}
	return nil
}

// Render draws one frame. A frame whose surface texture cannot be acquired is skipped
// after reconfiguring the surface; repeated failures are returned.
func (a *App) Render() error {
	a.Profiler.BeginScope("render")
	defer a.Profiler.EndScope("render")

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.acquireFailures++
		if a.acquireFailures >= maxAcquireFailures {
			return fmt.Errorf("acquire surface texture: %w", err)
		}
		a.logger.Warnf("acquire surface texture: %v; reconfiguring", err)
		return a.Resize(int(a.Config.Width), int(a.Config.Height))
	}
	a.acquireFailures = 0
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w", err)
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Render Encoder"})
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	if a.Placeholder {
		err = a.drawPlaceholder(encoder, view)
	} else {
		err = a.drawScene(encoder, view)
	}
	if err != nil {
		return err
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	defer cmd.Release()
	a.Queue.Submit(cmd)
	a.Surface.Present()
	return nil
}

func (a *App) drawPlaceholder(encoder *wgpu.CommandEncoder, view *wgpu.TextureView) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Placeholder Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: ClearColor,
		}},
	})
	defer pass.Release()
	pass.SetPipeline(a.PlaceholderPipeline)
	pass.Draw(3, 1, 0, 0)
	a.Profiler.SetCount("draw calls", 1)
	if err := pass.End(); err != nil {
		return fmt.Errorf("placeholder pass: %w", err)
	}
	return nil
}

func (a *App) drawScene(encoder *wgpu.CommandEncoder, surfaceView *wgpu.TextureView) error {
	target := surfaceView
	if a.Hdr != nil {
		target = a.Hdr.View()
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Render Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            a.DepthTexture.View,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	defer pass.Release()

	draws := 0
	if a.Sky != nil {
		a.Sky.Draw(pass)
		draws++
	}

	pass.SetPipeline(a.LightPipeline)
	a.Model.DrawLightModel(pass, a.cameraBuffer.BindGroup, a.lightBuffer.BindGroup)

	pass.SetPipeline(a.RenderPipeline)
	pass.SetVertexBuffer(1, a.instanceBuffer, 0, wgpu.WholeSize)
	a.Model.DrawModelInstanced(pass, uint32(len(a.Instances)), a.cameraBuffer.BindGroup, a.lightBuffer.BindGroup)
	draws += 2 * len(a.Model.Meshes)

	if err := pass.End(); err != nil {
		return fmt.Errorf("render pass: %w", err)
	}

	a.Profiler.SetCount("draw calls", draws)
	a.Profiler.SetCount("instances", len(a.Instances))
	a.Profiler.SetCount("meshes", len(a.Model.Meshes))

	if a.Hdr != nil {
		return a.Hdr.Process(encoder, surfaceView)
	}
	return nil
}

func (a *App) Release() {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.Sky != nil {
		a.Sky.Release()
	}
	a.Environment.Release()
	if a.HdrLoader != nil {
		a.HdrLoader.Release()
	}
	if a.Hdr != nil {
		a.Hdr.Release()
	}
	for _, p := range []*wgpu.RenderPipeline{a.RenderPipeline, a.LightPipeline, a.PlaceholderPipeline} {
		if p != nil {
			p.Release()
		}
	}
	for _, l := range []*wgpu.PipelineLayout{a.renderLayout, a.lightLayout, a.placeholderLayout} {
		if l != nil {
			l.Release()
		}
	}
	a.Model.Release()
	a.Fallback.Release()
	a.DepthTexture.Release()
	if a.instanceBuffer != nil {
		a.instanceBuffer.Release()
	}
	a.lightBuffer.Release()
	a.cameraBuffer.Release()
	if a.Layouts != nil {
		a.Layouts.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
