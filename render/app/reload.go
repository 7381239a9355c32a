package app

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/prism/render/gpu"
	"github.com/gekko3d/prism/render/shaders"
)

// drainReloads collects the shader names queued on ch without blocking, once each,
// in arrival order.
func drainReloads(ch <-chan string) []string {
	var names []string
	seen := make(map[string]bool)
	for {
		select {
		case name, ok := <-ch:
			if !ok {
				return names
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		default:
			return names
		}
	}
}

// applyReloads rebuilds the pipelines of changed shaders. A shader that fails to
// compile is logged and the pipeline it would replace keeps drawing.
func (a *App) applyReloads() {
	if a.reloads == nil {
		return
	}
	for _, name := range drainReloads(a.reloads) {
		if err := a.reload(name); err != nil {
			a.logger.Errorf("reload %s: %v", name, err)
			continue
		}
		a.logger.Infof("reloaded %s", name)
	}
}

func (a *App) reload(name string) error {
	src, err := a.Shaders.Source(name)
	if err != nil {
		return err
	}

	switch name {
	case shaders.Shader:
		return a.replacePipeline(&a.RenderPipeline, src, name, a.renderLayout,
			[]wgpu.VertexBufferLayout{gpu.ModelVertexLayout(), gpu.InstanceLayout()})
	case shaders.Light:
		return a.replacePipeline(&a.LightPipeline, src, name, a.lightLayout,
			[]wgpu.VertexBufferLayout{gpu.ModelVertexLayout()})
	case shaders.Fullscreen:
		module, err := gpu.CreateShaderModule(a.Device, name, src)
		if err != nil {
			return err
		}
		defer module.Release()
		p, err := a.Device.CreateRenderPipeline(gpu.FullscreenPipelineDescriptor("Placeholder Pipeline", a.placeholderLayout, a.Config.Format, nil, module))
		if err != nil {
			return fmt.Errorf("placeholder pipeline: %w", err)
		}
		if a.PlaceholderPipeline != nil {
			a.PlaceholderPipeline.Release()
		}
		a.PlaceholderPipeline = p
		return nil
	case shaders.Hdr:
		if a.Hdr == nil {
			return nil
		}
		return a.Hdr.Reload(src)
	case shaders.Sky:
		if a.Sky == nil {
			return nil
		}
		return a.Sky.Reload(src)
	case shaders.Equirectangular:
		// only affects environments loaded afterwards
		if a.HdrLoader == nil {
			return nil
		}
		return a.HdrLoader.Reload(src)
	}
	return fmt.Errorf("%w: %s", shaders.ErrUnknownShader, name)
}

func (a *App) replacePipeline(dst **wgpu.RenderPipeline, src, name string, layout *wgpu.PipelineLayout, buffers []wgpu.VertexBufferLayout) error {
	module, err := gpu.CreateShaderModule(a.Device, name, src)
	if err != nil {
		return err
	}
	defer module.Release()

	p, err := gpu.CreateRenderPipeline(a.Device, layout, a.sceneFormat(), gpu.DepthFormat, buffers, module, name)
	if err != nil {
		return err
	}
	if *dst != nil {
		(*dst).Release()
	}
	*dst = p
	return nil
}
