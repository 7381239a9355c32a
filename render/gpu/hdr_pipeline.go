package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// HdrPipeline owns the Rgba16Float target the scene renders into and the fullscreen
// pass that tonemaps it onto the surface.
type HdrPipeline struct {
	device   *wgpu.Device
	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.RenderPipeline
	target   *Texture
	bindings *wgpu.BindGroup

	surfaceFormat wgpu.TextureFormat
	width, height uint32
}

func NewHdrPipeline(device *wgpu.Device, width, height uint32, surfaceFormat wgpu.TextureFormat, shaderCode string) (*HdrPipeline, error) {
	p := &HdrPipeline{device: device, surfaceFormat: surfaceFormat}

	layoutDesc := TextureLayoutDescriptor()
	layoutDesc.Label = "Hdr::layout"
	var err error
	if p.layout, err = device.CreateBindGroupLayout(layoutDesc); err != nil {
		return nil, fmt.Errorf("hdr layout: %w", err)
	}
	if err := p.Reload(shaderCode); err != nil {
		p.Release()
		return nil, err
	}
	if err := p.Resize(width, height); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// Reload rebuilds the tonemap pipeline. On error the previous pipeline stays in use.
func (p *HdrPipeline) Reload(shaderCode string) error {
	module, err := CreateShaderModule(p.device, "hdr", shaderCode)
	if err != nil {
		return err
	}
	defer module.Release()

	layout, err := CreatePipelineLayout(p.device, "Hdr::pipeline_layout", p.layout)
	if err != nil {
		return err
	}
	defer layout.Release()

	pipeline, err := p.device.CreateRenderPipeline(FullscreenPipelineDescriptor("Hdr::pipeline", layout, p.surfaceFormat, nil, module))
	if err != nil {
		return fmt.Errorf("hdr pipeline: %w", err)
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	p.pipeline = pipeline
	return nil
}

// Resize recreates the offscreen target. Zero sizes are ignored.
func (p *HdrPipeline) Resize(width, height uint32) error {
	if width == 0 || height == 0 || (width == p.width && height == p.height && p.target != nil) {
		return nil
	}
	target, err := Create2DTexture(p.device, "Hdr::texture", width, height, HdrFormat,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return err
	}
	bindings, err := TextureBindGroup(p.device, p.layout, target, "Hdr::bind_group")
	if err != nil {
		target.Release()
		return err
	}
	p.releaseTarget()
	p.target, p.bindings = target, bindings
	p.width, p.height = width, height
	return nil
}

// View is the colour attachment the scene passes draw into.
func (p *HdrPipeline) View() *wgpu.TextureView { return p.target.View }

func (p *HdrPipeline) Format() wgpu.TextureFormat { return HdrFormat }

// Process tonemaps the HDR target onto output.
func (p *HdrPipeline) Process(encoder *wgpu.CommandEncoder, output *wgpu.TextureView) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Hdr::process",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    output,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
	})
	defer pass.Release()
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindings, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("hdr pass: %w", err)
	}
	return nil
}

func (p *HdrPipeline) releaseTarget() {
	if p.bindings != nil {
		p.bindings.Release()
		p.bindings = nil
	}
	p.target.Release()
	p.target = nil
}

func (p *HdrPipeline) Release() {
	p.releaseTarget()
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
}
