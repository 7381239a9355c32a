package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/prism/render/core"
)

// SkyDepthState lets the sky, drawn at depth 1.0, pass against a cleared depth buffer
// without ever occluding geometry.
func SkyDepthState() *wgpu.DepthStencilState {
	return DepthState(DepthFormat, false, wgpu.CompareFunctionLessEqual)
}

// SkyPipeline draws the environment cube map behind the scene.
type SkyPipeline struct {
	device      *wgpu.Device
	colorFormat wgpu.TextureFormat
	uniform     *Uniform
	uniformBGL  *wgpu.BindGroupLayout
	cubeBGL     *wgpu.BindGroupLayout
	environment *wgpu.BindGroup
	pipeline    *wgpu.RenderPipeline
}

// NewSkyPipeline binds env for sampling. env stays owned by the caller.
func NewSkyPipeline(device *wgpu.Device, queue *wgpu.Queue, cubeLayout *wgpu.BindGroupLayout, env *CubeTexture, colorFormat wgpu.TextureFormat, shaderCode string) (*SkyPipeline, error) {
	p := &SkyPipeline{device: device, colorFormat: colorFormat, cubeBGL: cubeLayout}

	var err error
	p.uniformBGL, err = device.CreateBindGroupLayout(UniformLayoutDescriptor("Sky BGL", wgpu.ShaderStageFragment))
	if err != nil {
		return nil, fmt.Errorf("sky layout: %w", err)
	}
	var u core.SkyUniform
	if p.uniform, err = NewUniform(device, queue, p.uniformBGL, u.Bytes(), "Sky Uniform"); err != nil {
		p.Release()
		return nil, err
	}
	p.environment, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Sky Environment",
		Layout: cubeLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: env.View},
			{Binding: 1, Sampler: env.Sampler},
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("sky bind group: %w", err)
	}
	if err := p.Reload(shaderCode); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// Reload rebuilds the sky pipeline. On error the previous pipeline stays in use.
func (p *SkyPipeline) Reload(shaderCode string) error {
	module, err := CreateShaderModule(p.device, "sky", shaderCode)
	if err != nil {
		return err
	}
	defer module.Release()

	layout, err := CreatePipelineLayout(p.device, "Sky Pipeline Layout", p.uniformBGL, p.cubeBGL)
	if err != nil {
		return err
	}
	defer layout.Release()

	pipeline, err := p.device.CreateRenderPipeline(FullscreenPipelineDescriptor("Sky Pipeline", layout, p.colorFormat, SkyDepthState(), module))
	if err != nil {
		return fmt.Errorf("sky pipeline: %w", err)
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	p.pipeline = pipeline
	return nil
}

func (p *SkyPipeline) Update(u core.SkyUniform) error {
	return p.uniform.Write(u.Bytes())
}

func (p *SkyPipeline) Draw(pass *wgpu.RenderPassEncoder) {
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.uniform.BindGroup, nil)
	pass.SetBindGroup(1, p.environment, nil)
	pass.Draw(3, 1, 0, 0)
}

func (p *SkyPipeline) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.environment != nil {
		p.environment.Release()
	}
	p.uniform.Release()
	if p.uniformBGL != nil {
		p.uniformBGL.Release()
	}
}
