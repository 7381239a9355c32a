package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/prism/render/core"
)

// EquirectLayoutDescriptor is the compute layout of the cube projection: the source
// at binding 0, read with textureLoad, and the six destination layers at binding 1.
func EquirectLayoutDescriptor(dstFormat wgpu.TextureFormat) *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "HdrLoader::equirect_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        dstFormat,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
		},
	}
}

// DispatchSize is the workgroup grid covering every texel of all six faces.
func DispatchSize(size uint32) (x, y, z uint32) {
	n := core.WorkgroupCount(size)
	return n, n, core.CubeFaceCount
}

// HdrLoader turns decoded equirectangular environments into cube maps on the GPU.
type HdrLoader struct {
	device   *wgpu.Device
	queue    *wgpu.Queue
	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.ComputePipeline
	// Format of the cube maps produced. It must match the storage format declared in the shader.
	Format wgpu.TextureFormat
}

func NewHdrLoader(device *wgpu.Device, queue *wgpu.Queue, shaderCode string) (*HdrLoader, error) {
	l := &HdrLoader{device: device, queue: queue, Format: HdrFormat}

	var err error
	l.layout, err = device.CreateBindGroupLayout(EquirectLayoutDescriptor(l.Format))
	if err != nil {
		return nil, fmt.Errorf("equirect layout: %w", err)
	}
	if err := l.Reload(shaderCode); err != nil {
		l.layout.Release()
		return nil, err
	}
	return l, nil
}

// Reload rebuilds the compute pipeline. On error the previous pipeline stays in use.
func (l *HdrLoader) Reload(shaderCode string) error {
	module, err := CreateShaderModule(l.device, "equirectangular", shaderCode)
	if err != nil {
		return err
	}
	defer module.Release()

	pipelineLayout, err := CreatePipelineLayout(l.device, "HdrLoader::pipeline_layout", l.layout)
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	pipeline, err := l.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "equirect_to_cubemap",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "compute_equirect_to_cubemap",
		},
	})
	if err != nil {
		return fmt.Errorf("equirect pipeline: %w", err)
	}
	if l.pipeline != nil {
		l.pipeline.Release()
	}
	l.pipeline = pipeline
	return nil
}

// FromEquirectangular projects img onto a new dstSize cube map. The returned cube is
// owned by the caller.
func (l *HdrLoader) FromEquirectangular(img *core.FloatImage, dstSize uint32, label string) (*CubeTexture, error) {
	if dstSize == 0 {
		return nil, fmt.Errorf("environment %s: cube size must be positive", label)
	}
	src, err := FloatTexture(l.device, l.queue, img, label+" Equirect")
	if err != nil {
		return nil, err
	}
	defer src.Release()

	dst, err := NewCubeTexture(l.device, label, dstSize, l.Format)
	if err != nil {
		return nil, err
	}

	bindGroup, err := l.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "HdrLoader::equirect_bind_group",
		Layout: l.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: src.View},
			{Binding: 1, TextureView: dst.StorageView},
		},
	})
	if err != nil {
		dst.Release()
		return nil, fmt.Errorf("equirect bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := l.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "HdrLoader::encoder"})
	if err != nil {
		dst.Release()
		return nil, fmt.Errorf("equirect encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: "equirect_to_cubemap"})
	pass.SetPipeline(l.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	x, y, z := DispatchSize(dstSize)
	pass.DispatchWorkgroups(x, y, z)
	if err := pass.End(); err != nil {
		pass.Release()
		dst.Release()
		return nil, fmt.Errorf("equirect pass: %w", err)
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		dst.Release()
		return nil, fmt.Errorf("equirect finish: %w", err)
	}
	defer cmd.Release()
	l.queue.Submit(cmd)
	return dst, nil
}

func (l *HdrLoader) Release() {
	if l.pipeline != nil {
		l.pipeline.Release()
	}
	if l.layout != nil {
		l.layout.Release()
	}
}
