package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureLayoutDescriptor is group 0 of the textured pass: a filterable 2D texture at
// binding 0 and its sampler at binding 1, read by the fragment stage.
func TextureLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "Texture BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}

// UniformLayoutDescriptor is a single uniform buffer at binding 0.
func UniformLayoutDescriptor(label string, visibility wgpu.ShaderStage) *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: visibility,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: false,
					MinBindingSize:   0,
				},
			},
		},
	}
}

// CubeLayoutDescriptor binds a filterable cube view and its sampler for the sky pass.
func CubeLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "Environment BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimensionCube,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}

// Layouts are the bind group layouts shared by the scene pipelines.
type Layouts struct {
	Texture *wgpu.BindGroupLayout
	Camera  *wgpu.BindGroupLayout
	Light   *wgpu.BindGroupLayout
	Cube    *wgpu.BindGroupLayout
}

func CreateLayouts(device *wgpu.Device) (*Layouts, error) {
	l := &Layouts{}
	var err error
	if l.Texture, err = device.CreateBindGroupLayout(TextureLayoutDescriptor()); err != nil {
		return nil, fmt.Errorf("texture layout: %w", err)
	}
	if l.Camera, err = device.CreateBindGroupLayout(UniformLayoutDescriptor("Camera BGL", wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)); err != nil {
		l.Release()
		return nil, fmt.Errorf("camera layout: %w", err)
	}
	if l.Light, err = device.CreateBindGroupLayout(UniformLayoutDescriptor("Light BGL", wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)); err != nil {
		l.Release()
		return nil, fmt.Errorf("light layout: %w", err)
	}
	if l.Cube, err = device.CreateBindGroupLayout(CubeLayoutDescriptor()); err != nil {
		l.Release()
		return nil, fmt.Errorf("environment layout: %w", err)
	}
	return l, nil
}

func (l *Layouts) Release() {
	for _, bgl := range []*wgpu.BindGroupLayout{l.Texture, l.Camera, l.Light, l.Cube} {
		if bgl != nil {
			bgl.Release()
		}
	}
}

// TextureBindGroup binds t at group 0 of the textured pass.
func TextureBindGroup(device *wgpu.Device, layout *wgpu.BindGroupLayout, t *Texture, label string) (*wgpu.BindGroup, error) {
	bg, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: t.View},
			{Binding: 1, Sampler: t.Sampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bind group %s: %w", label, err)
	}
	return bg, nil
}

// Uniform is a uniform buffer together with the bind group exposing it at binding 0.
type Uniform struct {
	Buffer    *wgpu.Buffer
	BindGroup *wgpu.BindGroup
	Size      uint64
	queue     *wgpu.Queue
}

func NewUniform(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout, contents []byte, label string) (*Uniform, error) {
	buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("uniform %s: %w", label, err)
	}
	bg, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		buf.Release()
		return nil, fmt.Errorf("uniform %s bind group: %w", label, err)
	}
	return &Uniform{Buffer: buf, BindGroup: bg, Size: uint64(len(contents)), queue: queue}, nil
}

// Write replaces the buffer contents. data must be exactly the size the uniform was created with.
func (u *Uniform) Write(data []byte) error {
	if uint64(len(data)) != u.Size {
		return fmt.Errorf("uniform write of %d bytes into %d-byte buffer", len(data), u.Size)
	}
	return u.queue.WriteBuffer(u.Buffer, 0, data)
}

func (u *Uniform) Release() {
	if u == nil {
		return
	}
	if u.BindGroup != nil {
		u.BindGroup.Release()
	}
	if u.Buffer != nil {
		u.Buffer.Release()
	}
}
