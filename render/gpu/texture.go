package gpu

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/prism/render/core"
)

const (
	DepthFormat   = wgpu.TextureFormatDepth32Float
	HdrFormat     = wgpu.TextureFormatRGBA16Float
	DiffuseFormat = wgpu.TextureFormatRGBA8UnormSrgb
	// EquirectFormat holds decoded environments at full float precision for the projection pass.
	EquirectFormat = wgpu.TextureFormatRGBA32Float
)

type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Sampler *wgpu.Sampler
	Size    wgpu.Extent3D
	Format  wgpu.TextureFormat
}

func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.Sampler != nil {
		t.Sampler.Release()
	}
	if t.View != nil {
		t.View.Release()
	}
	if t.Texture != nil {
		t.Texture.Release()
	}
}

func linearSampler(label string) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	}
}

func texture2DDescriptor(label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) *wgpu.TextureDescriptor {
	return &wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	}
}

// Create2DTexture makes a single-mip 2D texture with a default view and a linear sampler.
func Create2DTexture(device *wgpu.Device, label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*Texture, error) {
	desc := texture2DDescriptor(label, width, height, format, usage)
	tex, err := device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create view %s: %w", label, err)
	}
	sampler, err := device.CreateSampler(linearSampler(label))
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("create sampler %s: %w", label, err)
	}
	return &Texture{Texture: tex, View: view, Sampler: sampler, Size: desc.Size, Format: format}, nil
}

// TextureFromImage uploads an sRGB image as a sampled diffuse texture.
func TextureFromImage(device *wgpu.Device, queue *wgpu.Queue, img *image.RGBA, label string) (*Texture, error) {
	w, h := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("texture %s: empty image", label)
	}
	t, err := Create2DTexture(device, label, w, h, DiffuseFormat, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}

	pix := img.Pix
	if img.Stride != int(w)*4 {
		pix = make([]byte, 0, w*h*4)
		for y := 0; y < int(h); y++ {
			o := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
			pix = append(pix, img.Pix[o:o+int(w)*4]...)
		}
	}
	err = queue.WriteTexture(
		t.Texture.AsImageCopy(),
		pix,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: 4 * w, RowsPerImage: h},
		&t.Size,
	)
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("upload texture %s: %w", label, err)
	}
	return t, nil
}

// SolidTexture is a 1x1 texture of one colour, bound for meshes without a diffuse map.
func SolidTexture(device *wgpu.Device, queue *wgpu.Queue, c [4]uint8, label string) (*Texture, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, c[:])
	return TextureFromImage(device, queue, img, label)
}

// FloatTexture uploads a linear float image as an unfilterable Rgba32Float texture,
// the source of the cube projection pass.
func FloatTexture(device *wgpu.Device, queue *wgpu.Queue, img *core.FloatImage, label string) (*Texture, error) {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("texture %s: empty image", label)
	}
	w, h := uint32(img.Width), uint32(img.Height)
	desc := texture2DDescriptor(label, w, h, EquirectFormat, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	tex, err := device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create view %s: %w", label, err)
	}
	t := &Texture{Texture: tex, View: view, Size: desc.Size, Format: EquirectFormat}

	err = queue.WriteTexture(
		tex.AsImageCopy(),
		wgpu.ToBytes(img.Pix),
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: 16 * w, RowsPerImage: h},
		&t.Size,
	)
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("upload texture %s: %w", label, err)
	}
	return t, nil
}

func depthTextureDescriptor(width, height uint32) *wgpu.TextureDescriptor {
	return texture2DDescriptor("Depth Texture", max(width, 1), max(height, 1), DepthFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
}

// CreateDepthTexture makes the depth attachment of the scene passes, with a
// comparison sampler so it can also be read back in a shader.
func CreateDepthTexture(device *wgpu.Device, width, height uint32) (*Texture, error) {
	desc := depthTextureDescriptor(width, height)
	tex, err := device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create depth view: %w", err)
	}
	sd := linearSampler("Depth Sampler")
	sd.MinFilter = wgpu.FilterModeLinear
	sd.Compare = wgpu.CompareFunctionLessEqual
	sd.LodMinClamp = 0
	sd.LodMaxClamp = 100
	sampler, err := device.CreateSampler(sd)
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("create depth sampler: %w", err)
	}
	return &Texture{Texture: tex, View: view, Sampler: sampler, Size: desc.Size, Format: DepthFormat}, nil
}

// CubeTexture is a six-layer texture with two views: a cube view for sampling and a
// 2D-array view for the compute pass that writes the faces.
type CubeTexture struct {
	Texture     *wgpu.Texture
	View        *wgpu.TextureView
	StorageView *wgpu.TextureView
	Sampler     *wgpu.Sampler
	Size        uint32
	Format      wgpu.TextureFormat
}

func cubeTextureDescriptor(label string, size uint32, format wgpu.TextureFormat) *wgpu.TextureDescriptor {
	return &wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: core.CubeFaceCount},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding,
	}
}

func cubeViewDescriptor(label string, format wgpu.TextureFormat, dim wgpu.TextureViewDimension) *wgpu.TextureViewDescriptor {
	return &wgpu.TextureViewDescriptor{
		Label:           label,
		Format:          format,
		Dimension:       dim,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: core.CubeFaceCount,
		Aspect:          wgpu.TextureAspectAll,
	}
}

func NewCubeTexture(device *wgpu.Device, label string, size uint32, format wgpu.TextureFormat) (*CubeTexture, error) {
	if size == 0 {
		return nil, fmt.Errorf("cube texture %s: zero size", label)
	}
	tex, err := device.CreateTexture(cubeTextureDescriptor(label, size, format))
	if err != nil {
		return nil, fmt.Errorf("create cube texture %s: %w", label, err)
	}
	c := &CubeTexture{Texture: tex, Size: size, Format: format}

	c.View, err = tex.CreateView(cubeViewDescriptor(label+" Cube View", format, wgpu.TextureViewDimensionCube))
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("create cube view %s: %w", label, err)
	}
	c.StorageView, err = tex.CreateView(cubeViewDescriptor(label+" Storage View", format, wgpu.TextureViewDimension2DArray))
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("create storage view %s: %w", label, err)
	}
	sd := linearSampler(label + " Sampler")
	sd.MinFilter = wgpu.FilterModeLinear
	c.Sampler, err = device.CreateSampler(sd)
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("create cube sampler %s: %w", label, err)
	}
	return c, nil
}

func (c *CubeTexture) Release() {
	if c == nil {
		return
	}
	if c.Sampler != nil {
		c.Sampler.Release()
	}
	if c.StorageView != nil {
		c.StorageView.Release()
	}
	if c.View != nil {
		c.View.Release()
	}
	if c.Texture != nil {
		c.Texture.Release()
	}
}
