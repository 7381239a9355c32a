package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/prism/render/core"
	"github.com/stretchr/testify/assert"
)

func TestCubeTextureDescriptor(t *testing.T) {
	desc := cubeTextureDescriptor("env", 512, HdrFormat)
	assert.Equal(t, wgpu.Extent3D{Width: 512, Height: 512, DepthOrArrayLayers: 6}, desc.Size)
	assert.Equal(t, wgpu.TextureDimension2D, desc.Dimension)
	assert.Equal(t, HdrFormat, desc.Format)
	assert.NotZero(t, desc.Usage&wgpu.TextureUsageStorageBinding, "compute pass writes the faces")
	assert.NotZero(t, desc.Usage&wgpu.TextureUsageTextureBinding, "sky pass samples the cube")
}

func TestCubeViewDescriptors(t *testing.T) {
	cube := cubeViewDescriptor("cube", HdrFormat, wgpu.TextureViewDimensionCube)
	storage := cubeViewDescriptor("storage", HdrFormat, wgpu.TextureViewDimension2DArray)

	for _, d := range []*wgpu.TextureViewDescriptor{cube, storage} {
		assert.Equal(t, uint32(core.CubeFaceCount), d.ArrayLayerCount)
		assert.Equal(t, uint32(0), d.BaseArrayLayer)
		assert.Equal(t, uint32(1), d.MipLevelCount)
	}
	assert.Equal(t, wgpu.TextureViewDimensionCube, cube.Dimension)
	assert.Equal(t, wgpu.TextureViewDimension2DArray, storage.Dimension)
}

func TestDepthTextureDescriptor(t *testing.T) {
	desc := depthTextureDescriptor(800, 600)
	assert.Equal(t, DepthFormat, desc.Format)
	assert.Equal(t, uint32(800), desc.Size.Width)
	assert.Equal(t, uint32(600), desc.Size.Height)
	assert.NotZero(t, desc.Usage&wgpu.TextureUsageRenderAttachment)

	// a minimised window still gets a valid texture
	desc = depthTextureDescriptor(0, 0)
	if desc.Size.Width != 1 || desc.Size.Height != 1 {
		t.Errorf("expected 1x1 for zero size, got %dx%d", desc.Size.Width, desc.Size.Height)
	}
}

func TestTexture2DDescriptor(t *testing.T) {
	desc := texture2DDescriptor("diffuse", 4, 2, DiffuseFormat, wgpu.TextureUsageCopyDst)
	assert.Equal(t, "diffuse", desc.Label)
	assert.Equal(t, uint32(1), desc.Size.DepthOrArrayLayers)
	assert.Equal(t, uint32(1), desc.SampleCount)
	assert.Equal(t, wgpu.TextureUsageCopyDst, desc.Usage)
}

func TestLinearSampler(t *testing.T) {
	s := linearSampler("s")
	assert.Equal(t, wgpu.AddressModeClampToEdge, s.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, s.MagFilter)
	assert.Equal(t, uint16(1), s.MaxAnisotropy)
}
