package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureLayoutDescriptor(t *testing.T) {
	desc := TextureLayoutDescriptor()
	require.Len(t, desc.Entries, 2)

	tex := desc.Entries[0]
	assert.Equal(t, uint32(0), tex.Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, tex.Visibility)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, tex.Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, tex.Texture.ViewDimension)

	sampler := desc.Entries[1]
	assert.Equal(t, uint32(1), sampler.Binding)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, sampler.Sampler.Type)
}

func TestUniformLayoutDescriptor(t *testing.T) {
	desc := UniformLayoutDescriptor("Camera BGL", wgpu.ShaderStageVertex)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, "Camera BGL", desc.Label)
	assert.Equal(t, uint32(0), desc.Entries[0].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	assert.Equal(t, wgpu.ShaderStageVertex, desc.Entries[0].Visibility)
}

func TestCubeLayoutDescriptor(t *testing.T) {
	desc := CubeLayoutDescriptor()
	require.Len(t, desc.Entries, 2)
	assert.Equal(t, wgpu.TextureViewDimensionCube, desc.Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, desc.Entries[1].Sampler.Type)
}

func TestEquirectLayoutDescriptor(t *testing.T) {
	desc := EquirectLayoutDescriptor(HdrFormat)
	require.Len(t, desc.Entries, 2)

	src := desc.Entries[0]
	assert.Equal(t, wgpu.ShaderStageCompute, src.Visibility)
	// Rgba32Float is not filterable; the shader only uses textureLoad
	assert.Equal(t, wgpu.TextureSampleTypeUnfilterableFloat, src.Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, src.Texture.ViewDimension)

	dst := desc.Entries[1]
	assert.Equal(t, uint32(1), dst.Binding)
	assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, dst.StorageTexture.Access)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, dst.StorageTexture.Format)
	assert.Equal(t, wgpu.TextureViewDimension2DArray, dst.StorageTexture.ViewDimension)
}

func TestUniform_WriteRejectsWrongSize(t *testing.T) {
	u := &Uniform{Size: 64}
	err := u.Write(make([]byte, 32))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32-byte")
}

func TestDispatchSize(t *testing.T) {
	tests := []struct {
		size    uint32
		x, y, z uint32
	}{
		{1, 1, 1, 6},
		{16, 1, 1, 6},
		{20, 2, 2, 6},
		{1080, 68, 68, 6},
	}
	for _, tc := range tests {
		x, y, z := DispatchSize(tc.size)
		if x != tc.x || y != tc.y || z != tc.z {
			t.Errorf("DispatchSize(%d) = %d,%d,%d, expected %d,%d,%d", tc.size, x, y, z, tc.x, tc.y, tc.z)
		}
	}
}
