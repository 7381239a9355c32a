package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPipelineDescriptor(t *testing.T) {
	layouts := []wgpu.VertexBufferLayout{ModelVertexLayout(), InstanceLayout()}
	desc := RenderPipelineDescriptor("Render Pipeline", nil, wgpu.TextureFormatBGRA8UnormSrgb, DepthFormat, layouts, nil)

	assert.Equal(t, "vs_main", desc.Vertex.EntryPoint)
	assert.Equal(t, "fs_main", desc.Fragment.EntryPoint)
	assert.Len(t, desc.Vertex.Buffers, 2)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
	assert.Equal(t, wgpu.FrontFaceCCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)

	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, DepthFormat, desc.DepthStencil.Format)
	assert.True(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)

	require.Len(t, desc.Fragment.Targets, 1)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, desc.Fragment.Targets[0].Format)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
}

func TestRenderPipelineDescriptor_NoDepth(t *testing.T) {
	desc := RenderPipelineDescriptor("Placeholder", nil, wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatUndefined, nil, nil)
	assert.Nil(t, desc.DepthStencil)
}

func TestFullscreenPipelineDescriptor(t *testing.T) {
	desc := FullscreenPipelineDescriptor("Sky", nil, HdrFormat, SkyDepthState(), nil)
	assert.Empty(t, desc.Vertex.Buffers)
	assert.Equal(t, wgpu.CullModeNone, desc.Primitive.CullMode)

	require.NotNil(t, desc.DepthStencil)
	// the sky sits exactly on the far plane
	assert.Equal(t, wgpu.CompareFunctionLessEqual, desc.DepthStencil.DepthCompare)
	assert.False(t, desc.DepthStencil.DepthWriteEnabled)
}
