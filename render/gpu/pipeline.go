package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// CreateShaderModule compiles WGSL source. The caller releases the module once the
// pipelines built from it exist.
func CreateShaderModule(device *wgpu.Device, label, code string) (*wgpu.ShaderModule, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", label, err)
	}
	return module, nil
}

// DepthState is the depth test of the scene passes. A zero format means no depth attachment.
func DepthState(format wgpu.TextureFormat, write bool, compare wgpu.CompareFunction) *wgpu.DepthStencilState {
	if format == wgpu.TextureFormatUndefined {
		return nil
	}
	return &wgpu.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: write,
		DepthCompare:      compare,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilReadMask:   0xFFFFFFFF,
		StencilWriteMask:  0xFFFFFFFF,
	}
}

// RenderPipelineDescriptor describes a vs_main/fs_main pipeline drawing a triangle list
// with counter-clockwise front faces, back faces culled and a Less depth test.
func RenderPipelineDescriptor(label string, layout *wgpu.PipelineLayout, colorFormat, depthFormat wgpu.TextureFormat, vertexLayouts []wgpu.VertexBufferLayout, module *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor {
	return &wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    colorFormat,
					Blend:     &wgpu.BlendStateReplace,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: DepthState(depthFormat, true, wgpu.CompareFunctionLess),
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	}
}

func CreateRenderPipeline(device *wgpu.Device, layout *wgpu.PipelineLayout, colorFormat, depthFormat wgpu.TextureFormat, vertexLayouts []wgpu.VertexBufferLayout, module *wgpu.ShaderModule, label string) (*wgpu.RenderPipeline, error) {
	pipeline, err := device.CreateRenderPipeline(RenderPipelineDescriptor(label, layout, colorFormat, depthFormat, vertexLayouts, module))
	if err != nil {
		return nil, fmt.Errorf("render pipeline %s: %w", label, err)
	}
	return pipeline, nil
}

// CreatePipelineLayout is a thin wrapper so pipelines built from explicit layouts read the same.
func CreatePipelineLayout(device *wgpu.Device, label string, groups ...*wgpu.BindGroupLayout) (*wgpu.PipelineLayout, error) {
	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: groups,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline layout %s: %w", label, err)
	}
	return layout, nil
}

// FullscreenPipelineDescriptor draws a vertex-index generated triangle with no buffers,
// no culling and an optional depth test.
func FullscreenPipelineDescriptor(label string, layout *wgpu.PipelineLayout, colorFormat wgpu.TextureFormat, depth *wgpu.DepthStencilState, module *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor {
	desc := RenderPipelineDescriptor(label, layout, colorFormat, wgpu.TextureFormatUndefined, nil, module)
	desc.Primitive.CullMode = wgpu.CullModeNone
	desc.DepthStencil = depth
	return desc
}
