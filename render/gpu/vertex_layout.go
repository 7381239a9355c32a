package gpu

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/prism/render/core"
)

func parseFormat(name string) (wgpu.VertexFormat, error) {
	switch name {
	case "float32":
		return wgpu.VertexFormatFloat32, nil
	case "float32x2", "float2":
		return wgpu.VertexFormatFloat32x2, nil
	case "float32x3", "float3":
		return wgpu.VertexFormatFloat32x3, nil
	case "float32x4", "float4":
		return wgpu.VertexFormatFloat32x4, nil
	case "uint32":
		return wgpu.VertexFormatUint32, nil
	default:
		return wgpu.VertexFormatUndefined, fmt.Errorf("unsupported vertex layout format: %s", name)
	}
}

// VertexLayoutOf builds a buffer layout from the fields of vertexType tagged
// `prism:"layout" location:"N" format:"..."`. Untagged fields still take up space.
func VertexLayoutOf(vertexType any, step wgpu.VertexStepMode) (wgpu.VertexBufferLayout, error) {
	t := reflect.TypeOf(vertexType)
	if t == nil || t.Kind() != reflect.Struct {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("vertex type %v must be a struct", t)
	}

	var attributes []wgpu.VertexAttribute
	var offset uint64
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("prism") == "layout" {
			format, err := parseFormat(field.Tag.Get("format"))
			if err != nil {
				return wgpu.VertexBufferLayout{}, fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
			}
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if err != nil {
				return wgpu.VertexBufferLayout{}, fmt.Errorf("%s.%s: location: %w", t.Name(), field.Name, err)
			}
			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: uint32(location),
				Offset:         offset,
				Format:         format,
			})
		}
		offset += uint64(field.Type.Size())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    step,
		Attributes:  attributes,
	}, nil
}

// ModelVertexLayout is the per-vertex buffer layout of core.ModelVertex.
func ModelVertexLayout() wgpu.VertexBufferLayout {
	layout, err := VertexLayoutOf(core.ModelVertex{}, wgpu.VertexStepModeVertex)
	if err != nil {
		panic(err)
	}
	return layout
}

// InstanceLayout spreads the instance model matrix over locations 5..8, one column each.
func InstanceLayout() wgpu.VertexBufferLayout {
	attributes := make([]wgpu.VertexAttribute, 4)
	for i := range attributes {
		attributes[i] = wgpu.VertexAttribute{
			ShaderLocation: uint32(5 + i),
			Offset:         uint64(i * 16),
			Format:         wgpu.VertexFormatFloat32x4,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: core.InstanceRawSize,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attributes,
	}
}
