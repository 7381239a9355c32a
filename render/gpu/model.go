package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/prism"
	"github.com/gekko3d/prism/render/assets"
	"github.com/gekko3d/prism/render/core"
)

type Mesh struct {
	Name         string
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	NumElements  uint32
	// Material indexes Model.Materials; meshes without one use the last entry.
	Material int
}

type Material struct {
	Name      string
	Diffuse   *Texture
	BindGroup *wgpu.BindGroup
}

type Model struct {
	Meshes    []Mesh
	Materials []Material
}

// diffuseColor packs an MTL Kd colour into an opaque RGBA8 texel.
func diffuseColor(kd [3]float32) [4]uint8 {
	var c [4]uint8
	for i, f := range kd {
		switch {
		case f <= 0:
			c[i] = 0
		case f >= 1:
			c[i] = 255
		default:
			c[i] = uint8(f*255 + 0.5)
		}
	}
	c[3] = 255
	return c
}

// materialIndex resolves a mesh's material to a slot in the uploaded materials,
// where slot count-1 is the default material.
func materialIndex(mesh int, count int) int {
	if mesh < 0 || mesh >= count-1 {
		return count - 1
	}
	return mesh
}

// UploadModel creates the vertex and index buffers of every mesh and one diffuse bind
// group per material. Materials without a texture use their Kd colour; meshes without
// a material use fallback, which UploadModel does not take ownership of.
func UploadModel(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout, asset *assets.ModelAsset, fallback *Texture, logger prism.Logger) (*Model, error) {
	logger = prism.OrNop(logger)
	m := &Model{}

	for i, mat := range asset.Materials {
		var (
			tex *Texture
			err error
		)
		if i < len(asset.Textures) && asset.Textures[i] != nil {
			tex, err = TextureFromImage(device, queue, asset.Textures[i].Image, mat.Name)
		} else {
			tex, err = SolidTexture(device, queue, diffuseColor(mat.Diffuse), mat.Name)
		}
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("upload model %s: %w", asset.Path, err)
		}
		bg, err := TextureBindGroup(device, layout, tex, mat.Name)
		if err != nil {
			tex.Release()
			m.Release()
			return nil, fmt.Errorf("upload model %s: %w", asset.Path, err)
		}
		m.Materials = append(m.Materials, Material{Name: mat.Name, Diffuse: tex, BindGroup: bg})
	}

	bg, err := TextureBindGroup(device, layout, fallback, "Default Material")
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("upload model %s: %w", asset.Path, err)
	}
	m.Materials = append(m.Materials, Material{Name: "default", BindGroup: bg})

	for _, md := range asset.Meshes {
		if len(md.Indices) == 0 {
			continue
		}
		vb, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    md.Name + " Vertex Buffer",
			Contents: core.VertexBytes(md.Vertices),
			Usage:    wgpu.BufferUsageVertex,
		})
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("upload mesh %s: %w", md.Name, err)
		}
		ib, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    md.Name + " Index Buffer",
			Contents: core.IndexBytes(md.Indices),
			Usage:    wgpu.BufferUsageIndex,
		})
		if err != nil {
			vb.Release()
			m.Release()
			return nil, fmt.Errorf("upload mesh %s: %w", md.Name, err)
		}
		m.Meshes = append(m.Meshes, Mesh{
			Name:         md.Name,
			VertexBuffer: vb,
			IndexBuffer:  ib,
			NumElements:  uint32(len(md.Indices)),
			Material:     materialIndex(md.Material, len(m.Materials)),
		})
	}
	logger.Debugf("uploaded model %s: %d meshes, %d materials", asset.Path, len(m.Meshes), len(m.Materials)-1)
	return m, nil
}

func (m *Model) drawMesh(pass *wgpu.RenderPassEncoder, mesh *Mesh, instances uint32) {
	pass.SetVertexBuffer(0, mesh.VertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(mesh.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(mesh.NumElements, instances, 0, 0, 0)
}

// DrawModelInstanced draws every mesh with its material at group 0, camera at group 1
// and light at group 2. The caller binds the instance buffer to slot 1.
func (m *Model) DrawModelInstanced(pass *wgpu.RenderPassEncoder, instances uint32, camera, light *wgpu.BindGroup) {
	pass.SetBindGroup(1, camera, nil)
	pass.SetBindGroup(2, light, nil)
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		pass.SetBindGroup(0, m.Materials[mesh.Material].BindGroup, nil)
		m.drawMesh(pass, mesh, instances)
	}
}

// DrawLightModel draws the model as the light marker, camera at group 0 and light at group 1.
func (m *Model) DrawLightModel(pass *wgpu.RenderPassEncoder, camera, light *wgpu.BindGroup) {
	pass.SetBindGroup(0, camera, nil)
	pass.SetBindGroup(1, light, nil)
	for i := range m.Meshes {
		m.drawMesh(pass, &m.Meshes[i], 1)
	}
}

func (m *Model) Release() {
	if m == nil {
		return
	}
	for _, mesh := range m.Meshes {
		mesh.IndexBuffer.Release()
		mesh.VertexBuffer.Release()
	}
	for _, mat := range m.Materials {
		mat.BindGroup.Release()
		mat.Diffuse.Release()
	}
	m.Meshes, m.Materials = nil, nil
}
