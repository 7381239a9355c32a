package core

import (
	"encoding/binary"
	"math"
)

// ModelVertex is the vertex buffer record of the textured and light passes.
// Fields tagged `prism:"layout"` become vertex attributes in declaration order.
type ModelVertex struct {
	Position  [3]float32 `prism:"layout" location:"0" format:"float32x3"`
	TexCoords [2]float32 `prism:"layout" location:"1" format:"float32x2"`
	Normal    [3]float32 `prism:"layout" location:"2" format:"float32x3"`
}

const ModelVertexSize = 32

func VertexBytes(vertices []ModelVertex) []byte {
	buf := make([]byte, len(vertices)*ModelVertexSize)
	for i, v := range vertices {
		o := i * ModelVertexSize
		floats := [8]float32{
			v.Position[0], v.Position[1], v.Position[2],
			v.TexCoords[0], v.TexCoords[1],
			v.Normal[0], v.Normal[1], v.Normal[2],
		}
		for j, f := range floats {
			binary.LittleEndian.PutUint32(buf[o+j*4:], math.Float32bits(f))
		}
	}
	return buf
}

func IndexBytes(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}
