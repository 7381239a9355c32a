package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Instance struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// InstanceRaw is the per-instance vertex data: a model matrix split across
// four vec4 attributes (locations 5..8).
type InstanceRaw struct {
	Model mgl32.Mat4
}

const InstanceRawSize = 64

func (i Instance) Raw() InstanceRaw {
	t := mgl32.Translate3D(i.Position.X(), i.Position.Y(), i.Position.Z())
	return InstanceRaw{Model: t.Mul4(i.Rotation.Mat4())}
}

// InstanceGrid lays perRow*perRow instances on the XZ plane, centred on the origin,
// each tilted 45 degrees about its own offset direction.
func InstanceGrid(perRow int, spacing float32) []Instance {
	if perRow <= 0 {
		return nil
	}
	if perRow == 1 {
		return []Instance{{Rotation: mgl32.QuatIdent()}}
	}

	half := float32(perRow-1) * 0.5
	instances := make([]Instance, 0, perRow*perRow)
	for z := 0; z < perRow; z++ {
		for x := 0; x < perRow; x++ {
			pos := mgl32.Vec3{
				(float32(x) - half) * spacing,
				0,
				(float32(z) - half) * spacing,
			}
			rot := mgl32.QuatIdent()
			// a zero axis would produce a degenerate quaternion and scale the mesh away
			if pos.Len() > 1e-6 {
				rot = mgl32.QuatRotate(mgl32.DegToRad(45), pos.Normalize())
			}
			instances = append(instances, Instance{Position: pos, Rotation: rot})
		}
	}
	return instances
}

func InstanceBytes(instances []Instance) []byte {
	buf := make([]byte, len(instances)*InstanceRawSize)
	for i, inst := range instances {
		putMat4(buf, i*InstanceRawSize, inst.Raw().Model)
	}
	return buf
}
