package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// AmbientStrength scales the light colour in the textured pass.
const AmbientStrength = 0.1

// LightUniform matches
//
//	struct Light { position: vec3<f32>, color: vec3<f32> }
//
// where each vec3 occupies 16 bytes.
type LightUniform struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

const LightUniformSize = 32

// Orbit rotates the light position about +Y by deg degrees.
func (l *LightUniform) Orbit(deg float32) {
	if deg == 0 {
		return
	}
	q := mgl32.QuatRotate(mgl32.DegToRad(deg), mgl32.Vec3{0, 1, 0})
	l.Position = q.Rotate(l.Position)
}

func (l LightUniform) Bytes() []byte {
	buf := make([]byte, LightUniformSize)
	putVec3(buf, 0, l.Position)
	putVec3(buf, 16, l.Color)
	return buf
}
