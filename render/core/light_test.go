package core

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultLight() LightUniform {
	return LightUniform{
		Position: mgl32.Vec3{2, 2, 2},
		Color:    mgl32.Vec3{1, 1, 1},
	}
}

// ambient is the colour shader.wgsl produces for a texel of the given colour.
func ambient(l LightUniform, object mgl32.Vec3) mgl32.Vec3 {
	a := l.Color.Mul(AmbientStrength)
	return mgl32.Vec3{a[0] * object[0], a[1] * object[1], a[2] * object[2]}
}

func readFloat(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestLightUniform_Layout(t *testing.T) {
	l := LightUniform{Position: mgl32.Vec3{1, 2, 3}, Color: mgl32.Vec3{0.25, 0.5, 0.75}}
	b := l.Bytes()
	require.Len(t, b, LightUniformSize)

	assert.Equal(t, float32(1), readFloat(b, 0))
	assert.Equal(t, float32(3), readFloat(b, 8))
	assert.Equal(t, float32(0), readFloat(b, 12), "position padding")
	assert.Equal(t, float32(0.25), readFloat(b, 16))
	assert.Equal(t, float32(0.75), readFloat(b, 24))
	assert.Equal(t, float32(0), readFloat(b, 28), "color padding")
}

func TestLightUniform_Orbit(t *testing.T) {
	l := defaultLight()
	l.Orbit(90)
	vecClose(t, mgl32.Vec3{2, 2, -2}, l.Position, "quarter turn")

	l.Orbit(270)
	vecClose(t, mgl32.Vec3{2, 2, 2}, l.Position, "full turn")

	before := l.Position
	l.Orbit(0)
	assert.Equal(t, before, l.Position)

	// orbiting keeps the distance to the Y axis
	for i := 0; i < 360; i++ {
		l.Orbit(1)
	}
	assert.InDelta(t, math.Sqrt(8), math.Hypot(float64(l.Position.X()), float64(l.Position.Z())), 1e-3)
	assert.InDelta(t, 2, l.Position.Y(), 1e-5)
}

func TestLightUniform_Ambient(t *testing.T) {
	l := defaultLight()
	got := ambient(l, mgl32.Vec3{1, 0.5, 0})
	vecClose(t, mgl32.Vec3{0.1, 0.05, 0}, got, "white light")

	l.Color = mgl32.Vec3{1, 0, 0}
	got = ambient(l, mgl32.Vec3{1, 1, 1})
	vecClose(t, mgl32.Vec3{0.1, 0, 0}, got, "red light")
}
