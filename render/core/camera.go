package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SafeFracPi2 keeps pitch just short of straight up/down, where the look-to basis degenerates.
const SafeFracPi2 = math.Pi/2 - 0.0001

// OpenGLToWgpu remaps clip-space z from OpenGL's [-1, 1] to WebGPU's [0, 1].
var OpenGLToWgpu = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera is an FPS-style camera: a position plus yaw (about +Y) and pitch, in radians.
// Yaw 0 looks down +X; yaw -π/2 looks down -Z.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

func NewCamera(position mgl32.Vec3, yawDeg, pitchDeg float32) *Camera {
	return &Camera{
		Position: position,
		Yaw:      mgl32.DegToRad(yawDeg),
		Pitch:    mgl32.DegToRad(pitchDeg),
	}
}

func (c *Camera) Forward() mgl32.Vec3 {
	sinPitch, cosPitch := math.Sincos(float64(c.Pitch))
	sinYaw, cosYaw := math.Sincos(float64(c.Yaw))
	return mgl32.Vec3{
		float32(cosPitch * cosYaw),
		float32(sinPitch),
		float32(cosPitch * sinYaw),
	}.Normalize()
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	eye := c.Position
	return mgl32.LookAtV(eye, eye.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// Projection only changes when the surface is resized, so it is kept apart from Camera.
type Projection struct {
	Aspect float32
	FovY   float32 // radians
	ZNear  float32
	ZFar   float32
}

func NewProjection(width, height uint32, fovyDeg, znear, zfar float32) *Projection {
	p := &Projection{FovY: mgl32.DegToRad(fovyDeg), ZNear: znear, ZFar: zfar}
	p.Resize(width, height)
	return p
}

func (p *Projection) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	p.Aspect = float32(width) / float32(height)
}

func (p *Projection) Matrix() mgl32.Mat4 {
	return OpenGLToWgpu.Mul4(mgl32.Perspective(p.FovY, p.Aspect, p.ZNear, p.ZFar))
}

// CameraUniform matches `struct Camera { view_proj: mat4x4<f32> }` in the shaders.
type CameraUniform struct {
	ViewProj mgl32.Mat4
}

const CameraUniformSize = 64

func NewCameraUniform() CameraUniform {
	return CameraUniform{ViewProj: mgl32.Ident4()}
}

func (u *CameraUniform) Update(cam *Camera, proj *Projection) {
	u.ViewProj = proj.Matrix().Mul4(cam.ViewMatrix())
}

func (u CameraUniform) Bytes() []byte {
	buf := make([]byte, CameraUniformSize)
	putMat4(buf, 0, u.ViewProj)
	return buf
}

// SkyUniform carries the inverse of the rotation-only view-projection, so the sky pass
// can turn a clip-space position back into a world direction.
type SkyUniform struct {
	InvViewProj mgl32.Mat4
}

const SkyUniformSize = 64

func (u *SkyUniform) Update(cam *Camera, proj *Projection) {
	view := cam.ViewMatrix()
	// drop translation; the sky is at infinity
	view.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	u.InvViewProj = proj.Matrix().Mul4(view).Inv()
}

func (u SkyUniform) Bytes() []byte {
	buf := make([]byte, SkyUniformSize)
	putMat4(buf, 0, u.InvViewProj)
	return buf
}

// putMat4 writes m column-major, which is both mgl32's layout and WGSL's.
func putMat4(buf []byte, offset int, m mgl32.Mat4) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}

func putVec3(buf []byte, offset int, v mgl32.Vec3) {
	for i, c := range v {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(c))
	}
}
