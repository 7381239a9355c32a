package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CPU mirror of equirectangular.wgsl. The GPU pass and ProjectEquirectToCube must
// agree texel for texel, so any change here needs the same change in the shader.

const (
	CubeFaceCount     = 6
	CubeWorkgroupSize = 16
)

const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// CubeFace is the orthonormal basis of one cube face. A face coordinate (u, v) in
// [-1,1]² maps to the direction Forward + Right*u + Up*v, with v = +1 on the top row.
type CubeFace struct {
	Forward mgl32.Vec3
	Up      mgl32.Vec3
	Right   mgl32.Vec3
}

// CubeFaces is in array-layer order +X, -X, +Y, -Y, +Z, -Z, oriented the way
// WebGPU samples a cube view.
var CubeFaces = [CubeFaceCount]CubeFace{
	FacePosX: {Forward: mgl32.Vec3{1, 0, 0}, Up: mgl32.Vec3{0, 1, 0}, Right: mgl32.Vec3{0, 0, -1}},
	FaceNegX: {Forward: mgl32.Vec3{-1, 0, 0}, Up: mgl32.Vec3{0, 1, 0}, Right: mgl32.Vec3{0, 0, 1}},
	FacePosY: {Forward: mgl32.Vec3{0, 1, 0}, Up: mgl32.Vec3{0, 0, -1}, Right: mgl32.Vec3{1, 0, 0}},
	FaceNegY: {Forward: mgl32.Vec3{0, -1, 0}, Up: mgl32.Vec3{0, 0, 1}, Right: mgl32.Vec3{1, 0, 0}},
	FacePosZ: {Forward: mgl32.Vec3{0, 0, 1}, Up: mgl32.Vec3{0, 1, 0}, Right: mgl32.Vec3{1, 0, 0}},
	FaceNegZ: {Forward: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, 1, 0}, Right: mgl32.Vec3{-1, 0, 0}},
}

// FaceDirection returns the unit direction through face coordinate (u, v).
func FaceDirection(face int, u, v float32) mgl32.Vec3 {
	f := CubeFaces[face]
	return f.Forward.Add(f.Right.Mul(u)).Add(f.Up.Mul(v)).Normalize()
}

// TexelCoord maps texel (x, y) of a size×size face to its centre in face coordinates.
func TexelCoord(x, y, size uint32) (u, v float32) {
	s := float32(size)
	u = (float32(x)+0.5)/s*2 - 1
	v = 1 - (float32(y)+0.5)/s*2
	return u, v
}

func TexelDirection(face int, x, y, size uint32) mgl32.Vec3 {
	u, v := TexelCoord(x, y, size)
	return FaceDirection(face, u, v)
}

// DirectionToEquirectUV converts a unit direction to equirectangular texture
// coordinates: longitude along u, latitude along v with the north pole at v = 0.
func DirectionToEquirectUV(dir mgl32.Vec3) (u, v float32) {
	lon := math.Atan2(float64(dir.Z()), float64(dir.X()))
	y := math.Max(-1, math.Min(1, float64(dir.Y())))
	lat := math.Asin(y)
	u = float32(lon/(2*math.Pi) + 0.5)
	v = float32(0.5 - lat/math.Pi)
	return u, v
}

// EquirectTexel picks the source texel for uv, clamped to the image.
func EquirectTexel(u, v float32, width, height uint32) (x, y uint32) {
	return clampTexel(u, width), clampTexel(v, height)
}

func clampTexel(t float32, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	p := math.Floor(float64(t) * float64(n))
	if p < 0 {
		return 0
	}
	if p > float64(n-1) {
		return n - 1
	}
	return uint32(p)
}

// InvocationInBounds is the compute shader's early-out: invocations past the
// destination's width or height write nothing.
func InvocationInBounds(gid [3]uint32, width, height uint32) bool {
	return gid[0] < width && gid[1] < height && gid[2] < CubeFaceCount
}

// WorkgroupCount is the number of 16-wide workgroups needed to cover size texels.
func WorkgroupCount(size uint32) uint32 {
	return (size + CubeWorkgroupSize - 1) / CubeWorkgroupSize
}

// FloatImage is a linear RGBA float image, row-major, four floats per texel.
type FloatImage struct {
	Width  int
	Height int
	Pix    []float32
}

func NewFloatImage(width, height int) *FloatImage {
	return &FloatImage{Width: width, Height: height, Pix: make([]float32, width*height*4)}
}

func (im *FloatImage) At(x, y int) [4]float32 {
	i := (y*im.Width + x) * 4
	return [4]float32{im.Pix[i], im.Pix[i+1], im.Pix[i+2], im.Pix[i+3]}
}

func (im *FloatImage) Set(x, y int, c [4]float32) {
	i := (y*im.Width + x) * 4
	copy(im.Pix[i:i+4], c[:])
}

// ProjectEquirectToCube runs the cube projection on the CPU over the same dispatch
// grid the GPU uses, including the padding invocations that fall outside the faces.
// It returns the six faces in layer order.
func ProjectEquirectToCube(src *FloatImage, size uint32) [CubeFaceCount]*FloatImage {
	var faces [CubeFaceCount]*FloatImage
	for i := range faces {
		faces[i] = NewFloatImage(int(size), int(size))
	}
	if src == nil || src.Width == 0 || src.Height == 0 || size == 0 {
		return faces
	}

	groups := WorkgroupCount(size)
	for z := uint32(0); z < CubeFaceCount; z++ {
		for y := uint32(0); y < groups*CubeWorkgroupSize; y++ {
			for x := uint32(0); x < groups*CubeWorkgroupSize; x++ {
				if !InvocationInBounds([3]uint32{x, y, z}, size, size) {
					continue
				}
				dir := TexelDirection(int(z), x, y, size)
				u, v := DirectionToEquirectUV(dir)
				sx, sy := EquirectTexel(u, v, uint32(src.Width), uint32(src.Height))
				faces[z].Set(int(x), int(y), src.At(int(sx), int(sy)))
			}
		}
	}
	return faces
}
