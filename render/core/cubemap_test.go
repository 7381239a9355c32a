package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closeEnough(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func vecClose(t *testing.T, want, got mgl32.Vec3, msg string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if !closeEnough(want[i], got[i], 1e-5) {
			t.Errorf("%s: expected %v, got %v", msg, want, got)
			return
		}
	}
}

func TestCubeFaces_Orthonormal(t *testing.T) {
	for i, f := range CubeFaces {
		assert.InDelta(t, 1.0, f.Forward.Len(), 1e-6, "face %d forward", i)
		assert.InDelta(t, 1.0, f.Up.Len(), 1e-6, "face %d up", i)
		assert.InDelta(t, 1.0, f.Right.Len(), 1e-6, "face %d right", i)
		assert.InDelta(t, 0.0, f.Forward.Dot(f.Up), 1e-6, "face %d forward·up", i)
		assert.InDelta(t, 0.0, f.Forward.Dot(f.Right), 1e-6, "face %d forward·right", i)
		assert.InDelta(t, 0.0, f.Up.Dot(f.Right), 1e-6, "face %d up·right", i)
	}
}

func TestFaceDirection_CentersHitAxes(t *testing.T) {
	axes := [CubeFaceCount]mgl32.Vec3{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	for face, axis := range axes {
		vecClose(t, axis, FaceDirection(face, 0, 0), "face center")
	}
}

func TestFaceDirection_Corners(t *testing.T) {
	for face, f := range CubeFaces {
		for _, c := range [][2]float32{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
			want := f.Forward.Add(f.Right.Mul(c[0])).Add(f.Up.Mul(c[1])).Normalize()
			got := FaceDirection(face, c[0], c[1])
			vecClose(t, want, got, "corner")

			// every corner sits at the same angle from the face axis
			assert.InDelta(t, 1/math.Sqrt(3), float64(got.Dot(f.Forward)), 1e-5)
		}
	}
}

func TestFaceDirection_PosXOrientation(t *testing.T) {
	// top-left texel of +X looks up and toward +Z, as a WebGPU cube view samples it
	dir := TexelDirection(FacePosX, 0, 0, 64)
	assert.Greater(t, dir.X(), float32(0))
	assert.Greater(t, dir.Y(), float32(0))
	assert.Greater(t, dir.Z(), float32(0))
}

func TestTexelDirection_UnitLength(t *testing.T) {
	const size = 37 // not a multiple of the workgroup size on purpose
	for face := 0; face < CubeFaceCount; face++ {
		for y := uint32(0); y < size; y++ {
			for x := uint32(0); x < size; x++ {
				d := TexelDirection(face, x, y, size)
				if !closeEnough(d.Len(), 1, 1e-5) {
					t.Fatalf("face %d texel (%d,%d): |dir| = %f", face, x, y, d.Len())
				}
			}
		}
	}
}

func TestTexelCoord_CenterOfOddFace(t *testing.T) {
	u, v := TexelCoord(2, 2, 5)
	assert.InDelta(t, 0, u, 1e-6)
	assert.InDelta(t, 0, v, 1e-6)

	u, v = TexelCoord(0, 0, 4)
	assert.InDelta(t, -0.75, u, 1e-6)
	assert.InDelta(t, 0.75, v, 1e-6)
}

func TestDirectionToEquirectUV_Range(t *testing.T) {
	const size = 32
	for face := 0; face < CubeFaceCount; face++ {
		for y := uint32(0); y < size; y++ {
			for x := uint32(0); x < size; x++ {
				u, v := DirectionToEquirectUV(TexelDirection(face, x, y, size))
				if u < 0 || u > 1 || v < 0 || v > 1 {
					t.Fatalf("face %d texel (%d,%d): uv (%f,%f) out of [0,1]", face, x, y, u, v)
				}
			}
		}
	}

	// poles and the seam are the extremes
	for _, d := range []mgl32.Vec3{{0, 1, 0}, {0, -1, 0}, {-1, 0, 0}, {-1, 0, -1e-7}} {
		u, v := DirectionToEquirectUV(d)
		assert.True(t, u >= 0 && u <= 1, "u=%f for %v", u, d)
		assert.True(t, v >= 0 && v <= 1, "v=%f for %v", v, d)
	}
}

func TestDirectionToEquirectUV_KnownPoints(t *testing.T) {
	tests := []struct {
		name string
		dir  mgl32.Vec3
		u, v float32
	}{
		{"+X is the image center", mgl32.Vec3{1, 0, 0}, 0.5, 0.5},
		{"+Z is a quarter turn right", mgl32.Vec3{0, 0, 1}, 0.75, 0.5},
		{"-Z is a quarter turn left", mgl32.Vec3{0, 0, -1}, 0.25, 0.5},
		{"north pole is the top row", mgl32.Vec3{0, 1, 0}, 0.5, 0},
		{"south pole is the bottom row", mgl32.Vec3{0, -1, 0}, 0.5, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, v := DirectionToEquirectUV(tc.dir)
			assert.InDelta(t, tc.u, u, 1e-5)
			assert.InDelta(t, tc.v, v, 1e-5)
		})
	}
}

func TestEquirectTexel_Clamps(t *testing.T) {
	x, y := EquirectTexel(1, 1, 8, 4)
	assert.Equal(t, uint32(7), x)
	assert.Equal(t, uint32(3), y)

	x, y = EquirectTexel(0, 0, 8, 4)
	assert.Equal(t, uint32(0), x)
	assert.Equal(t, uint32(0), y)

	x, y = EquirectTexel(0.5, 0.5, 8, 4)
	assert.Equal(t, uint32(4), x)
	assert.Equal(t, uint32(2), y)
}

func TestInvocationInBounds(t *testing.T) {
	assert.True(t, InvocationInBounds([3]uint32{0, 0, 0}, 20, 20))
	assert.True(t, InvocationInBounds([3]uint32{19, 19, 5}, 20, 20))
	assert.False(t, InvocationInBounds([3]uint32{20, 0, 0}, 20, 20), "x == width")
	assert.False(t, InvocationInBounds([3]uint32{31, 3, 2}, 20, 20), "x past width")
	assert.False(t, InvocationInBounds([3]uint32{3, 20, 2}, 20, 20), "y == height")
	assert.False(t, InvocationInBounds([3]uint32{0, 0, 6}, 20, 20), "no seventh layer")
}

func TestWorkgroupCount(t *testing.T) {
	assert.Equal(t, uint32(0), WorkgroupCount(0))
	assert.Equal(t, uint32(1), WorkgroupCount(1))
	assert.Equal(t, uint32(1), WorkgroupCount(16))
	assert.Equal(t, uint32(2), WorkgroupCount(17))
	assert.Equal(t, uint32(68), WorkgroupCount(1080))
}

func TestProjectEquirectToCube_NoWritesPastBounds(t *testing.T) {
	src := NewFloatImage(8, 4)
	for i := range src.Pix {
		src.Pix[i] = 1
	}

	// 20 is not a multiple of 16, so the dispatch grid has 12 padding columns and rows
	const size = 20
	grid := WorkgroupCount(size) * CubeWorkgroupSize
	require.Equal(t, uint32(32), grid)

	writes := 0
	for z := uint32(0); z < CubeFaceCount; z++ {
		for y := uint32(0); y < grid; y++ {
			for x := uint32(0); x < grid; x++ {
				if InvocationInBounds([3]uint32{x, y, z}, size, size) {
					writes++
					require.Less(t, x, uint32(size))
				}
			}
		}
	}
	assert.Equal(t, CubeFaceCount*size*size, writes)

	faces := ProjectEquirectToCube(src, size)
	for i, f := range faces {
		require.Equal(t, 20, f.Width, "face %d", i)
		require.Equal(t, 20, f.Height, "face %d", i)
		require.Len(t, f.Pix, 20*20*4, "face %d", i)
		for _, p := range f.Pix {
			require.Equal(t, float32(1), p)
		}
	}
}

func TestProjectEquirectToCube_FacesSampleTheirDirection(t *testing.T) {
	// Paint the equirect in four longitude quadrants and check each side face
	// centre picks the colour of the quadrant its axis points into.
	const w, h = 64, 32
	src := NewFloatImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			q := float32(x / (w / 4))
			src.Set(x, y, [4]float32{q, 0, 0, 1})
		}
	}

	// texel (7,7) sits just left of and above the face centre, away from quadrant edges
	faces := ProjectEquirectToCube(src, 16)
	centre := func(face int) float32 { return faces[face].At(7, 7)[0] }

	// u = lon/2π + 0.5: -X at the seam (u≈0 or 1), -Z at 0.25, +X at 0.5, +Z at 0.75
	assert.Equal(t, float32(1), centre(FaceNegZ))
	assert.Equal(t, float32(2), centre(FacePosX))
	assert.Equal(t, float32(3), centre(FacePosZ))
	assert.Contains(t, []float32{0, 3}, centre(FaceNegX))
}

func TestProjectEquirectToCube_EmptySource(t *testing.T) {
	faces := ProjectEquirectToCube(nil, 4)
	for _, f := range faces {
		assert.Equal(t, 4, f.Width)
		for _, p := range f.Pix {
			assert.Zero(t, p)
		}
	}
}
