package core

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// ControllerInput is one frame's worth of movement intent.
type ControllerInput struct {
	Forward, Backward bool
	Left, Right       bool
	Up, Down          bool
	// MouseDX/MouseDY are only applied while Rotating is set.
	MouseDX, MouseDY float64
	Rotating         bool
	// Scroll is in lines; positive moves the camera along its view direction.
	Scroll float64
}

type CameraController struct {
	amountLeft, amountRight     float32
	amountForward, amountBack   float32
	amountUp, amountDown        float32
	rotateHorizontal, rotateVer float32
	scroll                      float32

	Speed       float32
	Sensitivity float32
}

func NewCameraController(speed, sensitivity float32) *CameraController {
	return &CameraController{Speed: speed, Sensitivity: sensitivity}
}

// pixels per scroll line
const scrollLinePixels = 100

func (c *CameraController) Process(in ControllerInput) {
	c.amountForward = boolAmount(in.Forward)
	c.amountBack = boolAmount(in.Backward)
	c.amountLeft = boolAmount(in.Left)
	c.amountRight = boolAmount(in.Right)
	c.amountUp = boolAmount(in.Up)
	c.amountDown = boolAmount(in.Down)

	if in.Rotating {
		c.rotateHorizontal = float32(in.MouseDX)
		c.rotateVer = float32(in.MouseDY)
	}
	c.scroll = -float32(in.Scroll) * scrollLinePixels
}

func boolAmount(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func (c *CameraController) UpdateCamera(cam *Camera, dt time.Duration) {
	secs := float32(dt.Seconds())

	sinYaw, cosYaw := math.Sincos(float64(cam.Yaw))
	forward := mgl32.Vec3{float32(cosYaw), 0, float32(sinYaw)}.Normalize()
	right := mgl32.Vec3{float32(-sinYaw), 0, float32(cosYaw)}.Normalize()
	cam.Position = cam.Position.Add(forward.Mul((c.amountForward - c.amountBack) * c.Speed * secs))
	cam.Position = cam.Position.Add(right.Mul((c.amountRight - c.amountLeft) * c.Speed * secs))

	// Scrolling moves along the full view direction, pitch included.
	cam.Position = cam.Position.Sub(cam.Forward().Mul(c.scroll * c.Speed * c.Sensitivity * secs))
	c.scroll = 0

	cam.Position[1] += (c.amountUp - c.amountDown) * c.Speed * secs

	cam.Yaw += c.rotateHorizontal * c.Sensitivity * secs
	cam.Pitch += -c.rotateVer * c.Sensitivity * secs
	c.rotateHorizontal = 0
	c.rotateVer = 0

	if cam.Pitch < -SafeFracPi2 {
		cam.Pitch = -SafeFracPi2
	} else if cam.Pitch > SafeFracPi2 {
		cam.Pitch = SafeFracPi2
	}
}
