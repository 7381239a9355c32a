package app

import (
	"github.com/gekko3d/prism"
	"github.com/gekko3d/prism/render/core"
)

// controllerInput reads camera movement from the frame's input. The mouse turns the
// camera while it is captured or the left button is held.
func controllerInput(in *prism.Input) core.ControllerInput {
	return core.ControllerInput{
		Forward:  in.Pressed[prism.KeyW] || in.Pressed[prism.KeyUp],
		Backward: in.Pressed[prism.KeyS] || in.Pressed[prism.KeyDown],
		Left:     in.Pressed[prism.KeyA] || in.Pressed[prism.KeyLeft],
		Right:    in.Pressed[prism.KeyD] || in.Pressed[prism.KeyRight],
		Up:       in.Pressed[prism.KeySpace],
		Down:     in.Pressed[prism.KeyShift],
		MouseDX:  in.MouseDeltaX,
		MouseDY:  in.MouseDeltaY,
		Rotating: in.MouseCaptured || in.Pressed[prism.MouseButtonLeft],
		Scroll:   in.ScrollDelta,
	}
}

// Actions are the one-shot toggles a frame's input asks for.
type Actions struct {
	ToggleCapture     bool
	TogglePlaceholder bool
	TogglePause       bool
	Close             bool
}

func actionsFor(in *prism.Input) Actions {
	return Actions{
		ToggleCapture:     in.JustPressed[prism.KeyTab],
		TogglePlaceholder: in.JustPressed[prism.KeyF2],
		TogglePause:       in.JustPressed[prism.KeyF1],
		Close:             in.JustPressed[prism.KeyEscape],
	}
}

// HandleInput applies the frame's input: toggles first, then camera movement.
// The caller still calls in.EndFrame afterwards.
func (a *App) HandleInput(in *prism.Input) {
	act := actionsFor(in)
	if act.Close {
		a.window.Close()
		return
	}
	if act.ToggleCapture {
		in.MouseCaptured = !in.MouseCaptured
		a.window.SyncCursorMode(in)
		// the capture toggle itself must not spin the camera
		in.MouseDeltaX, in.MouseDeltaY = 0, 0
	}
	if act.TogglePlaceholder {
		a.Placeholder = !a.Placeholder
		a.logger.Infof("placeholder mode: %v", a.Placeholder)
	}
	if act.TogglePause {
		a.LightPaused = !a.LightPaused
	}
	a.controller.Process(controllerInput(in))
}
