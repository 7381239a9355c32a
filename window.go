package prism

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState owns the single GLFW window the renderer draws into.
type WindowState struct {
	Window       *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

// CreateWindow initialises GLFW and opens a resizable window without a client API,
// since the surface is driven by WebGPU. Must be called from the main goroutine.
func CreateWindow(cfg WindowConfig) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	return &WindowState{
		Window:       win,
		WindowWidth:  cfg.Width,
		WindowHeight: cfg.Height,
		windowTitle:  cfg.Title,
	}, nil
}

// FramebufferSize is the size in pixels, which differs from the window size on HiDPI displays.
func (s *WindowState) FramebufferSize() (int, int) {
	return s.Window.GetFramebufferSize()
}

func (s *WindowState) ShouldClose() bool {
	return s.Window.ShouldClose()
}

func (s *WindowState) Close() {
	s.Window.SetShouldClose(true)
}

func (s *WindowState) Destroy() {
	s.Window.Destroy()
	glfw.Terminate()
}

// BindInput routes GLFW callbacks into in. onResize is called with the new framebuffer size.
func (s *WindowState) BindInput(in *Input, onResize func(width, height int)) {
	s.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if k, ok := glfwToKey[key]; ok {
			in.SetKey(k, action != glfw.Release)
		}
	})
	s.Window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		var k int
		switch button {
		case glfw.MouseButtonLeft:
			k = MouseButtonLeft
		case glfw.MouseButtonRight:
			k = MouseButtonRight
		case glfw.MouseButtonMiddle:
			k = MouseButtonMiddle
		default:
			return
		}
		in.SetKey(k, action == glfw.Press)
	})
	s.Window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		in.MoveCursor(x, y)
	})
	s.Window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		in.Scroll(yoff)
	})
	s.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		s.WindowWidth, s.WindowHeight = w.GetSize()
		if onResize != nil {
			onResize(width, height)
		}
	})
}

// SyncCursorMode applies in.MouseCaptured to the window.
func (s *WindowState) SyncCursorMode(in *Input) {
	if in.MouseCaptured {
		s.Window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		s.Window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

// PollEvents processes pending window events; callbacks registered by BindInput run here.
func PollEvents() {
	glfw.PollEvents()
}

var glfwToKey = map[glfw.Key]int{
	glfw.KeyW:           KeyW,
	glfw.KeyA:           KeyA,
	glfw.KeyS:           KeyS,
	glfw.KeyD:           KeyD,
	glfw.KeyUp:          KeyUp,
	glfw.KeyDown:        KeyDown,
	glfw.KeyLeft:        KeyLeft,
	glfw.KeyRight:       KeyRight,
	glfw.KeySpace:       KeySpace,
	glfw.KeyLeftShift:   KeyShift,
	glfw.KeyLeftControl: KeyControl,
	glfw.KeyTab:         KeyTab,
	glfw.KeyEscape:      KeyEscape,
	glfw.KeyF1:          KeyF1,
	glfw.KeyF2:          KeyF2,
}
