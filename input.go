package prism

const (
	KeyW int = iota
	KeyA
	KeyS
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyShift
	KeyControl
	KeyTab
	KeyEscape
	KeyF1
	KeyF2
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle

	keyCount
)

// Input accumulates window events between frames. Callbacks write into it while
// events are polled; the frame reads it and then calls EndFrame.
type Input struct {
	Pressed [keyCount]bool

	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	ScrollDelta              float64
	MouseCaptured            bool

	cursorSeen bool
}

func (in *Input) SetKey(key int, down bool) {
	if key < 0 || key >= keyCount {
		return
	}
	if down && !in.Pressed[key] {
		in.JustPressed[key] = true
	}
	if !down && in.Pressed[key] {
		in.JustReleased[key] = true
	}
	in.Pressed[key] = down
}

// MoveCursor records an absolute cursor position. The first sample only seeds the
// position so the camera does not jump when the cursor enters the window.
func (in *Input) MoveCursor(x, y float64) {
	if in.cursorSeen {
		in.MouseDeltaX += x - in.MouseX
		in.MouseDeltaY += y - in.MouseY
	}
	in.MouseX, in.MouseY = x, y
	in.cursorSeen = true
}

func (in *Input) Scroll(dy float64) {
	in.ScrollDelta += dy
}

// EndFrame clears edge-triggered state and per-frame deltas.
func (in *Input) EndFrame() {
	in.JustPressed = [keyCount]bool{}
	in.JustReleased = [keyCount]bool{}
	in.MouseDeltaX, in.MouseDeltaY = 0, 0
	in.ScrollDelta = 0
}
