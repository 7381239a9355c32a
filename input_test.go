package prism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInput_KeyEdges(t *testing.T) {
	var in Input

	in.SetKey(KeyW, true)
	assert.True(t, in.Pressed[KeyW])
	assert.True(t, in.JustPressed[KeyW])

	// key repeat does not re-trigger the edge
	in.EndFrame()
	in.SetKey(KeyW, true)
	assert.True(t, in.Pressed[KeyW])
	assert.False(t, in.JustPressed[KeyW])

	in.SetKey(KeyW, false)
	assert.False(t, in.Pressed[KeyW])
	assert.True(t, in.JustReleased[KeyW])

	in.EndFrame()
	assert.False(t, in.JustReleased[KeyW])
}

func TestInput_OutOfRangeKeyIgnored(t *testing.T) {
	var in Input
	in.SetKey(-1, true)
	in.SetKey(keyCount, true)
	assert.Equal(t, [keyCount]bool{}, in.Pressed)
}

func TestInput_CursorDeltas(t *testing.T) {
	var in Input

	in.MoveCursor(100, 50)
	assert.Zero(t, in.MouseDeltaX, "first sample only seeds the position")
	assert.Zero(t, in.MouseDeltaY)

	in.MoveCursor(110, 45)
	in.MoveCursor(115, 40)
	assert.Equal(t, 15.0, in.MouseDeltaX)
	assert.Equal(t, -10.0, in.MouseDeltaY)
	assert.Equal(t, 115.0, in.MouseX)

	in.Scroll(1)
	in.Scroll(0.5)
	assert.Equal(t, 1.5, in.ScrollDelta)

	in.EndFrame()
	assert.Zero(t, in.MouseDeltaX)
	assert.Zero(t, in.ScrollDelta)
	assert.Equal(t, 40.0, in.MouseY, "position survives the frame")
}
