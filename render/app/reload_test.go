package app

import (
	"testing"

	"github.com/gekko3d/prism/render/shaders"
	"github.com/stretchr/testify/assert"
)

func TestDrainReloads(t *testing.T) {
	ch := make(chan string, 8)
	ch <- shaders.Shader
	ch <- shaders.Sky
	ch <- shaders.Shader

	assert.Equal(t, []string{shaders.Shader, shaders.Sky}, drainReloads(ch))
	assert.Empty(t, drainReloads(ch), "nothing pending")

	ch <- shaders.Hdr
	close(ch)
	assert.Equal(t, []string{shaders.Hdr}, drainReloads(ch))
}
