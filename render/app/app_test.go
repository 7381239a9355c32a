package app

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/gekko3d/prism"
	"github.com/gekko3d/prism/render/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func TestSceneRequests(t *testing.T) {
	ac := prism.DefaultConfig().Assets
	ac.Environment = "sky.hdr"

	required, optional := sceneRequests(ac)
	assert.Equal(t, []assets.Request{
		{Kind: assets.KindModel, Path: ac.Model},
		{Kind: assets.KindEnvironment, Path: "sky.hdr"},
	}, required)
	assert.Equal(t, []assets.Request{{Kind: assets.KindTexture, Path: ac.Diffuse}}, optional)

	ac.Diffuse, ac.Environment = "", ""
	required, optional = sceneRequests(ac)
	assert.Len(t, required, 1)
	assert.Empty(t, optional)
}

func TestSceneRequests_MissingDiffuseStillLoads(t *testing.T) {
	ac := prism.DefaultConfig().Assets
	fsys := fstest.MapFS{ac.Model: {Data: []byte(triangleOBJ)}}

	server := assets.NewAssetServer(fsys, nil)
	required, optional := sceneRequests(ac)
	require.NoError(t, server.PreloadWith(context.Background(), required, optional))

	_, ok := server.Id(assets.KindModel, ac.Model)
	assert.True(t, ok)
	_, err := server.LoadTexture(ac.Diffuse)
	assert.Error(t, err, "the app falls back to white here")
}
