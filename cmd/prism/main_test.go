package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/prism"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, prism.DefaultConfig(), cfg)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prism.toml")
	data := "[assets]\ndir = \"from-file\"\n\n[log]\ndebug = true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := loadConfig([]string{"--config", path, "--assets", "from-flag", "--placeholder"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Assets.Dir)
	assert.True(t, cfg.Log.Debug, "unset flags keep file values")
	assert.True(t, cfg.Render.Placeholder)

	cfg, err = loadConfig([]string{"-c", path, "--debug=false"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Assets.Dir)
	assert.False(t, cfg.Log.Debug)
}

func TestLoadConfig_UnknownFlag(t *testing.T) {
	_, err := loadConfig([]string{"--no-such-flag"})
	assert.Error(t, err)
}
