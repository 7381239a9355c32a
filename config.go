package prism

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type WindowConfig struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`
}

type AssetsConfig struct {
	Dir string `toml:"dir" yaml:"dir"`
	// Model is an OBJ file relative to Dir.
	Model string `toml:"model" yaml:"model"`
	// Diffuse is used for meshes whose material has no map_Kd.
	Diffuse string `toml:"diffuse" yaml:"diffuse"`
	// Environment is an equirectangular image (.hdr or any LDR format). Empty disables the sky.
	Environment string `toml:"environment" yaml:"environment"`
	CubeSize    uint32 `toml:"cube_size" yaml:"cube_size"`
}

type CameraConfig struct {
	Position    [3]float32 `toml:"position" yaml:"position"`
	Yaw         float32    `toml:"yaw" yaml:"yaw"`     // degrees
	Pitch       float32    `toml:"pitch" yaml:"pitch"` // degrees
	FovY        float32    `toml:"fovy" yaml:"fovy"`   // degrees
	ZNear       float32    `toml:"znear" yaml:"znear"`
	ZFar        float32    `toml:"zfar" yaml:"zfar"`
	Speed       float32    `toml:"speed" yaml:"speed"`
	Sensitivity float32    `toml:"sensitivity" yaml:"sensitivity"`
}

type LightConfig struct {
	Position [3]float32 `toml:"position" yaml:"position"`
	Color    [3]float32 `toml:"color" yaml:"color"`
	// OrbitDegrees is the rotation about +Y applied every frame.
	OrbitDegrees float32 `toml:"orbit_degrees" yaml:"orbit_degrees"`
}

type RenderConfig struct {
	PresentMode     string  `toml:"present_mode" yaml:"present_mode"`
	HDR             bool    `toml:"hdr" yaml:"hdr"`
	InstancesPerRow int     `toml:"instances_per_row" yaml:"instances_per_row"`
	InstanceSpacing float32 `toml:"instance_spacing" yaml:"instance_spacing"`
	ShaderDir       string  `toml:"shader_dir" yaml:"shader_dir"`
	Placeholder     bool    `toml:"placeholder" yaml:"placeholder"`
}

type LogConfig struct {
	Prefix string `toml:"prefix" yaml:"prefix"`
	Debug  bool   `toml:"debug" yaml:"debug"`
}

type Config struct {
	Window WindowConfig `toml:"window" yaml:"window"`
	Assets AssetsConfig `toml:"assets" yaml:"assets"`
	Camera CameraConfig `toml:"camera" yaml:"camera"`
	Light  LightConfig  `toml:"light" yaml:"light"`
	Render RenderConfig `toml:"render" yaml:"render"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

const (
	PresentModeFifo      = "fifo"
	PresentModeImmediate = "immediate"
	PresentModeMailbox   = "mailbox"
)

var ErrInvalidConfig = errors.New("invalid config")

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "Prism"},
		Assets: AssetsConfig{
			Dir:      "assets",
			Model:    "cube.obj",
			Diffuse:  "happy-tree.png",
			CubeSize: 1080,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 5, 10},
			Yaw:         -90,
			Pitch:       -20,
			FovY:        45,
			ZNear:       0.1,
			ZFar:        100,
			Speed:       4,
			Sensitivity: 0.4,
		},
		Light: LightConfig{
			Position:     [3]float32{2, 2, 2},
			Color:        [3]float32{1, 1, 1},
			OrbitDegrees: 1,
		},
		Render: RenderConfig{
			PresentMode:     PresentModeFifo,
			HDR:             true,
			InstancesPerRow: 10,
			InstanceSpacing: 3,
		},
		Log: LogConfig{Prefix: "prism"},
	}
}

// LoadConfig reads path on top of DefaultConfig. The decoder is picked by extension:
// .toml, .yaml or .yml. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: unknown config extension %q", ErrInvalidConfig, filepath.Ext(path))
	}
	if err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Assets.CubeSize == 0 {
		errs = append(errs, errors.New("assets.cube_size must be positive"))
	}
	if c.Camera.ZNear <= 0 {
		errs = append(errs, fmt.Errorf("camera.znear %v must be positive", c.Camera.ZNear))
	}
	if c.Camera.ZFar <= c.Camera.ZNear {
		errs = append(errs, fmt.Errorf("camera.zfar %v must exceed znear %v", c.Camera.ZFar, c.Camera.ZNear))
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		errs = append(errs, fmt.Errorf("camera.fovy %v must be in (0, 180)", c.Camera.FovY))
	}
	if c.Render.InstancesPerRow <= 0 {
		errs = append(errs, fmt.Errorf("render.instances_per_row %d must be positive", c.Render.InstancesPerRow))
	}
	switch c.Render.PresentMode {
	case PresentModeFifo, PresentModeImmediate, PresentModeMailbox:
	default:
		errs = append(errs, fmt.Errorf("render.present_mode %q is not one of fifo, immediate, mailbox", c.Render.PresentMode))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
