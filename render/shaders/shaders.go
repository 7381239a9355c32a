package shaders

import (
	_ "embed"
)

//go:embed shader.wgsl
var ShaderWGSL string

//go:embed light.wgsl
var LightWGSL string

//go:embed fullscreen.wgsl
var FullscreenWGSL string

//go:embed equirectangular.wgsl
var EquirectangularWGSL string

//go:embed hdr.wgsl
var HdrWGSL string

//go:embed sky.wgsl
var SkyWGSL string

const (
	Shader          = "shader.wgsl"
	Light           = "light.wgsl"
	Fullscreen      = "fullscreen.wgsl"
	Equirectangular = "equirectangular.wgsl"
	Hdr             = "hdr.wgsl"
	Sky             = "sky.wgsl"
)

var embedded = map[string]*string{
	Shader:          &ShaderWGSL,
	Light:           &LightWGSL,
	Fullscreen:      &FullscreenWGSL,
	Equirectangular: &EquirectangularWGSL,
	Hdr:             &HdrWGSL,
	Sky:             &SkyWGSL,
}
