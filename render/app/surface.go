package app

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/prism"
)

// presentMode maps a configured mode to the surface present mode, falling back to
// Fifo, which every surface supports, when the adapter lacks the requested one.
func presentMode(name string, supported []wgpu.PresentMode) wgpu.PresentMode {
	want := wgpu.PresentModeFifo
	switch name {
	case prism.PresentModeImmediate:
		want = wgpu.PresentModeImmediate
	case prism.PresentModeMailbox:
		want = wgpu.PresentModeMailbox
	}
	if len(supported) > 0 && !slices.Contains(supported, want) {
		return wgpu.PresentModeFifo
	}
	return want
}

func isSRGB(f wgpu.TextureFormat) bool {
	switch f {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// surfaceFormat prefers an sRGB format so shader output in linear space is encoded on write.
func surfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if isSRGB(f) {
			return f
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8UnormSrgb
	}
	return formats[0]
}
