package assets

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/gekko3d/prism/render/core"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes any registered format (PNG, JPEG, GIF, BMP, TIFF, WebP) to RGBA.
func DecodeImage(r io.Reader) (*image.RGBA, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if err == image.ErrFormat {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return ToRGBA(img), format, nil
}

// ToRGBA returns img as a zero-origin *image.RGBA, converting only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FitWithin scales img down so neither side exceeds maxSide, keeping the aspect ratio.
// Images already small enough are returned unchanged.
func FitWithin(img *image.RGBA, maxSide int) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	scale := float64(maxSide) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Rect, draw.Src, nil)
	return dst
}

// SRGBToLinear converts one sRGB-encoded channel in [0,1] to linear light.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow((float64(c)+0.055)/1.055, 2.4))
}

// FloatImageFromRGBA converts an 8-bit sRGB image to linear float RGBA, so LDR
// environments go through the same projection pass as HDR ones.
func FloatImageFromRGBA(img *image.RGBA) *core.FloatImage {
	b := img.Rect
	out := core.NewFloatImage(b.Dx(), b.Dy())

	var lut [256]float32
	for i := range lut {
		lut[i] = SRGBToLinear(float32(i) / 255)
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			p := img.Pix[o : o+4]
			out.Set(x, y, [4]float32{lut[p[0]], lut[p[1]], lut[p[2]], float32(p[3]) / 255})
		}
	}
	return out
}
