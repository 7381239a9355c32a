package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage_ConvertsToRGBA(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	src.SetGray(2, 1, color.Gray{Y: 200})

	img, format, err := DecodeImage(bytes.NewReader(pngBytes(t, src)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Rect)
	assert.Equal(t, color.RGBA{200, 200, 200, 255}, img.RGBAAt(2, 1))
}

func TestDecodeImage_BMP(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	src.SetRGBA(1, 0, color.RGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, src))

	img, format, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, img.RGBAAt(1, 0))
}

func TestDecodeImage_Unknown(t *testing.T) {
	_, _, err := DecodeImage(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestToRGBA_OffsetOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.SetRGBA(6, 5, color.RGBA{1, 2, 3, 255})

	got := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 1), got.Rect)
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, got.RGBAAt(1, 0))

	zero := image.NewRGBA(image.Rect(0, 0, 1, 1))
	assert.Same(t, zero, ToRGBA(zero))
}

func TestFitWithin(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	assert.Same(t, img, FitWithin(img, 0))
	assert.Same(t, img, FitWithin(img, 400))

	small := FitWithin(img, 200)
	assert.Equal(t, image.Rect(0, 0, 200, 50), small.Rect)

	tall := FitWithin(image.NewRGBA(image.Rect(0, 0, 1, 1000)), 10)
	assert.Equal(t, image.Rect(0, 0, 1, 10), tall.Rect)
}

func TestSRGBToLinear(t *testing.T) {
	assert.Equal(t, float32(0), SRGBToLinear(0))
	assert.InDelta(t, 1, SRGBToLinear(1), 1e-6)
	assert.InDelta(t, 0.214, SRGBToLinear(0.5), 1e-3)
	assert.InDelta(t, 0.04045/12.92, SRGBToLinear(0.04045), 1e-7)
}

func TestFloatImageFromRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	src.SetRGBA(1, 0, color.RGBA{128, 128, 128, 128})

	img := FloatImageFromRGBA(src)
	require.Equal(t, 2, img.Width)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, img.At(0, 0))

	grey := img.At(1, 0)
	assert.InDelta(t, 0.2158, grey[0], 1e-3)
	assert.InDelta(t, 128.0/255, grey[3], 1e-6, "alpha stays linear")
}
