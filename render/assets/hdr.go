package assets

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gekko3d/prism/render/core"
)

// DecodeHDR decodes a Radiance RGBE (.hdr) image into linear float RGBA, top row first.
func DecodeHDR(r io.Reader) (*core.FloatImage, error) {
	br := bufio.NewReader(r)

	magic, err := readHeaderLine(br)
	if err != nil {
		return nil, err
	}
	if magic != "#?RADIANCE" && magic != "#?RGBE" {
		return nil, fmt.Errorf("%w: hdr signature %q", ErrUnsupportedFormat, magic)
	}

	for {
		line, err := readHeaderLine(br)
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		if format, ok := strings.CutPrefix(line, "FORMAT="); ok && format != "32-bit_rle_rgbe" {
			return nil, fmt.Errorf("%w: hdr pixel format %s", ErrUnsupportedFormat, format)
		}
	}

	resolution, err := readHeaderLine(br)
	if err != nil {
		return nil, err
	}
	width, height, flipY, err := parseResolution(resolution)
	if err != nil {
		return nil, err
	}

	// rows are appended as they decode, so a header claiming more pixels than the
	// stream holds fails as truncated before the full image is allocated
	img := &core.FloatImage{Width: width, Height: height}
	rowLen := width * 4
	scan := make([]byte, rowLen)
	for y := 0; y < height; y++ {
		if err := readScanline(br, scan); err != nil {
			return nil, fmt.Errorf("hdr scanline %d: %w", y, err)
		}
		for x := 0; x < width; x++ {
			r, g, b := rgbeToFloat(scan[x*4], scan[x*4+1], scan[x*4+2], scan[x*4+3])
			img.Pix = append(img.Pix, r, g, b, 1)
		}
	}
	if flipY {
		tmp := make([]float32, rowLen)
		for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
			a := img.Pix[top*rowLen : (top+1)*rowLen]
			b := img.Pix[bottom*rowLen : (bottom+1)*rowLen]
			copy(tmp, a)
			copy(a, b)
			copy(b, tmp)
		}
	}
	return img, nil
}

func readHeaderLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", fmt.Errorf("%w: hdr header truncated", ErrMalformed)
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// MaxHDRSide and MaxHDRPixels bound the resolutions DecodeHDR accepts. Environment
// maps top out around 16384x8192.
const (
	MaxHDRSide   = 32768
	MaxHDRPixels = 16384 * 8192
)

// parseResolution accepts "-Y H +X W" (top row first) and "+Y H +X W" (bottom row first).
func parseResolution(line string) (width, height int, flipY bool, err error) {
	f := strings.Fields(line)
	if len(f) != 4 || (f[0] != "-Y" && f[0] != "+Y") || f[2] != "+X" {
		return 0, 0, false, fmt.Errorf("%w: hdr orientation %q", ErrUnsupportedFormat, line)
	}
	height, err = strconv.Atoi(f[1])
	if err != nil || height <= 0 {
		return 0, 0, false, fmt.Errorf("%w: hdr height %q", ErrMalformed, f[1])
	}
	width, err = strconv.Atoi(f[3])
	if err != nil || width <= 0 {
		return 0, 0, false, fmt.Errorf("%w: hdr width %q", ErrMalformed, f[3])
	}
	if width > MaxHDRSide || height > MaxHDRSide || width*height > MaxHDRPixels {
		return 0, 0, false, fmt.Errorf("%w: hdr resolution %dx%d too large", ErrMalformed, width, height)
	}
	return width, height, f[0] == "+Y", nil
}

// readScanline fills dst (width*4 bytes of RGBE) from either a flat or a new-style
// run-length encoded scanline.
func readScanline(br *bufio.Reader, dst []byte) error {
	width := len(dst) / 4
	if width < 8 || width > 0x7fff {
		_, err := io.ReadFull(br, dst)
		return truncated(err)
	}

	var head [4]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return truncated(err)
	}
	if head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		copy(dst, head[:])
		_, err := io.ReadFull(br, dst[4:])
		return truncated(err)
	}
	if int(head[2])<<8|int(head[3]) != width {
		return fmt.Errorf("%w: rle width %d, want %d", ErrMalformed, int(head[2])<<8|int(head[3]), width)
	}

	// channels are stored one after another, each run-length encoded
	channel := make([]byte, width)
	for c := 0; c < 4; c++ {
		for x := 0; x < width; {
			count, err := br.ReadByte()
			if err != nil {
				return truncated(err)
			}
			if count > 128 {
				run := int(count - 128)
				if x+run > width {
					return fmt.Errorf("%w: rle run past end of scanline", ErrMalformed)
				}
				v, err := br.ReadByte()
				if err != nil {
					return truncated(err)
				}
				copy(channel[x:x+run], bytes.Repeat([]byte{v}, run))
				x += run
				continue
			}
			n := int(count)
			if n == 0 || x+n > width {
				return fmt.Errorf("%w: bad rle literal length %d", ErrMalformed, n)
			}
			if _, err := io.ReadFull(br, channel[x:x+n]); err != nil {
				return truncated(err)
			}
			x += n
		}
		for x := 0; x < width; x++ {
			dst[x*4+c] = channel[x]
		}
	}
	return nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: hdr data truncated", ErrMalformed)
	}
	return err
}

func rgbeToFloat(r, g, b, e byte) (float32, float32, float32) {
	if e == 0 {
		return 0, 0, 0
	}
	f := float32(math.Ldexp(1, int(e)-136))
	return float32(r) * f, float32(g) * f, float32(b) * f
}

// EncodeHDR writes img as a flat (uncompressed) Radiance file. Used for test fixtures
// and for dumping baked environments.
func EncodeHDR(w io.Writer, img *core.FloatImage) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", img.Height, img.Width)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y)
			rgbe := floatToRGBE(c[0], c[1], c[2])
			if _, err := bw.Write(rgbe[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func floatToRGBE(r, g, b float32) [4]byte {
	v := max(r, g, b)
	if v < 1e-32 {
		return [4]byte{}
	}
	frac, exp := math.Frexp(float64(v))
	scale := frac * 256 / float64(v)
	return [4]byte{byte(float64(r) * scale), byte(float64(g) * scale), byte(float64(b) * scale), byte(exp + 128)}
}
