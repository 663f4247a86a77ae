package scenegeo

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
)

// Texture is a ColorSource backed by a regular grid of stored color
// samples, read/written in the binary PPM (P6) format and sampled
// bilinearly. Colors are stored and sampled as gamma-uncorrected linear
// floats clamped to [0,1] (spec §6). Grounded on
// original_source/inc/texture.hh.
type Texture struct {
	Width, Height int
	pixels        []core.Vec3 // row-major, y*Width+x
}

// NewTexture allocates a black width x height texture.
func NewTexture(width, height int) *Texture {
	return &Texture{Width: width, Height: height, pixels: make([]core.Vec3, width*height)}
}

func (t *Texture) index(x, y int) int { return y*t.Width + x }

// Pixel returns the stored color at integer pixel (x,y).
func (t *Texture) Pixel(x, y int) core.Vec3 {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return core.Vec3{}
	}
	return t.pixels[t.index(x, y)]
}

// SetPixel stores color at integer pixel (x,y), clamped to [0,1].
func (t *Texture) SetPixel(x, y int, color core.Vec3) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.pixels[t.index(x, y)] = color.Clamp(0, 1)
}

// Sample bilinearly interpolates the texture at uv in [0,1]x[0,1].
func (t *Texture) Sample(u, v float64) core.Vec3 {
	fx := u * float64(t.Width-1)
	fy := v * float64(t.Height-1)

	x0 := clampInt(int(math.Floor(fx)), 0, t.Width-1)
	y0 := clampInt(int(math.Floor(fy)), 0, t.Height-1)
	x1 := clampInt(x0+1, 0, t.Width-1)
	y1 := clampInt(y0+1, 0, t.Height-1)

	tx, ty := fx-float64(x0), fy-float64(y0)

	c00, c10 := t.Pixel(x0, y0), t.Pixel(x1, y0)
	c01, c11 := t.Pixel(x0, y1), t.Pixel(x1, y1)

	top := c00.Multiply(1 - tx).Add(c10.Multiply(tx))
	bottom := c01.Multiply(1 - tx).Add(c11.Multiply(tx))
	return top.Multiply(1 - ty).Add(bottom.Multiply(ty))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WritePPM writes the texture as a binary PPM (P6), with stored [0,1] linear
// floats mapped directly to [0,255] bytes (no gamma correction, matching the
// original implementation's texture file format per spec §6).
func (t *Texture) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", t.Width, t.Height); err != nil {
		return err
	}
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			c := t.Pixel(x, y)
			if _, err := bw.Write([]byte{toByte(c.X), toByte(c.Y), toByte(c.Z)}); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func toByte(v float64) byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return byte(math.Round(v * 255))
}

// ReadPPM reads a binary PPM (P6) texture previously written by WritePPM.
func ReadPPM(r io.Reader) (*Texture, error) {
	br := bufio.NewReader(r)

	magic, err := readToken(br)
	if err != nil {
		return nil, err
	}
	if magic != "P6" {
		return nil, fmt.Errorf("texture: unsupported PPM magic %q", magic)
	}

	width, err := readIntToken(br)
	if err != nil {
		return nil, err
	}
	height, err := readIntToken(br)
	if err != nil {
		return nil, err
	}
	maxVal, err := readIntToken(br)
	if err != nil {
		return nil, err
	}
	if maxVal != 255 {
		return nil, fmt.Errorf("texture: unsupported max value %d", maxVal)
	}

	// readToken already consumed the single whitespace byte separating the
	// header from the binary pixel payload.
	tex := NewTexture(width, height)
	buf := make([]byte, 3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if _, err := io.ReadFull(br, buf); err != nil {
				return nil, err
			}
			tex.SetPixel(x, y, core.NewVec3(float64(buf[0])/255, float64(buf[1])/255, float64(buf[2])/255))
		}
	}
	return tex, nil
}

func readToken(br *bufio.Reader) (string, error) {
	var token []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", err
		}
		if isSpace(b) {
			if len(token) == 0 {
				continue
			}
			break
		}
		token = append(token, b)
	}
	return string(token), nil
}

func readIntToken(br *bufio.Reader) (int, error) {
	token, err := readToken(br)
	if err != nil {
		return 0, err
	}
	var v int
	if _, err := fmt.Sscanf(token, "%d", &v); err != nil {
		return 0, err
	}
	return v, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
