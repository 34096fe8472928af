package rgb565

import (
	"fmt"

	"github.com/moffa90/go-ov7670/protocol"
)

// Channel field layout of a Pixel565, MSB to LSB: 5 red, 6 green, 5 blue.
const (
	RedShift   = 11
	GreenShift = 5
	RedMask    = 0x1F
	GreenMask  = 0x3F
	BlueMask   = 0x1F
)

// Lookup tables for the 5-bit and 6-bit channels. Entries use integer floor
// division (c*255/31 and c*255/63) so 0 maps to 0, the top code maps to 255,
// and everything in between truncates toward zero.
var (
	lut5 = buildLUT(RedMask)
	lut6 = buildLUT(GreenMask)
)

func buildLUT(max int) []uint8 {
	lut := make([]uint8, max+1)
	for c := 0; c <= max; c++ {
		lut[c] = uint8(c * 255 / max)
	}
	return lut
}

// Expand5 scales a 5-bit channel to 8 bits.
func Expand5(c uint8) uint8 {
	return lut5[c&RedMask]
}

// Expand6 scales a 6-bit channel to 8 bits.
func Expand6(c uint8) uint8 {
	return lut6[c&GreenMask]
}

// Pixel565 is one packed RGB565 sample.
type Pixel565 uint16

// FromBytes reads a little-endian sample.
func FromBytes(lo, hi byte) Pixel565 {
	return Pixel565(uint16(lo) | uint16(hi)<<8)
}

// Pack builds a sample from raw channel codes. Out-of-range codes are masked.
func Pack(r5, g6, b5 uint8) Pixel565 {
	return Pixel565(uint16(r5&RedMask)<<RedShift | uint16(g6&GreenMask)<<GreenShift | uint16(b5&BlueMask))
}

// Red returns the 5-bit red code.
func (p Pixel565) Red() uint8 { return uint8(p>>RedShift) & RedMask }

// Green returns the 6-bit green code.
func (p Pixel565) Green() uint8 { return uint8(p>>GreenShift) & GreenMask }

// Blue returns the 5-bit blue code.
func (p Pixel565) Blue() uint8 { return uint8(p) & BlueMask }

// RGB expands the sample to 8 bits per channel.
func (p Pixel565) RGB() RGB {
	return RGB{
		R: lut5[p.Red()],
		G: lut6[p.Green()],
		B: lut5[p.Blue()],
	}
}

// Decode converts a complete raw frame into an Image.
//
// raw must be exactly spec.ByteSize() bytes; a short or long buffer is an
// error rather than a padded or truncated image.
//
// Example:
//
//	raw, _ := cam.CaptureRaw(ctx)
//	img, err := rgb565.Decode(raw, protocol.QVGA)
func Decode(raw []byte, spec protocol.FrameSpec) (*Image, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(raw) != spec.ByteSize() {
		return nil, fmt.Errorf("raw frame is %d bytes, expected %d for %s", len(raw), spec.ByteSize(), spec)
	}

	img := NewImage(int(spec.Width), int(spec.Height))
	decodeInto(img.Pix, raw)
	return img, nil
}

// decodeInto expands len(raw)/2 samples into dst (3 bytes per pixel).
func decodeInto(dst, raw []byte) {
	j := 0
	for i := 0; i+1 < len(raw); i += 2 {
		v := uint16(raw[i]) | uint16(raw[i+1])<<8
		dst[j] = lut5[(v>>RedShift)&RedMask]
		dst[j+1] = lut6[(v>>GreenShift)&GreenMask]
		dst[j+2] = lut5[v&BlueMask]
		j += 3
	}
}
