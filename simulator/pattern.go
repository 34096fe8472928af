package simulator

import (
	"fmt"
	"strings"

	"github.com/moffa90/go-ov7670/protocol"
	"github.com/moffa90/go-ov7670/rgb565"
)

// Pattern identifies a generated test image.
type Pattern int

const (
	// PatternColorBars draws eight vertical bars like the sensor's built-in bar test
	PatternColorBars Pattern = iota

	// PatternGradient ramps red along x, green along y and blue along both
	PatternGradient

	// PatternCounter stores the pixel index in every sample (wraps at 65536)
	PatternCounter
)

var patternNames = map[string]Pattern{
	"colorbars": PatternColorBars,
	"gradient":  PatternGradient,
	"counter":   PatternCounter,
}

// ParsePattern looks up a pattern by name.
func ParsePattern(name string) (Pattern, error) {
	p, ok := patternNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown test pattern %q", name)
	}
	return p, nil
}

func (p Pattern) String() string {
	for name, v := range patternNames {
		if v == p {
			return name
		}
	}
	return fmt.Sprintf("Pattern(%d)", int(p))
}

// colorBars lists the eight bars, left to right.
var colorBars = []rgb565.Pixel565{
	rgb565.Pack(31, 63, 31), // white
	rgb565.Pack(31, 63, 0),  // yellow
	rgb565.Pack(0, 63, 31),  // cyan
	rgb565.Pack(0, 63, 0),   // green
	rgb565.Pack(31, 0, 31),  // magenta
	rgb565.Pack(31, 0, 0),   // red
	rgb565.Pack(0, 0, 31),   // blue
	rgb565.Pack(0, 0, 0),    // black
}

// Sample returns the RGB565 value of pattern p at (x, y) for the given geometry.
func Sample(p Pattern, spec protocol.FrameSpec, x, y int) rgb565.Pixel565 {
	w, h := int(spec.Width), int(spec.Height)
	switch p {
	case PatternGradient:
		return rgb565.Pack(
			uint8(x*31/maxInt(w-1, 1)),
			uint8(y*63/maxInt(h-1, 1)),
			uint8((x+y)*31/maxInt(w+h-2, 1)),
		)
	case PatternCounter:
		return rgb565.Pixel565(uint16(y*w + x))
	default:
		return colorBars[x*len(colorBars)/maxInt(w, 1)]
	}
}

// Render produces a raw little-endian RGB565 frame. mirror and flip apply
// the MVFP register bits the way the sensor does.
func Render(spec protocol.FrameSpec, p Pattern, mirror, flip bool) []byte {
	w, h := int(spec.Width), int(spec.Height)
	raw := make([]byte, spec.ByteSize())
	i := 0
	for y := 0; y < h; y++ {
		sy := y
		if flip {
			sy = h - 1 - y
		}
		for x := 0; x < w; x++ {
			sx := x
			if mirror {
				sx = w - 1 - x
			}
			v := Sample(p, spec, sx, sy)
			raw[i] = byte(v)
			raw[i+1] = byte(v >> 8)
			i += 2
		}
	}
	return raw
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
