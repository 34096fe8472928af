package rgb565

import (
	"image"
	"image/color"
)

// RGB is one 8-bit-per-channel pixel.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = 0xFFFF
	return
}

// Image is a decoded frame: packed RGB888, row-major, top to bottom.
// It implements image.Image so it can be handed to any encoder or renderer.
type Image struct {
	// Pix holds 3 bytes per pixel; row y starts at y*Stride
	Pix []uint8

	// Stride is the byte distance between rows (3*Width)
	Stride int

	Width  int
	Height int
}

// NewImage allocates a black image.
func NewImage(width, height int) *Image {
	return &Image{
		Pix:    make([]uint8, 3*width*height),
		Stride: 3 * width,
		Width:  width,
		Height: height,
	}
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	return m.RGBAt(x, y)
}

// RGBAt returns the pixel at (x, y), or black outside the bounds.
func (m *Image) RGBAt(x, y int) RGB {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return RGB{}
	}
	i := y*m.Stride + 3*x
	return RGB{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2]}
}

// SetRGB sets the pixel at (x, y). Out-of-bounds writes are ignored.
func (m *Image) SetRGB(x, y int, c RGB) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	i := y*m.Stride + 3*x
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = c.R, c.G, c.B
}

// ToRGBA converts to an *image.RGBA, the format most encoders fast-path.
func (m *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(m.Bounds())
	j := 0
	for i := 0; i < len(m.Pix); i += 3 {
		out.Pix[j] = m.Pix[i]
		out.Pix[j+1] = m.Pix[i+1]
		out.Pix[j+2] = m.Pix[i+2]
		out.Pix[j+3] = 0xFF
		j += 4
	}
	return out
}
