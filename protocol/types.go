package protocol

import (
	"fmt"
	"sort"
	"strings"
)

// FrameSpec is the frame geometry both sides agree on. The capture response
// carries no header, so the host must know the exact size in advance.
type FrameSpec struct {
	// Width is the frame width in pixels
	Width uint32

	// Height is the frame height in pixels
	Height uint32
}

// Supported frame presets.
var (
	QCIF  = FrameSpec{Width: 176, Height: 144}
	QQVGA = FrameSpec{Width: 160, Height: 120}
	QVGA  = FrameSpec{Width: 320, Height: 240}
)

// resolutions maps preset names to frame specs. "160x120" is the canonical
// name of the smallest preset; "qqvga" is accepted as an alias.
var resolutions = map[string]FrameSpec{
	"qcif":    QCIF,
	"160x120": QQVGA,
	"qqvga":   QQVGA,
	"qvga":    QVGA,
}

// DefaultResolution is the preset used when none is configured.
const DefaultResolution = "qvga"

// LookupResolution returns the preset registered under name (case-insensitive).
func LookupResolution(name string) (FrameSpec, error) {
	spec, ok := resolutions[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return FrameSpec{}, fmt.Errorf("unsupported resolution %q (supported: %s)",
			name, strings.Join(ResolutionNames(), ", "))
	}
	return spec, nil
}

// ResolutionNames returns the sorted list of preset names.
func ResolutionNames() []string {
	names := make([]string, 0, len(resolutions))
	for name := range resolutions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pixels returns width*height.
func (s FrameSpec) Pixels() int {
	return int(s.Width) * int(s.Height)
}

// ByteSize returns the raw frame size: every pixel is exactly BytesPerPixel bytes.
func (s FrameSpec) ByteSize() int {
	return s.Pixels() * BytesPerPixel
}

// Validate checks that both dimensions are positive.
func (s FrameSpec) Validate() error {
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("invalid frame spec %dx%d: width and height must be positive", s.Width, s.Height)
	}
	return nil
}

func (s FrameSpec) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// RegisterValue is one register/value pair of a register write list.
type RegisterValue struct {
	Reg   byte
	Value byte
}

func (rv RegisterValue) String() string {
	return fmt.Sprintf("0x%02X=0x%02X", rv.Reg, rv.Value)
}

// SensorID holds the identification registers of the sensor.
type SensorID struct {
	// ProductID is PID<<8 | VER (0x7673 for a genuine OV7670)
	ProductID uint16

	// ManufacturerID is MIDH<<8 | MIDL (0x7FA2 for OmniVision)
	ManufacturerID uint16
}

// Known identification values.
const (
	OV7670ProductID        = 0x7673
	OmniVisionManufacturer = 0x7FA2
)

// IsOV7670 reports whether the IDs match an OmniVision OV7670.
func (id SensorID) IsOV7670() bool {
	return id.ProductID == OV7670ProductID && id.ManufacturerID == OmniVisionManufacturer
}

func (id SensorID) String() string {
	return fmt.Sprintf("PID=0x%04X MID=0x%04X", id.ProductID, id.ManufacturerID)
}
