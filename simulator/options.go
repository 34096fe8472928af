package simulator

import "github.com/moffa90/go-ov7670/protocol"

// Config holds the simulated device configuration.
type Config struct {
	// Spec is the frame geometry returned by captures (default QVGA)
	Spec protocol.FrameSpec

	// Pattern selects the generated test image
	Pattern Pattern

	// Frame, if set, is sent verbatim instead of a generated pattern
	Frame []byte

	// ChunkSizes cycles through per-Read size limits (0 = unlimited)
	ChunkSizes []int

	// Truncate cuts every capture response to this many bytes (negative = off)
	Truncate int

	// Registers overrides power-on register values
	Registers map[byte]byte

	// ReadErr and WriteErr make the respective calls fail
	ReadErr  error
	WriteErr error
}

func defaultConfig() Config {
	return Config{
		Spec:     protocol.QVGA,
		Pattern:  PatternColorBars,
		Truncate: -1,
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithFrameSpec sets the frame geometry returned by captures.
func WithFrameSpec(spec protocol.FrameSpec) Option {
	return func(c *Config) {
		c.Spec = spec
	}
}

// WithPattern selects the generated test image.
func WithPattern(p Pattern) Option {
	return func(c *Config) {
		c.Pattern = p
	}
}

// WithFrame makes every capture return raw verbatim.
func WithFrame(raw []byte) Option {
	return func(c *Config) {
		c.Frame = raw
	}
}

// WithChunkSizes limits successive reads to the given sizes, cycling.
//
// Example:
//
//	// 153600-byte QVGA frame in four uneven reads
//	simulator.WithChunkSizes(50000, 3, 100000, 3597)
func WithChunkSizes(sizes ...int) Option {
	return func(c *Config) {
		c.ChunkSizes = sizes
	}
}

// WithTruncate cuts every capture response to n bytes, simulating a device
// that stalls mid-frame.
func WithTruncate(n int) Option {
	return func(c *Config) {
		c.Truncate = n
	}
}

// WithRegister overrides one power-on register value.
func WithRegister(reg, value byte) Option {
	return func(c *Config) {
		if c.Registers == nil {
			c.Registers = make(map[byte]byte)
		}
		c.Registers[reg] = value
	}
}
