package stream

import "time"

// Defaults for the capture loop.
const (
	// DefaultMinInterval paces captures at no more than 20 attempts per second
	DefaultMinInterval = 50 * time.Millisecond

	// DefaultMaxConsecutiveFailures stops the loop when the device keeps stalling
	DefaultMaxConsecutiveFailures = 10

	// DefaultBuffer is the frame channel capacity
	DefaultBuffer = 4
)

// Logger is an optional logging interface, shaped like camera.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the Streamer configuration.
type Config struct {
	// MinInterval is the minimum time between capture starts (0 = back to back)
	MinInterval time.Duration

	// MaxConsecutiveFailures ends the loop after this many recoverable
	// failures in a row
	MaxConsecutiveFailures int

	// Buffer is the capacity of the Frames channel
	Buffer int

	// MaxFrames stops the loop after this many captured frames (0 = unlimited)
	MaxFrames int

	// Logger is used for logging operations (optional)
	Logger Logger
}

func defaultConfig() Config {
	return Config{
		MinInterval:            DefaultMinInterval,
		MaxConsecutiveFailures: DefaultMaxConsecutiveFailures,
		Buffer:                 DefaultBuffer,
	}
}

// Option is a functional option for configuring the Streamer.
type Option func(*Config)

// WithMinInterval sets the minimum time between capture starts.
func WithMinInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.MinInterval = d
		}
	}
}

// WithMaxConsecutiveFailures sets how many recoverable failures in a row
// end the loop.
func WithMaxConsecutiveFailures(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxConsecutiveFailures = n
		}
	}
}

// WithBuffer sets the Frames channel capacity.
func WithBuffer(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Buffer = n
		}
	}
}

// WithMaxFrames stops the loop after n captured frames.
func WithMaxFrames(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.MaxFrames = n
		}
	}
}

// WithLogger sets a logger for the capture loop.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
