package serialport

import (
	"time"

	"github.com/moffa90/go-ov7670/protocol"
)

// DefaultReadTimeout bounds every Read. A capture that stalls longer than
// this mid-frame is reported as incomplete.
const DefaultReadTimeout = time.Second

// Config holds the serial line settings.
type Config struct {
	// BaudRate must match the firmware (default 1,500,000)
	BaudRate int

	// ReadTimeout bounds each Read; 0.5 to 2 seconds works well
	ReadTimeout time.Duration
}

func defaultConfig() Config {
	return Config{
		BaudRate:    protocol.DefaultBaudRate,
		ReadTimeout: DefaultReadTimeout,
	}
}

// Option is a functional option for configuring the serial line.
type Option func(*Config)

// WithBaudRate overrides the line speed.
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}

// WithReadTimeout sets how long a single Read waits for data.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}
