package camera

import "time"

// Config holds the camera configuration.
type Config struct {
	// ProgressCallback is called while a frame is assembled (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// CommandDelay is an optional pause after each command is written
	CommandDelay time.Duration

	// ResetBuffers discards stale transport bytes before every command.
	// Disable only for transports that cannot flush.
	ResetBuffers bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ResetBuffers: true,
	}
}

// Option is a functional option for configuring the Camera.
type Option func(*Config)

// WithProgressCallback sets a callback function to track frame assembly.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for camera operations.
//
// Example:
//
//	cam, _ := camera.New(port, spec, camera.WithLogger(slog.Default()))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCommandDelay inserts a pause after each command write. Slow bridges
// that drop bytes right after a write can use this; the reference firmware
// needs none.
func WithCommandDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.CommandDelay = delay
		}
	}
}

// WithResetBuffers enables or disables the buffer flush before each command.
// Default is true.
func WithResetBuffers(reset bool) Option {
	return func(c *Config) {
		c.ResetBuffers = reset
	}
}
