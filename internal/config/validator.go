package config

import (
	"fmt"
	"time"

	"github.com/moffa90/go-ov7670/imagefile"
	"github.com/moffa90/go-ov7670/protocol"
)

// Validate checks if the configuration is valid
func Validate(cfg *Config) error {
	// Validate serial line
	if !cfg.Simulate && cfg.Serial.Port == "" {
		return fmt.Errorf("serial.port is required")
	}
	if cfg.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be > 0")
	}
	if cfg.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("serial.read_timeout must be > 0")
	}
	if cfg.Serial.ReadTimeout > 10*time.Second {
		return fmt.Errorf("serial.read_timeout %v is too long (max 10s)", cfg.Serial.ReadTimeout)
	}

	// Validate camera
	if _, err := protocol.LookupResolution(cfg.Camera.Resolution); err != nil {
		return fmt.Errorf("camera.resolution: %w", err)
	}
	if cfg.Camera.CommandDelay < 0 {
		return fmt.Errorf("camera.command_delay must be >= 0")
	}

	// Validate stream
	if cfg.Stream.MinInterval < 0 {
		return fmt.Errorf("stream.min_interval must be >= 0")
	}
	if cfg.Stream.MaxConsecutiveFailures <= 0 {
		cfg.Stream.MaxConsecutiveFailures = 10 // default
	}
	if cfg.Stream.Buffer <= 0 {
		cfg.Stream.Buffer = 1
	}

	// Validate server
	format, err := imagefile.ParseFormat(cfg.Server.Format)
	if err != nil {
		return fmt.Errorf("server.format: %w", err)
	}
	if format != imagefile.JPEG && format != imagefile.PNG {
		return fmt.Errorf("server.format must be jpeg or png, got %s", format)
	}
	if cfg.Server.JPEGQuality < 1 || cfg.Server.JPEGQuality > 100 {
		return fmt.Errorf("server.jpeg_quality must be 1-100, got %d", cfg.Server.JPEGQuality)
	}
	if cfg.Server.Path == "" {
		cfg.Server.Path = "/ws"
	}

	// Validate log
	switch cfg.Log.Format {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("log.format must be auto, console or json, got %q", cfg.Log.Format)
	}

	return nil
}
