package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-ov7670/protocol"
	"github.com/moffa90/go-ov7670/serialport"
)

// Config is the CLI configuration file.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Camera CameraConfig `yaml:"camera"`
	Stream StreamConfig `yaml:"stream"`
	Server ServerConfig `yaml:"server"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`

	// Simulate replaces the serial port with the in-memory device
	Simulate bool `yaml:"simulate"`
}

// SerialConfig contains serial line settings
type SerialConfig struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"` // e.g. "1s", "500ms"
}

// CameraConfig contains sensor settings
type CameraConfig struct {
	Resolution   string        `yaml:"resolution"` // qcif, 160x120 (qqvga), qvga
	CommandDelay time.Duration `yaml:"command_delay"`
	InitRegs     string        `yaml:"init_registers"` // register list applied on connect (optional)
	HFlip        *bool         `yaml:"hflip,omitempty"`
	VFlip        *bool         `yaml:"vflip,omitempty"`
}

// StreamConfig contains live capture settings
type StreamConfig struct {
	MinInterval            time.Duration `yaml:"min_interval"`
	MaxConsecutiveFailures int           `yaml:"max_consecutive_failures"`
	Buffer                 int           `yaml:"buffer"` // frames queued for consumers
}

// ServerConfig contains websocket broadcaster settings
type ServerConfig struct {
	Listen      string `yaml:"listen"`
	Path        string `yaml:"path"`
	Format      string `yaml:"format"` // jpeg or png
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// OutputConfig contains still capture settings
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // auto, console, json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:        "/dev/ttyUSB0",
			BaudRate:    protocol.DefaultBaudRate,
			ReadTimeout: serialport.DefaultReadTimeout,
		},
		Camera: CameraConfig{
			Resolution: protocol.DefaultResolution,
		},
		Stream: StreamConfig{
			MinInterval:            50 * time.Millisecond,
			MaxConsecutiveFailures: 10,
			Buffer:                 4,
		},
		Server: ServerConfig{
			Listen:      ":8080",
			Path:        "/ws",
			Format:      "jpeg",
			JPEGQuality: 80,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults. Keys missing
// from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FrameSpec resolves the configured resolution.
func (c *Config) FrameSpec() (protocol.FrameSpec, error) {
	return protocol.LookupResolution(c.Camera.Resolution)
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
