package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-ov7670/camera"
	"github.com/moffa90/go-ov7670/internal/config"
	"github.com/moffa90/go-ov7670/internal/logging"
	"github.com/moffa90/go-ov7670/regfile"
	"github.com/moffa90/go-ov7670/serialport"
	"github.com/moffa90/go-ov7670/simulator"
)

// commonFlags are accepted by every command that talks to the camera.
// Flags given on the command line override the config file.
type commonFlags struct {
	configPath string
	port       string
	baud       int
	timeout    time.Duration
	resolution string
	simulate   bool
	pattern    string
	logLevel   string
	logFormat  string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	f := &commonFlags{}
	def := config.Default()

	fs.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	fs.StringVar(&f.port, "port", def.Serial.Port, "Serial device")
	fs.IntVar(&f.baud, "baud", def.Serial.BaudRate, "Baud rate")
	fs.DurationVar(&f.timeout, "timeout", def.Serial.ReadTimeout, "Serial read timeout")
	fs.StringVar(&f.resolution, "resolution", def.Camera.Resolution, "Frame size: qcif, 160x120 (qqvga), qvga")
	fs.BoolVar(&f.simulate, "simulate", false, "Use the in-memory device instead of a serial port")
	fs.StringVar(&f.pattern, "pattern", simulator.PatternColorBars.String(), "Simulated test pattern: bars, gradient, counter")
	fs.StringVar(&f.logLevel, "log-level", def.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", def.Log.Format, "Log format: auto, console, json")
	return f
}

// env is the resolved configuration of one command invocation.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	pattern simulator.Pattern
}

// resolve loads the config file, applies explicitly set flags and builds
// the logger.
func resolve(fs *flag.FlagSet, f *commonFlags) (*env, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			cfg.Serial.Port = f.port
		case "baud":
			cfg.Serial.BaudRate = f.baud
		case "timeout":
			cfg.Serial.ReadTimeout = f.timeout
		case "resolution":
			cfg.Camera.Resolution = f.resolution
		case "simulate":
			cfg.Simulate = f.simulate
		case "log-level":
			cfg.Log.Level = f.logLevel
		case "log-format":
			cfg.Log.Format = f.logFormat
		}
	})

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pattern, err := simulator.ParsePattern(f.pattern)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, log: log, pattern: pattern}, nil
}

// openCamera connects to the device and applies the configured register
// setup. The caller owns the returned camera and must Close it.
func (e *env) openCamera(ctx context.Context, opts ...camera.Option) (*camera.Camera, error) {
	spec, err := e.cfg.FrameSpec()
	if err != nil {
		return nil, err
	}

	var transport camera.Transport
	if e.cfg.Simulate {
		transport = simulator.New(
			simulator.WithFrameSpec(spec),
			simulator.WithPattern(e.pattern),
			simulator.WithChunkSizes(4096, 1000),
		)
		e.log.Info().Str("pattern", e.pattern.String()).Msg("using simulated device")
	} else {
		port, err := serialport.Open(e.cfg.Serial.Port,
			serialport.WithBaudRate(e.cfg.Serial.BaudRate),
			serialport.WithReadTimeout(e.cfg.Serial.ReadTimeout),
		)
		if err != nil {
			return nil, err
		}
		transport = port
		e.log.Info().
			Str("port", port.Path()).
			Int("baud", e.cfg.Serial.BaudRate).
			Dur("timeout", e.cfg.Serial.ReadTimeout).
			Msg("serial port opened")
	}

	opts = append([]camera.Option{
		camera.WithLogger(logging.NewAdapter(e.log, "camera")),
		camera.WithCommandDelay(e.cfg.Camera.CommandDelay),
	}, opts...)

	cam, err := camera.New(transport, spec, opts...)
	if err != nil {
		if closer, ok := transport.(io.Closer); ok {
			closer.Close()
		}
		return nil, err
	}

	if err := e.applySetup(ctx, cam); err != nil {
		cam.Close()
		return nil, err
	}
	return cam, nil
}

func (e *env) applySetup(ctx context.Context, cam *camera.Camera) error {
	if path := e.cfg.Camera.InitRegs; path != "" {
		regs, err := regfile.Parse(path)
		if err != nil {
			return fmt.Errorf("init registers %s: %w", path, err)
		}
		if err := cam.WriteRegisters(ctx, regs); err != nil {
			return fmt.Errorf("init registers %s: %w", path, err)
		}
		e.log.Info().Str("file", path).Int("count", len(regs)).Msg("init registers written")
	}

	if on := e.cfg.Camera.HFlip; on != nil {
		if err := cam.SetHFlip(ctx, *on); err != nil {
			return fmt.Errorf("hflip: %w", err)
		}
	}
	if on := e.cfg.Camera.VFlip; on != nil {
		if err := cam.SetVFlip(ctx, *on); err != nil {
			return fmt.Errorf("vflip: %w", err)
		}
	}
	return nil
}
