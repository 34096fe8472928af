package console

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/moffa90/go-ov7670/imagefile"
	"github.com/moffa90/go-ov7670/protocol"
	"github.com/moffa90/go-ov7670/regfile"
	"github.com/moffa90/go-ov7670/rgb565"
)

// ErrQuit is returned by Dispatch for "quit" and "exit".
var ErrQuit = errors.New("quit")

// Camera is the subset of *camera.Camera the shell drives.
type Camera interface {
	FrameSpec() protocol.FrameSpec
	ReadRegister(ctx context.Context, reg int) (byte, error)
	WriteRegister(ctx context.Context, reg, value int) error
	WriteRegisters(ctx context.Context, regs []protocol.RegisterValue) error
	SetBit(ctx context.Context, reg, bit int) error
	ClearBit(ctx context.Context, reg, bit int) error
	GetBit(ctx context.Context, reg, bit int) (int, error)
	SetHFlip(ctx context.Context, on bool) error
	SetVFlip(ctx context.Context, on bool) error
	ReadSensorID(ctx context.Context) (*protocol.SensorID, error)
	Capture(ctx context.Context) (*rgb565.Image, error)
}

// Command is one shell command.
type Command struct {
	Name        string
	Usage       string
	MinArgs     int
	MaxArgs     int
	Description string
	Handler     func(ctx context.Context, s *Shell, args []string) error
}

// UsageError is returned when a command gets the wrong number of arguments.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// commands is filled in init because "help" lists the table itself.
var commands map[string]Command

func init() {
	commands = map[string]Command{
		"read": {
			Name: "read", Usage: "read <reg>", MinArgs: 1, MaxArgs: 1,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				reg, err := parseHex("register", args[0])
				if err != nil {
					return err
				}
				v, err := s.cam.ReadRegister(ctx, reg)
				if err != nil {
					return err
				}
				s.printf("0x%02X = 0x%02X (%08b)\n", reg, v, v)
				return nil
			},
			Description: "Read a register",
		},
		"write": {
			Name: "write", Usage: "write <reg> <value>", MinArgs: 2, MaxArgs: 2,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				reg, err := parseHex("register", args[0])
				if err != nil {
					return err
				}
				value, err := parseHex("value", args[1])
				if err != nil {
					return err
				}
				return s.cam.WriteRegister(ctx, reg, value)
			},
			Description: "Write a register",
		},
		"setbit": {
			Name: "setbit", Usage: "setbit <reg> <bit>", MinArgs: 2, MaxArgs: 2,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				reg, bit, err := parseRegBit(args)
				if err != nil {
					return err
				}
				return s.cam.SetBit(ctx, reg, bit)
			},
			Description: "Set one bit of a register",
		},
		"clearbit": {
			Name: "clearbit", Usage: "clearbit <reg> <bit>", MinArgs: 2, MaxArgs: 2,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				reg, bit, err := parseRegBit(args)
				if err != nil {
					return err
				}
				return s.cam.ClearBit(ctx, reg, bit)
			},
			Description: "Clear one bit of a register",
		},
		"getbit": {
			Name: "getbit", Usage: "getbit <reg> <bit>", MinArgs: 2, MaxArgs: 2,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				reg, bit, err := parseRegBit(args)
				if err != nil {
					return err
				}
				v, err := s.cam.GetBit(ctx, reg, bit)
				if err != nil {
					return err
				}
				s.printf("0x%02X bit %d = %d\n", reg, bit, v)
				return nil
			},
			Description: "Print one bit of a register",
		},
		"hflip": {
			Name: "hflip", Usage: "hflip <on|off>", MinArgs: 1, MaxArgs: 1,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				on, err := parseSwitch(args[0])
				if err != nil {
					return err
				}
				return s.cam.SetHFlip(ctx, on)
			},
			Description: "Mirror the image horizontally",
		},
		"vflip": {
			Name: "vflip", Usage: "vflip <on|off>", MinArgs: 1, MaxArgs: 1,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				on, err := parseSwitch(args[0])
				if err != nil {
					return err
				}
				return s.cam.SetVFlip(ctx, on)
			},
			Description: "Flip the image vertically",
		},
		"id": {
			Name: "id", Usage: "id", MinArgs: 0, MaxArgs: 0,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				id, err := s.cam.ReadSensorID(ctx)
				if err != nil {
					return err
				}
				if id.IsOV7670() {
					s.printf("%s (OV7670)\n", id)
				} else {
					s.printf("%s (unknown sensor)\n", id)
				}
				return nil
			},
			Description: "Read the sensor identification registers",
		},
		"capture": {
			Name: "capture", Usage: "capture [file]", MinArgs: 0, MaxArgs: 1,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				var path string
				if len(args) == 1 {
					path = args[0]
				} else {
					path = filepath.Join(s.config.Dir, imagefile.DefaultFilename(s.cam.FrameSpec().String(), time.Now()))
				}
				// validate the name before spending a capture on it
				if _, err := imagefile.FormatFromPath(path); err != nil {
					return err
				}

				start := time.Now()
				img, err := s.cam.Capture(ctx)
				if err != nil {
					return err
				}
				if err := imagefile.Save(path, img); err != nil {
					return err
				}
				s.printf("saved %s (%dx%d, %s)\n", path, img.Width, img.Height, time.Since(start).Round(time.Millisecond))
				return nil
			},
			Description: "Capture a frame and save it (png, jpg, bmp, tiff)",
		},
		"load": {
			Name: "load", Usage: "load <file>", MinArgs: 1, MaxArgs: 1,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				regs, err := regfile.Parse(args[0])
				if err != nil {
					return err
				}
				if err := s.cam.WriteRegisters(ctx, regs); err != nil {
					return err
				}
				s.printf("wrote %d registers\n", len(regs))
				return nil
			},
			Description: "Write a register list file",
		},
		"help": {
			Name: "help", Usage: "help", MinArgs: 0, MaxArgs: 0,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				for _, name := range Names() {
					c := commands[name]
					s.printf("  %-22s %s\n", c.Usage, c.Description)
				}
				return nil
			},
			Description: "List commands",
		},
		"quit": {
			Name: "quit", Usage: "quit", MinArgs: 0, MaxArgs: 0,
			Handler: func(ctx context.Context, s *Shell, args []string) error {
				return ErrQuit
			},
			Description: "Leave the shell",
		},
	}
}

// Names returns the sorted command names.
func Names() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseHex parses a hex number with an optional 0x prefix. Range checks are
// left to the camera so every entry point reports them the same way.
func parseHex(name, s string) (int, error) {
	t := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseInt(t, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: not hex", name, s)
	}
	return int(v), nil
}

func parseRegBit(args []string) (reg, bit int, err error) {
	if reg, err = parseHex("register", args[0]); err != nil {
		return 0, 0, err
	}
	bit, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid bit %q", args[1])
	}
	return reg, bit, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
