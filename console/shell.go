package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/moffa90/go-ov7670/camera"
)

// Config holds the Shell configuration.
type Config struct {
	// Output receives command output (default os.Stdout)
	Output io.Writer

	// Dir is where "capture" saves frames when no file is given
	Dir string

	// HistoryFile persists line history between sessions ("" = none)
	HistoryFile string

	// Prompt is printed before each line
	Prompt string
}

// Option is a functional option for configuring the Shell.
type Option func(*Config)

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(c *Config) {
		if w != nil {
			c.Output = w
		}
	}
}

// WithCaptureDir sets the directory for captures saved without a name.
func WithCaptureDir(dir string) Option {
	return func(c *Config) {
		c.Dir = dir
	}
}

// WithHistoryFile enables persistent history.
func WithHistoryFile(path string) Option {
	return func(c *Config) {
		c.HistoryFile = path
	}
}

// Shell is an interactive register console for one camera.
type Shell struct {
	cam    Camera
	config Config
}

// New creates a Shell for cam.
func New(cam Camera, opts ...Option) *Shell {
	if cam == nil {
		panic("camera cannot be nil")
	}

	cfg := Config{
		Output: os.Stdout,
		Dir:    ".",
		Prompt: "ov7670> ",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Shell{cam: cam, config: cfg}
}

// Dispatch runs one command line. Empty lines are ignored. It returns ErrQuit
// for "quit" and "exit", a UsageError on a wrong argument count, and the
// command's own error otherwise.
func (s *Shell) Dispatch(ctx context.Context, line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}

	name := strings.ToLower(tokens[0])
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (type \"help\")", tokens[0])
	}

	args := tokens[1:]
	if len(args) < cmd.MinArgs || len(args) > cmd.MaxArgs {
		return &UsageError{Usage: cmd.Usage}
	}
	return cmd.Handler(ctx, s, args)
}

// Run reads lines until quit, Ctrl-C, Ctrl-D or ctx ends. Command errors
// are printed and the session continues, except device I/O errors: those
// end the session and are returned, since the connection is no longer usable.
func (s *Shell) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	s.loadHistory(line)
	defer s.saveHistory(line)

	s.printf("Interactive mode, type \"help\" for commands, Ctrl-D to quit.\n")
	for ctx.Err() == nil {
		input, err := line.Prompt(s.config.Prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			s.printf("\n")
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		err = s.Dispatch(ctx, input)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			s.printf("error: %v\n", err)
		}
		// the link is gone; later commands would only hit the dead device
		if errors.Is(err, camera.ErrIO) || errors.Is(err, camera.ErrClosed) {
			return err
		}
	}
	return nil
}

func complete(line string) (c []string) {
	prefix := strings.ToLower(line)
	for _, name := range append(Names(), "exit") {
		if strings.HasPrefix(name, prefix) {
			c = append(c, name)
		}
	}
	return
}

func (s *Shell) loadHistory(line *liner.State) {
	if s.config.HistoryFile == "" {
		return
	}
	if f, err := os.Open(s.config.HistoryFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
}

func (s *Shell) saveHistory(line *liner.State) {
	if s.config.HistoryFile == "" {
		return
	}
	if f, err := os.Create(s.config.HistoryFile); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}

func (s *Shell) printf(format string, a ...interface{}) {
	fmt.Fprintf(s.config.Output, format, a...)
}
