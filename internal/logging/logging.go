// Package logging builds the CLI's zerolog logger and adapts it to the
// key-value Logger interface the library packages accept.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options selects level and output shape.
type Options struct {
	// Level is a zerolog level name: debug, info, warn, error (default info)
	Level string

	// Format is "console", "json" or "auto" (console when Output is a terminal)
	Format string

	// Output defaults to os.Stderr
	Output io.Writer
}

// New returns a configured zerolog logger.
func New(opts Options) (zerolog.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	switch opts.Format {
	case "", "auto":
		if isTerminal(out) {
			out = consoleWriter(out)
		}
	case "console":
		out = consoleWriter(out)
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q (use console, json or auto)", opts.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func consoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: !isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Adapter satisfies camera.Logger and stream.Logger on top of zerolog.
type Adapter struct {
	log zerolog.Logger
}

// NewAdapter wraps l. A component name, if given, is attached to every event.
func NewAdapter(l zerolog.Logger, component string) *Adapter {
	if component != "" {
		l = l.With().Str("component", component).Logger()
	}
	return &Adapter{log: l}
}

// Debug logs at debug level.
func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	a.log.Debug().Fields(keysAndValues).Msg(msg)
}

// Info logs at info level.
func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	a.log.Info().Fields(keysAndValues).Msg(msg)
}

// Error logs at error level.
func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	a.log.Error().Fields(keysAndValues).Msg(msg)
}
