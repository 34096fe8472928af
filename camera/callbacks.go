package camera

import "time"

// Progress contains information about an in-flight capture.
// Passed to ProgressCallback after every chunk read from the transport.
type Progress struct {
	// BytesReceived is the number of frame bytes assembled so far
	BytesReceived int

	// BytesExpected is the full frame size (width*height*2)
	BytesExpected int

	// Chunks is the number of non-empty reads so far
	Chunks int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the capture command was sent
	ElapsedTime time.Duration
}

// ProgressCallback is called during frame assembly to report progress.
// Implementations should return quickly: the transport is not read while the
// callback runs.
//
// Example:
//
//	cam, _ := camera.New(port, protocol.QVGA,
//	    camera.WithProgressCallback(func(p camera.Progress) {
//	        fmt.Printf("\r%.0f%% (%d chunks)", p.Percentage, p.Chunks)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the camera.
// *slog.Logger satisfies it, as does the zerolog adapter in the CLI.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	cam, _ := camera.New(port, protocol.QVGA, camera.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
