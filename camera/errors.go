package camera

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrIncompleteFrame is matched by IncompleteFrameError. Recoverable:
	// the caller may issue another capture.
	ErrIncompleteFrame = errors.New("incomplete frame")

	// ErrNoResponse means a register read timed out without a byte.
	ErrNoResponse = errors.New("no response from device")

	// ErrIO is matched by IOError. Fatal: the session should be closed.
	ErrIO = errors.New("device I/O error")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("camera is closed")
)

// IncompleteFrameError indicates that the transport went quiet before a
// whole frame arrived. No image is returned with this error.
type IncompleteFrameError struct {
	Received int
	Expected int
}

func (e *IncompleteFrameError) Error() string {
	return fmt.Sprintf("incomplete frame: received %d of %d bytes", e.Received, e.Expected)
}

// Is matches ErrIncompleteFrame.
func (e *IncompleteFrameError) Is(target error) bool {
	return target == ErrIncompleteFrame
}

// IOError wraps a transport failure (disconnect, closed port, short write).
type IOError struct {
	// Op is the step that failed ("write", "read frame", "reset input buffer", ...)
	Op string

	// Err is the underlying transport error
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: device I/O error: %v", e.Op, e.Err)
}

// Unwrap returns the transport error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is matches ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// IsRecoverable reports whether an operation that failed with err may simply
// be retried on the same connection.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrIncompleteFrame) || errors.Is(err, ErrNoResponse)
}

// IsIncompleteFrame returns true if the error is (or wraps) an IncompleteFrameError.
func IsIncompleteFrame(err error) bool {
	var e *IncompleteFrameError
	return errors.As(err, &e)
}
