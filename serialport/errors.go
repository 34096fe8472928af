package serialport

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// ConnectionError indicates that the serial port could not be opened or
// configured.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %s", e.Path, describe(e.Err))
}

// Unwrap returns the driver error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError returns true if the error is (or wraps) a ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// portError extracts a driver error, which may arrive by value or by pointer.
func portError(err error) (serial.PortError, bool) {
	var ptr *serial.PortError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	var val serial.PortError
	if errors.As(err, &val) {
		return val, true
	}
	return serial.PortError{}, false
}

// describe turns driver error codes into short operator-facing text.
func describe(err error) string {
	portErr, ok := portError(err)
	if !ok {
		return err.Error()
	}

	switch portErr.Code() {
	case serial.PortNotFound:
		return "port not found"
	case serial.PortBusy:
		return "port busy (is another program using it?)"
	case serial.PermissionDenied:
		return "permission denied"
	case serial.InvalidSpeed:
		return "baud rate not supported by the adapter"
	case serial.InvalidTimeoutValue:
		return "invalid read timeout"
	default:
		return portErr.EncodedErrorString()
	}
}

// IsDisconnected reports whether err means the device went away: the port
// vanished, was closed, or the OS reports a dead link.
func IsDisconnected(err error) bool {
	if err == nil {
		return false
	}

	if portErr, ok := portError(err); ok {
		switch portErr.Code() {
		case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
			return true
		default:
			return false
		}
	}

	// OS-level errors that the driver does not wrap
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "device not configured") ||
		strings.Contains(msg, "input/output error") ||
		strings.Contains(msg, "no such device") ||
		strings.Contains(msg, "broken pipe")
}
