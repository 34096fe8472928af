package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every parameter validation failure.
// The device cannot detect malformed commands, so nothing is sent when a
// parameter is out of range.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError reports a command parameter outside its allowed range.
type ArgumentError struct {
	// Name is the parameter name ("reg", "value", "bit", ...)
	Name string

	// Value is the rejected value
	Value int

	// Min and Max bound the accepted range (inclusive)
	Min int
	Max int
}

func (e *ArgumentError) Error() string {
	value := fmt.Sprintf("0x%X", e.Value)
	if e.Value < 0 {
		value = fmt.Sprintf("%d", e.Value)
	}
	return fmt.Sprintf("invalid argument: %s=%s out of range 0x%02X-0x%02X",
		e.Name, value, e.Min, e.Max)
}

// Unwrap lets errors.Is match ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// IsArgumentError returns true if the error is (or wraps) an ArgumentError.
func IsArgumentError(err error) bool {
	var argErr *ArgumentError
	return errors.As(err, &argErr)
}

func checkRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &ArgumentError{Name: name, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// CheckRegister validates an 8-bit register address.
func CheckRegister(reg int) error {
	return checkRange("reg", reg, MinRegister, MaxRegister)
}

// CheckValue validates an 8-bit register value.
func CheckValue(value int) error {
	return checkRange("value", value, MinValue, MaxValue)
}

// CheckBit validates a bit index inside an 8-bit register.
func CheckBit(bit int) error {
	return checkRange("bit", bit, 0, MaxBit)
}
