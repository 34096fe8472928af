package protocol

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestArgumentError(t *testing.T) {
	err := &ArgumentError{Name: "reg", Value: 0x100, Min: 0x00, Max: 0xFF}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "reg=0x100") {
		t.Errorf("error message should contain the rejected value, got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "0x00-0xFF") {
		t.Errorf("error message should contain the range, got: %s", errMsg)
	}

	wrapped := fmt.Errorf("write register: %w", err)
	if !errors.Is(wrapped, ErrInvalidArgument) {
		t.Error("wrapped ArgumentError should match ErrInvalidArgument")
	}
	if !IsArgumentError(wrapped) {
		t.Error("IsArgumentError should see through wrapping")
	}
}

func TestArgumentErrorNegative(t *testing.T) {
	err := CheckRegister(-3)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "reg=-3") {
		t.Errorf("got: %s", err)
	}
}

func TestIsArgumentErrorOther(t *testing.T) {
	if IsArgumentError(errors.New("other")) {
		t.Error("IsArgumentError(other) = true")
	}
	if IsArgumentError(nil) {
		t.Error("IsArgumentError(nil) = true")
	}
}
