package protocol

import "fmt"

// ParseRegReadResponse extracts the register value from a Register Read response.
//
// Data format (1 byte):
//
//	[VALUE]
func ParseRegReadResponse(data []byte) (byte, error) {
	if len(data) != RegReadResponseSize {
		return 0, fmt.Errorf("invalid data length for Register Read response: got %d bytes, expected %d",
			len(data), RegReadResponseSize)
	}

	return data[0], nil
}

// ParseCommand splits a received command frame into opcode and parameters.
// It is the device-side counterpart of the Build* functions and is used by
// the simulator and by tests that inspect what was written to a transport.
//
// Returns the number of bytes consumed. n is 0 when buf does not yet hold a
// complete command.
func ParseCommand(buf []byte) (cmd byte, params []byte, n int, err error) {
	if len(buf) == 0 {
		return 0, nil, 0, nil
	}

	cmd = buf[0]
	var size int
	switch cmd {
	case CmdRegWrite:
		size = RegWriteCmdSize
	case CmdRegRead:
		size = RegReadCmdSize
	case CmdCapture:
		size = CaptureCmdSize
	default:
		return cmd, nil, 1, fmt.Errorf("unknown command opcode 0x%02X", cmd)
	}

	if len(buf) < size {
		return cmd, nil, 0, nil
	}

	return cmd, buf[1:size], size, nil
}

// CommandName returns a human-readable name for an opcode.
func CommandName(cmd byte) string {
	switch cmd {
	case CmdRegWrite:
		return "register write"
	case CmdRegRead:
		return "register read"
	case CmdCapture:
		return "capture"
	default:
		return fmt.Sprintf("unknown command 0x%02X", cmd)
	}
}
