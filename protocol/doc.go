// Package protocol implements the serial command protocol of the OV7670
// capture firmware.
//
// This package provides functions to build command frames and parse response
// frames. It performs no I/O.
//
// # Protocol Overview
//
// Commands are a single opcode byte followed by fixed parameters:
//
//	Register write: [0xAA][REG][VALUE]   no response
//	Register read:  [0xBB][REG]          response: [VALUE]
//	Capture:        [0xCC]               response: width*height*2 bytes RGB565
//
// There is no length prefix, checksum, acknowledgment or delimiter. Message
// boundaries are implied by sizes known to both sides, so the host must
// discard stale bytes before each command to stay in sync.
//
// # Command Builders
//
// Use the Build* functions to create command frames:
//
//	frame, err := protocol.BuildRegWriteCmd(protocol.RegMVFP, 0x30)
//	frame, err := protocol.BuildRegReadCmd(protocol.RegPID)
//	frame := protocol.BuildCaptureCmd()
//
// Out-of-range parameters are rejected with an ArgumentError before a frame
// is produced:
//
//	_, err := protocol.BuildRegReadCmd(0x100)
//	errors.Is(err, protocol.ErrInvalidArgument) // true
//
// # Frame Geometry
//
// FrameSpec describes the capture payload. Presets are looked up by name:
//
//	spec, err := protocol.LookupResolution("qvga") // 320x240, 153600 bytes
package protocol
