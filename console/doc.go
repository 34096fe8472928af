// Package console provides an interactive shell for poking at sensor
// registers and grabbing frames.
//
//	ov7670> id
//	PID=0x7673 MID=0x7FA2 (OV7670)
//	ov7670> setbit 1e 5
//	ov7670> capture mirrored.png
//
// Numbers are hex with an optional 0x prefix; bit indexes are decimal.
package console
