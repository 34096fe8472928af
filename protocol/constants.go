package protocol

// DefaultBaudRate is the UART speed the capture firmware configures.
const DefaultBaudRate = 1500000

// Command opcodes. Every command is a single opcode byte followed by a fixed
// number of parameter bytes; there is no length prefix, checksum or delimiter.
const (
	// CmdRegWrite writes one sensor register: [0xAA][REG][VALUE]
	CmdRegWrite = 0xAA

	// CmdRegRead reads one sensor register: [0xBB][REG], answered by 1 byte
	CmdRegRead = 0xBB

	// CmdCapture grabs a frame: [0xCC], answered by width*height*2 bytes
	CmdCapture = 0xCC
)

// Command frame sizes in bytes.
const (
	RegWriteCmdSize = 3
	RegReadCmdSize  = 2
	CaptureCmdSize  = 1

	// RegReadResponseSize is the size of the Register Read response (1 byte)
	RegReadResponseSize = 1
)

// Parameter ranges. Registers and values are both 8 bits wide.
const (
	MinRegister = 0x00
	MaxRegister = 0xFF
	MinValue    = 0x00
	MaxValue    = 0xFF
	MaxBit      = 7
)

// BytesPerPixel is the RGB565 sample size on the wire.
const BytesPerPixel = 2

// OV7670 register addresses used by the helpers in this module.
const (
	// RegPID is the product ID MSB (reads 0x76)
	RegPID = 0x0A

	// RegVER is the product ID LSB (reads 0x73)
	RegVER = 0x0B

	// RegCOM7 holds the output format and the software reset bit
	RegCOM7 = 0x12

	// RegMIDH is the manufacturer ID high byte (reads 0x7F)
	RegMIDH = 0x1C

	// RegMIDL is the manufacturer ID low byte (reads 0xA2)
	RegMIDL = 0x1D

	// RegMVFP is the mirror/vertical-flip register
	RegMVFP = 0x1E
)

// Bits inside RegMVFP.
const (
	MVFPMirrorBit = 5
	MVFPVFlipBit  = 4
)
