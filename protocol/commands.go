package protocol

// BuildRegWriteCmd constructs a Register Write command frame.
//
// Frame structure:
//
//	[0xAA][REG][VALUE]
//
// The device sends no response. Returns an ArgumentError if reg or value
// does not fit in a byte.
func BuildRegWriteCmd(reg, value int) ([]byte, error) {
	if err := CheckRegister(reg); err != nil {
		return nil, err
	}
	if err := CheckValue(value); err != nil {
		return nil, err
	}

	frame := make([]byte, 0, RegWriteCmdSize)
	frame = append(frame, CmdRegWrite)
	frame = append(frame, byte(reg))
	frame = append(frame, byte(value))

	return frame, nil
}

// BuildRegReadCmd constructs a Register Read command frame.
//
// Frame structure:
//
//	[0xBB][REG]
//
// The device answers with exactly RegReadResponseSize bytes.
func BuildRegReadCmd(reg int) ([]byte, error) {
	if err := CheckRegister(reg); err != nil {
		return nil, err
	}

	frame := make([]byte, 0, RegReadCmdSize)
	frame = append(frame, CmdRegRead)
	frame = append(frame, byte(reg))

	return frame, nil
}

// BuildCaptureCmd constructs a Capture command frame.
//
// Frame structure:
//
//	[0xCC]
//
// The device answers with FrameSpec.ByteSize() bytes of raw RGB565 data,
// using whatever resolution the sensor is currently configured for.
func BuildCaptureCmd() []byte {
	return []byte{CmdCapture}
}

// BuildRegWriteListCmds builds one Register Write frame per entry, in order.
func BuildRegWriteListCmds(regs []RegisterValue) ([][]byte, error) {
	frames := make([][]byte, 0, len(regs))
	for _, rv := range regs {
		frame, err := BuildRegWriteCmd(int(rv.Reg), int(rv.Value))
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
