package simulator

import (
	"errors"
	"sync"

	"github.com/moffa90/go-ov7670/protocol"
)

// ErrClosed is returned by every call after Close.
var ErrClosed = errors.New("simulator: device closed")

// Device simulates the capture firmware behind a serial link.
//
// Written bytes are parsed exactly like the firmware main loop: an opcode,
// then its fixed parameters. Register writes update a 256-byte register file,
// register reads queue one byte, and captures queue a full frame. Unknown
// opcodes are skipped one byte at a time. Read drains the queue in chunks and
// returns (0, nil) when it is empty, like a serial port hitting its timeout.
//
// Device is safe for concurrent use.
type Device struct {
	mu     sync.Mutex
	config Config

	regs    [256]byte
	pending []byte
	out     []byte

	chunkIdx int
	stats    Stats
	commands []Command
	closed   bool
}

// Command is one parsed command as the device saw it.
type Command struct {
	Opcode byte
	Params []byte
}

// Stats counts calls made on the device.
type Stats struct {
	Writes       int
	Reads        int
	InputResets  int
	OutputResets int
	Captures     int
	BytesWritten int
	BytesRead    int
}

// Calls returns the total number of transport calls.
func (s Stats) Calls() int {
	return s.Writes + s.Reads + s.InputResets + s.OutputResets
}

// New creates a simulated device with OV7670 power-on identification registers.
//
// Example:
//
//	dev := simulator.New(
//	    simulator.WithFrameSpec(protocol.QQVGA),
//	    simulator.WithChunkSizes(4096, 1000, 7),
//	)
//	cam, _ := camera.New(dev, protocol.QQVGA)
func New(opts ...Option) *Device {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Device{config: cfg}
	d.regs[protocol.RegPID] = 0x76
	d.regs[protocol.RegVER] = 0x73
	d.regs[protocol.RegMIDH] = 0x7F
	d.regs[protocol.RegMIDL] = 0xA2
	d.regs[protocol.RegMVFP] = 0x01
	for reg, value := range cfg.Registers {
		d.regs[reg] = value
	}
	return d
}

// Write implements io.Writer.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Writes++
	if d.closed {
		return 0, ErrClosed
	}
	if d.config.WriteErr != nil {
		return 0, d.config.WriteErr
	}

	d.stats.BytesWritten += len(p)
	d.pending = append(d.pending, p...)
	d.process()
	return len(p), nil
}

// process executes every complete command in the pending buffer.
func (d *Device) process() {
	for len(d.pending) > 0 {
		cmd, params, n, err := protocol.ParseCommand(d.pending)
		if n == 0 {
			return
		}
		if err != nil {
			d.pending = d.pending[n:]
			continue
		}

		d.commands = append(d.commands, Command{Opcode: cmd, Params: append([]byte(nil), params...)})

		switch cmd {
		case protocol.CmdRegWrite:
			d.regs[params[0]] = params[1]
		case protocol.CmdRegRead:
			d.out = append(d.out, d.regs[params[0]])
		case protocol.CmdCapture:
			d.stats.Captures++
			d.out = append(d.out, d.frame()...)
		}
		d.pending = d.pending[n:]
	}
}

// frame returns the bytes sent for one capture, honoring truncation.
func (d *Device) frame() []byte {
	var raw []byte
	if d.config.Frame != nil {
		raw = d.config.Frame
	} else {
		mvfp := d.regs[protocol.RegMVFP]
		raw = Render(d.config.Spec, d.config.Pattern,
			mvfp&(1<<protocol.MVFPMirrorBit) != 0,
			mvfp&(1<<protocol.MVFPVFlipBit) != 0,
		)
	}

	if d.config.Truncate >= 0 && d.config.Truncate < len(raw) {
		raw = raw[:d.config.Truncate]
	}
	return raw
}

// Read implements io.Reader. Each call returns at most the next configured
// chunk size, and (0, nil) when nothing is queued.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Reads++
	if d.closed {
		return 0, ErrClosed
	}
	if d.config.ReadErr != nil {
		return 0, d.config.ReadErr
	}
	if len(d.out) == 0 {
		return 0, nil
	}

	n := len(p)
	if n > len(d.out) {
		n = len(d.out)
	}
	if sizes := d.config.ChunkSizes; len(sizes) > 0 {
		limit := sizes[d.chunkIdx%len(sizes)]
		d.chunkIdx++
		if limit > 0 && n > limit {
			n = limit
		}
	}

	copy(p, d.out[:n])
	d.out = d.out[n:]
	d.stats.BytesRead += n
	return n, nil
}

// ResetInputBuffer drops every queued response byte.
func (d *Device) ResetInputBuffer() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.InputResets++
	if d.closed {
		return ErrClosed
	}
	d.out = nil
	return nil
}

// ResetOutputBuffer is a no-op: writes are processed synchronously.
func (d *Device) ResetOutputBuffer() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.OutputResets++
	if d.closed {
		return ErrClosed
	}
	return nil
}

// Close implements io.Closer.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (d *Device) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Register returns the current value of a register.
func (d *Device) Register(reg byte) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[reg]
}

// SetRegister changes a register behind the host's back.
func (d *Device) SetRegister(reg, value byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[reg] = value
}

// Stats returns a snapshot of the call counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Commands returns every command parsed so far, in order.
func (d *Device) Commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Command(nil), d.commands...)
}

// QueueResponse appends raw bytes to the read queue, e.g. to plant stale
// data that the host must flush.
func (d *Device) QueueResponse(b []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out = append(d.out, b...)
}

// SetReadError makes every later Read fail with err (nil clears it).
func (d *Device) SetReadError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config.ReadErr = err
}

// SetWriteError makes every later Write fail with err (nil clears it).
func (d *Device) SetWriteError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config.WriteErr = err
}

// SetTruncate limits every later capture response to n bytes (negative disables).
func (d *Device) SetTruncate(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config.Truncate = n
}
