package simulator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/moffa90/go-ov7670/protocol"
	"github.com/moffa90/go-ov7670/rgb565"
)

func drain(t *testing.T, d *Device, size int) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, size)
	for {
		n, err := d.Read(buf)
		if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		if n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
	}
}

func TestPowerOnRegisters(t *testing.T) {
	d := New()

	tests := []struct {
		reg  byte
		want byte
	}{
		{protocol.RegPID, 0x76},
		{protocol.RegVER, 0x73},
		{protocol.RegMIDH, 0x7F},
		{protocol.RegMIDL, 0xA2},
		{protocol.RegMVFP, 0x01},
	}
	for _, tt := range tests {
		if got := d.Register(tt.reg); got != tt.want {
			t.Errorf("Register(0x%02X) = 0x%02X, want 0x%02X", tt.reg, got, tt.want)
		}
	}

	d = New(WithRegister(protocol.RegPID, 0x11))
	if got := d.Register(protocol.RegPID); got != 0x11 {
		t.Errorf("overridden PID = 0x%02X, want 0x11", got)
	}
}

func TestRegisterWriteRead(t *testing.T) {
	d := New()

	if _, err := d.Write([]byte{protocol.CmdRegWrite, 0x12, 0x80}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if got := d.Register(0x12); got != 0x80 {
		t.Errorf("register 0x12 = 0x%02X, want 0x80", got)
	}

	// write produces no response
	if out := drain(t, d, 16); len(out) != 0 {
		t.Errorf("write produced %d response bytes", len(out))
	}

	if _, err := d.Write([]byte{protocol.CmdRegRead, 0x12}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out := drain(t, d, 16)
	if !bytes.Equal(out, []byte{0x80}) {
		t.Errorf("read response = % X, want 80", out)
	}
}

func TestSplitCommandWrites(t *testing.T) {
	d := New()

	// A command split across writes executes once complete.
	d.Write([]byte{protocol.CmdRegWrite})
	d.Write([]byte{0x40})
	if len(d.Commands()) != 0 {
		t.Fatal("partial command executed early")
	}
	d.Write([]byte{0x10})

	if got := d.Register(0x40); got != 0x10 {
		t.Errorf("register 0x40 = 0x%02X, want 0x10", got)
	}
}

func TestUnknownOpcodeSkipped(t *testing.T) {
	d := New()
	d.Write([]byte{0x55, 0x99, protocol.CmdRegWrite, 0x20, 0x33})

	if got := d.Register(0x20); got != 0x33 {
		t.Errorf("register 0x20 = 0x%02X, want 0x33", got)
	}
	cmds := d.Commands()
	if len(cmds) != 1 || cmds[0].Opcode != protocol.CmdRegWrite {
		t.Errorf("Commands() = %+v, want one register write", cmds)
	}
}

func TestCaptureChunks(t *testing.T) {
	spec := protocol.FrameSpec{Width: 8, Height: 4}
	d := New(WithFrameSpec(spec), WithChunkSizes(5, 1, 20))

	d.Write(protocol.BuildCaptureCmd())

	var sizes []int
	var out []byte
	buf := make([]byte, 64)
	for {
		n, _ := d.Read(buf)
		if n == 0 {
			break
		}
		sizes = append(sizes, n)
		out = append(out, buf[:n]...)
	}

	if len(out) != spec.ByteSize() {
		t.Fatalf("received %d bytes, want %d", len(out), spec.ByteSize())
	}
	want := []int{5, 1, 20, 5, 1, 20, 5, 1, 6}
	if len(sizes) != len(want) {
		t.Fatalf("chunk sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("chunk %d = %d, want %d", i, sizes[i], want[i])
		}
	}
	if !bytes.Equal(out, Render(spec, PatternColorBars, false, false)) {
		t.Error("frame bytes differ from rendered pattern")
	}
}

func TestCaptureTruncate(t *testing.T) {
	spec := protocol.FrameSpec{Width: 4, Height: 4}
	d := New(WithFrameSpec(spec), WithTruncate(10))

	d.Write(protocol.BuildCaptureCmd())
	if out := drain(t, d, 64); len(out) != 10 {
		t.Errorf("received %d bytes, want 10", len(out))
	}

	d.SetTruncate(-1)
	d.Write(protocol.BuildCaptureCmd())
	if out := drain(t, d, 64); len(out) != spec.ByteSize() {
		t.Errorf("received %d bytes, want %d", len(out), spec.ByteSize())
	}
}

func TestCaptureFixedFrame(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	d := New(WithFrame(raw))

	d.Write(protocol.BuildCaptureCmd())
	if out := drain(t, d, 64); !bytes.Equal(out, raw) {
		t.Errorf("received % X, want % X", out, raw)
	}
	if got := d.Stats().Captures; got != 1 {
		t.Errorf("Captures = %d, want 1", got)
	}
}

func TestCaptureFollowsMVFP(t *testing.T) {
	spec := protocol.FrameSpec{Width: 4, Height: 2}
	d := New(WithFrameSpec(spec), WithPattern(PatternCounter))

	// mirror and flip
	d.Write([]byte{protocol.CmdRegWrite, protocol.RegMVFP, 0x31})
	d.Write(protocol.BuildCaptureCmd())
	out := drain(t, d, 64)

	// first pixel is the last sample of the unflipped frame
	first := rgb565.FromBytes(out[0], out[1])
	if first != 7 {
		t.Errorf("first pixel = %d, want 7", first)
	}
}

func TestResetInputBufferDropsQueue(t *testing.T) {
	d := New()
	d.QueueResponse([]byte{0xDE, 0xAD})

	if err := d.ResetInputBuffer(); err != nil {
		t.Fatalf("ResetInputBuffer() error: %v", err)
	}
	if out := drain(t, d, 16); len(out) != 0 {
		t.Errorf("queue not flushed: % X", out)
	}
}

func TestInjectedErrors(t *testing.T) {
	d := New()
	boom := errors.New("cable unplugged")

	d.SetWriteError(boom)
	if _, err := d.Write([]byte{0xCC}); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want %v", err, boom)
	}
	d.SetWriteError(nil)

	d.SetReadError(boom)
	if _, err := d.Read(make([]byte, 1)); !errors.Is(err, boom) {
		t.Errorf("Read() error = %v, want %v", err, boom)
	}
}

func TestClose(t *testing.T) {
	d := New()
	d.Close()

	if !d.Closed() {
		t.Error("Closed() = false after Close")
	}
	if _, err := d.Write([]byte{0xCC}); !errors.Is(err, ErrClosed) {
		t.Errorf("Write() after Close error = %v, want ErrClosed", err)
	}
	if _, err := d.Read(make([]byte, 1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Read() after Close error = %v, want ErrClosed", err)
	}
}
