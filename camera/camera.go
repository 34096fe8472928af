package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/moffa90/go-ov7670/protocol"
)

// Transport is the byte link to the capture firmware.
//
// Read must be bounded: it returns whatever arrived within the transport's
// read timeout, and (0, nil) when nothing arrived. A go.bug.st/serial Port
// satisfies this interface directly.
type Transport interface {
	io.ReadWriter

	// ResetInputBuffer discards bytes received but not yet read
	ResetInputBuffer() error

	// ResetOutputBuffer discards bytes written but not yet transmitted
	ResetOutputBuffer() error
}

// Camera drives an OV7670 capture device over a Transport.
//
// The protocol is half-duplex with one outstanding command, so every public
// method holds the camera lock for its whole exchange. Camera is safe for
// concurrent use, but concurrent callers are simply serialized.
type Camera struct {
	mu        sync.Mutex
	transport Transport
	spec      protocol.FrameSpec
	config    Config
	closed    bool
}

// New creates a Camera that owns transport and captures frames of the given
// geometry. The geometry is fixed for the lifetime of the Camera.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cam, err := camera.New(port, protocol.QVGA, camera.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cam.Close()
func New(transport Transport, spec protocol.FrameSpec, opts ...Option) (*Camera, error) {
	if transport == nil {
		panic("transport cannot be nil")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Camera{
		transport: transport,
		spec:      spec,
		config:    cfg,
	}, nil
}

// FrameSpec returns the frame geometry this camera captures.
func (c *Camera) FrameSpec() protocol.FrameSpec {
	return c.spec
}

// Close releases the transport if it implements io.Closer. It is safe to
// call more than once; later calls return nil.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if closer, ok := c.transport.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close transport: %w", err)
		}
	}
	c.logDebug("camera closed")
	return nil
}

// WriteRegister writes one sensor register. The device sends no acknowledgment.
func (c *Camera) WriteRegister(ctx context.Context, reg, value int) error {
	cmd, err := protocol.BuildRegWriteCmd(reg, value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sendCommand(ctx, cmd)
}

// ReadRegister reads one sensor register. Every call queries the device;
// nothing is cached.
func (c *Camera) ReadRegister(ctx context.Context, reg int) (byte, error) {
	cmd, err := protocol.BuildRegReadCmd(reg)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.readRegister(ctx, cmd)
}

// readRegister runs a register read exchange. Caller holds c.mu.
func (c *Camera) readRegister(ctx context.Context, cmd []byte) (byte, error) {
	if err := c.sendCommand(ctx, cmd); err != nil {
		return 0, err
	}

	buf := make([]byte, protocol.RegReadResponseSize)
	n, err := c.readFull("read register", buf, nil)
	if err != nil {
		return 0, err
	}
	if n < len(buf) {
		return 0, fmt.Errorf("read register 0x%02X: %w", cmd[1], ErrNoResponse)
	}

	value, err := protocol.ParseRegReadResponse(buf)
	if err != nil {
		return 0, err
	}

	c.logDebug("register read", "reg", fmt.Sprintf("0x%02X", cmd[1]), "value", fmt.Sprintf("0x%02X", value))
	return value, nil
}

// sendCommand flushes stale bytes and writes one command frame.
// Caller holds c.mu.
func (c *Camera) sendCommand(ctx context.Context, cmd []byte) error {
	if c.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	// Stale bytes from an aborted exchange must not reach the next response.
	if c.config.ResetBuffers {
		if err := c.transport.ResetOutputBuffer(); err != nil {
			return &IOError{Op: "reset output buffer", Err: err}
		}
		if err := c.transport.ResetInputBuffer(); err != nil {
			return &IOError{Op: "reset input buffer", Err: err}
		}
	}

	n, err := c.transport.Write(cmd)
	if err != nil {
		return &IOError{Op: "write " + protocol.CommandName(cmd[0]), Err: err}
	}
	if n != len(cmd) {
		return &IOError{Op: "write " + protocol.CommandName(cmd[0]), Err: io.ErrShortWrite}
	}

	if c.config.CommandDelay > 0 {
		time.Sleep(c.config.CommandDelay)
	}

	return nil
}

// readFull fills buf with successive bounded reads, each asking only for the
// bytes still missing. It stops early, without error, on the first read that
// returns nothing. Caller holds c.mu.
func (c *Camera) readFull(op string, buf []byte, onChunk func(received, chunks int)) (int, error) {
	received, chunks := 0, 0
	for received < len(buf) {
		n, err := c.transport.Read(buf[received:])
		if n > len(buf)-received {
			n = len(buf) - received
		}
		received += n

		if err != nil && !errors.Is(err, io.EOF) {
			return received, &IOError{Op: op, Err: err}
		}
		if n == 0 {
			break
		}

		chunks++
		if onChunk != nil {
			onChunk(received, chunks)
		}
	}
	return received, nil
}

// reportProgress calls the progress callback if configured.
func (c *Camera) reportProgress(progress Progress) {
	if c.config.ProgressCallback != nil {
		c.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Camera) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Camera) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Camera) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
