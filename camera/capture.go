package camera

import (
	"context"
	"time"

	"github.com/moffa90/go-ov7670/protocol"
	"github.com/moffa90/go-ov7670/rgb565"
)

// CaptureRaw issues a Capture command and assembles exactly
// FrameSpec().ByteSize() bytes.
//
// Reads are repeated, each asking only for the remaining byte count, until
// the frame is complete or a read returns nothing. In the latter case the
// partial data is dropped and an *IncompleteFrameError is returned; the
// natural retry unit is a whole new capture.
//
// The context is checked before the command is sent. Once sent, a capture
// cannot be aborted in-protocol and runs to completion or timeout.
func (c *Camera) CaptureRaw(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.captureRaw(ctx)
}

func (c *Camera) captureRaw(ctx context.Context) ([]byte, error) {
	if err := c.sendCommand(ctx, protocol.BuildCaptureCmd()); err != nil {
		return nil, err
	}

	startTime := time.Now()
	expected := c.spec.ByteSize()

	// Fresh buffer per attempt: nothing from a previous frame can leak in.
	buf := make([]byte, expected)
	received, err := c.readFull("read frame", buf, func(received, chunks int) {
		c.reportProgress(Progress{
			BytesReceived: received,
			BytesExpected: expected,
			Chunks:        chunks,
			Percentage:    float64(received) / float64(expected) * 100,
			ElapsedTime:   time.Since(startTime),
		})
	})
	if err != nil {
		return nil, err
	}

	if received != expected {
		c.logError("incomplete frame",
			"received", received,
			"expected", expected,
			"elapsed", time.Since(startTime).String(),
		)
		return nil, &IncompleteFrameError{Received: received, Expected: expected}
	}

	c.logDebug("frame assembled",
		"bytes", expected,
		"resolution", c.spec.String(),
		"elapsed", time.Since(startTime).String(),
	)
	return buf, nil
}

// Capture grabs one frame and decodes it to RGB888.
//
// Example:
//
//	img, err := cam.Capture(ctx)
//	if camera.IsRecoverable(err) {
//	    // timed out mid-frame; try again
//	}
func (c *Camera) Capture(ctx context.Context) (*rgb565.Image, error) {
	raw, err := c.CaptureRaw(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := rgb565.Decode(raw, c.spec)
	if err != nil {
		return nil, err
	}
	c.logDebug("frame decoded", "elapsed", time.Since(start).String())

	return img, nil
}
