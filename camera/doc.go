// Package camera provides a high-level API for driving an OV7670 capture device.
//
// # Overview
//
// This package runs the host side of the capture protocol:
//   - Writing and reading sensor registers
//   - Read-modify-write bit helpers (mirror, flip, ...)
//   - Assembling raw frames from bounded transport reads
//   - Decoding frames to RGB888 through package rgb565
//
// # Basic Usage
//
// The simplest way to grab a frame:
//
//	// User provides the byte link (see package serialport)
//	port, err := serialport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cam, err := camera.New(port, protocol.QVGA)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cam.Close()
//
//	img, err := cam.Capture(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration Options
//
// Customize behavior with functional options:
//
//	cam, err := camera.New(port, spec,
//	    camera.WithProgressCallback(progressFunc),
//	    camera.WithLogger(myLogger),
//	    camera.WithCommandDelay(2*time.Millisecond),
//	)
//
// # Register Helpers
//
//	err := cam.SetHFlip(ctx, true)
//	bit, err := cam.GetBit(ctx, protocol.RegMVFP, protocol.MVFPVFlipBit)
//	id, err := cam.ReadSensorID(ctx)
//
// Bit helpers always read the live register before writing it back. They are
// not atomic with respect to other clients of the same device; the firmware
// is assumed to have a single host.
//
// # Error Handling
//
// The package provides structured error types:
//   - protocol.ArgumentError: register, value or bit out of range (nothing was sent)
//   - IncompleteFrameError: the transport went quiet mid-frame (retry the capture)
//   - IOError: the transport failed (close the camera)
//
// Use IsRecoverable to tell the two runtime cases apart:
//
//	img, err := cam.Capture(ctx)
//	switch {
//	case err == nil:
//	    show(img)
//	case camera.IsRecoverable(err):
//	    // skip this frame
//	default:
//	    return err
//	}
//
// # Hardware Independence
//
// This package does NOT open serial ports. Anything implementing Transport
// works: a go.bug.st/serial port, a network bridge, or the in-memory
// simulator in package simulator.
package camera
