// Package simulator is an in-memory stand-in for the OV7670 capture firmware.
//
// A Device satisfies camera.Transport, so the whole host stack can run
// without hardware: for tests, demos, and the CLI's -simulate flag. It can
// deliver frames in uneven chunks, stall mid-frame, or fail I/O on demand.
package simulator
