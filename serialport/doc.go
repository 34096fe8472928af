// Package serialport opens the serial line to the OV7670 capture firmware.
//
// Ports are opened 8N1 at 1,500,000 baud with a bounded read timeout, so a
// stalled device shows up as a Read returning (0, nil) instead of blocking
// forever. A *Port satisfies camera.Transport.
//
//	port, err := serialport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err) // *ConnectionError
//	}
//	cam, err := camera.New(port, protocol.QVGA)
//
// List enumerates the ports present on the host, with USB details where the
// OS provides them.
package serialport
