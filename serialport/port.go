package serialport

import (
	"fmt"
	"sync"

	"go.bug.st/serial"
)

// openPort is the driver entry point, replaced in tests.
var openPort = serial.Open

// Port is an open serial line to the capture firmware. It satisfies
// camera.Transport and io.Closer.
type Port struct {
	path   string
	config Config
	port   serial.Port

	closeOnce sync.Once
	closeErr  error
}

// Open opens path at 8N1 with the configured baud rate and read timeout.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0", serialport.WithReadTimeout(2*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
func Open(path string, opts ...Option) (*Port, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	sp, err := openPort(path, mode)
	if err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}

	if err := sp.SetReadTimeout(cfg.ReadTimeout); err != nil {
		sp.Close()
		return nil, &ConnectionError{Path: path, Err: fmt.Errorf("set read timeout: %w", err)}
	}

	return &Port{path: path, config: cfg, port: sp}, nil
}

// Path returns the device path the port was opened with.
func (p *Port) Path() string {
	return p.path
}

// Config returns the line settings in effect.
func (p *Port) Config() Config {
	return p.config
}

// Read returns whatever arrives within the read timeout; (0, nil) means
// nothing arrived.
func (p *Port) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write sends b.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// ResetInputBuffer discards received bytes not yet read.
func (p *Port) ResetInputBuffer() error {
	return p.port.ResetInputBuffer()
}

// ResetOutputBuffer discards written bytes not yet transmitted.
func (p *Port) ResetOutputBuffer() error {
	return p.port.ResetOutputBuffer()
}

// Close closes the port. Later calls return the first call's result.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.port.Close()
	})
	return p.closeErr
}
