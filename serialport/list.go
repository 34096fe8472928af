package serialport

import (
	"fmt"
	"sort"

	"go.bug.st/serial/enumerator"
)

// detailedPorts is the enumerator entry point, replaced in tests.
var detailedPorts = enumerator.GetDetailedPortsList

// PortInfo describes one serial port present on the host.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// String formats the port for listings, e.g.
// "/dev/ttyUSB0 [USB 1a86:7523 USB Serial]".
func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	s := fmt.Sprintf("%s [USB %s:%s", p.Name, p.VID, p.PID)
	if p.Product != "" {
		s += " " + p.Product
	}
	if p.SerialNumber != "" {
		s += " s/n " + p.SerialNumber
	}
	return s + "]"
}

// List returns the serial ports present on the host, sorted by name.
func List() ([]PortInfo, error) {
	details, err := detailedPorts()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports, nil
}
