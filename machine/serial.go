package machine

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// Open opens the plotter's serial port.
func Open(port string, baud int) (io.ReadWriteCloser, error) {
	if port == "" {
		return nil, fmt.Errorf("open serial: no port given")
	}
	if baud <= 0 {
		return nil, fmt.Errorf("open serial %s: invalid baud rate %d", port, baud)
	}
	p, err := serial.OpenPort(&serial.Config{Name: port, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", port, err)
	}
	return p, nil
}
