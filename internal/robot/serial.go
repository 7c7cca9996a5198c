package robot

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// SerialPort is a CommandPort backed by a serial-attached pressure
// controller. Writes are serialized with a mutex so a Close racing a
// SendCommand cannot interleave on the wire.
type SerialPort struct {
	mu   sync.Mutex
	port io.WriteCloser
}

// OpenSerialPort opens the pressure controller's serial device.
func OpenSerialPort(path string, opts PortOptions) (*SerialPort, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("robot: open serial port %s: %w", path, err)
	}
	return &SerialPort{port: port}, nil
}

// newSerialPort wraps an already-open writer; used by tests.
func newSerialPort(w io.WriteCloser) *SerialPort {
	return &SerialPort{port: w}
}

// SendCommand writes one command line to the controller. The context is
// checked before the write; serial writes themselves are short and are not
// interruptible mid-flight.
func (s *SerialPort) SendCommand(ctx context.Context, command []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(command) == 0 {
		return fmt.Errorf("robot: empty command")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.port, formatCommand(command)); err != nil {
		return fmt.Errorf("robot: write command: %w", err)
	}
	return nil
}

// Close closes the underlying serial device.
func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}
