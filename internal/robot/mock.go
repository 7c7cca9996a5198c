package robot

import (
	"context"
	"sync"
	"time"
)

// MockPort is a CommandPort for dev mode and tests. It records every
// dispatched command and can be configured to fail or to add write latency.
type MockPort struct {
	mu sync.Mutex

	commands [][]float64
	closed   bool

	// SendErr, when set, is returned by every subsequent SendCommand.
	sendErr error
	// failAfter fails dispatches once this many commands were accepted.
	// Negative means never.
	failAfter int

	// Latency is added to each SendCommand to simulate a slow controller.
	Latency time.Duration
}

// NewMockPort returns a mock port that accepts every command.
func NewMockPort() *MockPort {
	return &MockPort{failAfter: -1}
}

// FailWith makes every subsequent SendCommand return err.
func (m *MockPort) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
	m.failAfter = 0
}

// FailAfter accepts n commands and then fails with err.
func (m *MockPort) FailAfter(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
	m.failAfter = n
}

// SendCommand records the command, honoring configured latency and failures.
func (m *MockPort) SendCommand(ctx context.Context, command []float64) error {
	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil && m.failAfter >= 0 && len(m.commands) >= m.failAfter {
		return m.sendErr
	}
	m.commands = append(m.commands, append([]float64(nil), command...))
	return nil
}

// Commands returns a copy of every command accepted so far.
func (m *MockPort) Commands() [][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]float64, len(m.commands))
	for i, c := range m.commands {
		out[i] = append([]float64(nil), c...)
	}
	return out
}

// Closed reports whether Close was called.
func (m *MockPort) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the port closed.
func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
