package rfio

import (
	"errors"
	"sync"

	"github.com/sscomm/simplisafe-rf/internal/pulse"
)

// ErrClosed is returned by SimRawIO/GPIOLine methods after Close.
var ErrClosed = errors.New("rfio: closed")

// SimRawIO is an in-process RawIO fake: pushed edges are delivered to the
// registered callback synchronously, and pulses sent via EmitPulses are
// captured for inspection rather than driving real hardware. Grounded on
// the teacher's raw-received-bit-buffer abstraction, generalized to a
// full duplex fake rather than a receive-only ring.
type SimRawIO struct {
	mu     sync.Mutex
	cb     func(level byte, tickMicros uint32)
	sent   [][]pulse.Pulse
	closed bool
}

// NewSimRawIO returns a ready-to-use simulated line.
func NewSimRawIO() *SimRawIO {
	return &SimRawIO{}
}

func (s *SimRawIO) RegisterEdgeCallback(cb func(level byte, tickMicros uint32)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
}

// PushEdge simulates a GPIO line transition, invoking the registered
// callback if one is present and the line is open.
func (s *SimRawIO) PushEdge(level byte, tickMicros uint32) {
	s.mu.Lock()
	cb := s.cb
	closed := s.closed
	s.mu.Unlock()
	if !closed && cb != nil {
		cb(level, tickMicros)
	}
}

func (s *SimRawIO) EmitPulses(pulses []pulse.Pulse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	cp := append([]pulse.Pulse(nil), pulses...)
	s.sent = append(s.sent, cp)
	return nil
}

// Sent returns every pulse train passed to EmitPulses so far, in order.
func (s *SimRawIO) Sent() [][]pulse.Pulse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]pulse.Pulse(nil), s.sent...)
}

func (s *SimRawIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}
