// Package rfio binds the pulse and framer packages to a physical GPIO
// line (or, in tests, a simulated one) and exposes a Transceiver with a
// blocking Recv/Send pair plus a select-friendly readiness handle.
package rfio

import "github.com/sscomm/simplisafe-rf/internal/pulse"

// RawIO is the driver seam between a Transceiver and the physical radio.
// A real implementation watches GPIO line edges and drives an output pin;
// SimRawIO is an in-process fake for tests.
type RawIO interface {
	// RegisterEdgeCallback arranges for cb to be invoked on every GPIO
	// line-level transition, with the level (0 or 1) and a free-running
	// microsecond tick. It is called once at transceiver construction.
	RegisterEdgeCallback(cb func(level byte, tickMicros uint32))

	// EmitPulses drives the output pin through the given pulse train,
	// each entry alternating level per pulse.OnMask/OffMask, for
	// pulse.Duration microseconds. It blocks until the train has been
	// fully sent.
	EmitPulses(pulses []pulse.Pulse) error

	// Close releases the underlying line. After Close, EmitPulses must
	// return ErrClosed and no further edge callbacks fire.
	Close() error
}
