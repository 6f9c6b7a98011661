package rfio

import (
	"context"
	"errors"
	"sync"

	"github.com/sscomm/simplisafe-rf/internal/framer"
	"github.com/sscomm/simplisafe-rf/internal/message"
	"github.com/sscomm/simplisafe-rf/internal/pulse"
)

// ErrDriverClosed is a DriverError (§7): the underlying RawIO closed or
// failed, fatal to this Transceiver.
var ErrDriverClosed = errors.New("rfio: driver closed")

// FrameLogger receives every raw byte frame the Transceiver decodes,
// before message parsing, matching the external log_raw(bytes) hook.
// Implementations must not block the decode path for long.
type FrameLogger interface {
	LogRaw(b []byte)
}

// Transceiver binds a pulse.Decoder and the framer to a RawIO line,
// decoding edges into Messages on a single-producer/single-consumer
// channel and encoding outgoing Messages into pulse trains. Codec and
// framer errors (BadPulseWidth, TooShort, OddLength, the message parse
// errors) are recovered locally: the offending frame is dropped and
// decoding resumes. A RawIO failure is surfaced as ErrDriverClosed and is
// fatal to the Transceiver, per §7's error policy.
type Transceiver struct {
	io     RawIO
	role   pulse.Role
	logger FrameLogger

	decoder *pulse.Decoder

	mu     sync.Mutex
	ready  chan struct{}
	queue  []*message.Message
	closed bool
	err    error
}

// New constructs a Transceiver for the given role, registering its edge
// callback with io. logger may be nil.
func New(io RawIO, role pulse.Role, logger FrameLogger) *Transceiver {
	t := &Transceiver{
		io:     io,
		role:   role,
		logger: logger,
		ready:  make(chan struct{}, 1),
	}
	t.decoder = pulse.NewDecoder()
	io.RegisterEdgeCallback(t.onEdge)
	return t
}

func (t *Transceiver) onEdge(level byte, tickMicros uint32) {
	done := t.decoder.Edge(level, tickMicros)
	if !done {
		return
	}
	bits, err := t.decoder.Bits()
	t.decoder.Reset()
	if err != nil {
		// BadPulseWidth-class error: drop and keep listening.
		return
	}

	raw, err := framer.Decode(bits)
	if err != nil {
		// TooShort / OddLength: drop and keep listening.
		return
	}
	if t.logger != nil {
		t.logger.LogRaw(raw)
	}

	msg, err := message.Parse(raw)
	if err != nil {
		// BadVendorCode/BadPLC/BadChecksum/BadOrigin/BadSubfield, or an
		// Unrecognized frame: recovered locally per §7. Unrecognized
		// frames are still structurally valid RawFrames; a caller that
		// wants them (to log raw bytes) already received them above.
		return
	}

	t.mu.Lock()
	if !t.closed {
		t.queue = append(t.queue, msg)
	}
	t.mu.Unlock()
	select {
	case t.ready <- struct{}{}:
	default:
	}
}

// Ready returns a channel that is sent to whenever a message becomes
// available, so a supervisor can select across several Transceivers
// without a dedicated consumer goroutine per radio.
func (t *Transceiver) Ready() <-chan struct{} {
	return t.ready
}

// Recv blocks until a decoded Message is available or ctx is done.
func (t *Transceiver) Recv(ctx context.Context) (*message.Message, error) {
	for {
		t.mu.Lock()
		if len(t.queue) > 0 {
			msg := t.queue[0]
			t.queue = t.queue[1:]
			closedErr := t.err
			t.mu.Unlock()
			if closedErr != nil {
				return msg, closedErr
			}
			return msg, nil
		}
		closed := t.closed
		err := t.err
		t.mu.Unlock()
		if closed {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.ready:
		}
	}
}

// Send encodes m and transmits it via the underlying RawIO.
func (t *Transceiver) Send(ctx context.Context, m *message.Message) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrDriverClosed
	}

	b, err := m.Encode()
	if err != nil {
		return err
	}

	pulses := pulse.Modulate(t.role, b, 0)
	if err := t.io.EmitPulses(pulses); err != nil {
		t.fail(err)
		return ErrDriverClosed
	}
	return nil
}

func (t *Transceiver) fail(err error) {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		t.err = err
	}
	t.mu.Unlock()
	select {
	case t.ready <- struct{}{}:
	default:
	}
}

// Close releases the underlying RawIO, waking any blocked Recv.
func (t *Transceiver) Close() error {
	err := t.io.Close()
	t.fail(ErrDriverClosed)
	return err
}
