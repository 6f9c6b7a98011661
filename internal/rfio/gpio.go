package rfio

import (
	"fmt"
	"sync"
	"time"

	"github.com/sscomm/simplisafe-rf/internal/pulse"
	"github.com/warthog618/go-gpiocdev"
)

// GPIOLine is the production RawIO: an input line watched for edges and
// an output line driven for transmission, both on a Linux gpiochip
// device. Generalized from the teacher's GPIO PTT keying (output-only)
// to edge-event RX plus pulse-train TX on a second line.
type GPIOLine struct {
	mu      sync.Mutex
	rx      *gpiocdev.Line
	tx      *gpiocdev.Line
	cb      func(level byte, tickMicros uint32)
	epoch   time.Time
	closed  bool
}

// OpenGPIOLine requests rxOffset as an edge-watched input and txOffset as
// a driven output, both on chip (e.g. "gpiochip0").
func OpenGPIOLine(chip string, rxOffset, txOffset int) (*GPIOLine, error) {
	g := &GPIOLine{epoch: time.Now()}

	rx, err := gpiocdev.RequestLine(chip, rxOffset,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(g.onEvent),
	)
	if err != nil {
		return nil, fmt.Errorf("rfio: request rx line %d on %s: %w", rxOffset, chip, err)
	}

	tx, err := gpiocdev.RequestLine(chip, txOffset, gpiocdev.AsOutput(0))
	if err != nil {
		rx.Close()
		return nil, fmt.Errorf("rfio: request tx line %d on %s: %w", txOffset, chip, err)
	}

	g.rx = rx
	g.tx = tx
	return g, nil
}

func (g *GPIOLine) onEvent(evt gpiocdev.LineEvent) {
	g.mu.Lock()
	cb := g.cb
	closed := g.closed
	epoch := g.epoch
	g.mu.Unlock()
	if closed || cb == nil {
		return
	}
	level := byte(0)
	if evt.Type == gpiocdev.LineEventRisingEdge {
		level = 1
	}
	tickMicros := uint32(time.Since(epoch).Microseconds())
	cb(level, tickMicros)
}

func (g *GPIOLine) RegisterEdgeCallback(cb func(level byte, tickMicros uint32)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cb = cb
}

// EmitPulses drives the output line through the pulse train, setting it
// high for a pulse with a non-zero OnMask and low otherwise, and holding
// that level for the pulse's duration before the next pulse. This is a
// software-timed bit-bang; a production deployment with tighter timing
// requirements would instead use the chip's hardware PWM or a kernel
// pulse-train ioctl, neither of which this library exposes.
func (g *GPIOLine) EmitPulses(pulses []pulse.Pulse) error {
	g.mu.Lock()
	closed := g.closed
	tx := g.tx
	g.mu.Unlock()
	if closed {
		return ErrClosed
	}
	for _, p := range pulses {
		level := 0
		if p.OnMask != 0 {
			level = 1
		}
		if err := tx.SetValue(level); err != nil {
			return fmt.Errorf("rfio: set tx: %w", err)
		}
		time.Sleep(time.Duration(p.Duration) * time.Microsecond)
	}
	return nil
}

func (g *GPIOLine) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	g.closed = true
	g.mu.Unlock()

	rxErr := g.rx.Close()
	txErr := g.tx.Close()
	if rxErr != nil {
		return rxErr
	}
	return txErr
}
