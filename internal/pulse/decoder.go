package pulse

import "errors"

// ErrBadPulseWidth indicates a decoded frame contained one or more
// out-of-tolerance pulse durations.
var ErrBadPulseWidth = errors.New("pulse: bad pulse width")

// ErrTooShort indicates a decoded frame had fewer than 5 data bits.
var ErrTooShort = errors.New("pulse: frame too short")

const minDataBits = 5

// Decoder demodulates a stream of GPIO edges into a data-bit string.
// State is held entirely on the instance (never in package globals), so a
// Decoder can be created per listener and discarded per received frame.
type Decoder struct {
	havePrevTick bool
	prevTick     uint32
	pendingSkip  bool // previous edge was a glitch; this edge is also dropped

	syncBuffer   string // last up to 4 decoded symbols, for preamble detection
	preambleLow  bool
	preambleHigh bool

	data []byte
}

// NewDecoder returns a Decoder ready to process the edges of one
// transmission.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Reset clears all decode state, equivalent to starting a fresh Decoder.
func (d *Decoder) Reset() {
	*d = Decoder{}
}

// dtMillis computes the elapsed time between two tick values, honoring
// the 32-bit wraparound formula used upstream: when the tick counter has
// wrapped, the elapsed ticks are computed from a 64-bit view of the new
// tick shifted into the next epoch. This is preserved exactly as found —
// it is not one of the bugs the reimplementation is asked to fix.
func dtMillis(prev, cur uint32) float64 {
	if prev > cur {
		return float64((uint64(cur)<<32)-uint64(prev)) / 1000.0
	}
	return float64(cur-prev) / 1000.0
}

// Edge feeds one GPIO transition into the decoder. level is the line
// level the edge settled to. done reports whether this edge completed a
// transmission (an end-of-transmission gap was observed after a valid
// preamble); once done is true, call Bits to retrieve the validated data,
// then Reset before decoding the next transmission.
func (d *Decoder) Edge(level byte, tickMicros uint32) (done bool) {
	if !d.havePrevTick {
		d.havePrevTick = true
		d.prevTick = tickMicros
		return false
	}

	if d.pendingSkip {
		d.pendingSkip = false
		return false
	}

	dt := dtMillis(d.prevTick, tickMicros)

	if dt < 0.4 {
		// Glitch: drop this edge and the next one. prevTick intentionally
		// not advanced, so the next real edge's duration spans the glitch.
		d.pendingSkip = true
		return false
	}

	d.prevTick = tickMicros

	if dt > 2.1 {
		if d.preambleHigh {
			return true
		}
		d.preambleLow = false
		return false
	}

	if dt > 1.9 {
		if d.syncBuffer == "1111" {
			if level == 1 {
				d.preambleLow = true
				d.preambleHigh = false
			} else if d.preambleLow {
				d.preambleHigh = true
				d.data = d.data[:0]
			}
		} else {
			d.preambleLow = false
		}
		return false
	}

	var sym Symbol
	switch {
	case dt > 1.1:
		sym = Invalid
	case dt >= 0.9:
		sym = One
	case dt > 0.6:
		sym = Invalid
	default:
		sym = Zero
	}

	d.syncBuffer += string(byte(sym))
	if len(d.syncBuffer) > 4 {
		d.syncBuffer = d.syncBuffer[len(d.syncBuffer)-4:]
	}

	if d.preambleHigh {
		d.data = append(d.data, byte(sym))
	} else {
		d.data = d.data[:0]
	}

	return false
}

// Bits returns the decoded data-bit string once Edge has reported done,
// rejecting frames with any invalid symbol or fewer than minDataBits bits.
func (d *Decoder) Bits() (string, error) {
	for _, b := range d.data {
		if Symbol(b) == Invalid {
			return "", ErrBadPulseWidth
		}
	}
	if len(d.data) < minDataBits {
		return "", ErrTooShort
	}
	return string(d.data), nil
}
