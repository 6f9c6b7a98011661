package pulse

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// replay feeds a pulse train into a fresh Decoder the way a GPIO line
// watcher would: each pulse's duration becomes the dt measured at the
// edge transitioning into the *next* pulse's level, followed by one
// final large gap to force end-of-transmission.
func replay(t *testing.T, pulses []Pulse, txPin uint32) (string, bool) {
	t.Helper()
	d := NewDecoder()
	levelOf := func(p Pulse) byte {
		if p.OnMask&(1<<txPin) != 0 {
			return 1
		}
		return 0
	}
	tick := uint32(0)
	done := d.Edge(levelOf(pulses[0]), tick)
	require.False(t, done)
	for i := 1; i < len(pulses); i++ {
		tick += pulses[i-1].Duration
		done = d.Edge(levelOf(pulses[i]), tick)
		if done {
			break
		}
	}
	if !done {
		tick += pulses[len(pulses)-1].Duration
		// force an end-of-transmission gap
		done = d.Edge(levelOf(pulses[len(pulses)-1])^1, tick+5000)
	}
	if !done {
		return "", false
	}
	bits, err := d.Bits()
	if err != nil {
		return "", false
	}
	return bits, true
}

func lsbFirstBits(payload []byte) string {
	out := make([]byte, 0, len(payload)*8)
	for _, b := range payload {
		for i := 0; i < 8; i++ {
			if b&(1<<uint(i)) != 0 {
				out = append(out, '1')
			} else {
				out = append(out, '0')
			}
		}
	}
	return string(out)
}

func TestModulateDecodeRoundTripPrefix(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		role := Role(rapid.IntRange(0, 2).Draw(rt, "role"))
		n := rapid.IntRange(1, 10).Draw(rt, "len")
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(rapid.IntRange(0, 255).Draw(rt, "byte"))
		}
		pulses := Modulate(role, payload, 0)
		bits, ok := replay(t, pulses, 0)
		require.True(t, ok)
		want := lsbFirstBits(payload)
		require.GreaterOrEqual(t, len(bits), len(want))
		require.Equal(t, want, bits[:len(want)])
	})
}

func TestDecoderGlitchDropsEdgeAndNext(t *testing.T) {
	d := NewDecoder()
	require.False(t, d.Edge(1, 0))
	// A sub-0.4ms glitch: dropped, and the following edge is dropped too.
	require.False(t, d.Edge(0, 300))
	require.False(t, d.Edge(1, 350))
	// The edge after the dropped pair measures dt against tick=0, the
	// pre-glitch edge, not against the dropped edges.
	require.False(t, d.Edge(0, 1000))
}

func TestDecoderRejectsInvalidSymbol(t *testing.T) {
	d := &Decoder{preambleHigh: true, data: []byte{'0', '1', 'X', '1', '0'}}
	_, err := d.Bits()
	require.ErrorIs(t, err, ErrBadPulseWidth)
}

func TestDecoderRejectsTooShort(t *testing.T) {
	d := &Decoder{preambleHigh: true, data: []byte{'0', '1'}}
	_, err := d.Bits()
	require.ErrorIs(t, err, ErrTooShort)
}

func TestRoleSyncPairs(t *testing.T) {
	require.Equal(t, 150, RoleBaseStation.SyncPairs())
	require.Equal(t, 40, RoleKeypad.SyncPairs())
	require.Equal(t, 20, RoleSensor.SyncPairs())
}
