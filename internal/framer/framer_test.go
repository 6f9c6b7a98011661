package framer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// lsbFirstBits renders b as a data-bit string, LSB of byte 0 first,
// matching what pulse.Modulate transmits and pulse.Decoder.Bits returns.
func lsbFirstBits(b []byte) string {
	out := make([]byte, 0, len(b)*8)
	for _, by := range b {
		for i := 0; i < 8; i++ {
			if by&(1<<uint(i)) != 0 {
				out = append(out, '1')
			} else {
				out = append(out, '0')
			}
		}
	}
	return string(out)
}

func TestEncodeMatchesLSBFirstBits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "len")
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(rapid.IntRange(0, 255).Draw(t, "byte"))
		}
		require.Equal(t, lsbFirstBits(payload), Encode(payload))
	})
}

// TestDecodeBaseStationTrailer verifies the fixed 2-hex-digit trim used
// when the origin nibble identifies a base-station-originated frame.
func TestDecodeBaseStationTrailer(t *testing.T) {
	// origin nibble 0x0 sits at hex digit 16 (byte 8's low nibble);
	// build a minimal frame whose 9th byte's low nibble is 0 and that
	// carries 2 trailing hex digits of trailer to be trimmed.
	payload := []byte{0xCC, 0x05, 0x00, '1', '2', '3', '4', '5', 0x00, 0xAB}
	bits := lsbFirstBits(payload) + "00000000"

	got, err := Decode(bits)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

// bitsForHex inverts nibbleHex: it renders a hex string back into a
// data-bit string, 4 bits per digit, LSB first.
func bitsForHex(h string) string {
	out := make([]byte, 0, len(h)*4)
	for _, c := range []byte(h) {
		v := hexVal(c)
		for i := 0; i < 4; i++ {
			if v&(1<<uint(i)) != 0 {
				out = append(out, '1')
			} else {
				out = append(out, '0')
			}
		}
	}
	return string(out)
}

// TestDecodeNonBaseStationMarkerTrim verifies the repeat-marker search
// used for keypad/sensor-originated frames: the trailer begins wherever
// "F"+first two wire bytes reappears.
func TestDecodeNonBaseStationMarkerTrim(t *testing.T) {
	payload := []byte{0xCC, 0x05, 0x11, '1', '2', '3', '4', '5', 0x01, 0x99}
	bits := lsbFirstBits(payload)
	rawHex := toHex(bits)
	marker := "F" + rawHex[0:4]
	bitsWithTrailer := bits + bitsForHex(marker) + bitsForHex("AB")

	got, err := Decode(bitsWithTrailer)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestDecodeRejectsTooShort(t *testing.T) {
	_, err := Decode("000000")
	require.ErrorIs(t, err, ErrTooShort)
}

func TestNibbleHexIsLSBFirst(t *testing.T) {
	require.Equal(t, byte('8'), nibbleHex("0001"))
	require.Equal(t, byte('1'), nibbleHex("1000"))
	require.Equal(t, byte('F'), nibbleHex("1111"))
}
