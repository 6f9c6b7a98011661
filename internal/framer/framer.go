// Package framer turns a decoded data-bit string into a canonical
// RawFrame byte buffer, and back. The wire format groups bits four at a
// time into a hex nibble (interpreting each group least-significant-bit
// first), which leaves adjacent nibbles in swapped order relative to a
// byte's conventional hex rendering; Decode undoes that swap and trims
// the radio-layer trailer.
package framer

import "errors"

// ErrOddLength indicates the un-swapped hex string had an odd number of
// hex digits, so it cannot be grouped into whole bytes.
var ErrOddLength = errors.New("framer: odd hex digit count")

// ErrTooShort indicates there were not enough bits to locate an origin
// discriminator.
var ErrTooShort = errors.New("framer: too short to contain an origin byte")

// baseStationOrigin is the OriginType value that selects the
// fixed-length trailer trim rule instead of the repeat-marker search.
const baseStationOrigin = 0x00

// nibbleHex groups of up to 4 bits, LSB-first, into one hex digit.
func nibbleHex(bits string) byte {
	v := 0
	for i := len(bits) - 1; i >= 0; i-- {
		v <<= 1
		if bits[i] == '1' {
			v |= 1
		}
	}
	return "0123456789ABCDEF"[v]
}

// toHex groups a data-bit string into hex digits 4 bits at a time.
func toHex(bits string) string {
	out := make([]byte, 0, (len(bits)+3)/4)
	for i := 0; i < len(bits); i += 4 {
		end := i + 4
		if end > len(bits) {
			end = len(bits)
		}
		out = append(out, nibbleHex(bits[i:end]))
	}
	return string(out)
}

// Decode reconstructs a RawFrame byte buffer from a decoded data-bit
// string, per §4.3: group into hex nibbles, trim the trailer according to
// the origin discriminator, then swap adjacent nibbles into bytes.
func Decode(bits string) ([]byte, error) {
	rawHex := toHex(bits)
	if len(rawHex) < 17 {
		return nil, ErrTooShort
	}

	origin := hexVal(rawHex[16])
	var trimmed string
	if origin == baseStationOrigin {
		trimmed = rawHex[:len(rawHex)-2]
	} else {
		marker := "F" + rawHex[0:4]
		idx := indexOf(rawHex, marker)
		if idx < 0 {
			// No repeat follows: the trailer leaves a partial final nibble.
			trimmed = rawHex[:len(rawHex)-1]
		} else {
			trimmed = rawHex[:idx]
		}
	}

	if len(trimmed)%2 == 1 {
		return nil, ErrOddLength
	}

	out := make([]byte, 0, len(trimmed)/2)
	for i := 0; i < len(trimmed); i += 2 {
		out = append(out, byte(hexVal(trimmed[i+1])<<4|hexVal(trimmed[i])))
	}
	return out, nil
}

// Encode is the bit-level mirror of Decode: it returns the raw data-bit
// string (LSB-first per byte) for payload, before any trailer or repeat
// structure is appended. Because each hex nibble's reversal-and-swap is
// self-inverse, this is equivalent to simply emitting each byte's bits
// LSB-first, which is what the transmitter (pulse.Modulate) does directly
// against the RawFrame bytes; Encode exists for round-trip testability of
// this package in isolation.
func Encode(payload []byte) string {
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

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return 0
	}
}

func indexOf(s, substr string) int {
	n, m := len(s), len(substr)
	if m == 0 || m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == substr {
			return i
		}
	}
	return -1
}
