package message

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestKeypadDisarmPinRequestFixture pins the exact byte layout of a
// disarm-PIN request against an independently computed reference value
// (vendor code, serial "167JC", sequence 0, PIN "1234"): checksum 0xB9
// over a 16-byte frame.
func TestKeypadDisarmPinRequestFixture(t *testing.T) {
	m, err := NewKeypadPin("167JC", 0, EvDisarmPinRequest, "1234")
	require.NoError(t, err)

	got, err := m.Encode()
	require.NoError(t, err)

	want, err := hex.DecodeString("cc05663136374a43010421430ff051b9")
	require.NoError(t, err)
	require.Equal(t, want, got)

	back, err := Parse(got)
	require.NoError(t, err)
	require.Equal(t, KindKeypad, back.Kind)
	require.Equal(t, "167JC", back.SN)
	require.Equal(t, byte(0), back.Sequence)
	require.Equal(t, EventByte(EvDisarmPinRequest), back.EventByte)

	pin, err := back.PIN()
	require.NoError(t, err)
	require.Equal(t, "1234", pin)
}

func genSerial(t *rapid.T, label string) string {
	chars := make([]byte, 5)
	for i := range chars {
		chars[i] = byte(rapid.IntRange(0x30, 0x7A).Draw(t, label))
	}
	return string(chars)
}

// TestSensorMessageRoundTrip is the P2-style property: Parse(Encode(m))
// reproduces every field of a sensor message.
func TestSensorMessageRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		origins := []OriginType{OriginKeychainRemote, OriginMotionSensor, OriginEntrySensor}
		m := NewSensorMessage(
			genSerial(t, "sn"),
			origins[rapid.IntRange(0, len(origins)-1).Draw(t, "origin")],
			byte(rapid.IntRange(0, 0xF).Draw(t, "seq")),
			byte(rapid.IntRange(0, 0xFF).Draw(t, "event")),
		)

		b, err := m.Encode()
		require.NoError(t, err)

		back, err := Parse(b)
		require.NoError(t, err)
		require.Equal(t, m.Kind, back.Kind)
		require.Equal(t, m.SN, back.SN)
		require.Equal(t, m.Sequence, back.Sequence)
		require.Equal(t, m.SensorOrigin, back.SensorOrigin)
		require.Equal(t, m.EventByte, back.EventByte)
	})
}

// TestKeypadPinRoundTrip round-trips an arbitrary 4-digit PIN through the
// packed wire representation.
func TestKeypadPinRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pin := ""
		for i := 0; i < 4; i++ {
			pin += string(rune('0' + rapid.IntRange(0, 9).Draw(t, "digit")))
		}
		sn := genSerial(t, "sn")
		seq := byte(rapid.IntRange(0, 0xF).Draw(t, "seq"))

		m, err := NewKeypadPin(sn, seq, EvDisarmPinRequest, pin)
		require.NoError(t, err)

		b, err := m.Encode()
		require.NoError(t, err)

		back, err := Parse(b)
		require.NoError(t, err)
		gotPIN, err := back.PIN()
		require.NoError(t, err)
		require.Equal(t, pin, gotPIN)
	})
}

// TestExtendedStatusRoundTrip round-trips armed state, error flags, entry
// sensor status and the countdown timer through the 4-byte payload body
// and 5-byte base-station-serial footer.
func TestExtendedStatusRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		armedValues := []ArmedStatusType{ArmedStatusOff, ArmedStatusAway, ArmedStatusHome, ArmedStatusArmingAway, ArmedStatusArmingHome}
		entryValues := []EntrySensorStatusType{EntryStatusClosed, EntryStatusOpen}

		st := ExtendedStatus{
			Flags:     ErrorFlags(rapid.IntRange(0, 0xF).Draw(t, "flags")),
			Armed:     armedValues[rapid.IntRange(0, len(armedValues)-1).Draw(t, "armed")],
			EntrySens: entryValues[rapid.IntRange(0, len(entryValues)-1).Draw(t, "entry")],
			TimeLeft:  uint16(rapid.IntRange(0, 0xFFF).Draw(t, "timeleft")),
		}

		kpSN := genSerial(t, "kpsn")
		bsSN := ""
		for i := 0; i < 6; i++ {
			bsSN += string("0123456789ABCDEF"[rapid.IntRange(0, 15).Draw(t, "bssn_digit")])
		}
		seq := byte(rapid.IntRange(0, 0xF).Draw(t, "seq"))

		m, err := NewExtendedStatus(kpSN, seq, bsSN, MsgTypeResponse, EvExtendedStatusRequest, st)
		require.NoError(t, err)

		b, err := m.Encode()
		require.NoError(t, err)

		back, err := Parse(b)
		require.NoError(t, err)
		require.Equal(t, KindBaseStationKeypad, back.Kind)
		require.Equal(t, kpSN, back.SN)
		require.Equal(t, seq, back.Sequence)

		gotBS, err := back.BaseStationSerial()
		require.NoError(t, err)
		require.Equal(t, bsSN, gotBS)

		gotSt, err := back.ExtendedStatus()
		require.NoError(t, err)
		require.Equal(t, st, gotSt)
	})
}

// TestParseRejectsBadChecksum is the P3-style property: flipping any bit
// of a valid frame's payload is always caught by the checksum.
func TestParseRejectsBadChecksum(t *testing.T) {
	m := NewSensorMessage("12345", OriginEntrySensor, 0, EntryOpen)
	b, err := m.Encode()
	require.NoError(t, err)

	corrupt := append([]byte(nil), b...)
	corrupt[8] ^= 0xFF // flip the first payload byte
	_, err = Parse(corrupt)
	require.ErrorIs(t, err, ErrBadChecksum)
}

func TestParseRejectsShortFrame(t *testing.T) {
	_, err := Parse([]byte{0xCC, 0x05, 0x11})
	require.ErrorIs(t, err, ErrTooShort)
}

func TestParseRejectsBadVendorCode(t *testing.T) {
	m := NewSensorMessage("12345", OriginEntrySensor, 0, EntryOpen)
	b, err := m.Encode()
	require.NoError(t, err)
	b[0] = 0x00
	_, err = Parse(b)
	require.ErrorIs(t, err, ErrBadVendorCode)
}

func TestPackUnpackASCII4B5CRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// ASCII_4B5C carries 6-bit characters (c-0x30), and 0x3F is the
		// blank terminator, so only 0x30..0x6E round-trip.
		sn := ""
		for i := 0; i < 5; i++ {
			sn += string(rune(rapid.IntRange(0x30, 0x6E).Draw(t, "c")))
		}
		hb := rapid.Bool().Draw(t, "hb")
		lb := rapid.Bool().Draw(t, "lb")

		packed := PackASCII4B5C(sn, hb, lb)
		gotSN, gotHB, gotLB, err := UnpackASCII4B5C(packed)
		require.NoError(t, err)
		require.Equal(t, sn, gotSN)
		require.Equal(t, hb, gotHB)
		require.Equal(t, lb, gotLB)
	})
}

func TestPackUnpackHEX5B6CRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hexStr := ""
		for i := 0; i < 6; i++ {
			hexStr += string("0123456789ABCDEF"[rapid.IntRange(0, 15).Draw(t, "digit")])
		}
		packed, err := PackHEX5B6C(hexStr)
		require.NoError(t, err)
		got, err := UnpackHEX5B6C(packed)
		require.NoError(t, err)
		require.Equal(t, hexStr, got)
	})
}
