package message

import "errors"

// NewSensorMessage builds a KindSensor message (§3.3).
func NewSensorMessage(sn string, origin OriginType, sequence byte, event byte) *Message {
	return &Message{
		Kind:         KindSensor,
		PLC:          0x11,
		SN:           sn,
		Sequence:     sequence & 0xF,
		SensorOrigin: origin,
		EventByte:    event,
	}
}

// NewKeypadMessage builds a KindKeypad message with an arbitrary payload
// body; most keypad requests carry no body at all (plc 0x22/0x33) or a
// small fixed structure such as a PIN (plc 0x66, see NewKeypadPin).
func NewKeypadMessage(sn string, plc byte, sequence byte, event byte, body []byte) *Message {
	return &Message{
		Kind:      KindKeypad,
		PLC:       plc,
		SN:        sn,
		Sequence:  sequence & 0xF,
		Body:      append([]byte(nil), body...),
		EventByte: event,
	}
}

// pinSuffix is the constant trailer KeypadPinMessage appends after the
// two packed PIN bytes. Its purpose is undocumented in the source
// (marked there as "why constant?"); it is preserved unchanged.
var pinSuffix = []byte{0x0F, 0xF0}

// NewKeypadPin builds a PIN-carrying keypad request (disarm pin, menu
// pin, or new-pin), packing the 4 ASCII digits into 2 bytes as swapped
// BCD nibbles plus the constant suffix.
func NewKeypadPin(sn string, sequence byte, event byte, pin string) (*Message, error) {
	if len(pin) != 4 {
		return nil, errors.New("message: PIN must be exactly 4 digits")
	}
	digits := make([]byte, 4)
	for i := 0; i < 4; i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return nil, errors.New("message: PIN must be numeric")
		}
		digits[i] = pin[i] - '0'
	}
	body := []byte{
		(digits[1] << 4) | digits[0],
		(digits[3] << 4) | digits[2],
	}
	body = append(body, pinSuffix...)
	return NewKeypadMessage(sn, 0x66, sequence, event, body), nil
}

// PIN decodes a 4-byte PIN body (as produced by NewKeypadPin) back to its
// 4 ASCII digits, validating the constant suffix.
func (m *Message) PIN() (string, error) {
	if len(m.Body) != 4 || m.Body[2] != pinSuffix[0] || m.Body[3] != pinSuffix[1] {
		return "", ErrBadSubfield
	}
	digits := []byte{
		m.Body[0] & 0xF,
		m.Body[0] >> 4,
		m.Body[1] & 0xF,
		m.Body[1] >> 4,
	}
	out := make([]byte, 4)
	for i, d := range digits {
		out[i] = '0' + d
	}
	return string(out), nil
}

// NewComponentSerialBody packs a component serial number, as embedded in
// an enrollment request/response payload body, per the ASCII_4B5C format.
func NewComponentSerialBody(sn string, hb, lb bool) []byte {
	return PackASCII4B5C(sn, hb, lb)
}

// ComponentSerial unpacks an ASCII_4B5C-encoded serial number from the
// first 4 bytes of m.Body.
func (m *Message) ComponentSerial() (sn string, hb, lb bool, err error) {
	return UnpackASCII4B5C(m.Body)
}

// menuFooterBody is the constant footer carried by every MENU info_type
// message: unlike STATUS messages it is not the base station's serial,
// just five 0xFF filler bytes.
var menuFooterBody = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// NewBaseStationKeypadMessage builds a generic KindBaseStationKeypad
// message with an explicit plc, computing the footer body appropriate to
// info: STATUS messages carry the base station's own serial (bsSN,
// packed HEX_5B6C); MENU messages carry the constant all-0xFF filler and
// ignore bsSN. See NewExtendedStatus for the structured status/update
// payload-body variant.
func NewBaseStationKeypadMessage(kpSN string, plc byte, sequence byte, msgType MessageType, info InfoType, event byte, body []byte, bsSN string) (*Message, error) {
	var footerBody []byte
	if info == InfoTypeMenu {
		footerBody = append([]byte(nil), menuFooterBody...)
	} else {
		fb, err := PackHEX5B6C(bsSN)
		if err != nil {
			return nil, err
		}
		footerBody = fb
	}
	return &Message{
		Kind:       KindBaseStationKeypad,
		PLC:        plc,
		SN:         kpSN,
		Sequence:   sequence & 0xF,
		MsgType:    msgType,
		Info:       info,
		Body:       append([]byte(nil), body...),
		EventByte:  event,
		FooterBody: footerBody,
	}, nil
}

// BaseStationSerial unpacks the base station's own serial number, packed
// HEX_5B6C into the message's 5-byte footer body.
func (m *Message) BaseStationSerial() (string, error) {
	return UnpackHEX5B6C(m.FooterBody)
}

// ExtendedStatus is the decoded form of a BaseStationKeypadExtendedStatus*
// message's payload body: armed state, error flags, entry-sensor status,
// and the remaining countdown in seconds.
type ExtendedStatus struct {
	Flags     ErrorFlags
	Armed     ArmedStatusType
	EntrySens EntrySensorStatusType
	TimeLeft  uint16 // seconds
}

// NewExtendedStatus builds a BaseStationKeypadExtendedStatus{Response,
// Update,RemoteUpdate} message, encoding st into the 4-byte payload body
// exactly as the source does: flags and armed state share a byte, the
// countdown is a 12-bit value split across the last two bytes with a
// constant low nibble.
func NewExtendedStatus(kpSN string, sequence byte, bsSN string, msgType MessageType, event byte, st ExtendedStatus) (*Message, error) {
	body := []byte{
		(byte(st.Flags) << 4) | byte(st.Armed),
		byte(st.EntrySens),
		byte(st.TimeLeft >> 4),
		byte((st.TimeLeft&0xF)<<4) | 0xC,
	}
	return NewBaseStationKeypadMessage(kpSN, 0x66, sequence, msgType, InfoTypeStatus, event, body, bsSN)
}

// ExtendedStatus decodes the payload body of a
// BaseStationKeypadExtendedStatus* message.
func (m *Message) ExtendedStatus() (ExtendedStatus, error) {
	if len(m.Body) != 4 {
		return ExtendedStatus{}, ErrBadSubfield
	}
	tl := uint16(m.Body[2])<<4 | uint16(m.Body[3]>>4)
	return ExtendedStatus{
		Flags:     ErrorFlags(m.Body[0] >> 4),
		Armed:     ArmedStatusType(m.Body[0] & 0xF),
		EntrySens: EntrySensorStatusType(m.Body[1]),
		TimeLeft:  tl,
	}, nil
}
