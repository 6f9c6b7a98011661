// Package basestation implements the base station's receive-side state
// machine: component enrollment, arm/disarm/countdown, alarm and siren
// control, and the keypad request/response protocol, grounded on
// devices.py's BaseStation class.
package basestation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sscomm/simplisafe-rf/internal/message"
)

// ArmedState is the base station's arming state machine, replacing the
// source's loosely-typed ArmedState/ArmedStatus constants (the source
// uses two different names for what is the same field) with one enum.
type ArmedState int

const (
	StateOff ArmedState = iota
	StateArmingAway
	StateArmedAway
	StateArmedHome
)

// HeartbeatTimeout is how long a component may go without a heartbeat
// before it is reported via Hooks.Alert(AlertSensorNotResponding, sn).
const HeartbeatTimeout = 4 * time.Hour

// Hooks are the integration points a concrete base station (siren driver,
// dialer, voice prompt player, door chime relay) implements; every method
// mirrors a no-op overridable method on devices.py's BaseStation.
type Hooks interface {
	Alarm()
	Alert(kind AlertType, subject string)
	ArmAway()
	ArmHome()
	Disarm()
	DoorChime()
	StartSiren()
	StopSiren()
}

// Sender transmits an outgoing message, typically backed by an
// rfio.Transceiver.
type Sender interface {
	Send(ctx context.Context, m *message.Message) error
}

// PIN is one entry in the additional-PIN list, mirroring devices.py's
// add_pin(pin, name).
type PIN struct {
	Name string
	PIN  string
}

func validatePIN(pin string) error {
	if len(pin) != 4 {
		return &ConfigError{Field: "pin", Msg: "must be exactly 4 digits"}
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return &ConfigError{Field: "pin", Msg: "must be numeric"}
		}
	}
	return nil
}

// BaseStation is the enrollment-and-arming authority for one SimpliSafe
// system. All state is guarded by a single mutex held for the duration of
// a message handler or public method call, matching the single-threaded
// semantics devices.py gets for free from Python's GIL.
type BaseStation struct {
	mu sync.Mutex

	sn        string
	sequence  byte
	masterPIN string
	duressPIN string
	pins      []PIN

	settings   Settings
	components *componentMap

	errorFlags message.ErrorFlags
	armed      ArmedState
	ess        message.EntrySensorStatusType
	timeLeft   int
	testMode   bool

	countdownGen uint64
	onExpire     func()
	sirenTimer   *time.Timer
	sirenActive  bool

	sender Sender
	hooks  Hooks
}

// New constructs a BaseStation for sn with masterPIN as its initial
// master PIN and default settings, matching devices.py's __init__.
func New(sn, masterPIN string, sender Sender, hooks Hooks) (*BaseStation, error) {
	if err := validatePIN(masterPIN); err != nil {
		return nil, err
	}
	b := &BaseStation{
		sn:         sn,
		masterPIN:  masterPIN,
		settings:   DefaultSettings(),
		components: newComponentMap(),
		sender:     sender,
		hooks:      hooks,
	}
	return b, nil
}

// SetDuressPIN sets or clears (pin == "") the PIN that silently alarms
// instead of merely disarming.
func (b *BaseStation) SetDuressPIN(pin string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pin == "" {
		b.duressPIN = ""
		return nil
	}
	if err := validatePIN(pin); err != nil {
		return err
	}
	b.duressPIN = pin
	return nil
}

// AddPIN appends an additional PIN recognized as a valid disarm code.
func (b *BaseStation) AddPIN(pin, name string) error {
	if err := validatePIN(pin); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pins = append(b.pins, PIN{Name: name, PIN: pin})
	return nil
}

// AddComponent enrolls a component, coercing its setting/instant-trip
// fields per devices.py's add_component.
func (b *BaseStation) AddComponent(name string, t message.DeviceType, sn string, setting *int, instantTrip bool) error {
	if t == message.DeviceBaseStation {
		return &ConfigError{Field: "type", Msg: "must enroll a component, not another base station"}
	}
	if len(name) > 22 {
		name = name[:22]
	}
	s := defaultSettingForType(t)
	if setting != nil {
		s = *setting
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.components.add(Component{
		SN:          sn,
		Name:        name,
		Type:        t,
		Setting:     s,
		InstantTrip: hasInstantTrip(t) && instantTrip,
	})
	return nil
}

// RemoveComponent unenrolls a component, a no-op if sn is not enrolled.
func (b *BaseStation) RemoveComponent(sn string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.components.remove(sn)
}

// Settings returns a copy of the current settings.
func (b *BaseStation) Settings() Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

// UpdateSettings validates and applies a partial settings change.
func (b *BaseStation) UpdateSettings(patch Settings, fields ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings.Update(patch, fields...)
}

func (b *BaseStation) IsArmed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isArmed()
}

func (b *BaseStation) IsArmedAway() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.armed == StateArmedAway
}

func (b *BaseStation) IsArmedHome() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.armed == StateArmedHome
}

func (b *BaseStation) IsArming() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.armed == StateArmingAway
}

func (b *BaseStation) isArmed() bool {
	return b.armed == StateArmedAway || b.armed == StateArmedHome
}

// send transmits msg with the station's current sequence number stamped
// in, then advances the sequence counter, mirroring
// AbstractDevice._send/_inc. Errors are swallowed: a transmit failure
// must not unwind a message handler holding the state lock.
func (b *BaseStation) send(m *message.Message) {
	m.Sequence = b.sequence
	b.sequence = (b.sequence + 1) % 16
	if b.sender == nil {
		return
	}
	_ = b.sender.Send(context.Background(), m)
}

func (b *BaseStation) sendStatus(kpSN string, plc byte, msgType message.MessageType, event byte, body []byte) {
	m, err := message.NewBaseStationKeypadMessage(kpSN, plc, 0, msgType, message.InfoTypeStatus, event, body, b.sn)
	if err != nil {
		return
	}
	b.send(m)
}

func (b *BaseStation) sendMenu(kpSN string, plc byte, msgType message.MessageType, event byte, body []byte) {
	m, err := message.NewBaseStationKeypadMessage(kpSN, plc, 0, msgType, message.InfoTypeMenu, event, body, "")
	if err != nil {
		return
	}
	b.send(m)
}

func (b *BaseStation) sendExtendedStatus(kpSN string, event byte) {
	st := message.ExtendedStatus{
		Flags:     b.errorFlags,
		Armed:     b.armedStatusType(),
		EntrySens: b.ess,
		TimeLeft:  uint16(b.timeLeft),
	}
	m, err := message.NewExtendedStatus(kpSN, 0, b.sn, message.MsgTypeResponse, event, st)
	if err != nil {
		return
	}
	b.send(m)
}

func (b *BaseStation) armedStatusType() message.ArmedStatusType {
	switch b.armed {
	case StateArmingAway:
		return message.ArmedStatusArmingAway
	case StateArmedAway:
		return message.ArmedStatusAway
	case StateArmedHome:
		return message.ArmedStatusHome
	default:
		return message.ArmedStatusOff
	}
}

// Arming / disarming / alarm

// ArmAway begins the exit-delay countdown; arming completes
// asynchronously once the countdown reaches zero.
func (b *BaseStation) ArmAway() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.armAwayLocked()
}

func (b *BaseStation) armAwayLocked() {
	b.armed = StateArmingAway
	b.timeLeft = b.settings.ExitDelay
	b.startCountdownLocked()
}

// ArmHome arms instantly: SimpliSafe v1/v2 has no home-arming countdown.
func (b *BaseStation) ArmHome() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.armHomeLocked()
}

func (b *BaseStation) armHomeLocked() {
	b.armed = StateArmedHome
	b.hooks.ArmHome()
}

// Disarm cancels any alarm/siren/countdown in progress and returns to
// the off state.
func (b *BaseStation) Disarm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disarmLocked()
}

func (b *BaseStation) disarmLocked() {
	b.armed = StateOff
	b.cancelCountdownLocked()
	if b.sirenTimer != nil {
		b.sirenTimer.Stop()
		b.sirenTimer = nil
	}
	b.sirenActive = false
	b.hooks.StopSiren()
	b.hooks.Disarm()
}

// Alarm triggers the siren (unless silent) and fires the Alarm hook,
// mirroring _alarm(silent).
func (b *BaseStation) Alarm(silent bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alarmLocked(silent)
}

func (b *BaseStation) alarmLocked(silent bool) {
	b.cancelCountdownLocked()
	if !silent {
		if !b.sirenActive {
			b.sirenActive = true
			b.hooks.StartSiren()
			duration := time.Duration(b.settings.SirenDuration) * time.Minute
			b.sirenTimer = time.AfterFunc(duration, func() {
				b.mu.Lock()
				defer b.mu.Unlock()
				b.sirenActive = false
				b.hooks.StopSiren()
			})
		}
	}
	b.hooks.Alarm()
}

func (b *BaseStation) cancelCountdownLocked() {
	b.countdownGen++
	b.timeLeft = 0
	b.onExpire = nil
}

// startCountdownLocked schedules the first 1Hz countdown tick under the
// current generation, with no onExpire action: an armed countdown that
// reaches zero alarms, and an arming-away countdown that reaches zero
// completes arming away. (The fix for the source's
// is_armed_away()/is_armed_away() duplicate in _trip lives in trip, which
// picks the away or home entry delay.)
func (b *BaseStation) startCountdownLocked() {
	b.onExpire = nil
	b.scheduleCountdownTick(b.countdownGen)
}

// startEntryDelayLocked begins a sensor-trip countdown whose expiry runs
// onExpire instead of unconditionally alarming, so an alert-only
// component can be told apart from an alarm-triggering one.
func (b *BaseStation) startEntryDelayLocked(onExpire func()) {
	b.countdownGen++
	b.onExpire = onExpire
	b.scheduleCountdownTick(b.countdownGen)
}

func (b *BaseStation) scheduleCountdownTick(gen uint64) {
	time.AfterFunc(time.Second, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if gen != b.countdownGen {
			return // superseded by a cancel or a newer countdown
		}
		b.countdownTickLocked(gen)
	})
}

func (b *BaseStation) countdownTickLocked(gen uint64) {
	switch {
	case b.isArmed():
		if b.timeLeft == 0 {
			if b.onExpire != nil {
				b.onExpire()
			} else {
				b.alarmLocked(false)
			}
			return
		}
		b.timeLeft--
		b.scheduleCountdownTick(gen)
	case b.armed == StateArmingAway:
		if b.timeLeft == 0 {
			b.armed = StateArmedAway
			b.hooks.ArmAway()
			return
		}
		b.timeLeft--
		b.scheduleCountdownTick(gen)
	default:
		b.cancelCountdownLocked()
	}
}

// trip starts the entry-delay countdown for a sensor event, unless
// instantTrip bypasses the delay entirely, in which case onExpire runs
// immediately. A countdown already in progress is left alone rather than
// restarted, matching the source's "don't re-trip" guard.
func (b *BaseStation) trip(instantTrip bool, onExpire func()) {
	if instantTrip {
		onExpire()
		return
	}
	if b.timeLeft != 0 {
		return
	}
	if b.armed == StateArmedAway {
		b.timeLeft = b.settings.EntryDelayAway
	} else if b.armed == StateArmedHome {
		b.timeLeft = b.settings.EntryDelayHome
	} else {
		return
	}
	b.startEntryDelayLocked(onExpire)
}

// HeartbeatSweep checks every enrolled component's last-seen time against
// HeartbeatTimeout and alerts on any that are overdue. Callers schedule
// this once every 24h, mirroring _heartbeat_timer's recursive Timer
// chain (made an explicit external loop here since Go has no
// batteries-included recurring timer).
func (b *BaseStation) HeartbeatSweep(now time.Time) {
	b.mu.Lock()
	overdue := make([]string, 0)
	for _, c := range b.components.all() {
		if c.LastHeartbeat.IsZero() {
			continue
		}
		if now.Sub(c.LastHeartbeat) > HeartbeatTimeout {
			overdue = append(overdue, c.SN)
		}
	}
	b.mu.Unlock()
	for _, sn := range overdue {
		b.hooks.Alert(AlertSensorNotResponding, sn)
	}
}

func (b *BaseStation) touchHeartbeatLocked(sn string) {
	if c, ok := b.components.get(sn); ok {
		c.LastHeartbeat = time.Now()
		b.components.add(c)
	}
}

// Handle dispatches one received message, the Go analogue of
// devices.py's _process_msg.
func (b *BaseStation) Handle(msg *message.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Kind == message.KindBaseStationKeypad {
		return // base stations never accept their own outbound message shape
	}
	c, ok := b.components.get(msg.SN)
	if !ok {
		return // unenrolled component
	}
	b.touchHeartbeatLocked(msg.SN)

	if msg.Kind == message.KindKeypad {
		b.handleKeypadLocked(msg, c)
		return
	}
	b.handleSensorLocked(msg, c)
}

func (b *BaseStation) handleSensorLocked(msg *message.Message, c Component) {
	switch msg.SensorOrigin {
	case message.OriginKeychainRemote:
		setting := KeychainRemoteSetting(c.Setting)
		if setting == KeychainRemoteDisabled {
			return
		}
		switch msg.EventByte {
		case message.KeychainPanic:
			if setting != KeychainRemotePanicDisabled {
				b.alarmLocked(false)
			}
		case message.KeychainAway:
			b.armAwayLocked()
		case message.KeychainOff:
			b.disarmLocked()
		}
	case message.OriginMotionSensor:
		setting := MotionSensorSetting(c.Setting)
		if msg.EventByte != message.MotionTripped {
			return
		}
		switch {
		case setting == MotionSensorAlarmHomeAndAway && b.isArmed(),
			setting == MotionSensorAlarmAwayOnly && b.armed == StateArmedAway:
			b.trip(c.InstantTrip, func() { b.alarmLocked(false) })
		case setting == MotionSensorNoAlarmAlertOnly && b.isArmed():
			b.trip(c.InstantTrip, func() { b.hooks.Alert(AlertSensorTripped, c.SN) })
		}
	case message.OriginEntrySensor:
		setting := EntrySensorSetting(c.Setting)
		if msg.EventByte != message.EntryOpen {
			return
		}
		b.ess = message.EntryStatusOpen
		switch {
		case setting == EntrySensorAlarmHomeAndAway && b.isArmed(),
			setting == EntrySensorAlarmAwayOnly && b.armed == StateArmedAway:
			b.trip(c.InstantTrip, func() { b.alarmLocked(false) })
		case setting == EntrySensorNoAlarmAlertOnly && b.isArmed():
			b.trip(c.InstantTrip, func() { b.hooks.Alert(AlertSensorTripped, c.SN) })
		}
	default:
		// PanicButton, GlassbreakSensor, and the always-on detectors ride
		// the same sensor wire shape but are distinguished by enrolled
		// DeviceType rather than SensorOrigin; see handlePanicOrGlassbreakLocked.
		b.handlePanicOrGlassbreakLocked(msg, c)
	}
}

func (b *BaseStation) handlePanicOrGlassbreakLocked(msg *message.Message, c Component) {
	switch c.Type {
	case message.DevicePanicButton:
		setting := PanicButtonSetting(c.Setting)
		switch setting {
		case PanicButtonAudibleAlarm:
			b.alarmLocked(false)
		case PanicButtonSilentAlarm:
			b.alarmLocked(true)
		}
	case message.DeviceGlassbreakSensor:
		setting := GlassbreakSetting(c.Setting)
		switch {
		case setting == GlassbreakAlarmHomeAndAway && b.isArmed(),
			setting == GlassbreakAlarmAwayOnly && b.armed == StateArmedAway:
			b.trip(c.InstantTrip, func() { b.alarmLocked(false) })
		}
	}
}

func (b *BaseStation) validPIN(pin string) bool {
	if pin == b.masterPIN || (b.duressPIN != "" && pin == b.duressPIN) {
		return true
	}
	for _, p := range b.pins {
		if p.PIN == pin {
			return true
		}
	}
	return false
}

func (b *BaseStation) handleKeypadLocked(msg *message.Message, c Component) {
	switch msg.EventByte {
	case message.EvDisarmPinRequest:
		pin, err := msg.PIN()
		if err != nil {
			return
		}
		if b.validPIN(pin) {
			b.sendStatus(msg.SN, 0x33, message.MsgTypeResponse, message.EvDisarmPinRequest, []byte{byte(message.DisarmValid)})
			b.disarmLocked()
			if b.duressPIN != "" && pin == b.duressPIN {
				b.alarmLocked(true)
			}
		} else {
			b.sendStatus(msg.SN, 0x33, message.MsgTypeResponse, message.EvDisarmPinRequest, []byte{byte(message.DisarmInvalid)})
		}
	case message.EvMenuPinRequest:
		pin, err := msg.PIN()
		if err != nil {
			return
		}
		if pin == b.masterPIN {
			b.sendMenu(msg.SN, 0x33, message.MsgTypeResponse, message.EvMenuPinRequest, []byte{byte(message.MenuPinValid)})
		} else {
			b.sendMenu(msg.SN, 0x33, message.MsgTypeResponse, message.EvMenuPinRequest, []byte{byte(message.MenuPinInvalid)})
		}
	case message.EvNewPinRequest:
		if pin, err := msg.PIN(); err == nil {
			b.masterPIN = pin
		}
	case message.EvExtendedStatusRequest:
		b.sendExtendedStatus(msg.SN, message.EvExtendedStatusRequest)
	case message.EvTestModeOnRequest:
		b.testMode = true
		b.sendStatus(msg.SN, 0x22, message.MsgTypeResponse, message.EvTestModeOnRequest, nil)
	case message.EvTestModeOffRequest:
		b.testMode = false
		b.sendStatus(msg.SN, 0x22, message.MsgTypeResponse, message.EvTestModeOffRequest, nil)
	case message.EvHomeRequest:
		b.armHomeLocked()
		b.sendStatus(msg.SN, 0x33, message.MsgTypeResponse, message.EvHomeRequest, []byte{0x00})
	case message.EvPanicRequest:
		if KeypadSetting(c.Setting) == KeypadPanicEnabled {
			b.alarmLocked(false)
		}
	case message.EvAwayRequest:
		b.armAwayLocked()
		b.sendStatus(msg.SN, 0x33, message.MsgTypeResponse, message.EvAwayRequest, []byte{0x00})
	case message.EvOffRequest:
		b.disarmLocked()
		b.sendStatus(msg.SN, 0x33, message.MsgTypeResponse, message.EvOffRequest, []byte{0x00})
	case message.EvEnterMenuRequest:
		b.sendMenu(msg.SN, 0x22, message.MsgTypeResponse, message.EvEnterMenuRequest, nil)
	case message.EvExitMenuRequest:
		b.sendMenu(msg.SN, 0x22, message.MsgTypeResponse, message.EvExitMenuRequest, nil)
	case message.EvChangePinMenuRequest:
		b.sendMenu(msg.SN, 0x22, message.MsgTypeResponse, message.EvChangePinMenuRequest, nil)
	case message.EvChangePinConfirmMenuRequest:
		b.sendMenu(msg.SN, 0x22, message.MsgTypeResponse, message.EvChangePinConfirmMenuRequest, nil)
	case message.EvAddComponentMenuRequest:
		b.sendMenu(msg.SN, 0x22, message.MsgTypeResponse, message.EvAddComponentMenuRequest, nil)
	case message.EvAddComponentTypeMenuRequest:
		b.sendMenu(msg.SN, 0x22, message.MsgTypeResponse, message.EvAddComponentTypeMenuRequest, nil)
	case message.EvRemoveComponentSelectMenuReq:
		b.sendMenu(msg.SN, 0x22, message.MsgTypeResponse, message.EvRemoveComponentSelectMenuReq, nil)
	case message.EvNewPrefixRequest:
		if len(msg.Body) >= 1 {
			b.settings.DialingPrefix = fmt.Sprintf("%d", msg.Body[0]&0xF)
		}
		b.sendMenu(msg.SN, 0x22, message.MsgTypeResponse, message.EvNewPrefixRequest, nil)
	case message.EvRemoveComponentConfirmMenuReq:
		if sn, _, _, err := msg.ComponentSerial(); err == nil {
			b.components.remove(sn)
		}
		b.sendMenu(msg.SN, 0x22, message.MsgTypeResponse, message.EvRemoveComponentConfirmMenuReq, nil)
	case message.EvRemoveComponentScrollMenuReq, message.EvRemoveComponentMenuRequest:
		n := 0
		if len(msg.Body) >= 1 && msg.EventByte == message.EvRemoveComponentScrollMenuReq {
			n = int(msg.Body[0])
		}
		b.handleRemoveScrollLocked(msg.SN, n)
	default:
		if ct, ok := addComponentDeviceType(msg.EventByte); ok {
			b.handleAddComponentLocked(msg, ct)
		}
	}
}

// removeScrollEvent maps an enrolled component's DeviceType to the
// event byte its scroll-menu response carries (per devices.py's
// if/elif chain over c_type in _process_msg).
func removeScrollEvent(t message.DeviceType) (byte, bool) {
	switch t {
	case message.DeviceKeypad:
		return message.EvRemoveKeypadScroll, true
	case message.DeviceKeychainRemote:
		return message.EvRemoveKeychainRemoteScroll, true
	case message.DevicePanicButton:
		return message.EvRemovePanicButtonScroll, true
	case message.DeviceMotionSensor:
		return message.EvRemoveMotionSensorScroll, true
	case message.DeviceEntrySensor:
		return message.EvRemoveEntrySensorScroll, true
	case message.DeviceGlassbreakSensor:
		return message.EvRemoveGlassbreakSensorScroll, true
	case message.DeviceCoDetector:
		return message.EvRemoveCoDetectorScroll, true
	case message.DeviceSmokeDetector:
		return message.EvRemoveSmokeDetectorScroll, true
	case message.DeviceWaterSensor:
		return message.EvRemoveWaterSensorScroll, true
	case message.DeviceFreezeSensor:
		return message.EvRemoveFreezeSensorScroll, true
	default:
		return 0, false
	}
}

func (b *BaseStation) handleRemoveScrollLocked(kpSN string, n int) {
	c, left, right, ok := b.components.at(n)
	if !ok {
		return
	}
	event, ok := removeScrollEvent(c.Type)
	if !ok {
		return
	}
	body := message.NewComponentSerialBody(c.SN, left, right)
	b.sendMenu(kpSN, 0x66, message.MsgTypeResponse, event, body)
}

// addComponentDeviceType maps an AddXMenuRequest event byte to the
// DeviceType it enrolls, mirroring the isinstance chain in
// devices.py's _process_msg.
func addComponentDeviceType(event byte) (message.DeviceType, bool) {
	switch event {
	case message.EvAddEntrySensorMenuRequest:
		return message.DeviceEntrySensor, true
	case message.EvAddMotionSensorMenuRequest:
		return message.DeviceMotionSensor, true
	case message.EvAddPanicButtonMenuRequest:
		return message.DevicePanicButton, true
	case message.EvAddKeychainRemoteMenuRequest:
		return message.DeviceKeychainRemote, true
	case message.EvAddGlassbreakSensorMenuRequest:
		return message.DeviceGlassbreakSensor, true
	case message.EvAddKeypadMenuRequest:
		return message.DeviceKeypad, true
	case message.EvAddCoDetectorMenuRequest:
		return message.DeviceCoDetector, true
	case message.EvAddFreezeSensorMenuRequest:
		return message.DeviceFreezeSensor, true
	case message.EvAddWaterSensorMenuRequest:
		return message.DeviceWaterSensor, true
	default:
		return 0, false
	}
}

func (b *BaseStation) handleAddComponentLocked(msg *message.Message, t message.DeviceType) {
	sn, _, _, err := msg.ComponentSerial()
	if err != nil {
		return
	}
	var respType message.ResponseType
	if _, exists := b.components.get(sn); exists {
		respType = message.ResponseComponentAlreadyAdded
	} else {
		b.components.add(Component{
			SN:      sn,
			Type:    t,
			Setting: defaultSettingForType(t),
		})
		respType = message.ResponseComponentAdded
	}
	b.sendMenu(msg.SN, 0x33, message.MsgTypeResponse, msg.EventByte, []byte{byte(respType)})
}
