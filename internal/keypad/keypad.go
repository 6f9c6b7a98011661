// Package keypad implements the wall keypad's client-side view of the
// system: the page/menu state machine devices.py's Keypad class sketches
// (much of it left as "TODO"/"to be continued" stubs there), its request
// builders, and the timers that drive its backlight and menu-PIN entry
// UI, independent of the base station's own (server-side) state machine
// in package basestation.
package keypad

import (
	"context"
	"sync"
	"time"

	"github.com/sscomm/simplisafe-rf/internal/message"
)

// Mode is the coarse away/home/off mode the keypad displays, derived from
// the armed state last reported by the base station.
type Mode int

const (
	ModeOff Mode = iota
	ModeAway
	ModeHome
)

// Page is the top-level screen the keypad is currently showing.
type Page int

const (
	PageBoot Page = iota
	PageAlarmState
	PageSensorError
	PageEnterDisarmPin
	PageEnterMenuPin
)

// MenuPage is the current item within the installer menu, reachable only
// once the keypad has been placed in_menu by a valid menu PIN.
type MenuPage int

const (
	MenuNone MenuPage = iota
	MenuChangePin
	MenuDialingPrefix
	MenuAddComponent
	MenuRemoveComponent
	MenuTest
	MenuExitMenu
)

// AddComponentPage walks the ten enrollable device types in the fixed
// order the installer menu presents them.
type AddComponentPage int

const (
	AddComponentNone AddComponentPage = iota
	AddEntrySensor
	AddMotionSensor
	AddPanicButton
	AddKeypad
	AddKeychainRemote
	AddGlassbreakSensor
	AddCoDetector
	AddSmokeDetector
	AddWaterSensor
	AddFreezeSensor
)

// addComponentEvent maps an AddComponentPage to the event byte the keypad
// sends to select it, per the catalog's Ev*MenuRequest constants.
var addComponentEvent = map[AddComponentPage]byte{
	AddEntrySensor:      message.EvAddEntrySensorMenuRequest,
	AddMotionSensor:     message.EvAddMotionSensorMenuRequest,
	AddPanicButton:      message.EvAddPanicButtonMenuRequest,
	AddKeypad:           message.EvAddKeypadMenuRequest,
	AddKeychainRemote:   message.EvAddKeychainRemoteMenuRequest,
	AddGlassbreakSensor: message.EvAddGlassbreakSensorMenuRequest,
	AddCoDetector:       message.EvAddCoDetectorMenuRequest,
	AddSmokeDetector:    message.EvAddSmokeDetectorMenuRequest,
	AddWaterSensor:      message.EvAddWaterSensorMenuRequest,
	AddFreezeSensor:     message.EvAddComponentLastTypeMenuReq,
}

// Hooks are the keypad's physical outputs, standing in for devices.py's
// Keypad methods meant to be overridden by a hardware-specific subclass
// (display/backlight/button_beep/warning_beep), all no-ops in the
// source's base class.
type Hooks interface {
	Display(page Page, mode Mode, buffer string)
	Backlight(on bool)
	ButtonBeep()
	WarningBeep()
}

// Sender transmits an outgoing request frame, mirroring basestation.Sender
// on the keypad's side of the same link.
type Sender interface {
	Send(ctx context.Context, m *message.Message) error
}

// Keypad is one wall keypad's local state: what it is currently showing,
// what menu item (if any) it is on, and the timers governing its
// backlight and menu-PIN-entry idle cancel.
type Keypad struct {
	mu       sync.Mutex
	sn       string
	sequence byte

	page              Page
	menuPage          MenuPage
	addComponentPage  AddComponentPage
	removeScrollCount int
	inRemoveScroll    bool
	entryBuffer       string

	errorFlags message.ErrorFlags
	armed      message.ArmedStatusType
	ess        message.EntrySensorStatusType
	timeLeft   uint16

	countdownGen uint64

	backlightTimer *time.Timer
	menuPinTimer   *time.Timer

	sender Sender
	hooks  Hooks
}

// New constructs a Keypad and requests the base station's current status,
// matching devices.py's Keypad.__init__ (display(False) then an immediate
// ExtendedStatusRequest).
func New(sn string, sender Sender, hooks Hooks) *Keypad {
	k := &Keypad{
		sn:     sn,
		page:   PageBoot,
		armed:  message.ArmedStatusOff,
		ess:    message.EntryStatusClosed,
		sender: sender,
		hooks:  hooks,
	}
	k.display(false)
	k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvExtendedStatusRequest, nil))
	return k
}

// send stamps the current sequence counter onto m and transmits it,
// advancing the sequence by 4 (mod 16) afterward — Keypad overrides
// AbstractDevice's plain +1 with this stride, per devices.py's Keypad._inc.
func (k *Keypad) send(m *message.Message) {
	m.Sequence = k.sequence & 0xF
	k.sequence = (k.sequence + 4) % 16
	if k.sender == nil {
		return
	}
	_ = k.sender.Send(context.Background(), m)
}

func (k *Keypad) display(backlight bool) {
	if k.backlightTimer != nil {
		k.backlightTimer.Stop()
		k.backlightTimer = nil
	}
	k.hooks.Backlight(backlight)
	if backlight {
		k.backlightTimer = time.AfterFunc(20*time.Second, func() { k.hooks.Backlight(false) })
	}
	k.hooks.Display(k.page, k.mode(), k.entryBuffer)
}

func (k *Keypad) mode() Mode {
	switch k.armed {
	case message.ArmedStatusArmingAway, message.ArmedStatusAway:
		return ModeAway
	case message.ArmedStatusArmingHome, message.ArmedStatusHome:
		return ModeHome
	default:
		return ModeOff
	}
}

func (k *Keypad) isArmed() bool {
	return k.armed == message.ArmedStatusAway || k.armed == message.ArmedStatusHome
}

func (k *Keypad) isArming() bool {
	return k.armed == message.ArmedStatusArmingAway || k.armed == message.ArmedStatusArmingHome
}

// InMenu reports whether a valid menu PIN has placed the keypad inside
// the installer menu.
func (k *Keypad) InMenu() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.menuPage != MenuNone
}

func (k *Keypad) isEditing() bool {
	return k.page == PageEnterDisarmPin || k.page == PageEnterMenuPin
}

// scheduleCountdown mirrors the local warning-beep cadence devices.py's
// Keypad._countdown drives off the time_left the base station's
// ExtendedStatus messages report, independent of the base station's own
// authoritative countdown in package basestation.
func (k *Keypad) scheduleCountdown() {
	k.countdownGen++
	gen := k.countdownGen
	time.AfterFunc(time.Second, func() { k.countdownTick(gen) })
}

func (k *Keypad) countdownTick(gen uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if gen != k.countdownGen {
		return
	}
	if !k.isArmed() && !k.isArming() {
		k.timeLeft = 0
		return
	}
	if k.timeLeft == 0 {
		return
	}
	k.timeLeft--
	k.hooks.WarningBeep()
	k.scheduleCountdown()
}

// handleExtendedStatus applies a status report from the base station —
// covers ExtendedStatusResponse, ExtendedStatusUpdate and
// ExtendedStatusRemoteUpdate, which all carry the identical payload
// shape and are handled identically in devices.py's _process_msg.
func (k *Keypad) handleExtendedStatus(st message.ExtendedStatus) {
	k.errorFlags = st.Flags
	k.armed = st.Armed
	k.ess = st.EntrySens
	k.timeLeft = st.TimeLeft
	k.scheduleCountdown()
}

// Handle processes one incoming base-station-to-keypad message addressed
// to this keypad, updating local state and redisplaying as needed.
// devices.py's _process_msg numbers its branches with "# To be continued";
// this handles the events listed in the switch below, and any other
// event is ignored.
func (k *Keypad) Handle(msg *message.Message) {
	if msg.Kind != message.KindBaseStationKeypad || msg.SN != k.sn {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	switch {
	case msg.Info == message.InfoTypeStatus && isExtendedStatusEvent(msg.EventByte):
		st, err := msg.ExtendedStatus()
		if err != nil {
			return
		}
		k.handleExtendedStatus(st)

	case msg.Info == message.InfoTypeStatus && msg.EventByte == message.EvStatusUpdate:
		if len(msg.Body) == 1 {
			k.errorFlags = message.ErrorFlags(msg.Body[0])
		}

	case msg.EventByte == message.EvDisarmPinRequest:
		// BaseStationKeypadDisarmPinResponse: no state change, just redisplay.

	case msg.EventByte == message.EvMenuPinRequest:
		k.handleMenuPinResponse(msg)

	case msg.EventByte == message.EvHomeRequest, msg.EventByte == message.EvAwayRequest:
		// Acknowledgement only; ExtendedStatusUpdate carries the real state.

	case msg.EventByte == message.EvOffRemoteUpdate:

	case msg.EventByte == message.EvEnterMenuRequest:
		k.cancelMenuPinTimer()
		k.page = PageEnterMenuPin
		k.entryBuffer = ""
		k.menuPinTimer = time.AfterFunc(5*time.Second, k.cancelMenu)

	case msg.EventByte == message.EvNewPrefixRequest:

	default:
		return
	}
	k.display(true)
}

func isExtendedStatusEvent(ev byte) bool {
	switch ev {
	case message.EvExtendedStatusRequest, message.EvExtendedStatusUpdate, message.EvExtendedStatusRemoteUpdate:
		return true
	default:
		return false
	}
}

func (k *Keypad) handleMenuPinResponse(msg *message.Message) {
	if len(msg.Body) != 1 {
		return
	}
	switch message.MenuPinResponseType(msg.Body[0]) {
	case message.MenuPinValid:
		k.cancelMenuPinTimer()
		k.menuPage = MenuChangePin
	default:
		k.cancelMenuPinTimer()
		k.entryBuffer = ""
		k.page = PageEnterMenuPin
		k.menuPinTimer = time.AfterFunc(5*time.Second, k.cancelMenu)
	}
}

func (k *Keypad) cancelMenuPinTimer() {
	if k.menuPinTimer != nil {
		k.menuPinTimer.Stop()
		k.menuPinTimer = nil
	}
}

// cancelMenu runs when the 5-second menu-PIN idle timer expires, returning
// the keypad to its resting alarm-state page, matching _menu_cancel (never
// spelled out in the source beyond being scheduled — devices.py's "TODO"
// coverage gap, filled in here to actually leave the menu).
func (k *Keypad) cancelMenu() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.menuPage = MenuNone
	k.addComponentPage = AddComponentNone
	k.inRemoveScroll = false
	k.removeScrollCount = 0
	k.entryBuffer = ""
	k.page = PageAlarmState
	k.display(true)
}

// Buttons, corresponding to devices.py's away/off/home/numpad/menu/
// panic/delete physical-button handlers.

func (k *Keypad) Away() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.menuPage != MenuNone {
		k.menuEnter()
	} else {
		k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvAwayRequest, nil))
	}
	k.hooks.ButtonBeep()
}

func (k *Keypad) Off() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.menuPage != MenuNone {
		k.menuPrev()
	} else {
		k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvOffRequest, nil))
	}
	k.hooks.ButtonBeep()
}

func (k *Keypad) Home() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.menuPage != MenuNone {
		k.menuNext()
	} else {
		k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvHomeRequest, nil))
	}
	k.hooks.ButtonBeep()
}

func (k *Keypad) Menu() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.menuPage != MenuNone {
		k.cancelMenuLocked()
	} else {
		k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvEnterMenuRequest, nil))
	}
	k.hooks.ButtonBeep()
}

func (k *Keypad) cancelMenuLocked() {
	k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvExitMenuRequest, nil))
	k.menuPage = MenuNone
	k.addComponentPage = AddComponentNone
	k.inRemoveScroll = false
	k.removeScrollCount = 0
}

func (k *Keypad) Panic() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvPanicRequest, nil))
	k.hooks.ButtonBeep()
}

// Numpad records one digit of PIN entry, switching into the disarm-PIN
// page the first time a digit is pressed from the resting alarm page.
func (k *Keypad) Numpad(n int) error {
	if n < 0 || n > 9 {
		return errInvalidDigit
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	switch k.page {
	case PageAlarmState, PageSensorError:
		k.entryBuffer = string(rune('0' + n))
		k.page = PageEnterDisarmPin
	case PageEnterDisarmPin, PageEnterMenuPin:
		k.entryBuffer += string(rune('0' + n))
	}
	k.display(true)
	k.hooks.ButtonBeep()
	if k.page == PageEnterDisarmPin && len(k.entryBuffer) == 4 {
		k.submitDisarmPin()
	} else if k.page == PageEnterMenuPin && len(k.entryBuffer) == 4 {
		k.submitMenuPin()
	}
	return nil
}

func (k *Keypad) submitDisarmPin() {
	m, err := message.NewKeypadPin(k.sn, 0, message.EvDisarmPinRequest, k.entryBuffer)
	k.entryBuffer = ""
	k.page = PageAlarmState
	if err != nil {
		return
	}
	k.send(m)
}

func (k *Keypad) submitMenuPin() {
	m, err := message.NewKeypadPin(k.sn, 0, message.EvMenuPinRequest, k.entryBuffer)
	k.entryBuffer = ""
	if err != nil {
		return
	}
	k.send(m)
}

// Delete implements the backspace key: erases one entry-buffer digit
// while editing a PIN, or steps back a menu level otherwise.
func (k *Keypad) Delete() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.isEditing() {
		if len(k.entryBuffer) > 0 {
			k.entryBuffer = k.entryBuffer[:len(k.entryBuffer)-1]
		}
		k.display(true)
	} else if k.menuPage != MenuNone {
		k.menuPrev()
	}
	k.hooks.ButtonBeep()
}

var errInvalidDigit = &invalidDigitError{}

type invalidDigitError struct{}

func (*invalidDigitError) Error() string { return "keypad: digit must be 0-9" }

// menuNext implements the Home-button menu-advance traversal. The source
// (devices.py's _menu_next) assigns with "==" rather than "=" for the top
// three menu items — a no-op in Python that would have left the menu
// permanently stuck on CHANGE_PIN — corrected here to a real assignment.
func (k *Keypad) menuNext() {
	switch k.menuPage {
	case MenuChangePin:
		k.menuPage = MenuDialingPrefix
	case MenuDialingPrefix:
		k.menuPage = MenuAddComponent
	case MenuAddComponent:
		k.menuNextAddComponent()
	case MenuRemoveComponent:
		k.menuNextRemoveComponent()
	case MenuTest:
		k.menuPage = MenuExitMenu
	}
	k.display(true)
}

func (k *Keypad) menuNextAddComponent() {
	switch k.addComponentPage {
	case AddComponentNone:
		k.menuPage = MenuRemoveComponent
	case AddEntrySensor:
		k.addComponentPage = AddMotionSensor
	case AddMotionSensor:
		k.addComponentPage = AddPanicButton
	case AddPanicButton:
		k.addComponentPage = AddKeypad
	case AddKeypad:
		k.addComponentPage = AddKeychainRemote
	case AddKeychainRemote:
		k.addComponentPage = AddGlassbreakSensor
	case AddGlassbreakSensor:
		k.addComponentPage = AddCoDetector
	case AddCoDetector:
		k.addComponentPage = AddSmokeDetector
	case AddSmokeDetector:
		k.addComponentPage = AddWaterSensor
	case AddWaterSensor:
		k.addComponentPage = AddFreezeSensor
		// The final entry announces itself three times, 1s apart, matching
		// devices.py's own triple-send on reaching FREEZE_SENSOR.
		msg := message.NewKeypadMessage(k.sn, 0x22, 0, message.EvAddComponentLastTypeMenuReq, nil)
		k.send(msg)
		time.AfterFunc(1*time.Second, func() { k.resend(msg) })
		time.AfterFunc(2*time.Second, func() { k.resend(msg) })
	case AddFreezeSensor:
		// Last entry; Home has nothing further to advance to.
	}
}

func (k *Keypad) resend(m *message.Message) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.send(m)
}

func (k *Keypad) menuNextRemoveComponent() {
	if !k.inRemoveScroll {
		k.menuPage = MenuTest
		return
	}
	k.removeScrollCount++
	k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvRemoveComponentScrollMenuReq, []byte{byte(k.removeScrollCount)}))
}

// menuPrev is devices.py's own "# TODO" stub (_menu_prev); implemented
// here as the mirror image of menuNext so Off/Delete can actually leave a
// submenu instead of doing nothing.
func (k *Keypad) menuPrev() {
	switch k.menuPage {
	case MenuDialingPrefix:
		k.menuPage = MenuChangePin
	case MenuAddComponent:
		k.menuPrevAddComponent()
	case MenuRemoveComponent:
		k.menuPrevRemoveComponent()
	case MenuTest:
		k.menuPage = MenuRemoveComponent
	case MenuExitMenu:
		k.menuPage = MenuTest
	case MenuChangePin:
		// First entry; nothing further back but the menu itself.
	}
	k.display(true)
}

func (k *Keypad) menuPrevAddComponent() {
	switch k.addComponentPage {
	case AddComponentNone:
		k.menuPage = MenuDialingPrefix
	case AddEntrySensor:
		k.addComponentPage = AddComponentNone
	case AddMotionSensor:
		k.addComponentPage = AddEntrySensor
	case AddPanicButton:
		k.addComponentPage = AddMotionSensor
	case AddKeypad:
		k.addComponentPage = AddPanicButton
	case AddKeychainRemote:
		k.addComponentPage = AddKeypad
	case AddGlassbreakSensor:
		k.addComponentPage = AddKeychainRemote
	case AddCoDetector:
		k.addComponentPage = AddGlassbreakSensor
	case AddSmokeDetector:
		k.addComponentPage = AddCoDetector
	case AddWaterSensor:
		k.addComponentPage = AddSmokeDetector
	case AddFreezeSensor:
		k.addComponentPage = AddWaterSensor
	}
}

func (k *Keypad) menuPrevRemoveComponent() {
	if !k.inRemoveScroll {
		k.menuPage = MenuAddComponent
		k.addComponentPage = AddComponentNone
		return
	}
	if k.removeScrollCount == 0 {
		k.inRemoveScroll = false
		return
	}
	k.removeScrollCount--
}

// menuEnter is devices.py's own "# TODO" stub (_menu_enter), triggered by
// pressing Away while in_menu(); implemented to actually select the
// current menu item rather than doing nothing.
func (k *Keypad) menuEnter() {
	switch k.menuPage {
	case MenuChangePin:
		k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvChangePinMenuRequest, nil))
	case MenuDialingPrefix:
		k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvChangePrefixMenuRequest, nil))
	case MenuAddComponent:
		k.menuEnterAddComponent()
	case MenuRemoveComponent:
		k.menuEnterRemoveComponent()
	case MenuTest:
		// Self-test has nothing further to select.
	case MenuExitMenu:
		k.cancelMenuLocked()
	}
	k.display(true)
}

func (k *Keypad) menuEnterAddComponent() {
	if k.addComponentPage == AddComponentNone {
		k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvAddComponentMenuRequest, nil))
		k.addComponentPage = AddEntrySensor
		return
	}
	ev, ok := addComponentEvent[k.addComponentPage]
	if !ok {
		return
	}
	k.send(message.NewKeypadMessage(k.sn, 0x22, 0, ev, nil))
}

func (k *Keypad) menuEnterRemoveComponent() {
	if !k.inRemoveScroll {
		k.inRemoveScroll = true
		k.removeScrollCount = 0
		k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvRemoveComponentSelectMenuReq, nil))
		return
	}
	k.send(message.NewKeypadMessage(k.sn, 0x22, 0, message.EvRemoveComponentConfirmMenuReq, nil))
}

// Snapshot exposes the keypad's display-relevant state for a UI layer,
// standing in for devices.py's page/mode/is_editing/in_menu properties.
type Snapshot struct {
	Page        Page
	Mode        Mode
	Buffer      string
	ErrorFlags  message.ErrorFlags
	EntryStatus message.EntrySensorStatusType
	TimeLeft    uint16
	InMenu      bool
}

func (k *Keypad) Snapshot() Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()
	return Snapshot{
		Page:        k.page,
		Mode:        k.mode(),
		Buffer:      k.entryBuffer,
		ErrorFlags:  k.errorFlags,
		EntryStatus: k.ess,
		TimeLeft:    k.timeLeft,
		InMenu:      k.menuPage != MenuNone,
	}
}
