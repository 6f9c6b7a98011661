package basestation

import "github.com/sscomm/simplisafe-rf/internal/message"

// VoicePrompts selects how verbosely the base station narrates state
// changes, mirroring devices.py's Settings.VoicePrompts enum (including
// its ERROR_ONLY value, dropped from the condensed catalog's prose).
type VoicePrompts int

const (
	VoicePromptsOff VoicePrompts = iota
	VoicePromptsOn
	VoicePromptsErrorOnly
)

// Settings is the base station's mutable configuration, replacing the
// dynamic kwargs dict devices.py keeps under BaseStation._settings with
// a typed struct and an explicit, validating Update method.
type Settings struct {
	Light          bool
	VoicePrompts   VoicePrompts
	DoorChime      bool
	VoiceVolume    int // 0-100
	SirenVolume    int // 0-100
	SirenDuration  int // minutes
	EntryDelayAway int // seconds, 30-250
	EntryDelayHome int // seconds, 1-250
	ExitDelay      int // seconds, 45-120
	DialingPrefix  string
}

// DefaultSettings mirrors devices.py: BaseStation.__init__'s _settings
// dict literal.
func DefaultSettings() Settings {
	return Settings{
		Light:          true,
		VoicePrompts:   VoicePromptsOn,
		DoorChime:      true,
		VoiceVolume:    35,
		SirenVolume:    100,
		SirenDuration:  5,
		EntryDelayAway: 30,
		EntryDelayHome: 1,
		ExitDelay:      45,
	}
}

// ConfigError reports an invalid PIN, component or out-of-range setting
// value, fatal to the call that produced it (§7).
type ConfigError struct {
	Field string
	Value interface{}
	Msg   string
}

func (e *ConfigError) Error() string {
	return "basestation: " + e.Field + ": " + e.Msg
}

// Update applies a partial settings change, validating each field
// devices.py's settings.setter range-checks before committing any of
// them — a single out-of-range field rejects the whole update, leaving
// the prior settings untouched.
func (s *Settings) Update(patch Settings, fields ...string) error {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	if set["voice_volume"] && (patch.VoiceVolume < 0 || patch.VoiceVolume > 100) {
		return &ConfigError{"voice_volume", patch.VoiceVolume, "must be 0-100"}
	}
	if set["siren_volume"] && (patch.SirenVolume < 0 || patch.SirenVolume > 100) {
		return &ConfigError{"siren_volume", patch.SirenVolume, "must be 0-100"}
	}
	if set["siren_duration"] && patch.SirenDuration < 1 {
		return &ConfigError{"siren_duration", patch.SirenDuration, "must be positive"}
	}
	if set["entry_delay_away"] && (patch.EntryDelayAway < 30 || patch.EntryDelayAway > 250) {
		return &ConfigError{"entry_delay_away", patch.EntryDelayAway, "must be 30-250"}
	}
	if set["entry_delay_home"] && (patch.EntryDelayHome < 1 || patch.EntryDelayHome > 250) {
		return &ConfigError{"entry_delay_home", patch.EntryDelayHome, "must be 1-250"}
	}
	if set["exit_delay"] && (patch.ExitDelay < 45 || patch.ExitDelay > 120) {
		return &ConfigError{"exit_delay", patch.ExitDelay, "must be 45-120"}
	}
	if set["dialing_prefix"] && len(patch.DialingPrefix) > 1 {
		return &ConfigError{"dialing_prefix", patch.DialingPrefix, "must be empty or a single digit"}
	}

	if set["light"] {
		s.Light = patch.Light
	}
	if set["voice_prompts"] {
		s.VoicePrompts = patch.VoicePrompts
	}
	if set["door_chime"] {
		s.DoorChime = patch.DoorChime
	}
	if set["voice_volume"] {
		s.VoiceVolume = patch.VoiceVolume
	}
	if set["siren_volume"] {
		s.SirenVolume = patch.SirenVolume
	}
	if set["siren_duration"] {
		s.SirenDuration = patch.SirenDuration
	}
	if set["entry_delay_away"] {
		s.EntryDelayAway = patch.EntryDelayAway
	}
	if set["entry_delay_home"] {
		s.EntryDelayHome = patch.EntryDelayHome
	}
	if set["exit_delay"] {
		s.ExitDelay = patch.ExitDelay
	}
	if set["dialing_prefix"] {
		s.DialingPrefix = patch.DialingPrefix
	}
	return nil
}

// Per-component-type setting enums, per devices.py's per-DeviceType
// UniqueIntEnum classes.
type (
	KeypadSetting         int
	KeychainRemoteSetting int
	PanicButtonSetting    int
	MotionSensorSetting   int
	EntrySensorSetting    int
	GlassbreakSetting     int
	AlwaysOnSetting       int // CO/smoke/water detectors: always on, no disable
	FreezeSensorSetting   int
)

const (
	KeypadPanicEnabled  KeypadSetting = 1
	KeypadPanicDisabled KeypadSetting = 2
)

const (
	KeychainRemoteDisabled      KeychainRemoteSetting = 0
	KeychainRemoteEnabled       KeychainRemoteSetting = 1
	KeychainRemotePanicDisabled KeychainRemoteSetting = 2
)

const (
	PanicButtonAudibleAlarm PanicButtonSetting = 1
	PanicButtonSilentAlarm  PanicButtonSetting = 2
)

const (
	MotionSensorDisabled          MotionSensorSetting = 0
	MotionSensorAlarmHomeAndAway  MotionSensorSetting = 1
	MotionSensorAlarmAwayOnly     MotionSensorSetting = 2
	MotionSensorNoAlarmAlertOnly  MotionSensorSetting = 64
)

const (
	EntrySensorDisabled         EntrySensorSetting = 0
	EntrySensorAlarmHomeAndAway EntrySensorSetting = 1
	EntrySensorAlarmAwayOnly    EntrySensorSetting = 2
	EntrySensorNoAlarmAlertOnly EntrySensorSetting = 64
)

const (
	GlassbreakDisabled         GlassbreakSetting = 0
	GlassbreakAlarmHomeAndAway GlassbreakSetting = 1
	GlassbreakAlarmAwayOnly    GlassbreakSetting = 2
)

const AlwaysOn AlwaysOnSetting = 255

const FreezeSensorDisabled FreezeSensorSetting = 0

// AlertType names the voice-alert catalog passed to the alert(kind,
// subject) hook.
type AlertType string

const (
	AlertAlarmOff             AlertType = "Alarm off"
	AlertSensorNotResponding  AlertType = "Sensor not responding"
	AlertNoLinkToDispatcher   AlertType = "No link to dispatcher"
	AlertSettingsSynchronized AlertType = "Your settings have been synchronized"
	// AlertSensorTripped has no equivalent in the source, whose
	// NO_ALARM_ALERT_ONLY path calls an _alert method that was never
	// implemented; it fills that gap with a distinct, named alert kind.
	AlertSensorTripped AlertType = "Sensor tripped"
)

// defaultSettingForType returns the zero-value setting appropriate to a
// newly-enrolled component of type t, mirroring add_component's implicit
// per-DeviceType coercion.
func defaultSettingForType(t message.DeviceType) int {
	switch t {
	case message.DeviceCoDetector, message.DeviceSmokeDetector, message.DeviceWaterSensor:
		return int(AlwaysOn)
	default:
		return 0
	}
}
