// Package rfconfig loads and validates the typed YAML configuration for
// a base station or keypad process, replacing the dynamic kwargs-style
// construction the original source uses.
package rfconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VoicePrompts selects how verbosely the base station narrates state
// changes over its voice output.
type VoicePrompts string

const (
	VoicePromptsOff       VoicePrompts = "off"
	VoicePromptsOn        VoicePrompts = "on"
	VoicePromptsErrorOnly VoicePrompts = "error_only"
)

// ConfigError reports an out-of-range or otherwise invalid setting,
// fatal to construction per §7.
type ConfigError struct {
	Field string
	Value interface{}
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rfconfig: %s=%v: %s", e.Field, e.Value, e.Msg)
}

// BaseStationConfig is the typed equivalent of devices.py's BaseStation
// settings kwargs: every field here has an explicit valid range, checked
// by Validate rather than left to duck-typed assignment.
type BaseStationConfig struct {
	SN string `yaml:"sn"` // the base station's own serial number, 6 hex digits

	GPIOChip      string `yaml:"gpio_chip"`
	RXOffset315   int    `yaml:"rx_offset_315"`
	TXOffset315   int    `yaml:"tx_offset_315"`
	RXOffset433   int    `yaml:"rx_offset_433"`
	TXOffset433   int    `yaml:"tx_offset_433"`

	Light           bool         `yaml:"light"`
	VoicePrompts    VoicePrompts `yaml:"voice_prompts"`
	DoorChime       bool         `yaml:"door_chime"`
	VoiceVolume     int          `yaml:"voice_volume"`      // 0-100
	SirenVolume     int          `yaml:"siren_volume"`      // 0-100
	SirenDuration   int          `yaml:"siren_duration"`    // minutes, 1-4
	EntryDelayAway  int          `yaml:"entry_delay_away"`  // seconds, 30-250
	EntryDelayHome  int          `yaml:"entry_delay_home"`  // seconds, 1-250
	ExitDelay       int          `yaml:"exit_delay"`        // seconds, 45-120
	DialingPrefix   string       `yaml:"dialing_prefix"`    // "" or one digit

	MasterPIN string `yaml:"master_pin"`
	DuressPIN string `yaml:"duress_pin"`

	LogDir   string `yaml:"log_dir"`
	LogLevel string `yaml:"log_level"`

	Advertise bool   `yaml:"advertise"`
	Hostname  string `yaml:"hostname"`
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*BaseStationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rfconfig: read %s: %w", path, err)
	}
	var cfg BaseStationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("rfconfig: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks every range-constrained field, mirroring the
// validation devices.py: BaseStation.settings performs inline.
func (c *BaseStationConfig) Validate() error {
	if len(c.SN) != 6 {
		return &ConfigError{"sn", c.SN, "must be exactly 6 hex digits"}
	}
	for _, ch := range c.SN {
		if !(ch >= '0' && ch <= '9' || ch >= 'A' && ch <= 'F' || ch >= 'a' && ch <= 'f') {
			return &ConfigError{"sn", c.SN, "must be exactly 6 hex digits"}
		}
	}
	if c.VoiceVolume < 0 || c.VoiceVolume > 100 {
		return &ConfigError{"voice_volume", c.VoiceVolume, "must be 0-100"}
	}
	if c.SirenVolume < 0 || c.SirenVolume > 100 {
		return &ConfigError{"siren_volume", c.SirenVolume, "must be 0-100"}
	}
	if c.SirenDuration < 1 || c.SirenDuration > 4 {
		return &ConfigError{"siren_duration", c.SirenDuration, "must be 1-4 minutes"}
	}
	if c.EntryDelayAway < 30 || c.EntryDelayAway > 250 {
		return &ConfigError{"entry_delay_away", c.EntryDelayAway, "must be 30-250 seconds"}
	}
	if c.EntryDelayHome < 1 || c.EntryDelayHome > 250 {
		return &ConfigError{"entry_delay_home", c.EntryDelayHome, "must be 1-250 seconds"}
	}
	if c.ExitDelay < 45 || c.ExitDelay > 120 {
		return &ConfigError{"exit_delay", c.ExitDelay, "must be 45-120 seconds"}
	}
	if len(c.DialingPrefix) > 1 {
		return &ConfigError{"dialing_prefix", c.DialingPrefix, "must be empty or a single digit"}
	}
	switch c.VoicePrompts {
	case VoicePromptsOff, VoicePromptsOn, VoicePromptsErrorOnly:
	default:
		return &ConfigError{"voice_prompts", c.VoicePrompts, "must be off, on, or error_only"}
	}
	if len(c.MasterPIN) != 4 {
		return &ConfigError{"master_pin", c.MasterPIN, "must be exactly 4 digits"}
	}
	if c.DuressPIN != "" && len(c.DuressPIN) != 4 {
		return &ConfigError{"duress_pin", c.DuressPIN, "must be empty or exactly 4 digits"}
	}
	return nil
}

// KeypadConfig is the typed YAML configuration for a keypad process: far
// smaller than BaseStationConfig since a keypad carries no alarm
// settings of its own, only its radio and its own serial number.
type KeypadConfig struct {
	SN string `yaml:"sn"`

	GPIOChip    string `yaml:"gpio_chip"`
	RXOffset433 int    `yaml:"rx_offset_433"`
	TXOffset433 int    `yaml:"tx_offset_433"`

	LogDir   string `yaml:"log_dir"`
	LogLevel string `yaml:"log_level"`

	Advertise bool   `yaml:"advertise"`
	Hostname  string `yaml:"hostname"`
}

// LoadKeypadConfig reads and parses a YAML keypad config file at path.
func LoadKeypadConfig(path string) (*KeypadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rfconfig: read %s: %w", path, err)
	}
	var cfg KeypadConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("rfconfig: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the keypad's own serial number is well-formed.
func (c *KeypadConfig) Validate() error {
	if len(c.SN) != 5 {
		return &ConfigError{"sn", c.SN, "must be exactly 5 characters"}
	}
	return nil
}
