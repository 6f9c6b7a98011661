// Command simplisafe-basestation runs a SimpliSafe v1/v2 base station
// against a real GPIO radio, or an in-process simulated one with --sim,
// wiring internal/basestation's state machine to internal/rfio's
// Transceiver.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/sscomm/simplisafe-rf/internal/basestation"
	"github.com/sscomm/simplisafe-rf/internal/message"
	"github.com/sscomm/simplisafe-rf/internal/pulse"
	"github.com/sscomm/simplisafe-rf/internal/rfconfig"
	"github.com/sscomm/simplisafe-rf/internal/rfio"
	"github.com/sscomm/simplisafe-rf/internal/rflog"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "Path to the base station's YAML configuration file.")
		sim         = pflag.Bool("sim", false, "Use an in-process simulated radio instead of a real GPIO line.")
		gpioChip    = pflag.String("gpio-chip", "", "Override the config's gpio_chip (e.g. gpiochip0).")
		logLevel    = pflag.String("log-level", "", "Override the config's log_level (debug, info, warn, error).")
		frameLogDir = pflag.String("frame-log-dir", "", "Override the config's log_dir for raw-frame CSV logging.")
		help        = pflag.Bool("help", false, "Display help text.")
	)
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: simplisafe-basestation --config <file> [flags]")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "simplisafe-basestation: --config is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := rfconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *gpioChip != "" {
		cfg.GPIOChip = *gpioChip
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *frameLogDir != "" {
		cfg.LogDir = *frameLogDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := rflog.New("basestation", parseLevel(cfg.LogLevel))

	var frameLogger rfio.FrameLogger
	if cfg.LogDir != "" {
		csv, err := rflog.NewCSVFrameLogger(cfg.LogDir)
		if err != nil {
			logger.Fatal("open frame log", "err", err)
		}
		defer csv.Close()
		frameLogger = csv
	}

	io, err := openRawIO(*sim, cfg.GPIOChip, cfg.RXOffset433, cfg.TXOffset433)
	if err != nil {
		logger.Fatal("open radio", "err", err)
	}
	defer io.Close()

	txr := rfio.New(io, pulse.RoleBaseStation, frameLogger)
	defer txr.Close()

	hooks := &loggingHooks{log: logger}
	base, err := basestation.New(cfg.SN, cfg.MasterPIN, txr, hooks)
	if err != nil {
		logger.Fatal("construct base station", "err", err)
	}
	if cfg.DuressPIN != "" {
		if err := base.SetDuressPIN(cfg.DuressPIN); err != nil {
			logger.Fatal("set duress pin", "err", err)
		}
	}
	if err := applySettings(base, cfg); err != nil {
		logger.Fatal("apply settings", "err", err)
	}

	if cfg.Advertise {
		advertise(logger, cfg.Hostname)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	heartbeat := time.NewTicker(24 * time.Hour)
	defer heartbeat.Stop()

	msgCh := make(chan *message.Message)
	errCh := make(chan error, 1)
	go func() {
		for {
			msg, err := txr.Recv(ctx)
			if err != nil {
				errCh <- err
				return
			}
			select {
			case msgCh <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("base station running", "sn", cfg.SN, "sim", *sim)
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case now := <-heartbeat.C:
			base.HeartbeatSweep(now)
		case msg := <-msgCh:
			base.Handle(msg)
		case err := <-errCh:
			if ctx.Err() != nil {
				return
			}
			logger.Error("recv", "err", err)
			return
		}
	}
}

// applySettings maps every config field devices.py's Settings dict
// carries onto the base station's typed Settings, applying all of them
// in one Update call so a single bad field rejects the whole batch.
func applySettings(base *basestation.BaseStation, cfg *rfconfig.BaseStationConfig) error {
	var voicePrompts basestation.VoicePrompts
	switch cfg.VoicePrompts {
	case rfconfig.VoicePromptsOff:
		voicePrompts = basestation.VoicePromptsOff
	case rfconfig.VoicePromptsErrorOnly:
		voicePrompts = basestation.VoicePromptsErrorOnly
	default:
		voicePrompts = basestation.VoicePromptsOn
	}
	patch := basestation.Settings{
		Light:          cfg.Light,
		VoicePrompts:   voicePrompts,
		DoorChime:      cfg.DoorChime,
		VoiceVolume:    cfg.VoiceVolume,
		SirenVolume:    cfg.SirenVolume,
		SirenDuration:  cfg.SirenDuration,
		EntryDelayAway: cfg.EntryDelayAway,
		EntryDelayHome: cfg.EntryDelayHome,
		ExitDelay:      cfg.ExitDelay,
		DialingPrefix:  cfg.DialingPrefix,
	}
	return base.UpdateSettings(patch,
		"light", "voice_prompts", "door_chime", "voice_volume", "siren_volume",
		"siren_duration", "entry_delay_away", "entry_delay_home", "exit_delay",
		"dialing_prefix")
}

// loggingHooks implements basestation.Hooks by logging every callback,
// standing in for devices.py's BaseStation no-op overridables (siren
// driver, dialer, voice prompt player, door chime relay) until wired to
// real hardware.
type loggingHooks struct {
	log *log.Logger
}

func (h *loggingHooks) Alarm()   { h.log.Warn("alarm") }
func (h *loggingHooks) ArmAway() { h.log.Info("armed away") }
func (h *loggingHooks) ArmHome() { h.log.Info("armed home") }
func (h *loggingHooks) Disarm()  { h.log.Info("disarmed") }
func (h *loggingHooks) DoorChime() {
	h.log.Debug("door chime")
}
func (h *loggingHooks) StartSiren() { h.log.Warn("siren on") }
func (h *loggingHooks) StopSiren()  { h.log.Info("siren off") }
func (h *loggingHooks) Alert(kind basestation.AlertType, subject string) {
	h.log.Warn("alert", "kind", kind, "subject", subject)
}

func advertise(logger *log.Logger, hostname string) {
	name := hostname
	if name == "" {
		name = "simplisafe-basestation"
	}
	cfg := dnssd.Config{
		Name: name,
		Type: "_simplisafe-basestation._tcp",
		Port: 0,
	}
	sv, err := dnssd.NewService(cfg)
	if err != nil {
		logger.Error("dnssd: create service", "err", err)
		return
	}
	rp, err := dnssd.NewResponder()
	if err != nil {
		logger.Error("dnssd: create responder", "err", err)
		return
	}
	if _, err := rp.Add(sv); err != nil {
		logger.Error("dnssd: add service", "err", err)
		return
	}
	logger.Info("dnssd: announcing", "name", name)
	go func() {
		if err := rp.Respond(context.Background()); err != nil {
			logger.Error("dnssd: responder", "err", err)
		}
	}()
}

func openRawIO(sim bool, chip string, rxOffset, txOffset int) (rfio.RawIO, error) {
	if sim {
		return rfio.NewSimRawIO(), nil
	}
	return rfio.OpenGPIOLine(chip, rxOffset, txOffset)
}

func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
