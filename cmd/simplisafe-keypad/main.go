// Command simplisafe-keypad runs a SimpliSafe wall keypad client against
// a real GPIO radio, or an in-process simulated one with --sim, wiring
// internal/keypad's page/menu state machine to internal/rfio's
// Transceiver.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/sscomm/simplisafe-rf/internal/keypad"
	"github.com/sscomm/simplisafe-rf/internal/message"
	"github.com/sscomm/simplisafe-rf/internal/pulse"
	"github.com/sscomm/simplisafe-rf/internal/rfconfig"
	"github.com/sscomm/simplisafe-rf/internal/rfio"
	"github.com/sscomm/simplisafe-rf/internal/rflog"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "Path to the keypad's YAML configuration file.")
		sim         = pflag.Bool("sim", false, "Use an in-process simulated radio instead of a real GPIO line.")
		gpioChip    = pflag.String("gpio-chip", "", "Override the config's gpio_chip (e.g. gpiochip0).")
		logLevel    = pflag.String("log-level", "", "Override the config's log_level (debug, info, warn, error).")
		frameLogDir = pflag.String("frame-log-dir", "", "Override the config's log_dir for raw-frame CSV logging.")
		help        = pflag.Bool("help", false, "Display help text.")
	)
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: simplisafe-keypad --config <file> [flags]")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "simplisafe-keypad: --config is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := rfconfig.LoadKeypadConfig(*configPath)
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

	logger := rflog.New("keypad", parseLevel(cfg.LogLevel))

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

	txr := rfio.New(io, pulse.RoleKeypad, frameLogger)
	defer txr.Close()

	hooks := &loggingHooks{log: logger}
	kp := keypad.New(cfg.SN, txr, hooks)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

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

	logger.Info("keypad running", "sn", cfg.SN, "sim", *sim)
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case msg := <-msgCh:
			kp.Handle(msg)
		case err := <-errCh:
			if ctx.Err() != nil {
				return
			}
			logger.Error("recv", "err", err)
			return
		}
	}
}

// loggingHooks implements keypad.Hooks by logging every callback,
// standing in for devices.py's Keypad no-op overridables (display,
// backlight, button_beep, warning_beep) until wired to real hardware.
type loggingHooks struct {
	log *log.Logger
}

func (h *loggingHooks) Display(page keypad.Page, mode keypad.Mode, buffer string) {
	h.log.Debug("display", "page", page, "mode", mode, "buffer", buffer)
}
func (h *loggingHooks) Backlight(on bool) { h.log.Debug("backlight", "on", on) }
func (h *loggingHooks) ButtonBeep()       {}
func (h *loggingHooks) WarningBeep()      {}

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
