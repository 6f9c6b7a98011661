// Command simplisafe-logger is a passive multi-band sniffer: it opens a
// 315 MHz and a 433 MHz receive line, decodes every frame either hears,
// and logs it — structured fields to stderr, raw hex to a daily-rotated
// CSV file. Grounded directly on original_source/examples/logger.py's
// dual-Transceiver select loop, minus its MySQL sink (no database driver
// exists anywhere in this module's dependency stack).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/sscomm/simplisafe-rf/internal/message"
	"github.com/sscomm/simplisafe-rf/internal/pulse"
	"github.com/sscomm/simplisafe-rf/internal/rfio"
	"github.com/sscomm/simplisafe-rf/internal/rflog"
)

func main() {
	var (
		sim         = pflag.Bool("sim", false, "Use in-process simulated radios instead of real GPIO lines.")
		gpioChip    = pflag.String("gpio-chip", "gpiochip0", "GPIO chip to open both receive lines on.")
		rx315       = pflag.Int("rx-315", -1, "GPIO line offset for the 315 MHz receiver's DATA pin.")
		rx433       = pflag.Int("rx-433", -1, "GPIO line offset for the 433 MHz receiver's DATA pin.")
		frameLogDir = pflag.String("frame-log-dir", "", "Directory to write daily-rotated raw-frame CSV logs to.")
		logLevel    = pflag.String("log-level", "info", "Log level: debug, info, warn, error.")
		help        = pflag.Bool("help", false, "Display help text.")
	)
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: simplisafe-logger [--sim | --rx-315 <n> --rx-433 <n>] [flags]")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}
	if !*sim && (*rx315 < 0 || *rx433 < 0) {
		fmt.Fprintln(os.Stderr, "simplisafe-logger: --rx-315 and --rx-433 are required unless --sim")
		pflag.Usage()
		os.Exit(2)
	}

	logger := rflog.New("logger", parseLevel(*logLevel))

	var frameLogger rfio.FrameLogger
	if *frameLogDir != "" {
		csv, err := rflog.NewCSVFrameLogger(*frameLogDir)
		if err != nil {
			logger.Fatal("open frame log", "err", err)
		}
		defer csv.Close()
		frameLogger = csv
	}

	io315, err := openRawIO(*sim, *gpioChip, *rx315, *rx315)
	if err != nil {
		logger.Fatal("open 315MHz radio", "err", err)
	}
	defer io315.Close()
	io433, err := openRawIO(*sim, *gpioChip, *rx433, *rx433)
	if err != nil {
		logger.Fatal("open 433MHz radio", "err", err)
	}
	defer io433.Close()

	// Receive-only: the role only governs a transmit preamble this tool
	// never sends, so RoleBaseStation is a neutral, unused choice for both.
	txr315 := rfio.New(io315, pulse.RoleBaseStation, frameLogger)
	defer txr315.Close()
	txr433 := rfio.New(io433, pulse.RoleBaseStation, frameLogger)
	defer txr433.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("listening", "sim", *sim)
	msgCh := make(chan *message.Message)
	errCh := make(chan error, 2)
	listen := func(band string, txr *rfio.Transceiver) {
		for {
			msg, err := txr.Recv(ctx)
			if err != nil {
				errCh <- fmt.Errorf("%s: %w", band, err)
				return
			}
			select {
			case msgCh <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
	go listen("315MHz", txr315)
	go listen("433MHz", txr433)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case msg := <-msgCh:
			logger.Info("frame", "sn", msg.SN, "kind", msg.Kind, "sequence", msg.Sequence, "event", msg.EventByte)
		case err := <-errCh:
			if ctx.Err() != nil {
				return
			}
			logger.Error("recv", "err", err)
			return
		}
	}
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
