// Package rflog provides the two logging surfaces a process needs: a
// structured operational logger (charmbracelet/log) and a raw-frame CSV
// sink with daily file rotation, matching the external log_raw(bytes)
// collaborator hook.
package rflog

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// New builds the process-wide structured logger, with component as its
// prefix so pulse/rfio/basestation/keypad log lines are
// distinguishable without per-package loggers.
func New(component string, level log.Level) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          component,
	})
	l.SetLevel(level)
	return l
}

// CSVFrameLogger writes every raw decoded frame to a daily-rotated CSV
// file under dir, one row per frame: timestamp and hex bytes. Grounded on
// the teacher's log_init/log_write daily-file-name strategy, replacing
// its package-global file handle with an instance field guarded by a
// mutex so multiple Transceivers can share one logger safely.
type CSVFrameLogger struct {
	mu       sync.Mutex
	dir      string
	openName string
	f        *os.File
}

// NewCSVFrameLogger returns a logger that will create/reuse dated CSV
// files under dir, creating dir if it does not already exist.
func NewCSVFrameLogger(dir string) (*CSVFrameLogger, error) {
	if stat, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("rflog: stat %s: %w", dir, err)
		}
		if err := os.Mkdir(dir, 0o755); err != nil {
			return nil, fmt.Errorf("rflog: create %s: %w", dir, err)
		}
	} else if !stat.IsDir() {
		return nil, fmt.Errorf("rflog: %s is not a directory", dir)
	}
	return &CSVFrameLogger{dir: dir}, nil
}

// LogRaw appends one row for b. A failure to open or write today's file
// is non-fatal and is not reported to the caller: LogRaw never panics
// the decode path, and silently drops the row rather than risk blocking
// the caller.
func (c *CSVFrameLogger) LogRaw(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	name := now.Format("2006-01-02") + ".csv"
	if name != c.openName {
		if c.f != nil {
			c.f.Close()
		}
		f, err := os.OpenFile(filepath.Join(c.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			c.f = nil
			c.openName = ""
			return
		}
		c.f = f
		c.openName = name
	}
	if c.f == nil {
		return
	}
	fmt.Fprintf(c.f, "%s,%s\n", now.Format(time.RFC3339Nano), hex.EncodeToString(b))
}

// Close releases the currently open file, if any.
func (c *CSVFrameLogger) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	c.openName = ""
	return err
}
