// Package logging builds the run logger: human-readable progress on the
// console and a detailed, dated log file with retry timing, raw errors and
// per-class confidences.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/vendorwatch/pkg/utils"
)

// FilePrefix is the base name of the dated log file.
const FilePrefix = "vendor_monitor_"

// Options configure New.
type Options struct {
	Dir          string // directory for the log file; "" disables file output
	Level        string // file level: debug, info, warn, error
	ConsoleLevel string // console level
	Console      io.Writer
	Now          time.Time
}

// Logger is a run logger plus the resources it holds open.
type Logger struct {
	*log.Logger
	Path string
	file *os.File
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// New creates a logger writing ConsoleLevel and above to the console and
// everything at Level and above to <Dir>/vendor_monitor_<mmddyy>.log.
func New(opts Options) (*Logger, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}

	console := &log.ConsoleWriter{
		Writer:      opts.Console,
		ColorOutput: opts.Console == os.Stderr || opts.Console == os.Stdout,
	}

	out := &Logger{}
	writer := &log.MultiLevelWriter{
		ConsoleWriter: console,
		ConsoleLevel:  ParseLevel(opts.ConsoleLevel),
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		out.Path = filepath.Join(opts.Dir, FilePrefix+utils.DateSuffix(opts.Now)+".log")
		f, err := os.OpenFile(out.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out.file = f
		// File entries are rendered as text rather than JSON lines.
		writer.InfoWriter = &log.ConsoleWriter{Writer: f}
	}

	level := ParseLevel(opts.Level)
	if cl := ParseLevel(opts.ConsoleLevel); cl < level {
		level = cl
	}
	out.Logger = &log.Logger{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05",
		Writer:     writer,
	}
	return out, nil
}

// Nop returns a logger that discards everything.
func Nop() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: log.IOWriter{Writer: io.Discard},
	}
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l *log.Logger) *log.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// ParseLevel converts a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
