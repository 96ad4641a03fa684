// Package logging builds the process logger from the configured log
// destinations: console, an append-only file, and a broadcast channel to
// connected players.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BroadcastLayout is the timestamp prefix of broadcast lines.
const BroadcastLayout = "15:04:05"

// Broadcaster receives one formatted line per log entry.
type Broadcaster interface {
	Broadcast(line string)
}

// BroadcastFunc adapts a function to Broadcaster.
type BroadcastFunc func(line string)

func (f BroadcastFunc) Broadcast(line string) { f(line) }

// Options selects the destinations.
type Options struct {
	// Console enables info and debug output on ConsoleWriter. Warnings and
	// errors always go there.
	Console       bool
	ConsoleWriter io.Writer

	// File is appended to when non-empty.
	File string

	// Broadcast receives "HH:MM:SS | message" lines when set.
	Broadcast Broadcaster

	Debug bool
}

// Logger is a zap logger with a runtime-adjustable level.
type Logger struct {
	*zap.Logger
	level  zap.AtomicLevel
	closer io.Closer
}

// New builds a Logger. The returned logger must be closed.
func New(opts Options) (*Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	w := opts.ConsoleWriter
	if w == nil {
		w = os.Stderr
	}
	var consoleLevel zapcore.LevelEnabler = level
	if !opts.Console {
		consoleLevel = zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapcore.WarnLevel && level.Enabled(l)
		})
	}
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(w)), consoleLevel),
	}

	l := &Logger{level: level}
	if opts.File != "" {
		f, err := openAppend(opts.File)
		if err != nil {
			return nil, err
		}
		l.closer = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.Lock(f),
			level,
		))
	}
	if opts.Broadcast != nil {
		cores = append(cores, &broadcastCore{LevelEnabler: level, out: opts.Broadcast})
	}

	l.Logger = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Level exposes the shared level, e.g. for an HTTP level handler.
func (l *Logger) Level() zap.AtomicLevel { return l.level }

// DebugEnabled reports whether debug entries are written.
func (l *Logger) DebugEnabled() bool { return l.level.Enabled(zapcore.DebugLevel) }

// SetDebug switches between debug and info.
func (l *Logger) SetDebug(on bool) {
	if on {
		l.level.SetLevel(zapcore.DebugLevel)
	} else {
		l.level.SetLevel(zapcore.InfoLevel)
	}
}

// ToggleDebug flips debug output and returns the new state.
func (l *Logger) ToggleDebug() bool {
	on := !l.DebugEnabled()
	l.SetDebug(on)
	return on
}

// Close flushes and releases the log file. Sync errors from terminals are
// ignored.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// broadcastCore writes only the entry time and message. Structured fields
// are not shown to players.
type broadcastCore struct {
	zapcore.LevelEnabler
	out Broadcaster
}

func (c *broadcastCore) With([]zapcore.Field) zapcore.Core { return c }

func (c *broadcastCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *broadcastCore) Write(ent zapcore.Entry, _ []zapcore.Field) error {
	c.out.Broadcast(ent.Time.Format(BroadcastLayout) + " | " + ent.Message)
	return nil
}

func (c *broadcastCore) Sync() error { return nil }
