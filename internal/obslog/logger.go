// Package obslog is the server-side adaptation of the teacher's
// internal/app.Logger: the same leveled, dependency-free logger, kept
// free of a logging library (the teacher never imports one either),
// but with ordered structured fields instead of a map, since a server
// log line needs request_id/channel_id/user_id in a stable order for
// grepping rather than a single human-facing prefix.
package obslog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log line.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name, defaulting to Info on no match.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// field is one ordered key/value pair attached to a Logger.
type field struct {
	key   string
	value any
}

// Logger is a leveled logger that carries an ordered set of structured
// fields, cheaply forked via With* to scope a request id or channel id
// to a call chain without a context value lookup on every log call.
type Logger struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
	fields []field
}

// Config configures a Logger.
type Config struct {
	Level  Level
	Output io.Writer
}

// DefaultConfig returns Info level, writing to stderr.
func DefaultConfig() Config {
	return Config{Level: Info, Output: os.Stderr}
}

// New creates a Logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{level: cfg.Level, output: cfg.Output}
}

// With returns a child Logger with an additional field appended. The
// receiver is unchanged; fields are copy-on-write the way the
// teacher's WithField does.
func (l *Logger) With(key string, value any) *Logger {
	next := make([]field, len(l.fields), len(l.fields)+1)
	copy(next, l.fields)
	next = append(next, field{key, value})
	return &Logger{level: l.level, output: l.output, fields: next}
}

// SetLevel changes the minimum level logged.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Debugf logs at Debug.
func (l *Logger) Debugf(format string, args ...any) { l.log(Debug, format, args...) }

// Infof logs at Info.
func (l *Logger) Infof(format string, args ...any) { l.log(Info, format, args...) }

// Warnf logs at Warn.
func (l *Logger) Warnf(format string, args ...any) { l.log(Warn, format, args...) }

// Errorf logs at Error.
func (l *Logger) Errorf(format string, args ...any) { l.log(Error, format, args...) }

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	lvl, out, fields := l.level, l.output, l.fields
	l.mu.Unlock()

	if level < lvl {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString("[" + level.String() + "] ")
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.key, f.value)
	}
	b.WriteByte('\n')
	_, _ = out.Write([]byte(b.String()))
}

// Nop discards everything; useful as a test default.
var Nop = &Logger{level: Error + 1}
