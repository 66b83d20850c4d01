// Package diag is the shared diagnostic and logging plumbing used by
// every pipeline stage: a level-filtered log sink (spec.md §6) and a
// diagnostic manager that accumulates syntax/semantic/internal errors,
// warnings, and notes for the CLI to print before exit (spec.md §7).
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/gmofishsauce/ccc/internal/token"
)

// Level is a log sink severity, lowest to highest.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"trace", "debug", "info", "warn", "error", "fatal"}

func (l Level) String() string {
	if int(l) < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// Logger is the process-wide log sink described in spec.md §6: a
// level-filtered submission interface. A Manager given a non-nil
// Logger also logs each diagnostic as it is reported; cmd/ccc builds
// its Manager with a nil Logger, so it creates no Logger and prints
// diagnostics only once, at the end of the run. No corpus
// example wires in a third-party logging library for this concern
// (logrus/zap/zerolog appear nowhere in _examples/); every teacher
// tool writes a thin struct over fmt.Fprintf, so this does too.
type Logger struct {
	out       io.Writer
	threshold Level
}

// NewLogger creates a Logger that writes to out, discarding
// submissions below threshold.
func NewLogger(out io.Writer, threshold Level) *Logger {
	return &Logger{out: out, threshold: threshold}
}

func (lg *Logger) log(level Level, format string, args ...interface{}) {
	if level < lg.threshold {
		return
	}
	fmt.Fprintf(lg.out, "[%s] %s\n", level, fmt.Sprintf(format, args...))
	if level == LevelFatal {
		os.Exit(1)
	}
}

func (lg *Logger) Trace(format string, args ...interface{}) { lg.log(LevelTrace, format, args...) }
func (lg *Logger) Debug(format string, args ...interface{}) { lg.log(LevelDebug, format, args...) }
func (lg *Logger) Info(format string, args ...interface{})  { lg.log(LevelInfo, format, args...) }
func (lg *Logger) Warn(format string, args ...interface{})  { lg.log(LevelWarn, format, args...) }
func (lg *Logger) Error(format string, args ...interface{}) { lg.log(LevelError, format, args...) }

// Fatal submits a fatal-level message and terminates the process after
// flushing, per spec.md §6.
func (lg *Logger) Fatal(format string, args ...interface{}) { lg.log(LevelFatal, format, args...) }

// Severity classifies a Diagnostic. Only Error prevents successful
// emission (spec.md §7); Warning and Note are informational.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Diagnostic is one accumulated report: severity, source position, a
// human-readable message, and an optional recovery hint.
type Diagnostic struct {
	Severity Severity
	Pos      token.Position
	Message  string
	Hint     string
}

// Manager accumulates diagnostics across the whole pipeline run and
// prints them before exit, mirroring ysem.Analyzer's errors []string
// accumulation generalized to carry severity and position.
type Manager struct {
	diags []Diagnostic
	log   *Logger
}

// NewManager creates a Manager. log may be nil, in which case
// diagnostics are only accumulated, never echoed live.
func NewManager(log *Logger) *Manager {
	return &Manager{log: log}
}

func (m *Manager) report(sev Severity, pos token.Position, hint, format string, args ...interface{}) {
	d := Diagnostic{Severity: sev, Pos: pos, Message: fmt.Sprintf(format, args...), Hint: hint}
	m.diags = append(m.diags, d)
	if m.log != nil {
		switch sev {
		case Error:
			m.log.Error("%s: %s", pos, d.Message)
		case Warning:
			m.log.Warn("%s: %s", pos, d.Message)
		default:
			m.log.Info("%s: %s", pos, d.Message)
		}
	}
}

// Errorf accumulates a fatal-to-emission diagnostic at Error severity.
func (m *Manager) Errorf(pos token.Position, format string, args ...interface{}) {
	m.report(Error, pos, "", format, args...)
}

// ErrorfHint is like Errorf but attaches a recovery hint shown to the
// user, per spec.md §7's "expected-vs-found description, and an
// optional hint".
func (m *Manager) ErrorfHint(pos token.Position, hint, format string, args ...interface{}) {
	m.report(Error, pos, hint, format, args...)
}

// Warnf accumulates an informational warning.
func (m *Manager) Warnf(pos token.Position, format string, args ...interface{}) {
	m.report(Warning, pos, "", format, args...)
}

// Notef accumulates an informational note.
func (m *Manager) Notef(pos token.Position, format string, args ...interface{}) {
	m.report(Note, pos, "", format, args...)
}

// HasErrors reports whether any Error-severity diagnostic was
// accumulated; this decides the process exit code per spec.md §6.
func (m *Manager) HasErrors() bool {
	for _, d := range m.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Diagnostics returns the accumulated diagnostics in report order.
func (m *Manager) Diagnostics() []Diagnostic {
	return m.diags
}

// ansiColor returns the ANSI escape code for sev, or "" when colorOut
// is false. Modeled on the manual escape-code tables the teacher's
// emul package uses for its terminal output.
func ansiColor(sev Severity, colorOut bool) (code, reset string) {
	if !colorOut {
		return "", ""
	}
	switch sev {
	case Error:
		return "\x1b[31m", "\x1b[0m"
	case Warning:
		return "\x1b[33m", "\x1b[0m"
	default:
		return "\x1b[36m", "\x1b[0m"
	}
}

// Print writes every accumulated diagnostic to w, in ANSI color when
// colorOut is true, followed by a total count, per spec.md §7's "User
// visibility" policy.
func (m *Manager) Print(w io.Writer, colorOut bool) {
	errCount, warnCount := 0, 0
	for _, d := range m.diags {
		code, reset := ansiColor(d.Severity, colorOut)
		fmt.Fprintf(w, "%s%s:%s %s%s", code, d.Pos, d.Severity, d.Message, reset)
		if d.Hint != "" {
			fmt.Fprintf(w, " (%s)", d.Hint)
		}
		fmt.Fprintln(w)
		switch d.Severity {
		case Error:
			errCount++
		case Warning:
			warnCount++
		}
	}
	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errCount, warnCount)
}

// WrapIO wraps an I/O failure with the operation name that failed,
// mirroring the db47h-ngaro pattern of errors.Wrap around every
// fallible syscall/file operation.
func WrapIO(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, op)
}

// Cause unwraps an error produced by WrapIO (or any errors.Wrap chain)
// back to its root cause.
func Cause(err error) error {
	return errors.Cause(err)
}
