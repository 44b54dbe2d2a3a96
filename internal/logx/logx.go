// Package logx is a thin wrapper around the standard library's log.Logger:
// a prefix per component and a level filter, nothing more. Grounded on
// PsybeDev-tracktic's actual logging choice (plain log.Printf/log.Println
// throughout strategy/ and sims/example_integration.go) rather than the
// zerolog dependency the teacher only pulls in transitively via wails.
package logx

import (
	"log"
	"os"
)

// Level orders the severities this package filters on.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger prefixes every line with a component tag and drops lines below
// its configured level.
type Logger struct {
	std       *log.Logger
	level     Level
	component string
}

// New builds a Logger writing to stderr with the given component tag.
func New(component string, level Level) *Logger {
	return &Logger{
		std:       log.New(os.Stderr, "["+component+"] ", log.LstdFlags),
		level:     level,
		component: component,
	}
}

func (l *Logger) log(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	l.std.Printf(level.String()+": "+format, args...)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

// With returns a child logger under a sub-component, e.g. "replay.driver".
func (l *Logger) With(subComponent string) *Logger {
	return New(l.component+"."+subComponent, l.level)
}
