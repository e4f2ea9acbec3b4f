// Package logtest provides a go-logger implementation that records messages for assertions.
package logtest

import (
	"fmt"
	"sync"

	"github.com/anchore/go-logger"
	"github.com/anchore/go-logger/adapter/discard"
)

const (
	ErrorLevel = "error"
	WarnLevel  = "warn"
	InfoLevel  = "info"
	DebugLevel = "debug"
	TraceLevel = "trace"
)

type Entry struct {
	Level   string
	Message string
}

type entries struct {
	lock  sync.Mutex
	items []Entry
}

// Logger records every message. Fields and nesting are accepted but not recorded.
type Logger struct {
	logger.Logger
	entries *entries
}

func New() *Logger {
	return &Logger{
		Logger:  discard.New(),
		entries: &entries{},
	}
}

// Entries returns a copy of the recorded messages in order.
func (l *Logger) Entries() []Entry {
	l.entries.lock.Lock()
	defer l.entries.lock.Unlock()
	return append([]Entry{}, l.entries.items...)
}

// Messages returns the recorded messages at the given level.
func (l *Logger) Messages(level string) []string {
	var msgs []string
	for _, e := range l.Entries() {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func (l *Logger) record(level, msg string) {
	l.entries.lock.Lock()
	defer l.entries.lock.Unlock()
	l.entries.items = append(l.entries.items, Entry{Level: level, Message: msg})
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.record(ErrorLevel, fmt.Sprintf(format, args...))
}
func (l *Logger) Error(args ...interface{}) { l.record(ErrorLevel, fmt.Sprint(args...)) }
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.record(WarnLevel, fmt.Sprintf(format, args...))
}
func (l *Logger) Warn(args ...interface{}) { l.record(WarnLevel, fmt.Sprint(args...)) }
func (l *Logger) Infof(format string, args ...interface{}) {
	l.record(InfoLevel, fmt.Sprintf(format, args...))
}
func (l *Logger) Info(args ...interface{}) { l.record(InfoLevel, fmt.Sprint(args...)) }
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.record(DebugLevel, fmt.Sprintf(format, args...))
}
func (l *Logger) Debug(args ...interface{}) { l.record(DebugLevel, fmt.Sprint(args...)) }
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.record(TraceLevel, fmt.Sprintf(format, args...))
}
func (l *Logger) Trace(args ...interface{}) { l.record(TraceLevel, fmt.Sprint(args...)) }

func (l *Logger) WithFields(...interface{}) logger.MessageLogger {
	return l
}

func (l *Logger) Nested(...interface{}) logger.Logger {
	return l
}
