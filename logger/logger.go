// Package logger provides leveled logging for the board server.
package logger

import (
	"io"
	"log"
	"os"
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

// Logger writes prefixed log lines per level
type Logger struct {
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	debug       bool
}

// NewLogger creates a logger writing info and warnings to stdout, errors to stderr
func NewLogger(debug bool) *Logger {
	return New(os.Stdout, os.Stderr, debug)
}

// New creates a logger on explicit writers
func New(out, errOut io.Writer, debug bool) *Logger {
	return &Logger{
		debugLogger: log.New(out, "[GOL-DEBUG] ", logFlags),
		infoLogger:  log.New(out, "[GOL-INFO] ", logFlags),
		warnLogger:  log.New(out, "[GOL-WARN] ", logFlags),
		errorLogger: log.New(errOut, "[GOL-ERROR] ", logFlags),
		debug:       debug,
	}
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	return New(io.Discard, io.Discard, false)
}

// Debugf logs only when debug output is enabled
func (l *Logger) Debugf(format string, args ...any) {
	if l.debug {
		l.debugLogger.Output(2, sprintf(format, args...))
	}
}

// Infof logs informational messages
func (l *Logger) Infof(format string, args ...any) {
	l.infoLogger.Output(2, sprintf(format, args...))
}

// Warnf logs warning messages
func (l *Logger) Warnf(format string, args ...any) {
	l.warnLogger.Output(2, sprintf(format, args...))
}

// Errorf logs error messages
func (l *Logger) Errorf(format string, args ...any) {
	l.errorLogger.Output(2, sprintf(format, args...))
}

// Event logs a board event, e.g. a toggle from a connected client
func (l *Logger) Event(eventType string, actor string, details string) {
	l.infoLogger.Output(2, sprintf("[EVENT:%s] Actor:%s | %s", eventType, actor, details))
}
