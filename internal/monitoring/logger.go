// Package monitoring owns the process-wide diagnostic log streams.
//
// Three streams are kept apart so that normal runs stay quiet:
//   - ops:   actionable warnings, setup failures, run lifecycle
//   - diag:  per-run diagnostics and tuning context
//   - trace: per-frame telemetry
//
// Every stream is disabled until SetLogWriters gives it a writer.
package monitoring

import (
	"io"
	"log"
	"sync"
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

var (
	mu          sync.RWMutex
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures all three logging streams at once.
// Pass nil for any writer to disable that stream.
func SetLogWriters(w LogWriters) {
	mu.Lock()
	defer mu.Unlock()
	opsLogger = newLogger(w.Ops)
	diagLogger = newLogger(w.Diag)
	traceLogger = newLogger(w.Trace)
}

// SetLegacyLogger routes all three streams to a single writer.
// Pass nil to disable all logging.
func SetLegacyLogger(w io.Writer) {
	SetLogWriters(LogWriters{Ops: w, Diag: w, Trace: w})
}

func newLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, "", log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream.
func Opsf(format string, args ...interface{}) {
	printf(&opsLogger, format, args...)
}

// Diagf logs to the diag stream.
func Diagf(format string, args ...interface{}) {
	printf(&diagLogger, format, args...)
}

// Tracef logs to the trace stream.
func Tracef(format string, args ...interface{}) {
	printf(&traceLogger, format, args...)
}

func printf(l **log.Logger, format string, args ...interface{}) {
	mu.RLock()
	logger := *l
	mu.RUnlock()
	if logger != nil {
		logger.Printf(format, args...)
	}
}

// Logger is a prefixed view onto the shared streams, one per component.
type Logger struct {
	prefix string
}

// For returns a Logger whose lines start with "[component] ".
func For(component string) Logger {
	return Logger{prefix: "[" + component + "] "}
}

// Opsf logs to the ops stream with the component prefix.
func (l Logger) Opsf(format string, args ...interface{}) { Opsf(l.prefix+format, args...) }

// Diagf logs to the diag stream with the component prefix.
func (l Logger) Diagf(format string, args ...interface{}) { Diagf(l.prefix+format, args...) }

// Tracef logs to the trace stream with the component prefix.
func (l Logger) Tracef(format string, args ...interface{}) { Tracef(l.prefix+format, args...) }
