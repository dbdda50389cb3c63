package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Events are processed concurrently, so replace it
// before processing starts.
var Logf func(format string, v ...interface{}) = log.Printf

// warnings counts messages emitted through Warnf since the last reset.
var warnings atomic.Int64

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs a degraded-result condition (for example a track with no
// shower parameter bin) and counts it so run summaries can report it.
func Warnf(format string, v ...interface{}) {
	warnings.Add(1)
	Logf("WARN "+format, v...)
}

// Warnings returns the number of Warnf calls since the last ResetWarnings.
func Warnings() int64 { return warnings.Load() }

// ResetWarnings zeroes the warning counter.
func ResetWarnings() { warnings.Store(0) }
