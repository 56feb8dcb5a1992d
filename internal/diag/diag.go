// Package diag provides the small diagnostic logger used across the decoder
// packages, in the spirit of the ad hoc dbg helpers scattered through the
// teacher's frame package.
package diag

import (
	"fmt"
	"io"
	"log"
)

// Logger writes terse, tagged decode diagnostics.
type Logger struct {
	l *log.Logger
}

// New returns a Logger writing to w. A nil w discards all output.
func New(w io.Writer) *Logger {
	if w == nil {
		return &Logger{l: log.New(io.Discard, "", 0)}
	}
	return &Logger{l: log.New(w, "", 0)}
}

// Skip logs a non-fatal "log and skip" decision.
func (lg *Logger) Skip(entity string, blockType uint32, reason string) {
	lg.l.Printf("skip: entity=%q block=0x%08X: %s", entity, blockType, reason)
}

// Stop logs a non-fatal "log and stop" decision.
func (lg *Logger) Stop(entity string, blockType uint32, reason string) {
	lg.l.Printf("stop: entity=%q block=0x%08X: %s", entity, blockType, reason)
}

// Notice logs an informational message (e.g. multipass rendering).
func (lg *Logger) Notice(format string, args ...interface{}) {
	lg.l.Print("notice: " + fmt.Sprintf(format, args...))
}
