package processor

import (
	"fmt"
	"time"
)

// LogEntry is one record of the processor's append-only audit trail.
type LogEntry struct {
	Op      string    // operation kind, e.g. "handle_missing"
	Params  string    // parameter summary as configured by the caller
	Outcome string    // what changed, or the rejection message
	OK      bool      // false when the step was rejected
	At      time.Time // wall-clock time of the step
}

func (e LogEntry) String() string {
	status := "ok"
	if !e.OK {
		status = "rejected"
	}
	if e.Params == "" {
		return fmt.Sprintf("[%s] %s: %s", status, e.Op, e.Outcome)
	}
	return fmt.Sprintf("[%s] %s (%s): %s", status, e.Op, e.Params, e.Outcome)
}
