package monitor

import "fmt"

// SinkWriteError is reported when a target's raw log cannot be written. It
// stops that target's loop only.
type SinkWriteError struct {
	Target string
	Err    error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("raw log for %s: %v", e.Target, e.Err)
}

func (e *SinkWriteError) Unwrap() error { return e.Err }
