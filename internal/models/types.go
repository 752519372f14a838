package models

import (
	"context"
	"time"
)

// Executor performs exactly one latency measurement. It never fails: every
// problem is reported through the returned Outcome.
type Executor interface {
	Probe(ctx context.Context, target string, timeout time.Duration) Outcome
}

// RecordSink receives every record of one target in order
type RecordSink interface {
	Append(rec Record) error
	Flush() error
	Close() error
}

// TelemetrySink receives live values and progress from probe loops
type TelemetrySink interface {
	RecordSample(target string, outcome Outcome)
	RecordProgress(target string, elapsed, total time.Duration)
	RecordOverrun(target string)
	MarkCompleted(target string)
}

// LoopState is the probe loop state used for diagnostics
type LoopState string

const (
	StateIdle      LoopState = "idle"
	StateProbing   LoopState = "probing"
	StateRecording LoopState = "recording"
	StateWaiting   LoopState = "waiting"
	StateCompleted LoopState = "completed"
)
