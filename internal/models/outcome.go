package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// OutcomeKind classifies a single probe attempt
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeLost
	OutcomeError
)

// LostToken is the raw log line written for a lost probe
const LostToken = "Lost"

// ErrorPrefix starts every raw log line written for a failed probe
const ErrorPrefix = "Error: "

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeLost:
		return "lost"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets the kind appear as a word in JSON payloads
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind written by MarshalText
func (k *OutcomeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "success":
		*k = OutcomeSuccess
	case "lost":
		*k = OutcomeLost
	case "error":
		*k = OutcomeError
	default:
		return fmt.Errorf("unknown outcome kind %q", text)
	}
	return nil
}

// Outcome is the result of one probe: exactly one of success, lost or error.
// LatencyMS is only meaningful for successes and Message only for errors.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	LatencyMS float64     `json:"latency_ms,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// Success creates a successful outcome. Negative or non-finite latencies are
// not measurements and become errors.
func Success(latencyMS float64) Outcome {
	if math.IsNaN(latencyMS) || math.IsInf(latencyMS, 0) {
		return Failed(fmt.Sprintf("non-finite latency %v", latencyMS))
	}
	if latencyMS < 0 {
		return Failed(fmt.Sprintf("negative latency %v", latencyMS))
	}
	return Outcome{Kind: OutcomeSuccess, LatencyMS: latencyMS}
}

// Lost creates an outcome for a probe that got no reply
func Lost() Outcome {
	return Outcome{Kind: OutcomeLost}
}

// Failed creates an outcome for a probe that could not be executed
func Failed(message string) Outcome {
	return Outcome{Kind: OutcomeError, Message: message}
}

func (o Outcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }

// LiveValue is the value published to the live window, 0 for anything but a success
func (o Outcome) LiveValue() float64 {
	if o.Kind == OutcomeSuccess {
		return o.LatencyMS
	}
	return 0
}

// String renders the outcome as a raw log line (without the newline)
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return strconv.FormatFloat(o.LatencyMS, 'f', -1, 64)
	case OutcomeLost:
		return LostToken
	default:
		msg := strings.Join(strings.Fields(o.Message), " ")
		return ErrorPrefix + msg
	}
}

// ParseOutcome parses one raw log line. Lines that are neither a latency,
// the lost token nor an error line are reported as errors.
func ParseOutcome(line string) Outcome {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return Failed("unparsable line: empty")
	case strings.EqualFold(line, LostToken):
		return Lost()
	case strings.HasPrefix(line, strings.TrimSpace(ErrorPrefix)):
		return Failed(strings.TrimSpace(strings.TrimPrefix(line, strings.TrimSpace(ErrorPrefix))))
	}

	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return Failed(fmt.Sprintf("unparsable line: %q", line))
	}
	return Success(v)
}

// Record is one outcome placed in its target's log
type Record struct {
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Target    string    `json:"target"`
	Outcome   Outcome   `json:"outcome"`
	Overrun   bool      `json:"overrun"`
}
