package models

import "time"

// Interval summarizes a contiguous chunk of a raw probe log
type Interval struct {
	Start         int     `json:"start"`
	Count         int     `json:"count"`
	Successes     int     `json:"successes"`
	MidpointSec   float64 `json:"midpoint_s"`
	MeanLatencyMS float64 `json:"mean_latency_ms"`
	PacketLossPct float64 `json:"packet_loss_pct"`
}

// Summary holds whole-log statistics for a target
type Summary struct {
	Target    string  `json:"target"`
	Total     int     `json:"total"`
	Successes int     `json:"successes"`
	Lost      int     `json:"lost"`
	Errors    int     `json:"errors"`
	MinRTT    float64 `json:"min_rtt"`
	MaxRTT    float64 `json:"max_rtt"`
	AvgRTT    float64 `json:"avg_rtt"`
	MedianRTT float64 `json:"median_rtt"`
	P95RTT    float64 `json:"p95_rtt"`
	StdDevRTT float64 `json:"stddev_rtt"`
	LossPct   float64 `json:"packet_loss"`
	// AboveThreshold counts successes slower than the configured latency threshold
	AboveThreshold int `json:"above_threshold"`
}

// TargetSnapshot is a stable copy of one target's live state
type TargetSnapshot struct {
	Target    string      `json:"target"`
	Values    []float64   `json:"values"`
	Latest    OutcomeKind `json:"latest"`
	Progress  float64     `json:"progress"`
	Completed bool        `json:"completed"`
	Probes    int         `json:"probes"`
	Overruns  int         `json:"overruns"`
}

// Run describes one monitoring session stored in the history database
type Run struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Targets     []string   `json:"targets"`
	Duration    float64    `json:"duration_s"`
	Interval    float64    `json:"interval_s"`
	Interrupted bool       `json:"interrupted"`
	ResultsDir  string     `json:"results_dir"`
}
