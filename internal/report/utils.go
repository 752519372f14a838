package report

import (
	"math"
	"strings"
	"time"

	"latency-monitor/internal/models"
)

// sanitizeFilename replaces dots and special characters for safe filenames
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		".", "_",
		":", "_",
		"/", "_",
		"\\", "_",
		" ", "_",
	)
	return replacer.Replace(s)
}

// successPoints returns the time offset in seconds and latency of every
// successful probe. Lost and failed probes leave gaps.
func successPoints(outcomes []models.Outcome, interval time.Duration) (xs, ys []float64) {
	step := interval.Seconds()
	for i, o := range outcomes {
		if o.IsSuccess() {
			xs = append(xs, float64(i)*step)
			ys = append(ys, o.LatencyMS)
		}
	}
	return xs, ys
}

// highLatency returns the intervals whose mean exceeds threshold
func highLatency(intervals []models.Interval, threshold float64) []models.Interval {
	if threshold <= 0 {
		return nil
	}
	var out []models.Interval
	for _, iv := range intervals {
		if iv.Successes > 0 && iv.MeanLatencyMS > threshold {
			out = append(out, iv)
		}
	}
	return out
}

// axisMax leaves headroom above the largest value and never collapses to zero
func axisMax(values ...float64) float64 {
	m := 0.0
	for _, v := range values {
		if !math.IsNaN(v) && v > m {
			m = v
		}
	}
	if m <= 0 {
		return 1
	}
	return m * 1.1
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
