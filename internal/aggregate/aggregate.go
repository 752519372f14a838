// Package aggregate reduces raw probe logs into interval and whole-run statistics.
// Every function here is pure: no clocks, no shared state.
package aggregate

import (
	"errors"
	"time"

	"latency-monitor/internal/models"
)

// ErrInvalidIntervalSize is returned for a non-positive interval size
var ErrInvalidIntervalSize = errors.New("interval size must be positive")

// Aggregate splits records into consecutive chunks of size (the last one may
// be shorter) and summarizes each. The mean covers successes only and is 0
// for a chunk without any. Midpoints assume one record per second.
func Aggregate(records []models.Outcome, size int) []models.Interval {
	if size <= 0 {
		return nil
	}

	intervals := make([]models.Interval, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		intervals = append(intervals, summarizeChunk(records[start:end], start))
	}
	return intervals
}

// AggregateChecked is Aggregate with argument validation
func AggregateChecked(records []models.Outcome, size int) ([]models.Interval, error) {
	if size <= 0 {
		return nil, ErrInvalidIntervalSize
	}
	return Aggregate(records, size), nil
}

func summarizeChunk(chunk []models.Outcome, start int) models.Interval {
	var sum float64
	successes := 0
	for _, o := range chunk {
		if o.IsSuccess() {
			sum += o.LatencyMS
			successes++
		}
	}

	iv := models.Interval{
		Start:       start,
		Count:       len(chunk),
		Successes:   successes,
		MidpointSec: float64(start) + float64(len(chunk))/2,
	}
	if successes > 0 {
		iv.MeanLatencyMS = sum / float64(successes)
	}
	iv.PacketLossPct = float64(len(chunk)-successes) / float64(len(chunk)) * 100
	return iv
}

// ScaleMidpoints returns a copy of intervals with midpoints converted to
// wall-clock seconds for a probe interval other than one second
func ScaleMidpoints(intervals []models.Interval, probeInterval time.Duration) []models.Interval {
	out := make([]models.Interval, len(intervals))
	copy(out, intervals)
	scale := probeInterval.Seconds()
	for i := range out {
		out[i].MidpointSec *= scale
	}
	return out
}
