package aggregate

import (
	"math"
	"sort"

	"latency-monitor/internal/models"
)

// Summarize computes whole-log statistics. Latency figures are over
// successes only; threshold counts successes above thresholdMS when positive.
func Summarize(target string, records []models.Outcome, thresholdMS float64) models.Summary {
	s := models.Summary{Target: target, Total: len(records)}

	latencies := make([]float64, 0, len(records))
	for _, o := range records {
		switch o.Kind {
		case models.OutcomeSuccess:
			latencies = append(latencies, o.LatencyMS)
			if thresholdMS > 0 && o.LatencyMS > thresholdMS {
				s.AboveThreshold++
			}
		case models.OutcomeLost:
			s.Lost++
		default:
			s.Errors++
		}
	}
	s.Successes = len(latencies)

	if s.Total > 0 {
		s.LossPct = float64(s.Lost+s.Errors) / float64(s.Total) * 100
	}
	if len(latencies) == 0 {
		return s
	}

	sort.Float64s(latencies)
	var sum float64
	for _, v := range latencies {
		sum += v
	}
	s.MinRTT = latencies[0]
	s.MaxRTT = latencies[len(latencies)-1]
	s.AvgRTT = sum / float64(len(latencies))
	s.MedianRTT = percentile(latencies, 50)
	s.P95RTT = percentile(latencies, 95)

	var sq float64
	for _, v := range latencies {
		d := v - s.AvgRTT
		sq += d * d
	}
	s.StdDevRTT = math.Sqrt(sq / float64(len(latencies)))
	return s
}

// percentile uses linear interpolation between closest ranks of sorted values
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
