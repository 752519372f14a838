package monitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"latency-monitor/internal/metrics"
	"latency-monitor/internal/models"
)

// runLoop probes target until the run duration has elapsed since start or
// ctx is cancelled. Wake times are anchored to start so slow probes do not
// accumulate drift.
func (m *Monitor) runLoop(ctx context.Context, target string, sink models.RecordSink, start time.Time) (res LoopResult) {
	log := m.log.WithField("target", target)
	res = LoopResult{Target: target, State: models.StateIdle}

	metrics.LoopsActive.Inc()
	defer func() {
		metrics.LoopsActive.Dec()
		if err := sink.Close(); err != nil && res.Err == nil {
			res.Err = &SinkWriteError{Target: target, Err: err}
		}
		m.store.MarkCompleted(target)
		metrics.RunProgress.WithLabelValues(target).Set(100)
		res.State = models.StateCompleted
		log.WithFields(logrus.Fields{
			"probes":   res.Probes,
			"overruns": res.Overruns,
		}).Debug("Probe loop finished")
	}()

	timeout := m.cfg.ProbeTimeout()
	overrun := false

	for seq := 0; ; seq++ {
		if ctx.Err() != nil {
			res.Interrupted = true
			return res
		}
		if m.clock.Since(start) >= m.cfg.Duration {
			return res
		}

		// An in-flight probe is never cut short by cancellation, only by its own timeout.
		res.State = models.StateProbing
		outcome := m.executor.Probe(context.WithoutCancel(ctx), target, timeout)
		now := m.clock.Now()

		res.State = models.StateRecording
		rec := models.Record{
			Seq:       seq,
			Timestamp: now,
			Target:    target,
			Outcome:   outcome,
			Overrun:   overrun,
		}
		if err := sink.Append(rec); err != nil {
			metrics.SinkErrorsTotal.WithLabelValues(target).Inc()
			res.Err = &SinkWriteError{Target: target, Err: err}
			log.WithError(err).Error("Raw log write failed, stopping probe loop")
			return res
		}
		res.Probes++

		m.store.RecordSample(target, outcome)
		m.store.RecordProgress(target, now.Sub(start), m.cfg.Duration)
		observe(log, target, outcome)

		res.State = models.StateWaiting
		next := start.Add(time.Duration(seq+1) * m.cfg.Interval)
		wait := next.Sub(m.clock.Now())
		overrun = wait < 0
		if overrun {
			res.Overruns++
			m.store.RecordOverrun(target)
			metrics.ProbeOverrunsTotal.WithLabelValues(target).Inc()
			log.WithField("behind", -wait).Debug("Probe overran its interval")
		}
		if wait <= 0 {
			continue
		}

		timer := m.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			res.Interrupted = true
			return res
		case <-timer.Chan():
		}
	}
}

func observe(log *logrus.Entry, target string, outcome models.Outcome) {
	metrics.ProbesTotal.WithLabelValues(target, outcome.Kind.String()).Inc()

	switch outcome.Kind {
	case models.OutcomeSuccess:
		metrics.ProbeLatency.WithLabelValues(target).Observe(outcome.LatencyMS)
		log.WithField("latency_ms", outcome.LatencyMS).Debug("Probe succeeded")
	case models.OutcomeLost:
		log.Debug("Probe lost")
	default:
		log.WithField("error", outcome.Message).Warn("Probe could not be executed")
	}
}
