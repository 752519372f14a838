package monitor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"latency-monitor/internal/metrics"
	"latency-monitor/internal/models"
)

// progressReporter logs a status line per target at a fixed cadence while the
// loops run. It only reads snapshots.
func (m *Monitor) progressReporter(ctx context.Context) {
	if m.cfg.ReportEvery <= 0 {
		return
	}

	ticker := m.clock.NewTicker(m.cfg.ReportEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.reportProgress()
		}
	}
}

func (m *Monitor) reportProgress() {
	for _, snap := range m.store.Snapshot(1) {
		metrics.RunProgress.WithLabelValues(snap.Target).Set(snap.Progress)

		m.log.WithFields(logrus.Fields{
			"target":   snap.Target,
			"latest":   latestLabel(snap),
			"progress": fmt.Sprintf("%.1f%%", snap.Progress),
			"probes":   snap.Probes,
		}).Info("Progress")
	}
}

func latestLabel(snap models.TargetSnapshot) string {
	if len(snap.Values) == 0 {
		return "-"
	}
	switch snap.Latest {
	case models.OutcomeSuccess:
		return fmt.Sprintf("%.1f ms", snap.Values[len(snap.Values)-1])
	case models.OutcomeLost:
		return "Lost"
	default:
		return "Error"
	}
}
