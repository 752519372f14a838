package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"latency-monitor/internal/aggregate"
	"latency-monitor/internal/models"
)

// Input is one target's finished log together with its interval statistics.
// Interval midpoints are in seconds; Intervals is nil when aggregation was
// skipped.
type Input struct {
	Target    string
	Outcomes  []models.Outcome
	Intervals []models.Interval
}

// Generator creates charts and summaries for finished runs
type Generator struct {
	log           *logrus.Entry
	thresholdMS   float64
	probeInterval time.Duration
	now           func() time.Time
}

// NewGenerator creates a new report generator. probeInterval spaces raw
// samples on the time axis.
func NewGenerator(log *logrus.Entry, thresholdMS float64, probeInterval time.Duration) *Generator {
	if probeInterval <= 0 {
		probeInterval = time.Second
	}
	return &Generator{
		log:           log.WithField("component", "report"),
		thresholdMS:   thresholdMS,
		probeInterval: probeInterval,
		now:           time.Now,
	}
}

// Summaries computes whole-log statistics for every input in order
func (g *Generator) Summaries(inputs []Input) []models.Summary {
	out := make([]models.Summary, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, aggregate.Summarize(in.Target, in.Outcomes, g.thresholdMS))
	}
	return out
}

// GenerateReport writes charts and summary.txt into a new timestamped
// subdirectory of outputDir and returns its path. A chart that cannot be
// drawn is logged and skipped; the summary is always attempted.
func (g *Generator) GenerateReport(outputDir string, inputs []Input) (string, error) {
	timestamp := g.now().Format("2006-01-02_15-04-05")
	reportDir := filepath.Join(outputDir, fmt.Sprintf("plots_%s", timestamp))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := g.generateOverviewChart(reportDir, inputs); err != nil && !errors.Is(err, errNoData) {
		g.log.WithError(err).Warn("Failed to generate overview chart")
	}

	for _, in := range inputs {
		err := g.generateLatencyChart(reportDir, in)
		switch {
		case errors.Is(err, errNoData):
			g.log.WithField("target", in.Target).Info("No successful probes, latency chart skipped")
		case err != nil:
			g.log.WithError(err).WithField("target", in.Target).Warn("Failed to generate latency chart")
		}
	}

	if err := g.generatePacketLossChart(reportDir, inputs); err != nil && !errors.Is(err, errNoData) {
		g.log.WithError(err).Warn("Failed to generate packet loss chart")
	}

	if err := g.generateTextReport(reportDir, inputs); err != nil {
		return reportDir, fmt.Errorf("failed to write summary: %w", err)
	}

	g.log.WithField("dir", reportDir).Info("Report generated")
	return reportDir, nil
}
