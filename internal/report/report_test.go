package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latency-monitor/internal/aggregate"
	"latency-monitor/internal/logging"
	"latency-monitor/internal/models"
)

func sampleInput(target string, n int) Input {
	outcomes := make([]models.Outcome, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i%7 == 3:
			outcomes = append(outcomes, models.Lost())
		case i%11 == 5:
			outcomes = append(outcomes, models.Failed("unknown host"))
		default:
			outcomes = append(outcomes, models.Success(float64(10+i%40)))
		}
	}
	return Input{
		Target:    target,
		Outcomes:  outcomes,
		Intervals: aggregate.Aggregate(outcomes, 10),
	}
}

func newTestGenerator(threshold float64) *Generator {
	g := NewGenerator(logging.Discard(), threshold, time.Second)
	g.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return g
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "8_8_8_8", sanitizeFilename("8.8.8.8"))
	assert.Equal(t, "__1", sanitizeFilename("::1"))
	assert.Equal(t, "a_b_c", sanitizeFilename("a/b c"))
}

func TestSuccessPoints(t *testing.T) {
	xs, ys := successPoints([]models.Outcome{
		models.Success(10), models.Lost(), models.Success(30),
	}, 500*time.Millisecond)
	assert.Equal(t, []float64{0, 1}, xs)
	assert.Equal(t, []float64{10, 30}, ys)
}

func TestHighLatency(t *testing.T) {
	ivs := []models.Interval{
		{Successes: 2, MeanLatencyMS: 250},
		{Successes: 2, MeanLatencyMS: 100},
		{Successes: 0, MeanLatencyMS: 0},
	}
	assert.Len(t, highLatency(ivs, 200), 1)
	assert.Empty(t, highLatency(ivs, 0))
}

func TestAxisMax(t *testing.T) {
	assert.Equal(t, 1.0, axisMax())
	assert.Equal(t, 1.0, axisMax(0, 0))
	assert.InDelta(t, 220.0, axisMax(50, 200), 1e-9)
}

func TestGenerateReport(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(30)

	inputs := []Input{sampleInput("8.8.8.8", 60), sampleInput("1.1.1.1", 25)}
	reportDir, err := g.GenerateReport(dir, inputs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plots_2026-03-01_12-00-00"), reportDir)

	for _, name := range []string{
		"ping_plot.png",
		"latency_8_8_8_8.png",
		"latency_1_1_1_1.png",
		"packet_loss.png",
		"summary.txt",
	} {
		info, err := os.Stat(filepath.Join(reportDir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}

	summary, err := os.ReadFile(filepath.Join(reportDir, "summary.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "8.8.8.8")
	assert.Contains(t, string(summary), "HIGH LATENCY INTERVALS")
}

func TestGenerateReportWithoutSuccesses(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(200)

	outcomes := []models.Outcome{models.Lost(), models.Lost(), models.Failed("down")}
	reportDir, err := g.GenerateReport(dir, []Input{{Target: "10.0.0.1", Outcomes: outcomes}})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(reportDir, "latency_10_0_0_1.png"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(reportDir, "packet_loss.png"))
	assert.True(t, os.IsNotExist(err))

	summary, err := os.ReadFile(filepath.Join(reportDir, "summary.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "N/A")
	assert.Contains(t, string(summary), "No intervals above the latency threshold.")
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	WriteSummaryTable(&buf, []models.Summary{
		aggregate.Summarize("a", []models.Outcome{models.Success(10), models.Lost()}, 0),
	})
	out := buf.String()
	assert.Contains(t, out, "Packet Loss (%)")
	assert.Contains(t, out, "50.00%")
	assert.Contains(t, out, "10.00")
}
