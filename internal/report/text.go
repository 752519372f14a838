package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"latency-monitor/internal/models"
)

func formatMS(v float64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteSummaryTable renders one row per target
func WriteSummaryTable(w io.Writer, summaries []models.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{
		"Target",
		"Total Pings",
		"Successful",
		"Lost",
		"Errors",
		"Packet Loss (%)",
		"Avg (ms)",
		"Min (ms)",
		"Max (ms)",
		"P95 (ms)",
		"Above Threshold",
	})

	for _, s := range summaries {
		ok := s.Successes > 0
		table.Append([]string{
			s.Target,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Successes),
			strconv.Itoa(s.Lost),
			strconv.Itoa(s.Errors),
			fmt.Sprintf("%.2f%%", s.LossPct),
			formatMS(s.AvgRTT, ok),
			formatMS(s.MinRTT, ok),
			formatMS(s.MaxRTT, ok),
			formatMS(s.P95RTT, ok),
			strconv.Itoa(s.AboveThreshold),
		})
	}

	table.Render()
}

func (g *Generator) generateTextReport(outputDir string, inputs []Input) error {
	filename := filepath.Join(outputDir, "summary.txt")
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Latency Monitor Report\n")
	fmt.Fprintf(file, "Generated: %s\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Probe interval: %s\n", g.probeInterval)
	if g.thresholdMS > 0 {
		fmt.Fprintf(file, "Latency threshold: %.0f ms\n", g.thresholdMS)
	}
	fmt.Fprintln(file, strings.Repeat("=", 60))

	fmt.Fprintln(file, "\nOVERALL STATISTICS")
	WriteSummaryTable(file, g.Summaries(inputs))

	fmt.Fprintln(file, strings.Repeat("=", 60))
	fmt.Fprintln(file, "\nHIGH LATENCY INTERVALS")

	count := 0
	for _, in := range inputs {
		for _, iv := range highLatency(in.Intervals, g.thresholdMS) {
			fmt.Fprintf(file, "  %s at %.1fs: mean %.2f ms, loss %.2f%%\n",
				in.Target, iv.MidpointSec, iv.MeanLatencyMS, iv.PacketLossPct)
			count++
		}
	}

	if count == 0 {
		fmt.Fprintln(file, "No intervals above the latency threshold.")
	} else {
		fmt.Fprintf(file, "\nTotal: %d\n", count)
	}

	return file.Close()
}
