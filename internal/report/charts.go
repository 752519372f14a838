package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var errNoData = errors.New("no data to plot")

var gridStyle = chart.Style{
	StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
	StrokeWidth: 1.0,
}

var axisStyle = chart.Style{
	StrokeColor: drawing.ColorBlack,
	FontSize:    10,
}

func baseChart(title, yName string, maxX, maxY float64) chart.Chart {
	return chart.Chart{
		Title: title,
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  1200,
		Height: 400,
		XAxis: chart.XAxis{
			Name: "Time (s)",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: axisStyle,
			Range: &chart.ContinuousRange{Min: 0, Max: maxX},
		},
		YAxis: chart.YAxis{
			Name: yName,
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: maxY},
			GridMajorStyle: gridStyle,
		},
	}
}

func (g *Generator) span(inputs ...Input) float64 {
	n := 1
	for _, in := range inputs {
		if len(in.Outcomes) > n {
			n = len(in.Outcomes)
		}
	}
	return float64(n) * g.probeInterval.Seconds()
}

func render(graph chart.Chart, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := graph.Render(chart.PNG, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// generateOverviewChart draws every target on one chart: raw latency, the
// interval means and the intervals above the latency threshold
func (g *Generator) generateOverviewChart(outputDir string, inputs []Input) error {
	var series []chart.Series
	var peaks []float64
	var annotations []chart.Value2

	for idx, in := range inputs {
		color := chart.GetDefaultColor(idx)

		xs, ys := successPoints(in.Outcomes, g.probeInterval)
		if len(xs) > 0 {
			series = append(series, chart.ContinuousSeries{
				Name: fmt.Sprintf("%s Raw Ping", in.Target),
				Style: chart.Style{
					StrokeColor: color.WithAlpha(128),
					StrokeWidth: 1,
				},
				XValues: xs,
				YValues: ys,
			})
			peaks = append(peaks, maxOf(ys))
		}

		if len(in.Intervals) == 0 {
			continue
		}

		mx := make([]float64, len(in.Intervals))
		my := make([]float64, len(in.Intervals))
		for i, iv := range in.Intervals {
			mx[i] = iv.MidpointSec
			my[i] = iv.MeanLatencyMS
		}
		series = append(series, chart.ContinuousSeries{
			Name: fmt.Sprintf("%s Mean Latency", in.Target),
			Style: chart.Style{
				StrokeColor:     color,
				StrokeWidth:     2,
				StrokeDashArray: []float64{5, 5},
				DotColor:        color,
				DotWidth:        3,
			},
			XValues: mx,
			YValues: my,
		})
		peaks = append(peaks, maxOf(my))

		high := highLatency(in.Intervals, g.thresholdMS)
		if len(high) == 0 {
			continue
		}
		hx := make([]float64, len(high))
		hy := make([]float64, len(high))
		for i, iv := range high {
			hx[i] = iv.MidpointSec
			hy[i] = iv.MeanLatencyMS
			annotations = append(annotations, chart.Value2{
				XValue: iv.MidpointSec,
				YValue: iv.MeanLatencyMS,
				Label:  fmt.Sprintf("%.1f ms", iv.MeanLatencyMS),
			})
		}
		series = append(series, chart.ContinuousSeries{
			Name: fmt.Sprintf("%s High Latency", in.Target),
			Style: chart.Style{
				StrokeColor: drawing.ColorTransparent,
				DotColor:    color,
				DotWidth:    6,
			},
			XValues: hx,
			YValues: hy,
		})
	}

	if len(series) == 0 {
		return errNoData
	}

	maxX := g.span(inputs...)
	if g.thresholdMS > 0 {
		peaks = append(peaks, g.thresholdMS)
		series = append(series, chart.ContinuousSeries{
			Name: "Latency Threshold",
			Style: chart.Style{
				StrokeColor:     drawing.ColorRed,
				StrokeWidth:     1,
				StrokeDashArray: []float64{2, 4},
			},
			XValues: []float64{0, maxX},
			YValues: []float64{g.thresholdMS, g.thresholdMS},
		})
	}
	if len(annotations) > 0 {
		series = append(series, chart.AnnotationSeries{Annotations: annotations})
	}

	graph := baseChart("Ping Monitoring", "Latency (ms)", maxX, axisMax(peaks...))
	graph.Series = series
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	return render(graph, filepath.Join(outputDir, "ping_plot.png"))
}

// generateLatencyChart draws one target's raw latency with a moving average
func (g *Generator) generateLatencyChart(outputDir string, in Input) error {
	xs, ys := successPoints(in.Outcomes, g.probeInterval)
	if len(xs) == 0 {
		return errNoData
	}

	raw := chart.ContinuousSeries{
		Name: in.Target,
		Style: chart.Style{
			StrokeColor: chart.GetDefaultColor(0),
			StrokeWidth: 2,
		},
		XValues: xs,
		YValues: ys,
	}

	graph := baseChart(fmt.Sprintf("Network Latency - %s", in.Target), "Latency (ms)",
		g.span(in), axisMax(maxOf(ys), g.thresholdMS))
	graph.Series = []chart.Series{raw}

	// Add moving average
	if len(ys) > 10 {
		graph.Series = append(graph.Series, chart.SMASeries{
			Name: "Moving Avg",
			Style: chart.Style{
				StrokeColor:     chart.GetDefaultColor(1),
				StrokeWidth:     2,
				StrokeDashArray: []float64{5, 5},
			},
			InnerSeries: raw,
			Period:      10,
		})
	}

	filename := filepath.Join(outputDir, fmt.Sprintf("latency_%s.png", sanitizeFilename(in.Target)))
	return render(graph, filename)
}

// generatePacketLossChart draws the per-interval packet loss of every target
func (g *Generator) generatePacketLossChart(outputDir string, inputs []Input) error {
	var series []chart.Series

	for idx, in := range inputs {
		if len(in.Intervals) == 0 {
			continue
		}
		xs := make([]float64, len(in.Intervals))
		ys := make([]float64, len(in.Intervals))
		for i, iv := range in.Intervals {
			xs[i] = iv.MidpointSec
			ys[i] = iv.PacketLossPct
		}
		color := chart.GetDefaultColor(idx)
		series = append(series, chart.ContinuousSeries{
			Name: in.Target,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	if len(series) == 0 {
		return errNoData
	}

	graph := baseChart("Packet Loss per Interval", "Packet Loss %", g.span(inputs...), 100)
	graph.Series = series
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	return render(graph, filepath.Join(outputDir, "packet_loss.png"))
}
