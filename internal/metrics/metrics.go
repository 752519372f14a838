package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "latency_monitor_probes_total",
		Help: "Total number of probes by target and outcome",
	}, []string{"target", "outcome"})

	ProbeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "latency_monitor_probe_latency_milliseconds",
		Help:    "Round-trip latency of successful probes",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1ms .. ~2s
	}, []string{"target"})

	ProbeOverrunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "latency_monitor_probe_overruns_total",
		Help: "Cycles where the probe took longer than the interval",
	}, []string{"target"})

	SinkErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "latency_monitor_sink_errors_total",
		Help: "Raw log write failures that stopped a probe loop",
	}, []string{"target"})

	LoopsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "latency_monitor_loops_active",
		Help: "Number of probe loops currently running",
	})

	RunProgress = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "latency_monitor_run_progress_percent",
		Help: "Completion percentage of the current run per target",
	}, []string{"target"})
)
