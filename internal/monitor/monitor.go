package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"latency-monitor/internal/config"
	"latency-monitor/internal/models"
	"latency-monitor/internal/telemetry"
)

// SinkFactory opens the raw log sink of one target
type SinkFactory func(target string) (models.RecordSink, error)

// Deps are the collaborators of a Monitor
type Deps struct {
	Log      *logrus.Entry
	Executor models.Executor
	Sinks    SinkFactory
	// Store is created from the config when nil
	Store *telemetry.Store
	// Clock defaults to the real clock
	Clock clockwork.Clock
}

// Monitor runs one probe loop per target for a fixed duration
type Monitor struct {
	cfg      config.Config
	log      *logrus.Entry
	executor models.Executor
	sinks    SinkFactory
	store    *telemetry.Store
	clock    clockwork.Clock
	running  atomic.Bool
}

// LoopResult describes how one target's probe loop ended
type LoopResult struct {
	Target      string
	Probes      int
	Overruns    int
	Interrupted bool
	State       models.LoopState
	Err         error
}

// RunResult describes a finished (or interrupted) run
type RunResult struct {
	Start       time.Time
	End         time.Time
	Interrupted bool
	Loops       []LoopResult
}

// Failed returns the loops that stopped because of a sink error
func (r RunResult) Failed() []LoopResult {
	var out []LoopResult
	for _, l := range r.Loops {
		if l.Err != nil {
			out = append(out, l)
		}
	}
	return out
}

// New creates a Monitor. The configuration is validated here so that a bad
// configuration never starts any loop.
func New(cfg config.Config, deps Deps) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Executor == nil {
		return nil, errors.New("executor is required")
	}
	if deps.Sinks == nil {
		return nil, errors.New("sink factory is required")
	}
	if deps.Log == nil {
		deps.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Store == nil {
		deps.Store = telemetry.NewStore(cfg.Targets, cfg.WindowSize, cfg.DisplayCapMS)
	}

	return &Monitor{
		cfg:      cfg,
		log:      deps.Log.WithField("component", "monitor"),
		executor: deps.Executor,
		sinks:    deps.Sinks,
		store:    deps.Store,
		clock:    deps.Clock,
	}, nil
}

// Run starts every probe loop anchored to the same start time and blocks
// until all of them complete. Cancelling ctx stops the loops at their next
// wait; the partial result is returned without an error.
func (m *Monitor) Run(ctx context.Context) (RunResult, error) {
	if !m.running.CompareAndSwap(false, true) {
		return RunResult{}, errors.New("monitor is already running")
	}
	defer m.running.Store(false)

	sinks := make([]models.RecordSink, 0, len(m.cfg.Targets))
	for _, target := range m.cfg.Targets {
		sink, err := m.sinks(target)
		if err != nil {
			for _, s := range sinks {
				s.Close()
			}
			return RunResult{}, fmt.Errorf("failed to open sink for %s: %w", target, err)
		}
		sinks = append(sinks, sink)
	}

	m.log.WithFields(logrus.Fields{
		"targets":  m.cfg.Targets,
		"duration": m.cfg.Duration,
		"interval": m.cfg.Interval,
	}).Info("Starting probe loops")

	start := m.clock.Now()
	result := RunResult{Start: start, Loops: make([]LoopResult, len(m.cfg.Targets))}

	var wg sync.WaitGroup
	for i, target := range m.cfg.Targets {
		wg.Add(1)
		go func(i int, target string, sink models.RecordSink) {
			defer wg.Done()
			result.Loops[i] = m.runLoop(ctx, target, sink, start)
		}(i, target, sinks[i])
	}

	reporterCtx, stopReporter := context.WithCancel(ctx)
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		m.progressReporter(reporterCtx)
	}()

	wg.Wait()
	stopReporter()
	<-reporterDone

	result.End = m.clock.Now()
	for _, l := range result.Loops {
		if l.Interrupted {
			result.Interrupted = true
		}
	}

	entry := m.log.WithField("elapsed", result.End.Sub(start).Round(time.Millisecond))
	if result.Interrupted {
		entry.Warn("Probe loops interrupted")
	} else {
		entry.Info("Probe loops completed")
	}
	return result, nil
}

// Snapshot returns a stable copy of the last k live values of every target
func (m *Monitor) Snapshot(k int) []models.TargetSnapshot {
	return m.store.Snapshot(k)
}

// Progress returns the overall completion percentage
func (m *Monitor) Progress() float64 {
	return m.store.Progress()
}

func (m *Monitor) Store() *telemetry.Store {
	return m.store
}
