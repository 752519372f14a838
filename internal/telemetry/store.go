package telemetry

import (
	"sync"
	"time"

	"latency-monitor/internal/models"
)

type targetState struct {
	window *Window

	mu        sync.RWMutex
	latest    models.OutcomeKind
	progress  float64
	completed bool
	probes    int
	overruns  int
}

// Store keeps the live view of every target. It implements
// models.TelemetrySink for the probe loops and hands out snapshots to renderers.
type Store struct {
	order   []string
	targets map[string]*targetState
	// displayCap clamps live values when positive
	displayCap float64
}

var _ models.TelemetrySink = (*Store)(nil)

// NewStore creates one window of the given capacity per target
func NewStore(targets []string, capacity int, displayCap float64) *Store {
	s := &Store{
		order:      append([]string(nil), targets...),
		targets:    make(map[string]*targetState, len(targets)),
		displayCap: displayCap,
	}
	for _, t := range targets {
		s.targets[t] = &targetState{window: NewWindow(capacity)}
	}
	return s
}

// RecordSample publishes the live value for one probe outcome
func (s *Store) RecordSample(target string, outcome models.Outcome) {
	st, ok := s.targets[target]
	if !ok {
		return
	}

	v := outcome.LiveValue()
	if s.displayCap > 0 && v > s.displayCap {
		v = s.displayCap
	}
	// The window and the counters change together so snapshots never mix cycles.
	st.mu.Lock()
	st.window.Push(v)
	st.latest = outcome.Kind
	st.probes++
	st.mu.Unlock()
}

// RecordProgress updates the completion percentage of a target
func (s *Store) RecordProgress(target string, elapsed, total time.Duration) {
	st, ok := s.targets[target]
	if !ok {
		return
	}

	pct := 100.0
	if total > 0 {
		pct = min(100, float64(elapsed)/float64(total)*100)
	}

	st.mu.Lock()
	if !st.completed {
		st.progress = pct
	}
	st.mu.Unlock()
}

func (s *Store) RecordOverrun(target string) {
	st, ok := s.targets[target]
	if !ok {
		return
	}
	st.mu.Lock()
	st.overruns++
	st.mu.Unlock()
}

// MarkCompleted forces the target to 100% regardless of rounding
func (s *Store) MarkCompleted(target string) {
	st, ok := s.targets[target]
	if !ok {
		return
	}
	st.mu.Lock()
	st.progress = 100
	st.completed = true
	st.mu.Unlock()
}

// Snapshot copies the last k live values and progress of every target in
// configuration order
func (s *Store) Snapshot(k int) []models.TargetSnapshot {
	out := make([]models.TargetSnapshot, 0, len(s.order))
	for _, target := range s.order {
		st := s.targets[target]
		snap := models.TargetSnapshot{Target: target}
		st.mu.RLock()
		snap.Values = st.window.Snapshot(k)
		snap.Latest = st.latest
		snap.Progress = st.progress
		snap.Completed = st.completed
		snap.Probes = st.probes
		snap.Overruns = st.overruns
		st.mu.RUnlock()
		out = append(out, snap)
	}
	return out
}

// Progress returns the mean completion percentage across targets
func (s *Store) Progress() float64 {
	if len(s.order) == 0 {
		return 100
	}
	var sum float64
	for _, target := range s.order {
		st := s.targets[target]
		st.mu.RLock()
		sum += st.progress
		st.mu.RUnlock()
	}
	return sum / float64(len(s.order))
}

// Targets returns the targets in configuration order
func (s *Store) Targets() []string {
	return append([]string(nil), s.order...)
}
