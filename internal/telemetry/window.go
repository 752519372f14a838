package telemetry

import "sync"

// Window is a fixed-capacity ring of the most recent live values. One probe
// loop writes to it and readers only ever see copies.
type Window struct {
	mu     sync.RWMutex
	values []float64
	head   int // index of the oldest value
	size   int
}

// NewWindow creates a window holding at most capacity values
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{values: make([]float64, capacity)}
}

// Push appends v, evicting the oldest value when the window is full
func (w *Window) Push(v float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size < len(w.values) {
		w.values[(w.head+w.size)%len(w.values)] = v
		w.size++
		return
	}
	w.values[w.head] = v
	w.head = (w.head + 1) % len(w.values)
}

// Snapshot returns a copy of the last k values, oldest first. k <= 0 returns
// everything held.
func (w *Window) Snapshot(k int) []float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if k <= 0 || k > w.size {
		k = w.size
	}
	out := make([]float64, k)
	skip := w.size - k
	for i := range out {
		out[i] = w.values[(w.head+skip+i)%len(w.values)]
	}
	return out
}

func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.size
}

func (w *Window) Cap() int {
	return len(w.values)
}
