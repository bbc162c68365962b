// Package stability turns noisy per-detection emotion readings into a
// confirmed emotion.
//
// A Filter keeps the labels of the last N non-empty readings. An emotion is
// confirmed only when the history is full and every entry agrees, which
// rejects single-frame misclassifications at the cost of N-1 detections of
// latency.
package stability

import "github.com/teslashibe/go-mirror/pkg/emotion"

// DefaultCapacity is the number of agreeing readings needed to confirm.
const DefaultCapacity = 2

// Filter is a fixed-capacity FIFO of recent emotion labels.
// It is not safe for concurrent use.
type Filter struct {
	history []emotion.Emotion
	cap     int
}

// New creates a filter. Capacities below 1 are clamped to 1.
func New(capacity int) *Filter {
	if capacity < 1 {
		capacity = 1
	}
	return &Filter{
		history: make([]emotion.Emotion, 0, capacity),
		cap:     capacity,
	}
}

// Observe records a reading and returns the confirmed emotion, if any.
// Empty readings leave the history untouched and confirm nothing.
func (f *Filter) Observe(r emotion.Reading) (emotion.Emotion, bool) {
	if r.Empty() {
		return emotion.None, false
	}

	if len(f.history) == f.cap {
		copy(f.history, f.history[1:])
		f.history = f.history[:f.cap-1]
	}
	f.history = append(f.history, r.Emotion)

	return f.confirmed()
}

// Confirmed returns the current verdict without recording anything.
func (f *Filter) Confirmed() (emotion.Emotion, bool) {
	return f.confirmed()
}

func (f *Filter) confirmed() (emotion.Emotion, bool) {
	if len(f.history) < f.cap {
		return emotion.None, false
	}
	first := f.history[0]
	for _, e := range f.history[1:] {
		if e != first {
			return emotion.None, false
		}
	}
	return first, true
}

// History returns a copy of the recorded labels, oldest first.
func (f *Filter) History() []emotion.Emotion {
	out := make([]emotion.Emotion, len(f.history))
	copy(out, f.history)
	return out
}

// Len returns the number of recorded labels.
func (f *Filter) Len() int { return len(f.history) }

// Cap returns the history capacity.
func (f *Filter) Cap() int { return f.cap }

// Reset clears the history.
func (f *Filter) Reset() {
	f.history = f.history[:0]
}
