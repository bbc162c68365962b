package stability

import (
	"slices"
	"testing"

	"github.com/teslashibe/go-mirror/pkg/emotion"
)

func reading(e emotion.Emotion, conf float64) emotion.Reading {
	return emotion.Reading{Emotion: e, Confidence: conf}
}

func TestObserve_ConfirmsOnFullUniformHistory(t *testing.T) {
	f := New(2)

	if e, ok := f.Observe(reading(emotion.Happy, 0.8)); ok {
		t.Fatalf("expected no confirmation after first reading, got %s", e)
	}
	e, ok := f.Observe(reading(emotion.Happy, 0.9))
	if !ok || e != emotion.Happy {
		t.Fatalf("expected happy confirmed, got %q (%v)", e, ok)
	}

	// A third identical reading keeps confirming.
	e, ok = f.Observe(reading(emotion.Happy, 0.8))
	if !ok || e != emotion.Happy {
		t.Errorf("expected happy confirmed again, got %q (%v)", e, ok)
	}
}

func TestObserve_NeverConfirmsBelowCapacity(t *testing.T) {
	for capacity := 1; capacity <= 5; capacity++ {
		f := New(capacity)
		for i := 1; i <= capacity; i++ {
			_, ok := f.Observe(reading(emotion.Sad, 0.5))
			if i < capacity && ok {
				t.Errorf("capacity %d: confirmed after %d readings", capacity, i)
			}
			if i == capacity && !ok {
				t.Errorf("capacity %d: expected confirmation on reading %d", capacity, i)
			}
		}
	}
}

func TestObserve_MismatchNeverConfirms(t *testing.T) {
	f := New(2)

	if _, ok := f.Observe(reading(emotion.Happy, 0.8)); ok {
		t.Fatal("unexpected confirmation")
	}
	if _, ok := f.Observe(reading(emotion.Sad, 0.8)); ok {
		t.Fatal("expected happy/sad mismatch to stay unconfirmed")
	}
	e, ok := f.Observe(reading(emotion.Sad, 0.7))
	if !ok || e != emotion.Sad {
		t.Errorf("expected sad after two consecutive sad readings, got %q (%v)", e, ok)
	}
}

func TestObserve_EmptyReadingLeavesHistory(t *testing.T) {
	f := New(2)
	f.Observe(reading(emotion.Fear, 0.6))
	before := f.History()
	verdictE, verdictOK := f.Confirmed()

	e, ok := f.Observe(emotion.Reading{})
	if ok || e != emotion.None {
		t.Errorf("expected no output for empty reading, got %q (%v)", e, ok)
	}
	if !slices.Equal(before, f.History()) {
		t.Errorf("empty reading changed history: %v -> %v", before, f.History())
	}
	if ce, cok := f.Confirmed(); ce != verdictE || cok != verdictOK {
		t.Error("empty reading changed the verdict")
	}

	// Stability accumulated before the empty frame still counts.
	e, ok = f.Observe(reading(emotion.Fear, 0.7))
	if !ok || e != emotion.Fear {
		t.Errorf("expected fear confirmed across an empty frame, got %q (%v)", e, ok)
	}
}

func TestObserve_EmptyDoesNotBreakConfirmedState(t *testing.T) {
	f := New(2)
	f.Observe(reading(emotion.Angry, 0.5))
	f.Observe(reading(emotion.Angry, 0.5))
	f.Observe(emotion.Reading{})

	if e, ok := f.Confirmed(); !ok || e != emotion.Angry {
		t.Errorf("expected angry still confirmed, got %q (%v)", e, ok)
	}
}

func TestHistory_EvictsOldest(t *testing.T) {
	f := New(3)
	for _, e := range []emotion.Emotion{emotion.Happy, emotion.Sad, emotion.Fear, emotion.Angry} {
		f.Observe(reading(e, 0.9))
		if f.Len() > f.Cap() {
			t.Fatalf("history length %d exceeds capacity %d", f.Len(), f.Cap())
		}
	}

	want := []emotion.Emotion{emotion.Sad, emotion.Fear, emotion.Angry}
	if got := f.History(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNew_ClampsCapacity(t *testing.T) {
	if c := New(0).Cap(); c != 1 {
		t.Errorf("expected capacity 1, got %d", c)
	}
}

func TestReset(t *testing.T) {
	f := New(2)
	f.Observe(reading(emotion.Happy, 0.9))
	f.Reset()
	if f.Len() != 0 {
		t.Errorf("expected empty history, got %d", f.Len())
	}
	if _, ok := f.Observe(reading(emotion.Happy, 0.9)); ok {
		t.Error("expected no confirmation right after reset")
	}
}
