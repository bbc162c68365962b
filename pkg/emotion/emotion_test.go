package emotion

import (
	"image"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		want  Emotion
		known bool
	}{
		{"happy", Happy, true},
		{"  Happy ", Happy, true},
		{"SURPRISE", Surprise, true},
		{"contempt", Emotion("contempt"), false},
		{"", None, false},
	}

	for _, tt := range tests {
		got, known := Parse(tt.in)
		if got != tt.want || known != tt.known {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestKnown(t *testing.T) {
	for _, e := range All {
		if !e.Known() {
			t.Errorf("expected %q to be known", e)
		}
	}
	if None.Known() {
		t.Error("expected None to be unknown")
	}
	if len(All) != 7 {
		t.Errorf("expected 7 emotions, got %d", len(All))
	}
}

func TestDominant(t *testing.T) {
	t.Run("picks highest score", func(t *testing.T) {
		r := Dominant(map[Emotion]float64{Happy: 0.8, Sad: 0.4, Neutral: 0.1}, DefaultThreshold)
		if r.Emotion != Happy || r.Confidence != 0.8 {
			t.Errorf("expected happy@0.8, got %s@%v", r.Emotion, r.Confidence)
		}
	})

	t.Run("discards scores below threshold", func(t *testing.T) {
		r := Dominant(map[Emotion]float64{Happy: 0.29, Sad: 0.1}, DefaultThreshold)
		if !r.Empty() {
			t.Errorf("expected empty reading, got %s", r.Emotion)
		}
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		r := Dominant(map[Emotion]float64{Fear: 0.3}, DefaultThreshold)
		if r.Emotion != Fear {
			t.Errorf("expected fear, got %q", r.Emotion)
		}
	})

	t.Run("ties resolve in display order", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			r := Dominant(map[Emotion]float64{Surprise: 0.5, Sad: 0.5, Angry: 0.5}, DefaultThreshold)
			if r.Emotion != Sad {
				t.Fatalf("expected sad, got %s", r.Emotion)
			}
		}
	})

	t.Run("nil map is empty", func(t *testing.T) {
		if r := Dominant(nil, DefaultThreshold); !r.Empty() {
			t.Error("expected empty reading")
		}
	})
}

func TestFromFaces(t *testing.T) {
	box := image.Rect(10, 20, 110, 140)

	t.Run("no faces", func(t *testing.T) {
		if r := FromFaces(nil, DefaultThreshold); !r.Empty() {
			t.Error("expected empty reading")
		}
	})

	t.Run("first face only", func(t *testing.T) {
		faces := []Face{
			{Scores: map[Emotion]float64{Happy: 0.6}, Box: box},
			{Scores: map[Emotion]float64{Angry: 0.99}},
		}
		r := FromFaces(faces, DefaultThreshold)
		if r.Emotion != Happy {
			t.Errorf("expected happy, got %s", r.Emotion)
		}
		if r.Box != box {
			t.Errorf("expected box %v, got %v", box, r.Box)
		}
	})

	t.Run("empty reading carries no box", func(t *testing.T) {
		faces := []Face{{Scores: map[Emotion]float64{Happy: 0.1}, Box: box}}
		r := FromFaces(faces, DefaultThreshold)
		if !r.Empty() || r.Box != (image.Rectangle{}) {
			t.Errorf("expected empty reading without box, got %+v", r)
		}
	})
}
