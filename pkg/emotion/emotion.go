// Package emotion defines the facial emotion labels the mirror reacts to and
// the readings produced from classifier output.
package emotion

import (
	"image"
	"sort"
	"strings"
)

// Emotion is a facial emotion label.
// Classifiers may report labels outside the known set; those are carried
// unchanged and treated as unrecognized downstream.
type Emotion string

// Known emotion labels.
const (
	Happy    Emotion = "happy"
	Neutral  Emotion = "neutral"
	Sad      Emotion = "sad"
	Angry    Emotion = "angry"
	Disgust  Emotion = "disgust"
	Fear     Emotion = "fear"
	Surprise Emotion = "surprise"
)

// None is the zero Emotion, meaning no emotion.
const None Emotion = ""

// DefaultThreshold is the minimum confidence for a score to count.
const DefaultThreshold = 0.3

// All lists the known emotions in display order.
var All = []Emotion{Happy, Neutral, Sad, Angry, Disgust, Fear, Surprise}

// Parse normalizes a label. The second result reports whether the label is
// one of the known emotions.
func Parse(label string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(label)))
	return e, e.Known()
}

// Known reports whether e belongs to the closed label set.
func (e Emotion) Known() bool {
	for _, k := range All {
		if e == k {
			return true
		}
	}
	return false
}

// String returns the label.
func (e Emotion) String() string {
	return string(e)
}

// Face is a single classifier result for one detected face.
type Face struct {
	// Scores maps each emotion to a confidence in [0,1].
	Scores map[Emotion]float64

	// Box is the face bounding box in frame pixel coordinates.
	Box image.Rectangle
}

// Reading is the dominant emotion extracted from a face.
// A Reading with no emotion is empty.
type Reading struct {
	Emotion    Emotion
	Confidence float64
	Box        image.Rectangle
}

// Empty reports whether no emotion cleared the confidence threshold.
func (r Reading) Empty() bool {
	return r.Emotion == None
}

// Dominant returns the highest-scoring emotion whose score is at least
// threshold. Ties go to the emotion listed first in All, then to the
// lexically smaller label. Returns an empty Reading when nothing qualifies.
func Dominant(scores map[Emotion]float64, threshold float64) Reading {
	labels := make([]Emotion, 0, len(scores))
	for e := range scores {
		labels = append(labels, e)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := rank(labels[i]), rank(labels[j])
		if ri != rj {
			return ri < rj
		}
		return labels[i] < labels[j]
	})

	var best Reading
	for _, e := range labels {
		if e == None {
			continue
		}
		s := scores[e]
		if s < threshold {
			continue
		}
		if best.Empty() || s > best.Confidence {
			best = Reading{Emotion: e, Confidence: s}
		}
	}
	return best
}

// FromFaces reduces classifier output to a reading. Only the first face is
// inspected; no faces gives an empty reading.
func FromFaces(faces []Face, threshold float64) Reading {
	if len(faces) == 0 {
		return Reading{}
	}
	r := Dominant(faces[0].Scores, threshold)
	if !r.Empty() {
		r.Box = faces[0].Box
	}
	return r
}

func rank(e Emotion) int {
	for i, k := range All {
		if e == k {
			return i
		}
	}
	return len(All)
}
