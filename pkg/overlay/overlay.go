// Package overlay describes what is drawn over each mirror frame.
package overlay

import (
	"fmt"
	"image"
	"time"

	"github.com/teslashibe/go-mirror/pkg/emotion"
)

// DefaultPrivacyNotice is shown at the bottom of every frame.
const DefaultPrivacyNotice = "Privacy Notice: All processing is done locally"

// Overlay is the per-tick data handed to a presenter.
type Overlay struct {
	// Emotion is the announced emotion, empty until the first announcement.
	Emotion emotion.Emotion

	// Compliment is the announced compliment text.
	Compliment string

	// Remaining is the countdown to the next detection.
	Remaining time.Duration

	// Confirmed is set on a tick whose detection confirmed an emotion.
	// FaceBox and Confidence are only meaningful when it is set.
	Confirmed  bool
	Confidence float64
	FaceBox    image.Rectangle

	PrivacyNotice string
}

// EmotionLabel returns "Emotion: <name>", or "" before any announcement.
func (o Overlay) EmotionLabel() string {
	if o.Emotion == emotion.None {
		return ""
	}
	return "Emotion: " + o.Emotion.String()
}

// ComplimentLabel returns the compliment, or "" before any announcement.
func (o Overlay) ComplimentLabel() string {
	if o.Emotion == emotion.None {
		return ""
	}
	return o.Compliment
}

// CountdownLabel returns the countdown in whole seconds, truncated.
func (o Overlay) CountdownLabel() string {
	return fmt.Sprintf("Next detection in: %ds", int(o.Remaining/time.Second))
}

// ConfidenceLabel returns the confirming reading's confidence, or "".
func (o Overlay) ConfidenceLabel() string {
	if !o.Confirmed {
		return ""
	}
	return fmt.Sprintf("Confidence: %.2f", o.Confidence)
}

// HasFaceBox reports whether a face box should be drawn this tick.
func (o Overlay) HasFaceBox() bool {
	return o.Confirmed && !o.FaceBox.Empty()
}
