// Package mirror runs the smart mirror's per-frame loop.
//
// Each tick reads a frame, decides whether the detection interval has
// elapsed, and if so classifies the frame, feeds the dominant emotion through
// the stability filter and the notification engine, and speaks any new
// compliment. Every frame is then handed to the presenter with the current
// overlay. The loop is single-threaded: classification and speech block
// the tick, and all state is owned by the goroutine calling Run.
//
// The loop is generic over the frame type so that capture and drawing
// backends stay outside the decision core.
package mirror

import (
	"context"
	"errors"

	"github.com/teslashibe/go-mirror/pkg/emotion"
	"github.com/teslashibe/go-mirror/pkg/overlay"
)

// ErrFrameUnavailable is returned when the frame source cannot supply a
// frame. It is the only condition that ends the loop with an error.
var ErrFrameUnavailable = errors.New("mirror: frame source unavailable")

// FrameSource supplies mirrored, fixed-size frames.
type FrameSource[F any] interface {
	// Read returns the next frame. ok=false means end of stream or a
	// capture failure.
	Read() (frame F, ok bool)
}

// Classifier finds faces and scores their emotions.
type Classifier[F any] interface {
	// Detect returns the faces found in frame. An empty slice means no face.
	Detect(ctx context.Context, frame F) ([]emotion.Face, error)
}

// Speaker renders a compliment as audio.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Presenter draws the overlay on a frame and shows it.
type Presenter[F any] interface {
	Render(frame F, ov overlay.Overlay) error
}

// QuitSignal reports an operator request to stop.
type QuitSignal interface {
	QuitRequested() bool
}
