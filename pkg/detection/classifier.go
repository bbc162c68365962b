package detection

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-mirror/pkg/emotion"
)

// Locator finds faces in a frame.
type Locator interface {
	Detect(img gocv.Mat) ([]Detection, error)
}

// Scorer rates the expression of a JPEG face crop.
type Scorer interface {
	Score(ctx context.Context, jpeg []byte) (map[emotion.Emotion]float64, error)
}

// Classifier locates the most prominent face and scores its expression.
// Frames without a face never reach the scorer.
type Classifier struct {
	locator Locator
	scorer  Scorer
	padding float64
	quality int
	logger  *slog.Logger
}

// NewClassifier composes a face locator with an expression scorer.
func NewClassifier(locator Locator, scorer Scorer, cfg Config, logger *slog.Logger) *Classifier {
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = DefaultConfig().JPEGQuality
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		locator: locator,
		scorer:  scorer,
		padding: max(cfg.Padding, 0),
		quality: cfg.JPEGQuality,
		logger:  logger.With("component", "detection"),
	}
}

// Detect returns at most one face: the best located face with its emotion
// scores. No face yields an empty slice and a nil error.
func (c *Classifier) Detect(ctx context.Context, frame gocv.Mat) ([]emotion.Face, error) {
	dets, err := c.locator.Detect(frame)
	if err != nil {
		return nil, fmt.Errorf("locate faces: %w", err)
	}
	best := SelectBest(dets)
	if best == nil {
		return nil, nil
	}

	box := best.Rect(frame.Cols(), frame.Rows())
	if box.Empty() {
		return nil, nil
	}
	c.logger.Debug("face located", "faces", len(dets), "box", box, "score", best.Confidence)

	crop, err := c.encode(frame, Pad(box, c.padding, image.Rect(0, 0, frame.Cols(), frame.Rows())))
	if err != nil {
		return nil, err
	}

	scores, err := c.scorer.Score(ctx, crop)
	if err != nil {
		return nil, fmt.Errorf("score face: %w", err)
	}
	return []emotion.Face{{Scores: scores, Box: box}}, nil
}

// encode JPEG-encodes the region r of frame.
func (c *Classifier) encode(frame gocv.Mat, r image.Rectangle) ([]byte, error) {
	region := frame.Region(r)
	defer region.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, region, []int{gocv.IMWriteJpegQuality, c.quality})
	if err != nil {
		return nil, fmt.Errorf("encode face crop: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), nil
}
