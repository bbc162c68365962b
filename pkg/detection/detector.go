// Package detection turns camera frames into emotion readings.
// YuNet locates faces locally; the chosen face crop is then scored by an
// expression model.
package detection

import "image"

// Detection is a located face in normalized (0-1) frame coordinates.
type Detection struct {
	X, Y       float64 // Top-left corner
	W, H       float64 // Width and height
	Confidence float64 // Detector score (0-1)
}

// Center returns the center point of the detection.
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area returns the area of the bounding box.
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Rect converts the detection to pixel coordinates in a frame of the given
// size, clipped to the frame.
func (d Detection) Rect(width, height int) image.Rectangle {
	fw, fh := float64(width), float64(height)
	r := image.Rect(
		int(d.X*fw), int(d.Y*fh),
		int((d.X+d.W)*fw), int((d.Y+d.H)*fh),
	)
	return r.Intersect(image.Rect(0, 0, width, height))
}

// Config holds detector configuration.
type Config struct {
	ModelPath        string  // Path to the YuNet ONNX model
	ConfidenceThresh float64 // Minimum face score
	InputWidth       int     // Initial model input width
	InputHeight      int     // Initial model input height

	// Padding grows the crop sent to the scorer by this fraction of the
	// face size on every side, so the whole expression is visible.
	Padding float64

	// JPEGQuality of the crop sent to the scorer.
	JPEGQuality int
}

// DefaultConfig returns defaults for YuNet on 640x480 mirror frames.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet_2023mar.onnx",
		ConfidenceThresh: 0.6,
		InputWidth:       640,
		InputHeight:      480,
		Padding:          0.2,
		JPEGQuality:      85,
	}
}

// SelectBest picks the face to score when several are visible.
// Priority: confidence * 0.7 + relative area * 0.3.
func SelectBest(dets []Detection) *Detection {
	if len(dets) == 0 {
		return nil
	}
	if len(dets) == 1 {
		return &dets[0]
	}

	maxArea := 0.0
	for _, d := range dets {
		maxArea = max(maxArea, d.Area())
	}

	bestScore := -1.0
	var best *Detection
	for i := range dets {
		score := dets[i].Confidence * 0.7
		if maxArea > 0 {
			score += (dets[i].Area() / maxArea) * 0.3
		}
		if score > bestScore {
			bestScore = score
			best = &dets[i]
		}
	}
	return best
}

// Pad grows r by frac of its size on every side, clipped to bounds.
func Pad(r image.Rectangle, frac float64, bounds image.Rectangle) image.Rectangle {
	dx := int(float64(r.Dx()) * frac)
	dy := int(float64(r.Dy()) * frac)
	return image.Rect(r.Min.X-dx, r.Min.Y-dy, r.Max.X+dx, r.Max.Y+dy).Intersect(bounds)
}
