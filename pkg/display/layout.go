package display

import (
	"image"
	"image/color"

	"github.com/teslashibe/go-mirror/pkg/overlay"
)

// Colors as seen on screen.
var (
	white  = color.RGBA{R: 255, G: 255, B: 255}
	yellow = color.RGBA{R: 255, G: 255}
	green  = color.RGBA{G: 255}
	blue   = color.RGBA{B: 255}
)

// textLine is one label drawn over the frame.
type textLine struct {
	Text      string
	Origin    image.Point
	Scale     float64
	Color     color.RGBA
	Thickness int
}

// layout returns the labels for ov on a frame of the given height. Empty
// labels are skipped.
func layout(ov overlay.Overlay, height int) []textLine {
	lines := []textLine{
		{ov.EmotionLabel(), image.Pt(10, 30), 0.7, white, 2},
		{ov.ComplimentLabel(), image.Pt(10, 60), 0.6, yellow, 2},
		{ov.CountdownLabel(), image.Pt(10, 90), 0.6, green, 2},
		{ov.ConfidenceLabel(), image.Pt(10, 120), 0.6, green, 2},
		{ov.PrivacyNotice, image.Pt(10, height-20), 0.5, white, 1},
	}

	out := lines[:0]
	for _, l := range lines {
		if l.Text != "" {
			out = append(out, l)
		}
	}
	return out
}

// Quit keys: q, Q and Esc.
func isQuitKey(key int) bool {
	switch key & 0xff {
	case 'q', 'Q', 27:
		return true
	}
	return false
}
