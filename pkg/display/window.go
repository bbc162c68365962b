// Package display shows the mirror feed with its overlay in an OpenCV window.
package display

import (
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-mirror/pkg/overlay"
)

// Window draws overlays onto frames and shows them.
type Window struct {
	win    *gocv.Window
	logger *slog.Logger
}

// NewWindow opens a window with the given title.
func NewWindow(title string, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{
		win:    gocv.NewWindow(title),
		logger: logger.With("component", "display"),
	}
}

// Render draws ov onto frame in place and shows it.
func (w *Window) Render(frame gocv.Mat, ov overlay.Overlay) error {
	if frame.Empty() {
		return nil
	}

	if ov.HasFaceBox() {
		gocv.Rectangle(&frame, ov.FaceBox, blue, 2)
	}
	for _, l := range layout(ov, frame.Rows()) {
		gocv.PutText(&frame, l.Text, l.Origin, gocv.FontHersheySimplex, l.Scale, l.Color, l.Thickness)
	}

	w.win.IMShow(frame)
	return nil
}

// QuitRequested pumps the window event loop and reports whether the
// operator pressed q or Esc, or closed the window.
func (w *Window) QuitRequested() bool {
	key := w.win.WaitKey(1)
	if isQuitKey(key) {
		w.logger.Info("quit key pressed")
		return true
	}
	if !w.win.IsOpen() {
		w.logger.Info("window closed")
		return true
	}
	return false
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
