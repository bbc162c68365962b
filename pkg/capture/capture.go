// Package capture reads mirrored, resized frames from a webcam.
package capture

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-mirror/pkg/camera"
)

// Webcam is a frame source backed by an OpenCV VideoCapture.
// The returned frame is owned by the Webcam and is overwritten by the
// next Read.
type Webcam struct {
	cfg    camera.Config
	cap    *gocv.VideoCapture
	raw    gocv.Mat
	frame  gocv.Mat
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Open opens the webcam described by cfg and requests its sensor mode.
func Open(cfg camera.Config, logger *slog.Logger) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("capture: invalid config: %s", errs[0])
	}
	if logger == nil {
		logger = slog.Default()
	}

	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("capture: open device %d: %w", cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture: device %d is not available", cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	if cfg.Autofocus {
		vc.Set(gocv.VideoCaptureAutoFocus, 1)
	}

	w := &Webcam{
		cfg:    cfg,
		cap:    vc,
		raw:    gocv.NewMat(),
		frame:  gocv.NewMat(),
		logger: logger.With("component", "capture"),
	}
	w.logger.Info("camera opened",
		"device", cfg.Device,
		"requested", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"actual", fmt.Sprintf("%.0fx%.0f", vc.Get(gocv.VideoCaptureFrameWidth), vc.Get(gocv.VideoCaptureFrameHeight)),
	)
	return w, nil
}

// Read grabs the next frame, mirrors it and scales it to the processing
// size. ok is false when the camera stops delivering frames.
func (w *Webcam) Read() (gocv.Mat, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return w.frame, false
	}
	if ok := w.cap.Read(&w.raw); !ok || w.raw.Empty() {
		w.logger.Warn("camera returned no frame")
		return w.frame, false
	}

	if w.cfg.Mirror {
		gocv.Flip(w.raw, &w.raw, 1)
	}
	gocv.Resize(w.raw, &w.frame, image.Pt(w.cfg.FrameWidth, w.cfg.FrameHeight), 0, 0, gocv.InterpolationLinear)
	return w.frame, true
}

// Close releases the camera and frame buffers. It is safe to call twice.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.cap.Close()
	w.raw.Close()
	w.frame.Close()
	if err != nil {
		return fmt.Errorf("capture: close: %w", err)
	}
	return nil
}
