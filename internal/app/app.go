// Package app wires the mirror's hardware and cloud backends to the
// decision loop and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-mirror/internal/config"
	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/capture"
	"github.com/teslashibe/go-mirror/pkg/compliment"
	"github.com/teslashibe/go-mirror/pkg/detection"
	"github.com/teslashibe/go-mirror/pkg/display"
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/vision"
)

// App is the smart mirror application.
type App struct {
	config config.Config
	logger *slog.Logger

	webcam     *capture.Webcam
	classifier *detection.Classifier
	window     *display.Window
	speaker    mirror.Speaker

	// closers run in reverse order on Shutdown.
	closers []func() error

	catalog *compliment.Catalog
	reloads <-chan *compliment.Catalog
}

// New validates cfg and creates the application. Call Init next.
func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &App{
		config:  cfg,
		logger:  log.Component("app"),
		catalog: compliment.Default(),
	}, nil
}

// Init acquires the camera, face model, speech backend and window.
// Shutdown must be called even when Init fails.
func (a *App) Init(ctx context.Context) error {
	if err := a.initCatalog(ctx); err != nil {
		return fmt.Errorf("compliments: %w", err)
	}

	webcam, err := capture.Open(a.config.Camera, log.Component("capture"))
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	a.webcam = webcam
	a.onShutdown(webcam.Close)

	faces, err := detection.NewYuNet(a.detectionConfig())
	if err != nil {
		return fmt.Errorf("face detector: %w", err)
	}
	a.onShutdown(faces.Close)

	scorer, err := vision.NewGemini(ctx, vision.Config{
		APIKey:            a.config.GoogleAPIKey,
		Model:             a.config.Vision.Model,
		RequestsPerMinute: a.config.Vision.RequestsPerMinute,
		Timeout:           a.config.Vision.Timeout,
		Logger:            log.L(),
	})
	if err != nil {
		return fmt.Errorf("emotion scorer: %w", err)
	}
	a.classifier = detection.NewClassifier(faces, scorer, a.detectionConfig(), log.L())

	speaker, err := a.newSpeaker(ctx)
	if err != nil {
		return fmt.Errorf("speech: %w", err)
	}
	a.speaker = speaker

	a.window = display.NewWindow(a.config.Display.WindowTitle, log.Component("display"))
	a.onShutdown(a.window.Close)

	return nil
}

// Run blocks until the operator quits, ctx is cancelled or the camera fails.
func (a *App) Run(ctx context.Context) error {
	opts := []mirror.Option{
		mirror.WithInterval(a.config.Detection.Interval),
		mirror.WithHistoryLength(a.config.Detection.HistoryLength),
		mirror.WithThreshold(a.config.Detection.MinConfidence),
		mirror.WithCatalog(a.catalog),
		mirror.WithQuitSignal(a.window),
		mirror.WithPrivacyNotice(a.config.Display.PrivacyNotice),
		mirror.WithLogger(log.L()),
	}
	if a.reloads != nil {
		opts = append(opts, mirror.WithReloads(a.reloads))
	}

	loop := mirror.New[gocv.Mat](a.webcam, a.classifier, a.speaker, a.window, opts...)

	fmt.Println("Starting Smart Mirror...")
	fmt.Println("Press 'q' to quit")

	err := loop.Run(ctx)
	if errors.Is(err, mirror.ErrFrameUnavailable) {
		a.logger.Error("camera stopped delivering frames", "error", err)
	}
	return err
}

// Shutdown releases everything Init acquired, newest first.
func (a *App) Shutdown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("shutdown", "error", err)
		}
	}
	a.closers = nil
	fmt.Println("Smart Mirror stopped. Goodbye!")
}

func (a *App) onShutdown(fn func() error) {
	a.closers = append(a.closers, fn)
}

// initCatalog loads the optional phrase file and starts watching it.
func (a *App) initCatalog(ctx context.Context) error {
	path := a.config.ComplimentsPath
	if path == "" {
		return nil
	}

	cat, err := compliment.LoadFile(path)
	if err != nil {
		return err
	}
	a.catalog = cat

	reloads, err := compliment.Watch(ctx, path, log.Component("compliment"))
	if err != nil {
		a.logger.Warn("compliment file will not be reloaded", "path", path, "error", err)
		return nil
	}
	a.reloads = reloads
	a.logger.Info("loaded compliments", "path", path)
	return nil
}

func (a *App) detectionConfig() detection.Config {
	cfg := detection.DefaultConfig()
	cfg.ModelPath = a.config.Vision.FaceModelPath
	cfg.ConfidenceThresh = a.config.Vision.FaceConfidence
	cfg.InputWidth = a.config.Camera.FrameWidth
	cfg.InputHeight = a.config.Camera.FrameHeight
	return cfg
}
