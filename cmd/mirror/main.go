// Smart Mirror - compliments the person in front of the camera based on
// their facial expression.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-mirror/internal/app"
	"github.com/teslashibe/go-mirror/internal/config"
	"github.com/teslashibe/go-mirror/internal/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// run owns every deferred cleanup so that a fatal error still releases the
// camera and window before the process exits.
func run() error {
	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log.Init(cfg.LogLevel)

	mirrorApp, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	defer mirrorApp.Shutdown()
	if err := mirrorApp.Init(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := mirrorApp.Run(ctx); err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}
	log.Info("shutting down")
	return nil
}

// parseFlags loads the config file and environment, then applies command
// line overrides.
func parseFlags() (config.Config, error) {
	configPath := flag.String("config", "", "Path to a YAML config file")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	cameraIdx := flag.Int("camera", -1, "Camera device index (overrides MIRROR_CAMERA)")
	ttsProvider := flag.String("tts", "", "Speech provider: openai, elevenlabs or log")
	voice := flag.String("voice", "", "Voice name or ID for the speech provider")
	compliments := flag.String("compliments", "", "Path to a YAML compliment catalog (reloaded on change)")
	interval := flag.Duration("interval", 0, "Time between emotion detections")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return cfg, err
	}

	// -tts decides which provider ELEVENLABS_VOICE_ID applies to.
	if *ttsProvider != "" {
		cfg.Speech.Provider = *ttsProvider
	}
	cfg.LoadEnv()

	if *debug {
		cfg.LogLevel = "debug"
	}
	if *cameraIdx >= 0 {
		cfg.Camera.Device = *cameraIdx
	}
	if *voice != "" {
		cfg.Speech.Voice = *voice
	}
	if *compliments != "" {
		cfg.ComplimentsPath = *compliments
	}
	if *interval > 0 {
		cfg.Detection.Interval = *interval
	} else if *interval < 0 {
		return cfg, fmt.Errorf("-interval must be positive, got %s", *interval)
	}

	return cfg, nil
}
