// Package config loads go-mirror configuration from defaults, an optional
// YAML file and environment variables.
// Flag parsing is done in cmd/mirror/main.go; this package is data only.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"github.com/teslashibe/go-mirror/pkg/camera"
	"github.com/teslashibe/go-mirror/pkg/emotion"
	"github.com/teslashibe/go-mirror/pkg/overlay"
	"github.com/teslashibe/go-mirror/pkg/scheduler"
	"github.com/teslashibe/go-mirror/pkg/stability"
	"github.com/teslashibe/go-mirror/pkg/vision"
)

// DefaultFaceModelPath is the YuNet face detection model.
const DefaultFaceModelPath = "models/face_detection_yunet_2023mar.onnx"

// Speech backends.
const (
	SpeechOpenAI     = "openai"
	SpeechElevenLabs = "elevenlabs"
	SpeechLog        = "log" // log the text instead of speaking
)

// Config holds all configuration for the mirror.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Camera    camera.Config   `yaml:"camera"`
	Detection DetectionConfig `yaml:"detection"`
	Vision    VisionConfig    `yaml:"vision"`
	Speech    SpeechConfig    `yaml:"speech"`
	Display   DisplayConfig   `yaml:"display"`

	// ComplimentsPath is an optional YAML phrase catalog, watched for edits.
	ComplimentsPath string `yaml:"compliments_path"`

	// API keys come from the environment only.
	OpenAIKey     string `yaml:"-"`
	ElevenLabsKey string `yaml:"-"`
	GoogleAPIKey  string `yaml:"-"`
}

// DetectionConfig tunes the decision core.
type DetectionConfig struct {
	Interval      time.Duration `yaml:"interval"`
	HistoryLength int           `yaml:"history_length"`
	MinConfidence float64       `yaml:"min_confidence"`
}

// VisionConfig configures the emotion classifier.
type VisionConfig struct {
	Model             string        `yaml:"model"`
	FaceModelPath     string        `yaml:"face_model_path"`
	FaceConfidence    float64       `yaml:"face_confidence"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
}

// SpeechConfig configures the compliment speaker.
type SpeechConfig struct {
	Provider string `yaml:"provider"`

	// Voice is a provider voice id or preset; empty picks the provider default.
	Voice   string        `yaml:"voice"`
	Timeout time.Duration `yaml:"timeout"`
}

// DisplayConfig configures the preview window.
type DisplayConfig struct {
	WindowTitle   string `yaml:"window_title"`
	PrivacyNotice string `yaml:"privacy_notice"`
}

// Default returns the configuration of the original smart mirror.
func Default() Config {
	return Config{
		LogLevel: "info",
		Camera:   camera.DefaultConfig(),
		Detection: DetectionConfig{
			Interval:      scheduler.DefaultInterval,
			HistoryLength: stability.DefaultCapacity,
			MinConfidence: emotion.DefaultThreshold,
		},
		Vision: VisionConfig{
			Model:             vision.DefaultGeminiModel,
			FaceModelPath:     DefaultFaceModelPath,
			FaceConfidence:    0.6,
			RequestsPerMinute: 10,
			Timeout:           15 * time.Second,
		},
		Speech: SpeechConfig{
			Provider: SpeechOpenAI,
			Timeout:  30 * time.Second,
		},
		Display: DisplayConfig{
			WindowTitle:   "Smart Mirror - Emotion Detection",
			PrivacyNotice: overlay.DefaultPrivacyNotice,
		},
	}
}

// Load returns defaults overlaid with the YAML file at path, if any.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv applies environment overrides. Call it after Load and before
// applying flags.
func (c *Config) LoadEnv() {
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.ElevenLabsKey = os.Getenv("ELEVENLABS_API_KEY")
	c.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")

	if voice := os.Getenv("ELEVENLABS_VOICE_ID"); voice != "" && c.Speech.Provider == SpeechElevenLabs {
		c.Speech.Voice = voice
	}
	if dev := os.Getenv("MIRROR_CAMERA"); dev != "" {
		if n, err := strconv.Atoi(dev); err == nil {
			c.Camera.Device = n
		}
	}
	if lvl := os.Getenv("MIRROR_LOG_LEVEL"); lvl != "" {
		c.LogLevel = lvl
	}
}

// Validate checks ranges and that required credentials are present.
func (c *Config) Validate() error {
	if errs := c.Camera.Validate(); len(errs) > 0 {
		return &ConfigError{Field: "camera", Message: errs[0]}
	}
	if c.Detection.Interval <= 0 {
		return &ConfigError{Field: "detection.interval", Message: "interval must be positive"}
	}
	if c.Detection.HistoryLength < 1 {
		return &ConfigError{Field: "detection.history_length", Message: "history length must be at least 1"}
	}
	if c.Detection.MinConfidence < 0 || c.Detection.MinConfidence > 1 {
		return &ConfigError{Field: "detection.min_confidence", Message: "min confidence must be between 0 and 1"}
	}
	if c.Vision.Model == "" {
		return &ConfigError{Field: "vision.model", Message: "a Gemini model is required"}
	}
	if c.Vision.RequestsPerMinute < 1 {
		return &ConfigError{Field: "vision.requests_per_minute", Message: "requests per minute must be at least 1"}
	}

	switch c.Speech.Provider {
	case SpeechOpenAI:
		if c.OpenAIKey == "" {
			return &ConfigError{Field: "OpenAIKey", Message: "OPENAI_API_KEY environment variable is required for OpenAI speech"}
		}
	case SpeechElevenLabs:
		if c.ElevenLabsKey == "" {
			return &ConfigError{Field: "ElevenLabsKey", Message: "ELEVENLABS_API_KEY environment variable is required for ElevenLabs speech"}
		}
	case SpeechLog:
	default:
		return &ConfigError{Field: "speech.provider", Message: fmt.Sprintf("unknown speech provider %q (want openai, elevenlabs or log)", c.Speech.Provider)}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
