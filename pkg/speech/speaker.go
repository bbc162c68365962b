// Package speech speaks compliments aloud.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-mirror/pkg/tts"
)

// Player plays synthesized audio.
type Player interface {
	Play(ctx context.Context, pcm []byte, format tts.AudioFormat) error
}

// Speaker synthesizes text with a TTS provider and plays the result.
// Say blocks until playback has finished.
type Speaker struct {
	provider tts.Provider
	player   Player
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSpeaker creates a speaker. timeout bounds synthesis plus playback;
// zero means no bound beyond the caller's context.
func NewSpeaker(provider tts.Provider, player Player, timeout time.Duration, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{
		provider: provider,
		player:   player,
		timeout:  timeout,
		logger:   logger.With("component", "speech"),
	}
}

// Say speaks text.
func (s *Speaker) Say(ctx context.Context, text string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	s.logger.Debug("speaking",
		"provider", s.provider.Name(),
		"chars", result.CharCount,
		"duration", result.Duration,
		"latency_ms", result.Latency.Milliseconds(),
	)

	if err := s.player.Play(ctx, result.Audio, result.Format); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

// LogOnly "speaks" by logging the text. It is used when no TTS provider is
// configured.
type LogOnly struct {
	logger *slog.Logger
}

// NewLogOnly creates a log-only speaker.
func NewLogOnly(logger *slog.Logger) *LogOnly {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogOnly{logger: logger.With("component", "speech")}
}

// Say logs text at info level.
func (l *LogOnly) Say(_ context.Context, text string) error {
	l.logger.Info("say", "text", text)
	return nil
}
