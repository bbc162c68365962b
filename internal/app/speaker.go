package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-mirror/internal/config"
	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/audio"
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/speech"
	"github.com/teslashibe/go-mirror/pkg/tts"
)

const healthTimeout = 5 * time.Second

// newSpeaker builds the compliment speaker. Without audio output the
// mirror keeps running and logs compliments instead.
func (a *App) newSpeaker(ctx context.Context) (mirror.Speaker, error) {
	provider, err := newProvider(a.config, log.L())
	if err != nil {
		return nil, err
	}
	if provider == nil {
		a.logger.Info("speech disabled, compliments will be logged")
		return speech.NewLogOnly(log.L()), nil
	}
	a.onShutdown(provider.Close)

	hctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := provider.Health(hctx); err != nil {
		a.logger.Warn("tts health check failed", "provider", provider.Name(), "error", err)
	}

	player, err := audio.NewPlayer("go-mirror", log.L())
	if err != nil {
		a.logger.Warn("no audio output, compliments will be logged", "error", err)
		return speech.NewLogOnly(log.L()), nil
	}
	a.onShutdown(player.Close)

	a.logger.Info("speech ready", "provider", provider.Name())
	return speech.NewSpeaker(provider, player, a.config.Speech.Timeout, log.L()), nil
}

// newProvider returns the configured TTS provider, chained with the other
// provider when its key is also set. A nil provider means log-only speech.
func newProvider(cfg config.Config, logger *slog.Logger) (tts.Provider, error) {
	openAI := func(voice string) (tts.Provider, error) {
		return tts.NewOpenAI(
			tts.WithAPIKey(cfg.OpenAIKey),
			tts.WithVoice(voice),
			tts.WithTimeout(cfg.Speech.Timeout),
			tts.WithLogger(logger),
		)
	}
	elevenLabs := func(voice string) (tts.Provider, error) {
		return tts.NewElevenLabs(
			tts.WithAPIKey(cfg.ElevenLabsKey),
			tts.WithVoice(voice),
			tts.WithTimeout(cfg.Speech.Timeout),
			tts.WithLogger(logger),
		)
	}

	var primary, fallback func(string) (tts.Provider, error)
	var fallbackKey string
	switch cfg.Speech.Provider {
	case config.SpeechLog:
		return nil, nil
	case config.SpeechOpenAI:
		primary, fallback, fallbackKey = openAI, elevenLabs, cfg.ElevenLabsKey
	case config.SpeechElevenLabs:
		primary, fallback, fallbackKey = elevenLabs, openAI, cfg.OpenAIKey
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Speech.Provider)
	}

	p, err := primary(cfg.Speech.Voice)
	if err != nil {
		return nil, err
	}
	if fallbackKey == "" {
		return p, nil
	}

	// The voice setting is provider specific, so the fallback uses its default.
	fb, err := fallback("")
	if err != nil {
		return p, nil
	}
	return tts.NewChain(logger, p, fb)
}
