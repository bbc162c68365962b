// Package tts turns compliments into speech audio.
//
// Providers return raw PCM16 so the result can be handed straight to the
// audio player without a decoder:
//
//	provider, _ := tts.NewOpenAI(
//	    tts.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    tts.WithVoice(tts.VoiceShimmer),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Your smile lights up the room!")
//	// result.Audio holds 24 kHz mono PCM16 LE
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// Synthesize converts text to audio, returning the complete buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult is a complete synthesis result.
type AudioResult struct {
	Audio    []byte
	Format   AudioFormat
	Duration time.Duration

	CharCount int
	Latency   time.Duration
}

// AudioFormat describes the audio encoding parameters.
type AudioFormat struct {
	Encoding   Encoding
	SampleRate int // Hz
	Channels   int // 1 for mono
	BitDepth   int // 16 for PCM16
}

// IsPCM reports whether the audio is raw little-endian PCM16.
func (f AudioFormat) IsPCM() bool {
	switch f.Encoding {
	case EncodingPCM16, EncodingPCM22, EncodingPCM24, EncodingPCM44:
		return true
	}
	return false
}

// Encoding represents audio encoding types.
// Values match ElevenLabs output_format names.
type Encoding string

const (
	EncodingPCM16 Encoding = "pcm_16000" // 16kHz mono PCM16
	EncodingPCM22 Encoding = "pcm_22050" // 22.05kHz mono PCM16
	EncodingPCM24 Encoding = "pcm_24000" // 24kHz mono PCM16
	EncodingPCM44 Encoding = "pcm_44100" // 44.1kHz mono PCM16

	EncodingMP3 Encoding = "mp3_44100_128"
)

// VoiceSettings controls voice characteristics for ElevenLabs.
type VoiceSettings struct {
	// Stability controls voice consistency (0.0-1.0).
	// Lower values = more expressive, higher = more consistent.
	Stability       float64
	SimilarityBoost float64
	Style           float64
	SpeakerBoost    bool
}

// DefaultVoiceSettings returns a warm, slightly expressive delivery.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.0,
		SpeakerBoost:    true,
	}
}

// SampleRateFromEncoding extracts the sample rate from an encoding type.
func SampleRateFromEncoding(enc Encoding) int {
	switch enc {
	case EncodingPCM16:
		return 16000
	case EncodingPCM22:
		return 22050
	case EncodingPCM24:
		return 24000
	case EncodingPCM44, EncodingMP3:
		return 44100
	default:
		return 24000
	}
}

// pcmFormat returns the mono PCM16 format for enc.
func pcmFormat(enc Encoding) AudioFormat {
	return AudioFormat{
		Encoding:   enc,
		SampleRate: SampleRateFromEncoding(enc),
		Channels:   1,
		BitDepth:   16,
	}
}

// PCMDuration returns the playback length of n bytes of PCM16 audio.
func PCMDuration(n int, f AudioFormat) time.Duration {
	channels := max(f.Channels, 1)
	if f.SampleRate <= 0 {
		return 0
	}
	samples := n / (2 * channels)
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRate)
}
