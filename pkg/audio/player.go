// Package audio plays synthesized speech through PulseAudio.
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jfreymuth/pulse"

	"github.com/teslashibe/go-mirror/pkg/tts"
)

// Common errors.
var (
	ErrUnsupportedEncoding = errors.New("audio: unsupported encoding")
	ErrClosed              = errors.New("audio: player closed")
)

// Player plays PCM16 buffers on the default PulseAudio sink.
// Play calls are serialized; one compliment is spoken at a time.
type Player struct {
	client *pulse.Client
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewPlayer connects to the PulseAudio server.
func NewPlayer(appName string, logger *slog.Logger) (*Player, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c, err := pulse.NewClient(pulse.ClientApplicationName(appName))
	if err != nil {
		return nil, fmt.Errorf("audio: connect to pulseaudio: %w", err)
	}
	return &Player{
		client: c,
		logger: logger.With("component", "audio"),
	}, nil
}

// Play blocks until pcm has been played or ctx is done.
func (p *Player) Play(ctx context.Context, pcm []byte, format tts.AudioFormat) error {
	if !format.IsPCM() || (format.BitDepth != 0 && format.BitDepth != 16) {
		return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, format.Encoding)
	}
	samples := DecodePCM16(pcm)
	if len(samples) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	layout := pulse.PlaybackMono
	if format.Channels == 2 {
		layout = pulse.PlaybackStereo
	}

	stream, err := p.client.NewPlayback(sampleReader(ctx, samples),
		layout,
		pulse.PlaybackSampleRate(format.SampleRate),
		pulse.PlaybackLatency(0.1),
	)
	if err != nil {
		return fmt.Errorf("audio: open playback: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("audio: playback: %w", err)
	}

	p.logger.Debug("played audio", "samples", len(samples), "duration", tts.PCMDuration(len(pcm), format))
	return ctx.Err()
}

// Close disconnects from PulseAudio.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		p.client.Close()
	}
	return nil
}

// DecodePCM16 converts little-endian PCM16 bytes to samples. A trailing odd
// byte is dropped.
func DecodePCM16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

// sampleReader feeds samples to a playback stream and ends early once ctx
// is done.
func sampleReader(ctx context.Context, samples []int16) pulse.Int16Reader {
	pos := 0
	return func(buf []int16) (int, error) {
		if pos >= len(samples) || ctx.Err() != nil {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	}
}
