package tts

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing.
// Behavior can be customized via function fields.
type Mock struct {
	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns silent 24 kHz PCM of roughly natural length.
	SynthesizeFunc func(ctx context.Context, text string) (*AudioResult, error)

	// HealthFunc is called when Health is invoked. If nil, healthy.
	HealthFunc func(ctx context.Context) error

	mu    sync.Mutex
	texts []string
}

// NewMock creates a mock provider that returns silence.
func NewMock() *Mock {
	return &Mock{}
}

// WithError returns a mock that always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(context.Context, string) (*AudioResult, error) {
			return nil, err
		},
		HealthFunc: func(context.Context) error {
			return err
		},
	}
}

// Name returns "mock".
func (m *Mock) Name() string {
	return "mock"
}

// Synthesize records the text and returns SynthesizeFunc's result.
func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return Silence(text), nil
}

// Health calls HealthFunc.
func (m *Mock) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close is a no-op.
func (m *Mock) Close() error {
	return nil
}

// Texts returns every synthesized text in call order.
func (m *Mock) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.texts))
	copy(out, m.texts)
	return out
}

// Silence returns ~20ms of 24 kHz PCM16 silence per character of text.
func Silence(text string) *AudioResult {
	const bytesPerChar = 960
	format := pcmFormat(EncodingPCM24)
	audio := make([]byte, len(text)*bytesPerChar)
	return &AudioResult{
		Audio:     audio,
		Format:    format,
		Duration:  PCMDuration(len(audio), format),
		CharCount: len(text),
		Latency:   time.Millisecond,
	}
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
