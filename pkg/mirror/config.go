package mirror

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/teslashibe/go-mirror/pkg/compliment"
	"github.com/teslashibe/go-mirror/pkg/emotion"
	"github.com/teslashibe/go-mirror/pkg/overlay"
	"github.com/teslashibe/go-mirror/pkg/scheduler"
	"github.com/teslashibe/go-mirror/pkg/stability"
)

// Config holds loop tuning. Use functional options (WithXxx) to set values.
type Config struct {
	// Interval between detection attempts.
	Interval time.Duration

	// HistoryLength is how many agreeing readings confirm an emotion.
	HistoryLength int

	// Threshold is the minimum score for an emotion to count.
	Threshold float64

	// Catalog supplies compliment phrases.
	Catalog *compliment.Catalog

	// Reloads delivers replacement catalogs, applied between ticks.
	Reloads <-chan *compliment.Catalog

	// Rand picks compliments. Nil uses the package-level source.
	Rand *rand.Rand

	// Clock returns the current time.
	Clock func() time.Time

	// Quit is checked once per iteration.
	Quit QuitSignal

	PrivacyNotice string

	Logger *slog.Logger
}

// Option is a functional option for configuring the loop.
type Option func(*Config)

// WithInterval sets the detection interval.
func WithInterval(d time.Duration) Option {
	return func(c *Config) { c.Interval = d }
}

// WithHistoryLength sets how many agreeing readings confirm an emotion.
func WithHistoryLength(n int) Option {
	return func(c *Config) { c.HistoryLength = n }
}

// WithThreshold sets the minimum emotion score.
func WithThreshold(t float64) Option {
	return func(c *Config) { c.Threshold = t }
}

// WithCatalog sets the compliment catalog.
func WithCatalog(cat *compliment.Catalog) Option {
	return func(c *Config) { c.Catalog = cat }
}

// WithReloads sets a channel of replacement catalogs.
func WithReloads(ch <-chan *compliment.Catalog) Option {
	return func(c *Config) { c.Reloads = ch }
}

// WithRand sets the random source for compliment selection.
func WithRand(r *rand.Rand) Option {
	return func(c *Config) { c.Rand = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Config) { c.Clock = now }
}

// WithQuitSignal sets the operator quit signal.
func WithQuitSignal(q QuitSignal) Option {
	return func(c *Config) { c.Quit = q }
}

// WithPrivacyNotice sets the notice drawn on every frame.
func WithPrivacyNotice(text string) Option {
	return func(c *Config) { c.PrivacyNotice = text }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns the loop defaults: a 10s interval, two agreeing
// readings and a 0.3 score threshold.
func DefaultConfig() *Config {
	return &Config{
		Interval:      scheduler.DefaultInterval,
		HistoryLength: stability.DefaultCapacity,
		Threshold:     emotion.DefaultThreshold,
		Catalog:       compliment.Default(),
		Clock:         time.Now,
		PrivacyNotice: overlay.DefaultPrivacyNotice,
		Logger:        slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
