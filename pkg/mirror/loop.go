package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-mirror/pkg/compliment"
	"github.com/teslashibe/go-mirror/pkg/emotion"
	"github.com/teslashibe/go-mirror/pkg/notify"
	"github.com/teslashibe/go-mirror/pkg/overlay"
	"github.com/teslashibe/go-mirror/pkg/scheduler"
	"github.com/teslashibe/go-mirror/pkg/stability"
)

// Loop binds the collaborators to the scheduler, stability filter and
// notification engine. It is not safe for concurrent use.
type Loop[F any] struct {
	source     FrameSource[F]
	classifier Classifier[F]
	speaker    Speaker
	presenter  Presenter[F]

	scheduler *scheduler.Scheduler
	filter    *stability.Filter
	engine    *notify.Engine

	threshold float64
	notice    string
	clock     func() time.Time
	quit      QuitSignal
	reloads   <-chan *compliment.Catalog
	logger    *slog.Logger

	stats Stats
}

// New creates a loop over the given collaborators.
func New[F any](src FrameSource[F], cls Classifier[F], spk Speaker, pres Presenter[F], opts ...Option) *Loop[F] {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Loop[F]{
		source:     src,
		classifier: cls,
		speaker:    spk,
		presenter:  pres,
		scheduler:  scheduler.New(cfg.Interval),
		filter:     stability.New(cfg.HistoryLength),
		engine:     notify.New(cfg.Catalog, cfg.Rand),
		threshold:  cfg.Threshold,
		notice:     cfg.PrivacyNotice,
		clock:      cfg.Clock,
		quit:       cfg.Quit,
		reloads:    cfg.Reloads,
		logger:     cfg.Logger.With("component", "mirror.loop"),
	}
}

// Run ticks until ctx is cancelled, the quit signal fires or the frame
// source fails. Only a frame source failure is returned as an error.
func (l *Loop[F]) Run(ctx context.Context) error {
	l.logger.Info("loop started",
		"interval", l.scheduler.Interval(),
		"history", l.filter.Cap(),
		"threshold", l.threshold,
	)
	defer func() {
		l.logger.Info("loop stopped", "stats", l.stats)
	}()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("shutdown requested")
			return nil
		default:
		}

		l.applyReload()

		if err := l.Step(ctx); err != nil {
			return fmt.Errorf("tick %d: %w", l.stats.Ticks, err)
		}

		if l.quit != nil && l.quit.QuitRequested() {
			l.logger.Info("quit requested")
			return nil
		}
	}
}

// Step runs one tick: read, maybe detect, render.
func (l *Loop[F]) Step(ctx context.Context) error {
	frame, ok := l.source.Read()
	if !ok {
		return ErrFrameUnavailable
	}
	l.stats.Ticks++

	now := l.clock()
	ov := overlay.Overlay{
		Remaining:     l.scheduler.TimeRemaining(now),
		PrivacyNotice: l.notice,
	}

	if l.scheduler.ShouldDetect(now) {
		l.detect(ctx, frame, now, &ov)
	}

	st := l.engine.State()
	ov.Emotion, ov.Compliment = st.Emotion, st.Compliment

	if err := l.presenter.Render(frame, ov); err != nil {
		l.stats.RenderErrors++
		l.logger.Warn("render failed", "error", err)
	}
	return nil
}

// detect runs one detection attempt. The scheduler is advanced whatever the
// outcome, so a frame without a face still consumes the interval.
func (l *Loop[F]) detect(ctx context.Context, frame F, now time.Time, ov *overlay.Overlay) {
	defer l.scheduler.MarkDetected(now)
	l.stats.Detections++

	reading := l.classify(ctx, frame)
	if reading.Empty() {
		l.stats.EmptyReadings++
	} else {
		l.logger.Debug("reading",
			"emotion", reading.Emotion,
			"confidence", reading.Confidence,
		)
	}

	confirmed, ok := l.filter.Observe(reading)
	if !ok {
		return
	}
	l.stats.Confirmations++
	ov.Confirmed = true
	ov.Confidence = reading.Confidence
	ov.FaceBox = reading.Box

	ev, fire := l.engine.OnConfirmed(confirmed)
	if !fire {
		return
	}
	l.stats.Announcements++
	l.logger.Info("compliment",
		"emotion", ev.Emotion,
		"text", ev.Compliment,
	)

	if err := l.speaker.Say(ctx, ev.Compliment); err != nil {
		l.stats.SpeechErrors++
		l.logger.Error("speech failed", "error", err)
	}
}

// classify turns classifier output into a reading. Errors are logged and
// treated as an empty reading.
func (l *Loop[F]) classify(ctx context.Context, frame F) emotion.Reading {
	faces, err := l.classifier.Detect(ctx, frame)
	if err != nil {
		l.stats.ClassifierErrors++
		l.logger.Warn("emotion detection failed", "error", err)
		return emotion.Reading{}
	}
	return emotion.FromFaces(faces, l.threshold)
}

func (l *Loop[F]) applyReload() {
	if l.reloads == nil {
		return
	}
	select {
	case c, ok := <-l.reloads:
		if !ok {
			l.reloads = nil
			return
		}
		l.engine.SetCatalog(c)
		l.logger.Info("compliment catalog updated")
	default:
	}
}

// State returns the current notification state.
func (l *Loop[F]) State() notify.State {
	return l.engine.State()
}

// Stats returns the loop counters.
func (l *Loop[F]) Stats() Stats {
	return l.stats
}
