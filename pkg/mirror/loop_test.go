package mirror

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/teslashibe/go-mirror/pkg/compliment"
	"github.com/teslashibe/go-mirror/pkg/emotion"
	"github.com/teslashibe/go-mirror/pkg/overlay"
)

// fakeSource yields frames 1..n, then reports end of stream.
type fakeSource struct {
	n, next int
}

func (s *fakeSource) Read() (int, bool) {
	if s.next >= s.n {
		return 0, false
	}
	s.next++
	return s.next, true
}

type result struct {
	faces []emotion.Face
	err   error
}

// fakeClassifier returns queued results in order, then no faces.
type fakeClassifier struct {
	results []result
	frames  []int
}

func (c *fakeClassifier) Detect(_ context.Context, frame int) ([]emotion.Face, error) {
	c.frames = append(c.frames, frame)
	if len(c.results) == 0 {
		return nil, nil
	}
	r := c.results[0]
	c.results = c.results[1:]
	return r.faces, r.err
}

type fakeSpeaker struct {
	said []string
	err  error
}

func (s *fakeSpeaker) Say(_ context.Context, text string) error {
	s.said = append(s.said, text)
	return s.err
}

type fakePresenter struct {
	frames   []int
	overlays []overlay.Overlay
	err      error
}

func (p *fakePresenter) Render(frame int, ov overlay.Overlay) error {
	p.frames = append(p.frames, frame)
	p.overlays = append(p.overlays, ov)
	return p.err
}

// stepClock advances by step on every call.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

type quitAfter struct {
	n, calls int
}

func (q *quitAfter) QuitRequested() bool {
	q.calls++
	return q.calls >= q.n
}

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func face(e emotion.Emotion, score float64) result {
	return result{faces: []emotion.Face{{
		Scores: map[emotion.Emotion]float64{e: score},
		Box:    image.Rect(100, 80, 220, 230),
	}}}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	source     *fakeSource
	classifier *fakeClassifier
	speaker    *fakeSpeaker
	presenter  *fakePresenter
	loop       *Loop[int]
}

// newHarness builds a loop whose clock advances a full interval per tick,
// so every tick is a detection tick.
func newHarness(frames int, results []result, opts ...Option) *harness {
	h := &harness{
		source:     &fakeSource{n: frames},
		classifier: &fakeClassifier{results: results},
		speaker:    &fakeSpeaker{},
		presenter:  &fakePresenter{},
	}
	clock := &stepClock{now: t0, step: 10 * time.Second}
	base := []Option{
		WithClock(clock.Now),
		WithRand(rand.New(rand.NewPCG(3, 4))),
		WithLogger(quietLogger()),
	}
	h.loop = New[int](h.source, h.classifier, h.speaker, h.presenter, append(base, opts...)...)
	return h
}

func TestRun_HappyScenario(t *testing.T) {
	h := newHarness(3, []result{
		face(emotion.Happy, 0.8),
		face(emotion.Happy, 0.9),
		face(emotion.Happy, 0.8),
	})

	err := h.loop.Run(context.Background())
	if !errors.Is(err, ErrFrameUnavailable) {
		t.Fatalf("expected ErrFrameUnavailable at end of stream, got %v", err)
	}

	if len(h.speaker.said) != 1 {
		t.Fatalf("expected exactly one compliment, got %v", h.speaker.said)
	}
	happy := compliment.Default().Phrases(emotion.Happy)
	if !slices.Contains(happy, h.speaker.said[0]) {
		t.Errorf("compliment %q not from happy list", h.speaker.said[0])
	}

	st := h.loop.State()
	if st.Emotion != emotion.Happy || st.Compliment != h.speaker.said[0] {
		t.Errorf("unexpected state %+v", st)
	}

	ov := h.presenter.overlays
	if len(ov) != 3 {
		t.Fatalf("expected 3 rendered frames, got %d", len(ov))
	}
	if ov[0].Confirmed || ov[0].EmotionLabel() != "" {
		t.Error("first tick must not confirm")
	}
	if !ov[1].Confirmed || ov[1].Emotion != emotion.Happy || ov[1].Confidence != 0.9 {
		t.Errorf("second tick should confirm happy@0.9, got %+v", ov[1])
	}
	if !ov[2].Confirmed {
		t.Error("third tick should confirm again (suppressed speech only)")
	}

	stats := h.loop.Stats()
	if stats.Confirmations != 2 || stats.Announcements != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRun_MismatchNeverConfirms(t *testing.T) {
	h := newHarness(2, []result{face(emotion.Happy, 0.8), face(emotion.Sad, 0.8)})
	h.loop.Run(context.Background())

	if len(h.speaker.said) != 0 {
		t.Errorf("expected no speech, got %v", h.speaker.said)
	}
	if h.loop.State().Announced() {
		t.Error("expected nothing announced")
	}
}

func TestStep_OnlyDetectsWhenDue(t *testing.T) {
	h := &harness{
		source:     &fakeSource{n: 12},
		classifier: &fakeClassifier{},
		speaker:    &fakeSpeaker{},
		presenter:  &fakePresenter{},
	}
	clock := &stepClock{now: t0, step: time.Second}
	h.loop = New[int](h.source, h.classifier, h.speaker, h.presenter,
		WithClock(clock.Now), WithLogger(quietLogger()))

	for i := 0; i < 12; i++ {
		if err := h.loop.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	// t0 (first), t0+10s.
	if want := []int{1, 11}; !slices.Equal(h.classifier.frames, want) {
		t.Errorf("expected detection on frames %v, got %v", want, h.classifier.frames)
	}
	if len(h.presenter.frames) != 12 {
		t.Errorf("expected every frame rendered, got %d", len(h.presenter.frames))
	}

	ov := h.presenter.overlays
	if ov[0].Remaining != 10*time.Second {
		t.Errorf("expected full interval before first detection, got %v", ov[0].Remaining)
	}
	if ov[4].Remaining != 6*time.Second {
		t.Errorf("expected 6s remaining at t0+4s, got %v", ov[4].Remaining)
	}
}

func TestStep_EmptyDetectionConsumesInterval(t *testing.T) {
	h := &harness{
		source:     &fakeSource{n: 3},
		classifier: &fakeClassifier{},
		speaker:    &fakeSpeaker{},
		presenter:  &fakePresenter{},
	}
	clock := &stepClock{now: t0, step: 2 * time.Second}
	h.loop = New[int](h.source, h.classifier, h.speaker, h.presenter,
		WithClock(clock.Now), WithLogger(quietLogger()))

	for i := 0; i < 3; i++ {
		h.loop.Step(context.Background())
	}
	if len(h.classifier.frames) != 1 {
		t.Errorf("expected one detection attempt, got %d", len(h.classifier.frames))
	}
	if h.loop.Stats().EmptyReadings != 1 {
		t.Errorf("expected one empty reading, got %d", h.loop.Stats().EmptyReadings)
	}
}

func TestStep_ClassifierErrorIsNotFatal(t *testing.T) {
	h := newHarness(3, []result{
		face(emotion.Fear, 0.7),
		{err: errors.New("model exploded")},
		face(emotion.Fear, 0.6),
	})
	err := h.loop.Run(context.Background())
	if !errors.Is(err, ErrFrameUnavailable) {
		t.Fatalf("expected loop to run to end of stream, got %v", err)
	}

	// The error is an empty reading: history survives it.
	if len(h.speaker.said) != 1 {
		t.Errorf("expected fear to be confirmed across the error, got %v", h.speaker.said)
	}
	if h.loop.Stats().ClassifierErrors != 1 {
		t.Errorf("expected one classifier error, got %d", h.loop.Stats().ClassifierErrors)
	}
}

func TestStep_LowConfidenceIsEmpty(t *testing.T) {
	h := newHarness(2, []result{face(emotion.Sad, 0.2), face(emotion.Sad, 0.25)})
	h.loop.Run(context.Background())

	if h.loop.Stats().EmptyReadings != 2 {
		t.Errorf("expected two empty readings, got %d", h.loop.Stats().EmptyReadings)
	}
	if len(h.speaker.said) != 0 {
		t.Error("expected no speech for sub-threshold scores")
	}
}

func TestStep_SpeechErrorIsNotFatal(t *testing.T) {
	h := newHarness(4, []result{
		face(emotion.Happy, 0.8),
		face(emotion.Happy, 0.8),
		face(emotion.Sad, 0.8),
		face(emotion.Sad, 0.8),
	})
	h.speaker.err = errors.New("tts down")

	err := h.loop.Run(context.Background())
	if !errors.Is(err, ErrFrameUnavailable) {
		t.Fatalf("expected loop to continue past speech errors, got %v", err)
	}
	if len(h.speaker.said) != 2 {
		t.Errorf("expected two speech attempts, got %d", len(h.speaker.said))
	}
	if h.loop.Stats().SpeechErrors != 2 {
		t.Errorf("expected two speech errors, got %d", h.loop.Stats().SpeechErrors)
	}
	if h.loop.State().Emotion != emotion.Sad {
		t.Error("state must advance even when speech fails")
	}
}

func TestStep_RenderErrorIsNotFatal(t *testing.T) {
	h := newHarness(2, nil)
	h.presenter.err = errors.New("no display")

	if err := h.loop.Step(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.loop.Stats().RenderErrors != 1 {
		t.Error("expected render error to be counted")
	}
}

func TestStep_FaceBoxOnlyOnConfirmingTick(t *testing.T) {
	h := newHarness(2, []result{face(emotion.Surprise, 0.9), face(emotion.Surprise, 0.9)})
	h.loop.Run(context.Background())

	ov := h.presenter.overlays
	if ov[0].HasFaceBox() {
		t.Error("face box drawn before confirmation")
	}
	if !ov[1].HasFaceBox() || ov[1].FaceBox != image.Rect(100, 80, 220, 230) {
		t.Errorf("expected face box on confirming tick, got %v", ov[1].FaceBox)
	}
	if ov[1].PrivacyNotice != overlay.DefaultPrivacyNotice {
		t.Errorf("unexpected privacy notice %q", ov[1].PrivacyNotice)
	}
}

func TestRun_QuitSignal(t *testing.T) {
	q := &quitAfter{n: 2}
	h := newHarness(10, nil, WithQuitSignal(q))

	if err := h.loop.Run(context.Background()); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
	if h.loop.Stats().Ticks != 2 {
		t.Errorf("expected 2 ticks before quit, got %d", h.loop.Stats().Ticks)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	h := newHarness(10, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.loop.Run(ctx); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
	if h.loop.Stats().Ticks != 0 {
		t.Errorf("expected no ticks after cancel, got %d", h.loop.Stats().Ticks)
	}
}

func TestRun_AppliesCatalogReload(t *testing.T) {
	c, err := compliment.Parse([]byte("compliments:\n  happy: [\"Reloaded!\"]\n"))
	if err != nil {
		t.Fatal(err)
	}
	reloads := make(chan *compliment.Catalog, 1)
	reloads <- c
	close(reloads)

	h := newHarness(2, []result{face(emotion.Happy, 0.8), face(emotion.Happy, 0.8)}, WithReloads(reloads))
	h.loop.Run(context.Background())

	if !slices.Equal(h.speaker.said, []string{"Reloaded!"}) {
		t.Errorf("expected reloaded phrase, got %v", h.speaker.said)
	}
}

func TestStats_LogValue(t *testing.T) {
	v := Stats{Ticks: 3}.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Errorf("expected group value, got %v", v.Kind())
	}
}
