// Package vision scores facial expressions with Gemini.
// It receives a JPEG face crop and returns per-emotion probabilities; face
// localisation happens upstream in pkg/detection.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teslashibe/go-mirror/pkg/emotion"
)

// DefaultGeminiModel is the model used for expression scoring.
const DefaultGeminiModel = "gemini-2.0-flash"

// cloudPlatformScope is requested when falling back to application default
// credentials.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

const scorePrompt = `You are a facial expression classifier.
Look at the face in the image and rate how strongly it shows each of these
emotions: happy, neutral, sad, angry, disgust, fear, surprise.
Reply with a single JSON object mapping every label to a probability between
0 and 1, for example {"happy":0.7,"neutral":0.2,"sad":0.0,"angry":0.0,"disgust":0.0,"fear":0.0,"surprise":0.1}.
Reply with JSON only.`

// Common errors.
var (
	ErrRateLimited = errors.New("vision: rate limited")
	ErrNoScores    = errors.New("vision: response contained no emotion scores")
	ErrEmptyImage  = errors.New("vision: empty image")
)

// APIError is returned when Gemini answers with a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vision: gemini error (status %d): %s", e.Status, e.Message)
}

// Config configures a Gemini scorer.
type Config struct {
	// APIKey is a Google AI Studio key. Empty falls back to application
	// default credentials.
	APIKey string

	Model             string
	RequestsPerMinute int
	Timeout           time.Duration

	// Endpoint overrides the API base URL.
	Endpoint string

	Logger *slog.Logger
}

// Gemini scores face crops with a Gemini model.
type Gemini struct {
	svc     *generativelanguage.Service
	model   string
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini creates a scorer. Requests beyond RequestsPerMinute fail fast
// with ErrRateLimited instead of queueing behind the camera loop.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.RequestsPerMinute < 1 {
		cfg.RequestsPerMinute = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("vision: no GOOGLE_API_KEY and no default credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision: create gemini service: %w", err)
	}

	return &Gemini{
		svc:     svc,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		timeout: cfg.Timeout,
		logger:  cfg.Logger.With("component", "vision.gemini"),
	}, nil
}

// Score returns emotion probabilities for the face in a JPEG image.
func (g *Gemini) Score(ctx context.Context, jpeg []byte) (map[emotion.Emotion]float64, error) {
	if len(jpeg) == 0 {
		return nil, ErrEmptyImage
	}
	if !g.limiter.Allow() {
		return nil, ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role: "user",
			Parts: []*generativelanguage.Part{
				{Text: scorePrompt},
				{InlineData: &generativelanguage.Blob{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(jpeg),
				}},
			},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	start := time.Now()
	resp, err := g.svc.Models.GenerateContent("models/"+g.model, req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &APIError{Status: gerr.Code, Message: gerr.Message}
		}
		return nil, fmt.Errorf("vision: generate content: %w", err)
	}

	text := responseText(resp)
	scores, err := ParseScores(text)
	if err != nil {
		g.logger.Debug("unparseable response", "text", truncate(text, 200))
		return nil, err
	}

	g.logger.Debug("scored face", "latency", time.Since(start), "scores", len(scores))
	return scores, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// ParseScores decodes a JSON object of label to probability. Markdown code
// fences are tolerated, unknown labels are ignored and values are clamped
// to [0, 1].
func ParseScores(text string) (map[emotion.Emotion]float64, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var raw map[string]float64
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("vision: decode scores: %w", err)
	}

	scores := make(map[emotion.Emotion]float64, len(raw))
	for label, v := range raw {
		e, ok := emotion.Parse(label)
		if !ok {
			continue
		}
		scores[e] = min(max(v, 0), 1)
	}
	if len(scores) == 0 {
		return nil, ErrNoScores
	}
	return scores, nil
}

// truncate shortens a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
