package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/teslashibe/go-mirror/internal/httpc"
)

// httpProvider holds the request plumbing shared by the HTTP providers.
type httpProvider struct {
	name       string
	config     *Config
	client     *http.Client
	logger     *slog.Logger
	parseError func(resp *http.Response) error
}

func newHTTPProvider(name string, cfg *Config, parseError func(*http.Response) error) httpProvider {
	return httpProvider{
		name:       name,
		config:     cfg,
		client:     httpc.NewClient(cfg.Timeout),
		logger:     cfg.Logger.With("component", "tts."+name),
		parseError: parseError,
	}
}

// post sends body to url and returns the response body of a 200 answer.
// Rate limits and server errors are retried with linear backoff.
func (h *httpProvider) post(ctx context.Context, url string, headers http.Header, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(h.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, WrapError(h.name, fmt.Errorf("create request: %w", err))
		}
		req.Header = headers.Clone()

		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = WrapError(h.name, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := h.parseError(resp)
			resp.Body.Close()
			lastErr = apiErr
			if e, ok := apiErr.(*APIError); ok && e.IsRetryable() {
				h.logger.Warn("retrying request", "attempt", attempt+1, "status", resp.StatusCode)
				continue
			}
			return nil, apiErr
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, WrapError(h.name, fmt.Errorf("read response: %w", err))
		}
		return data, nil
	}

	return nil, lastErr
}

// get performs a health check request and maps non-200 answers to errors.
func (h *httpProvider) get(ctx context.Context, url string, headers http.Header) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return WrapError(h.name, err)
	}
	req.Header = headers.Clone()

	resp, err := h.client.Do(req)
	if err != nil {
		return WrapError(h.name, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return h.parseError(resp)
	}
	return nil
}

// Name identifies the provider.
func (h *httpProvider) Name() string {
	return h.name
}

// Close releases idle connections.
func (h *httpProvider) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
