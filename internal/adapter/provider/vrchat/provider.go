package vrchat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
	"github.com/vrcshowcase/showcase-backend/internal/provider"
)

const defaultBaseURL = "https://api.vrchat.cloud/api/1"

// defaultUserAgent identifies the engine to the catalog; the API rejects
// anonymous clients.
const defaultUserAgent = "showcase-backend"

// Provider fetches world data from the VRChat worlds API.
type Provider struct {
	baseURL       string
	userAgent     string
	httpClient    *http.Client
	log           *slog.Logger
	retryAttempts int
	retryBase     time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides the API base URL (for testing).
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) { p.baseURL = baseURL }
}

// WithRetry overrides the retry policy.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(p *Provider) {
		p.retryAttempts = attempts
		p.retryBase = baseDelay
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) { p.httpClient.Timeout = timeout }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Provider) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// NewProvider creates a Provider with the default VRChat API URL.
func NewProvider(logger *slog.Logger, opts ...Option) *Provider {
	p := &Provider{
		baseURL:       defaultBaseURL,
		userAgent:     defaultUserAgent,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		log:           logger.With("adapter", "vrchat"),
		retryAttempts: 3,
		retryBase:     500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchWorld fetches live data for the given world id.
// Returns domain.ErrNotFound for deleted or private worlds (HTTP 404) and
// domain.ErrUpstreamUnavailable after retries are exhausted on 429, 5xx or
// network errors. Not-found is terminal and never retried.
func (p *Provider) FetchWorld(ctx context.Context, worldID string) (*provider.WorldResult, error) {
	reqURL := p.baseURL + "/worlds/" + url.PathEscape(worldID)

	p.log.DebugContext(ctx, "vrchat request", slog.String("world_id", worldID))

	resp, err := p.doWithRetry(ctx, reqURL, worldID)
	if err != nil {
		p.log.ErrorContext(ctx, "vrchat request failed", slog.String("world_id", worldID), slog.String("error", err.Error()))
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("vrchat: world %s: %w", worldID, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("vrchat: unexpected status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vrchat: read body: %w", err)
	}

	var world apiWorld
	if err := json.Unmarshal(body, &world); err != nil {
		return nil, fmt.Errorf("vrchat: decode json: %w", err)
	}

	result := world.toResult(worldID)

	p.log.DebugContext(ctx, "vrchat response",
		slog.String("world_id", worldID),
		slog.String("name", result.Name),
		slog.String("platform", result.Platform),
	)

	return result, nil
}

// doWithRetry executes the request with exponential backoff on transient
// failures (network errors, 429, 5xx). A 404 returns immediately. The delay
// doubles per attempt starting from the configured base.
func (p *Provider) doWithRetry(ctx context.Context, reqURL, worldID string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < p.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := p.retryBase << (attempt - 1)
			p.log.WarnContext(ctx, "vrchat retry",
				slog.String("world_id", worldID),
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("vrchat: %w: %w", ctx.Err(), domain.ErrUpstreamUnavailable)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("vrchat: create request: %w", err)
		}
		req.Header.Set("User-Agent", p.userAgent)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !transient {
			return resp, nil
		}

		lastErr = fmt.Errorf("status %d", resp.StatusCode)
		resp.Body.Close()
	}

	return nil, fmt.Errorf("vrchat: request failed after %d attempts: %v: %w", p.retryAttempts, lastErr, domain.ErrUpstreamUnavailable)
}
