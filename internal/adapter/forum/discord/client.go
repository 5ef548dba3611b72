// Package discord implements the forum surface as a thin client over the
// Discord REST API. Forum threads mirror world posts; thread starter messages
// carry the world link.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

const defaultBaseURL = "https://discord.com/api/v10"

// Client talks to the Discord REST API on behalf of the bot.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// NewClient creates a Client authenticating with the given bot token.
func NewClient(token string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.With("adapter", "discord"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateThread creates a forum thread with a starter message and returns the
// new thread id. Tag application is best-effort on the Discord side; the
// caller reconciles mismatches later.
func (c *Client) CreateThread(ctx context.Context, channelID, title, content string, tagIDs []string) (string, error) {
	if tagIDs == nil {
		tagIDs = []string{}
	}
	payload := createThreadRequest{
		Name:        title,
		AppliedTags: tagIDs,
		Message:     threadMessage{Content: content},
	}

	var created apiChannel
	err := c.do(ctx, http.MethodPost, "/channels/"+channelID+"/threads", payload, &created)
	if err != nil {
		return "", fmt.Errorf("discord: create thread in %s: %w", channelID, err)
	}

	c.log.InfoContext(ctx, "forum thread created",
		slog.String("channel_id", channelID),
		slog.String("thread_id", created.ID),
	)
	return created.ID, nil
}

// GetThread returns a snapshot of a single thread including its starter
// message content. Returns domain.ErrNotFound if the thread does not exist.
func (c *Client) GetThread(ctx context.Context, threadID string) (*domain.LiveThreadSnapshot, error) {
	var ch apiChannel
	if err := c.do(ctx, http.MethodGet, "/channels/"+threadID, nil, &ch); err != nil {
		return nil, fmt.Errorf("discord: get thread %s: %w", threadID, err)
	}

	snapshot := ch.toSnapshot()

	// Forum starter messages share the thread's id. A missing starter
	// (deleted by a moderator) is not an error; content stays empty.
	var msg apiMessage
	err := c.do(ctx, http.MethodGet, "/channels/"+threadID+"/messages/"+threadID, nil, &msg)
	switch {
	case err == nil:
		snapshot.RawContent = msg.Content
	case !isNotFound(err):
		return nil, fmt.Errorf("discord: get starter message %s: %w", threadID, err)
	}

	return snapshot, nil
}

// ListThreads returns snapshots of every thread in the forum channel, active
// and archived. Starter message content is not populated; use GetThread when
// a thread needs closer inspection.
func (c *Client) ListThreads(ctx context.Context, guildID, channelID string) ([]*domain.LiveThreadSnapshot, error) {
	seen := map[string]bool{}
	threads := []*domain.LiveThreadSnapshot{}

	var active threadListResponse
	if err := c.do(ctx, http.MethodGet, "/guilds/"+guildID+"/threads/active", nil, &active); err != nil {
		return nil, fmt.Errorf("discord: list active threads for guild %s: %w", guildID, err)
	}
	for _, ch := range active.Threads {
		if ch.ParentID != channelID || seen[ch.ID] {
			continue
		}
		seen[ch.ID] = true
		threads = append(threads, ch.toSnapshot())
	}

	var archived threadListResponse
	if err := c.do(ctx, http.MethodGet, "/channels/"+channelID+"/threads/archived/public", nil, &archived); err != nil {
		return nil, fmt.Errorf("discord: list archived threads for channel %s: %w", channelID, err)
	}
	for _, ch := range archived.Threads {
		if seen[ch.ID] {
			continue
		}
		seen[ch.ID] = true
		threads = append(threads, ch.toSnapshot())
	}

	return threads, nil
}

// ListTagDefinitions returns the forum channel's available tags.
func (c *Client) ListTagDefinitions(ctx context.Context, channelID string) ([]domain.ExternalTagDef, error) {
	var ch apiChannel
	if err := c.do(ctx, http.MethodGet, "/channels/"+channelID, nil, &ch); err != nil {
		return nil, fmt.Errorf("discord: get forum channel %s: %w", channelID, err)
	}

	defs := make([]domain.ExternalTagDef, 0, len(ch.AvailableTags))
	for _, t := range ch.AvailableTags {
		def := domain.ExternalTagDef{
			ID:        t.ID,
			Name:      t.Name,
			Moderated: t.Moderated,
		}
		if t.EmojiName != nil && *t.EmojiName != "" {
			def.Emoji = t.EmojiName
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// DeleteThread removes a thread. Deleting an already absent thread succeeds,
// which makes repair deletions safely repeatable.
func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	err := c.do(ctx, http.MethodDelete, "/channels/"+threadID, nil, nil)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("discord: delete thread %s: %w", threadID, err)
	}
	return nil
}

// ApplyTags replaces the thread's applied tags.
func (c *Client) ApplyTags(ctx context.Context, threadID string, tagIDs []string) error {
	if tagIDs == nil {
		tagIDs = []string{}
	}
	payload := map[string]any{"applied_tags": tagIDs}
	if err := c.do(ctx, http.MethodPatch, "/channels/"+threadID, payload, nil); err != nil {
		return fmt.Errorf("discord: apply tags to thread %s: %w", threadID, err)
	}
	return nil
}

// do executes one API call, decoding the JSON response into out when out is
// non-nil. Status codes map onto domain sentinels: 404 to ErrNotFound, 429
// and 5xx to ErrUpstreamUnavailable.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w: %w", err, domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	case resp.StatusCode >= 400:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
