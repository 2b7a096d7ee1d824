// Package engine provides the request/response channel to the remote
// advisory engine.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultRequestTimeout bounds a single chat round trip.
const DefaultRequestTimeout = 30 * time.Second

// ConnectInfo is the engine's answer to a realtime connect request: the room
// to join and the authoritative session identity it assigned.
type ConnectInfo struct {
	RoomURL   string `json:"room_url"`
	SessionID string `json:"session_id"`
}

// Client is a JSON-over-HTTP client for the advisory engine.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates an engine client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// Chat sends one user utterance and returns the engine's structured reply as
// raw JSON for classification.
func (c *Client) Chat(ctx context.Context, sessionID, text string) (json.RawMessage, error) {
	body, err := json.Marshal(chatRequest{SessionID: sessionID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	raw, err := c.post(ctx, "/chat", body)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	return raw, nil
}

// Connect allocates a realtime room and the authoritative session identity.
func (c *Client) Connect(ctx context.Context, sessionID string) (*ConnectInfo, error) {
	body, err := json.Marshal(map[string]string{"session_id": sessionID})
	if err != nil {
		return nil, fmt.Errorf("encode connect request: %w", err)
	}

	raw, err := c.post(ctx, "/connect", body)
	if err != nil {
		return nil, fmt.Errorf("connect request: %w", err)
	}

	var info ConnectInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode connect response: %w", err)
	}
	if info.RoomURL == "" {
		return nil, fmt.Errorf("connect response missing room_url")
	}
	return &info, nil
}

// ResetSession discards the server-side session state for the given identity.
func (c *Client) ResetSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/session/"+sessionID, nil)
	if err != nil {
		return fmt.Errorf("build reset request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	defer c.closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("reset session: engine returned %s", resp.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer c.closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("engine returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return raw, nil
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Debug("Failed to close response body", "error", err)
	}
}
