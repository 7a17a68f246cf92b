package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"profadvisor/internal/models"
)

// ErrStreamAborted reports a stream that terminated abnormally before the
// server closed it cleanly; check with errors.Is.
var ErrStreamAborted = errors.New("stream aborted before completion")

// Client talks to the chat API. The HTTP client carries no overall timeout
// because a healthy stream may legitimately run for minutes; cancellation is
// the caller's context, and the dial/header phases have their own limits.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a chat API client for the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
	}
}

// Stream sends the session to the chat endpoint and invokes onFragment for
// each decoded text fragment as it arrives. It returns nil when the server
// closes the stream cleanly, and an error (wrapping ErrStreamAborted for
// mid-stream failures) otherwise.
func (c *Client) Stream(ctx context.Context, session []models.ChatMessage, onFragment func(string)) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach chat server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chat request failed (status %d): %s", resp.StatusCode, decodeErrorBody(body))
	}

	var decoder StreamDecoder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if text := decoder.Decode(buf[:n]); text != "" {
				onFragment(text)
			}
		}
		if err == io.EOF {
			if text := decoder.Flush(); text != "" {
				onFragment(text)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStreamAborted, err)
		}
	}
}

// decodeErrorBody extracts the message from a JSON error payload, falling
// back to the raw body.
func decodeErrorBody(body []byte) string {
	var errResp models.ChatErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		return errResp.Message
	}
	return string(body)
}
