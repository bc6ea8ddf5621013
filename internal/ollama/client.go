// Package ollama contains a minimal client for the Ollama chat API and a
// supervisor that manages the lifetime of a local `ollama serve` process.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 10 * time.Minute

// Client talks to an Ollama server over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for the server at baseURL
// (e.g. http://127.0.0.1:11434).
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// ChatStream sends a streaming chat request and returns a channel of
// incremental chunks. The channel is closed after the Done chunk or an
// error chunk.
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message) (<-chan StreamChunk, error) {
	stream := true
	body, err := json.Marshal(chatRequest{Model: model, Messages: messages, Stream: &stream})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}

	out := make(chan StreamChunk, 64)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var event chatResponse
			if err := json.Unmarshal([]byte(line), &event); err != nil {
				out <- StreamChunk{Err: fmt.Errorf("decode stream event: %w", err)}
				return
			}
			if event.Message.Content != "" {
				out <- StreamChunk{Content: event.Message.Content}
			}
			if event.Done {
				out <- StreamChunk{Done: true}
				return
			}
		}
		if err := scanner.Err(); err != nil {
			out <- StreamChunk{Err: fmt.Errorf("stream read failed: %w", err)}
			return
		}
		out <- StreamChunk{Done: true}
	}()
	return out, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func decodeAPIError(resp *http.Response) error {
	var ae apiError
	if err := json.NewDecoder(resp.Body).Decode(&ae); err == nil && ae.Error != "" {
		return fmt.Errorf("ollama http %d: %s", resp.StatusCode, ae.Error)
	}
	return fmt.Errorf("ollama http %d", resp.StatusCode)
}
