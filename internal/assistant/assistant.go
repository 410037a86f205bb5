// Package assistant forwards free-form questions to a local text-generation
// endpoint (Ollama API shape). Every failure path maps to a user-facing
// string; nothing escapes this boundary as an error.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

const (
	// PromptLimit caps the forwarded prompt length in runes; longer prompts
	// are cut, ellipsis marker included, to exactly this length.
	PromptLimit = 1000
	// ResponseLimit caps the returned answer length in runes the same way.
	ResponseLimit = 2000

	defaultTimeout = 30 * time.Second
)

const (
	replyEmptyPrompt = "Please provide a question after the keyword."
	replyUnavailable = "Assistant service is unavailable. Please try again later."
	replyTimeout     = "Assistant request timed out. Please try again."
	replyBadAnswer   = "Could not parse the assistant response."
	replyGeneric     = "Assistant request failed. Please try again."
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// New creates a gateway for the endpoint at baseURL. A zero timeout falls
// back to 30 seconds.
func New(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Ask strips the leading trigger token from text, forwards the remainder and
// returns the answer. All failures come back as fixed user-facing strings.
func (c *Client) Ask(ctx context.Context, text string) string {
	prompt := stripLeadingToken(text)
	if prompt == "" {
		return replyEmptyPrompt
	}
	prompt = truncate(prompt, PromptLimit)

	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal assistant request", "error", err)
		return replyGeneric
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build assistant request", "error", err)
		return replyGeneric
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "Assistant returned non-OK status", "status", resp.StatusCode)
		return fmt.Sprintf("Assistant service returned an error (status %d).", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		slog.ErrorContext(ctx, "Failed to decode assistant response", "error", err)
		return replyBadAnswer
	}
	answer := strings.TrimSpace(gr.Response)
	if answer == "" {
		return replyBadAnswer
	}
	return truncate(answer, ResponseLimit)
}

func (c *Client) classifyTransportError(ctx context.Context, err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		slog.WarnContext(ctx, "Assistant request timed out", "error", err)
		return replyTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		slog.WarnContext(ctx, "Assistant connection refused", "url", c.baseURL)
		return replyUnavailable
	default:
		slog.ErrorContext(ctx, "Assistant request failed", "error", err)
		return replyGeneric
	}
}

// stripLeadingToken drops the first whitespace-separated token ("chatgpt ...").
func stripLeadingToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

// truncate cuts s to at most limit runes, ending in an ellipsis marker when
// anything was cut. The marker counts against the limit.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
