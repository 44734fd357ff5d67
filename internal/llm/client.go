package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the completion API settings.
type Config struct {
	APIURL       string
	APIKey       string
	Organization string
	Model        string
	Prompt       string
	MaxTokens    int
	Timeout      time.Duration
}

// Client handles communication with the chat-completion API.
type Client struct {
	cfg        Config
	HTTPClient *http.Client
}

// NewClient creates a new completion client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// ConsultResult is the flattened completion outcome forwarded to the chat
// platform. GPTAnswer has newlines stripped so it renders as one bubble.
type ConsultResult struct {
	Status     int         `json:"status"`
	StatusText string      `json:"statusText"`
	GPTAnswer  string      `json:"GPTAnswer"`
	Usage      interface{} `json:"usage,omitempty"`
}

// Error is an upstream API failure with its HTTP status (0 when the
// request never completed).
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("completion API error (status %d): %s", e.Status, e.Msg)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage map[string]interface{} `json:"usage"`
}

// Consult sends the configured system prompt plus the user's input and
// returns the first choice.
func (c *Client) Consult(ctx context.Context, userInput string) (*ConsultResult, error) {
	payload := chatRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: c.cfg.Prompt},
			{Role: "user", Content: userInput},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Organization != "" {
		req.Header.Set("OpenAi-Organization", c.cfg.Organization)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Status: 0, Msg: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Status: resp.StatusCode, Msg: http.StatusText(resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	result := &ConsultResult{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Usage:      parsed.Usage,
	}
	if len(parsed.Choices) > 0 {
		result.GPTAnswer = strings.ReplaceAll(parsed.Choices[0].Message.Content, "\n", "")
	}
	return result, nil
}
