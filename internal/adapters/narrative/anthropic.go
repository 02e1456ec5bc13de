package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com"
	anthropicAPIVersion   = "2023-06-01"
	defaultAnthropicModel = "claude-3-haiku-20240307"
	anthropicMaxTokens    = 512
)

// anthropic generates narratives through the Anthropic messages API.
type anthropic struct {
	settings
}

func newAnthropic(opts ...Option) *anthropic {
	return &anthropic{settings: newSettings(defaultAnthropicModel, anthropicBaseURL, opts...)}
}

// Available reports whether an API key is configured.
func (a *anthropic) Available(_ context.Context) bool {
	return a.apiKey != ""
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate makes a single messages call.
func (a *anthropic) Generate(ctx context.Context, req Request) (string, error) {
	if !a.Available(ctx) {
		return "", ErrUnavailable
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error.Message != "" {
			return "", fmt.Errorf("anthropic API error: %s (type: %s)", parsed.Error.Message, parsed.Error.Type)
		}
		return "", fmt.Errorf("anthropic API returned status %d", resp.StatusCode)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" {
			if text := strings.TrimSpace(block.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrEmptyResponse
}
