package layout

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

// AnthropicDesigner calls the Anthropic Messages API.
type AnthropicDesigner struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewAnthropicDesigner creates a designer using the Messages API.
func NewAnthropicDesigner(baseURL, apiKey, model string) *AnthropicDesigner {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}
	return &AnthropicDesigner{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		maxTokens: 200,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *AnthropicDesigner) Design(ctx context.Context, r Request) (string, error) {
	body, _ := json.Marshal(anthropicRequest{
		Model:     d.model,
		MaxTokens: d.maxTokens,
		System:    SystemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: UserPrompt(r)}},
	})
	req, err := http.NewRequestWithContext(ctx, "POST", d.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", "2023-06-01")
	if d.apiKey != "" {
		req.Header.Set("x-api-key", d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("anthropic error %d: %s", resp.StatusCode, string(b))
	}

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("no content returned")
	}
	return strings.TrimSpace(result.Content[0].Text), nil
}
