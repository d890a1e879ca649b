package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rolzy/mealsteals/internal/apperr"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
	defaultModel      = "claude-3-haiku-20240307"
)

type ClaudeClient struct {
	apiKey string
	model  string
	client *http.Client
}

func NewClaudeClient() *ClaudeClient {
	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &ClaudeClient{
		apiKey: os.Getenv("ANTHROPIC_API_KEY"),
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// ExtractDeals sends cleaned page text to the model and guarantees
// JSON-only output.
func (c *ClaudeClient) ExtractDeals(ctx context.Context, pageText string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("missing ANTHROPIC_API_KEY")
	}
	if pageText == "" {
		return "", errors.New("empty page text")
	}

	payload := map[string]any{
		"model":       c.model,
		"max_tokens":  1024,
		"temperature": 0.0,
		"system":      extractSystemPrompt,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": buildExtractPrompt(pageText),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		anthropicEndpoint,
		bytes.NewBuffer(body),
	)
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperr.Transient("anthropic request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", apperr.Transient("anthropic api unavailable", fmt.Errorf("http %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic api error: %s", string(raw))
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", errors.New("empty anthropic response")
	}

	output := stripCodeFences(result.Content[0].Text)

	if !json.Valid([]byte(output)) {
		return "", errors.New("model returned non-json output")
	}

	return output, nil
}

// stripCodeFences removes a ```json ... ``` wrapper the model sometimes
// adds despite the prompt.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
