package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/config"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultModel       = "anthropic/claude-3.5-haiku"
	maxRetries         = 3
	retryDelay         = 2 * time.Second
	defaultMaxTokens   = 1024
	defaultTemperature = 0.0

	// Cap on content forwarded to the model; items are classified from a
	// leading excerpt, not their full body.
	maxContentBytes = 48 * 1024
)

// ChatClient is an OpenAI-compatible chat completions client used as the
// primary extraction tier.
type ChatClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewChatClient creates the AI extraction client. Returns nil when no API
// key is configured; a nil AIClient makes the Transformer run fallback-only.
func NewChatClient(cfg config.AIConfig) *ChatClient {
	if cfg.APIKey == "" {
		return nil
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	} else {
		baseURL = strings.TrimRight(baseURL, "/")
		if !strings.HasSuffix(baseURL, "/chat/completions") {
			baseURL += "/chat/completions"
		}
	}
	return &ChatClient{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

const systemPrompt = `You classify and summarize assets for a marketing content index.
Respond with a single JSON object and nothing else:
{"category": one of [%s],
 "title": short human title,
 "summary": 1-3 sentence summary,
 "keywords": up to 8 lowercase keywords,
 "confidence": 0.0-1.0,
 "sensitive": true only if the content contains credentials, personal data or other material that must not be indexed in detail}`

// Extract asks the model for structured metadata about one item.
func (c *ChatClient) Extract(ctx context.Context, name string, content []byte) (Metadata, float32, error) {
	excerpt := textExcerpt(content)

	user := fmt.Sprintf("File name: %s\n\nContent:\n%s", name, excerpt)
	if excerpt == "" {
		user = fmt.Sprintf("File name: %s\n\n(binary content, classify from the name)", name)
	}

	raw, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: fmt.Sprintf(systemPrompt, strings.Join(Categories(), ", "))},
		{Role: "user", Content: user},
	})
	if err != nil {
		return Metadata{}, 0, err
	}

	var out struct {
		Metadata
		Confidence float32 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return Metadata{}, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if out.Category == "" {
		return Metadata{}, 0, fmt.Errorf("%w: missing category", ErrMalformed)
	}
	return out.Metadata, out.Confidence, nil
}

// complete sends messages to the model, retrying transient upstream errors.
func (c *ChatClient) complete(ctx context.Context, messages []chatMessage) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", classifyCtxErr(ctx)
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		result, err := c.doRequest(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !errors.Is(err, ErrRateLimited) {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (c *ChatClient) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", classifyCtxErr(ctx)
		}
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests, 529, http.StatusServiceUnavailable:
		return "", fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	default:
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformed)
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func classifyCtxErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ctx.Err()
}

// textExcerpt returns a bounded UTF-8 excerpt of content, or "" for binary.
func textExcerpt(content []byte) string {
	if len(content) > maxContentBytes {
		content = content[:maxContentBytes]
		// Truncation may split a trailing rune.
		for i := 0; i < 3 && len(content) > 0 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	if bytes.IndexByte(content, 0) >= 0 || !utf8.Valid(content) {
		return ""
	}
	return string(content)
}

// stripFences removes a markdown code fence if the model wrapped its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
