package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultChatModel      = "gpt-4"
	DefaultQueryModel     = "gpt-4o"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Message is a single chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a chat completions request
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream"`
}

// ClientConfig configures a Client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	QueryModel     string
	EmbeddingModel string
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// Client calls the chat completions and embeddings APIs
type Client struct {
	apiKey         string
	baseURL        string
	chatModel      string
	queryModel     string
	embeddingModel string
	http           *http.Client
	logger         *zap.Logger
}

// NewClient creates a Client
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	c := &Client{
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		chatModel:      cfg.ChatModel,
		queryModel:     cfg.QueryModel,
		embeddingModel: cfg.EmbeddingModel,
		http:           cfg.HTTPClient,
		logger:         cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.chatModel == "" {
		c.chatModel = DefaultChatModel
	}
	if c.queryModel == "" {
		c.queryModel = DefaultQueryModel
	}
	if c.embeddingModel == "" {
		c.embeddingModel = DefaultEmbeddingModel
	}
	if c.http == nil {
		// No overall timeout: streamed answers are bounded by the request context.
		c.http = &http.Client{Transport: http.DefaultTransport}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.Named("openai")
	return c, nil
}

// StreamChat sends question as a single user message to the chat model and
// calls onDelta for every content delta. It returns the accumulated answer.
func (c *Client) StreamChat(ctx context.Context, question string, onDelta func(delta string) error) (string, error) {
	return c.Stream(ctx, ChatRequest{
		Model:    c.chatModel,
		Messages: []Message{{Role: "user", Content: question}},
	}, onDelta)
}

// Stream runs a streamed chat completion. An error returned before onDelta
// is first called means nothing was produced.
func (c *Client) Stream(ctx context.Context, req ChatRequest, onDelta func(delta string) error) (string, error) {
	req.Stream = true
	resp, err := c.post(ctx, "/chat/completions", req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var answer strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return answer.String(), nil
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return answer.String(), fmt.Errorf("invalid stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		answer.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return answer.String(), err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return answer.String(), fmt.Errorf("reading stream: %w", err)
	}
	// Stream closed without [DONE]
	return answer.String(), nil
}

// Embed returns the embedding of text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.post(ctx, "/embeddings", map[string]interface{}{
		"model": c.embeddingModel,
		"input": text,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Message: fmt.Sprintf("invalid embeddings response: %v", err)}
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Message: "empty embeddings response"}
	}
	return result.Data[0].Embedding, nil
}

// post sends a JSON request and returns the response when it is 2xx
func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		upstreamErr := newUpstreamError(resp.StatusCode, respBody)
		c.logger.Warn("openai request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", upstreamErr.Message))
		return nil, upstreamErr
	}
	c.logger.Debug("openai request", zap.String("path", path), zap.Duration("latency", time.Since(start)))
	return resp, nil
}
