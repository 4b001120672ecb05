package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// ContextChunks is the number of knowledge base chunks given to the model
	ContextChunks = 5

	queryTemperature = 0.7
	systemPrompt     = "You are a helpful project management assistant."
)

// Embedder turns text into an embedding
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher finds the chunks nearest to an embedding
type Searcher interface {
	SimilaritySearch(ctx context.Context, embedding []float32, k int) ([]Chunk, error)
}

// Assistant answers questions with the chat and retrieval flows
type Assistant struct {
	client *Client
	embed  Embedder
	search Searcher
	logger *zap.Logger
}

// New creates an Assistant. The client is used as the Embedder.
func New(client *Client, search Searcher, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		client: client,
		embed:  client,
		search: search,
		logger: logger.Named("assistant"),
	}
}

// StreamChat relays a plain chat completion, see Client.StreamChat
func (a *Assistant) StreamChat(ctx context.Context, question string, onDelta func(delta string) error) (string, error) {
	return a.client.StreamChat(ctx, question, onDelta)
}

// Ask answers query using the nearest knowledge base chunks as context
func (a *Assistant) Ask(ctx context.Context, query string) (string, error) {
	embedding, err := a.embed.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := a.search.SimilaritySearch(ctx, embedding, ContextChunks)
	if err != nil {
		return "", err
	}
	a.logger.Debug("retrieved context", zap.Int("chunks", len(chunks)))

	temperature := queryTemperature
	answer, err := a.client.Stream(ctx, ChatRequest{
		Model:       a.client.queryModel,
		Messages:    BuildMessages(query, chunks),
		Temperature: &temperature,
	}, nil)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// BuildMessages returns the system and user prompt for a retrieval question
func BuildMessages(query string, chunks []Chunk) []Message {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	user := fmt.Sprintf("Use the following context to answer the user's question.\n\nContext:\n%s\n\nQuestion:\n%s",
		strings.Join(texts, "\n"), query)

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}
}
