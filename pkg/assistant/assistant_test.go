package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	embedding []float32
	err       error
}

func (f fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.embedding, f.err
}

type fakeSearcher struct {
	chunks []Chunk
	gotK   int
}

func (f *fakeSearcher) SimilaritySearch(_ context.Context, _ []float32, k int) ([]Chunk, error) {
	f.gotK = k
	return f.chunks, nil
}

func TestAsk(t *testing.T) {
	srv := streamServer(t, func(req ChatRequest) {
		assert.Equal(t, DefaultQueryModel, req.Model)
		require.NotNil(t, req.Temperature)
		assert.InDelta(t, 0.7, *req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "Context:\nSprints last two weeks.\nStandups are at 9.")
		assert.Contains(t, req.Messages[1].Content, "Question:\nHow long is a sprint?")
	}, "Two ", "weeks.")

	searcher := &fakeSearcher{chunks: []Chunk{{ID: 1, Text: "Sprints last two weeks."}, {ID: 2, Text: "Standups are at 9."}}}
	a := New(newTestClient(t, srv.URL), searcher, nil)
	a.embed = fakeEmbedder{embedding: []float32{0.1}}

	answer, err := a.Ask(context.Background(), "How long is a sprint?")
	require.NoError(t, err)
	assert.Equal(t, "Two weeks.", answer)
	assert.Equal(t, ContextChunks, searcher.gotK)
}

func TestAsk_EmbedFailure(t *testing.T) {
	a := New(newTestClient(t, "http://unused"), &fakeSearcher{}, nil)
	a.embed = fakeEmbedder{err: &UpstreamError{StatusCode: 401, Message: "bad key"}}

	_, err := a.Ask(context.Background(), "q")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 401, upstream.StatusCode)
}

func TestBuildMessages(t *testing.T) {
	msgs := BuildMessages("Who owns APOLLO?", nil)
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Role: "system", Content: "You are a helpful project management assistant."}, msgs[0])
	assert.Equal(t, "Use the following context to answer the user's question.\n\nContext:\n\n\nQuestion:\nWho owns APOLLO?", msgs[1].Content)
}
