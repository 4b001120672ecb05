package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseChunk(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{{"delta": map[string]string{"content": content}}},
	})
	return "data: " + string(b) + "\n\n"
}

func streamServer(t *testing.T, check func(req ChatRequest), deltas ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		if check != nil {
			check(req)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, ": keep-alive\n\n")
		_, _ = fmt.Fprint(w, `data: {"choices":[{"delta":{"role":"assistant"}}]}`+"\n\n")
		for _, d := range deltas {
			_, _ = fmt.Fprint(w, sseChunk(d))
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{APIKey: "sk-test", BaseURL: baseURL})
	require.NoError(t, err)
	return c
}

func TestNewClient_Defaults(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)

	c, err := NewClient(ClientConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultChatModel, c.chatModel)
	assert.Equal(t, DefaultQueryModel, c.queryModel)
	assert.Equal(t, DefaultEmbeddingModel, c.embeddingModel)
}

func TestStreamChat(t *testing.T) {
	srv := streamServer(t, func(req ChatRequest) {
		assert.Equal(t, DefaultChatModel, req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, Message{Role: "user", Content: "what is a sprint?"}, req.Messages[0])
		assert.Nil(t, req.Temperature)
	}, "A sprint ", "is a ", "timebox.")

	var deltas []string
	answer, err := newTestClient(t, srv.URL).StreamChat(context.Background(), "what is a sprint?", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A sprint ", "is a ", "timebox."}, deltas)
	assert.Equal(t, "A sprint is a timebox.", answer)
}

func TestStreamChat_CallbackErrorStops(t *testing.T) {
	srv := streamServer(t, nil, "one", "two", "three")

	stop := errors.New("client went away")
	calls := 0
	answer, err := newTestClient(t, srv.URL).StreamChat(context.Background(), "q", func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "one", answer)
}

func TestStreamChat_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
	}))
	defer srv.Close()

	called := false
	_, err := newTestClient(t, srv.URL).StreamChat(context.Background(), "q", func(string) error {
		called = true
		return nil
	})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.HTTPStatus())
	assert.Equal(t, "Rate limit reached", upstream.Message)
	assert.False(t, called)
}

func TestStream_InvalidChunk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "data: {not json\n\n")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).StreamChat(context.Background(), "q", nil)
	assert.ErrorContains(t, err, "invalid stream chunk")
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultEmbeddingModel, body["model"])
		assert.Equal(t, "hello", body["input"])
		_, _ = fmt.Fprint(w, `{"data":[{"embedding":[0.1,-0.2,0.3]}]}`)
	}))
	defer srv.Close()

	embedding, err := newTestClient(t, srv.URL).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, -0.2, 0.3}, embedding)
}

func TestEmbed_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Embed(context.Background(), "hello")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
}

func TestUpstreamError_FallbackMessage(t *testing.T) {
	err := newUpstreamError(http.StatusServiceUnavailable, []byte("<html>"))
	assert.Equal(t, "Service Unavailable", err.Message)
	assert.True(t, strings.HasPrefix(err.Error(), "openai: 503"))
}
