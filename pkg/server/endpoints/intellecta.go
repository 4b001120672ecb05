package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/intellecta-dev/intellecta/pkg/assistant"
	"github.com/intellecta-dev/intellecta/pkg/server"
)

// ChatRequest is the body of POST /intellecta/chat
type ChatRequest struct {
	Question string `json:"question"`
}

// AskRequest is the body of POST /intellecta/askintellecta
type AskRequest struct {
	Query    string `json:"query"`
	Question string `json:"question"`
}

// AskResponse is the body of a retrieval answer
type AskResponse struct {
	Answer string `json:"answer"`
	HTML   string `json:"html,omitempty"`
}

// StreamEvent is one server-sent event of a chat stream
type StreamEvent struct {
	Type  string `json:"type"`
	Data  string `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// RegisterIntellectaEndpoints registers the assistant endpoints
func RegisterIntellectaEndpoints(s *server.Server) {
	s.API.Handle("/intellecta/chat", s.Protect(handleChat(s))).Methods("POST")
	s.API.Handle("/intellecta/askintellecta", s.Protect(handleAsk(s))).Methods("POST")
}

// sseWriter writes server-sent events, sending the stream headers with the
// first event
type sseWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	return &sseWriter{w: w, rc: http.NewResponseController(w)}
}

func (s *sseWriter) start() {
	if s.started {
		return
	}
	s.started = true
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
}

func (s *sseWriter) send(event StreamEvent) error {
	s.start()
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	// Writers that cannot flush still deliver the event at the end
	_ = s.rc.Flush()
	return nil
}

func handleChat(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			respondWithError(w, http.StatusBadRequest, "Question is required")
			return
		}
		if s.Assistant == nil {
			unavailable(w, "assistant")
			return
		}

		stream := newSSEWriter(w)
		answer, err := s.Assistant.StreamChat(r.Context(), req.Question, func(delta string) error {
			return stream.send(StreamEvent{Type: "message", Data: delta})
		})
		if err != nil {
			if !stream.started {
				respondWithErr(w, s.Logger, r, err)
				return
			}
			s.Logger.Warn("chat stream failed", zap.Error(err))
			_ = stream.send(StreamEvent{Type: "error", Error: "Streaming failed."})
			return
		}

		_ = stream.send(StreamEvent{Type: "final", Data: assistant.Polish(answer)})
		_ = stream.send(StreamEvent{Type: "end"})
	}
}

func handleAsk(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AskRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
		query := req.Query
		if strings.TrimSpace(query) == "" {
			query = req.Question
		}
		if strings.TrimSpace(query) == "" {
			respondWithError(w, http.StatusBadRequest, "Query is required")
			return
		}
		if s.Assistant == nil {
			unavailable(w, "assistant")
			return
		}

		answer, err := s.Assistant.Ask(r.Context(), query)
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}

		resp := AskResponse{Answer: answer}
		if r.URL.Query().Get("format") == "html" {
			html, err := assistant.RenderHTML(answer)
			if err != nil {
				respondWithErr(w, s.Logger, r, err)
				return
			}
			resp.HTML = html
		}
		respondWithJSON(w, http.StatusOK, resp)
	}
}
