package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/intellecta-dev/intellecta/pkg/identity"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// ErrorBody is the payload of the error envelope
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// upstreamError is implemented by the identity provider and model
// provider errors
type upstreamError interface {
	error
	HTTPStatus() int
}

// statusForError maps an error to its HTTP status and error code
func statusForError(err error) (int, string) {
	var upstream upstreamError
	switch {
	case errors.Is(err, workflow.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict, "conflict"
	case errors.Is(err, store.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.As(err, &upstream):
		return upstream.HTTPStatus(), "upstream_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondWithErr writes err as the error envelope. Internal failures are
// logged and reported without detail.
func respondWithErr(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	status, code := statusForError(err)
	message := err.Error()
	if status >= http.StatusInternalServerError && code != "upstream_error" {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
		message = http.StatusText(status)
	}
	respondWithError(w, status, ErrorBody{Code: code, Message: message})
}

func badRequest(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusBadRequest, ErrorBody{Code: "invalid_input", Message: message})
}

// decodeJSON decodes a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

// pathInt parses a positive integer path variable
func pathInt(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// page holds the limit and offset of a list request
type page struct {
	limit  int
	offset int
}

// parsePage reads ?limit= and ?offset=. limit is capped at max; zero means
// no limit was requested.
func parsePage(r *http.Request, max int) (page, error) {
	var p page
	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return p, fmt.Errorf("invalid limit %q", raw)
		}
		p.limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, fmt.Errorf("invalid offset %q", raw)
		}
		p.offset = n
	}
	if max > 0 && (p.limit == 0 || p.limit > max) {
		p.limit = max
	}
	return p, nil
}

// paginate applies p to items
func paginate[T any](items []T, p page) []T {
	if p.offset >= len(items) {
		return []T{}
	}
	items = items[p.offset:]
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}

// caller returns the authenticated identity; protected routes always have one
func caller(r *http.Request) *identity.Identity {
	id, ok := identity.Get(r.Context())
	if !ok {
		return &identity.Identity{}
	}
	return id
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// unavailable reports a dependency that is not configured
func unavailable(w http.ResponseWriter, what string) {
	respondWithError(w, http.StatusServiceUnavailable, ErrorBody{Code: "unavailable", Message: what + " is not configured"})
}
