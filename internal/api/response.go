package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/borrowez/borrowez/internal/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response for a domain error.
func jsonError(w http.ResponseWriter, e *domainerrors.Error) {
	jsonResponse(w, e.HTTPStatus(), errorBody{Error: e.Message, Code: string(e.Code), Details: e.Details})
}

// writeError maps err onto the error taxonomy. Anything that is not a domain
// error is logged and reported as a generic failure.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		s.logger.Error("unhandled error", "path", r.URL.Path, "error", err)
		domainErr = domainerrors.ErrInternal
	}
	if domainErr.Retryable() {
		w.Header().Set("Retry-After", "1")
	}
	jsonError(w, domainErr)
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return domainerrors.InvalidInput("invalid request body")
	}
	return nil
}
