package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/srsports/backend/internal/logging"
	"github.com/srsports/backend/internal/repository"
	"github.com/srsports/backend/internal/service"
	"github.com/srsports/backend/pkg/supabase"
)

// errorResponse is the JSON body of every failed API call.
type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// errorStatus maps a service or backend error to a status code, an error code
// and the message shown to the user. fallback is the code used for unexpected
// failures, e.g. "create_failed".
func errorStatus(err error, fallback string) (int, errorResponse) {
	var verr *service.ValidationError
	var apiErr *supabase.APIError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: verr.Error(), Fields: verr.Fields}
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: sentence(err.Error())}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "forbidden"}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not_found"}
	case errors.As(err, &apiErr):
		// Supabase の 4xx はユーザー起因（認証情報の誤りなど）なのでそのまま返す
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
			http.StatusConflict, http.StatusUnprocessableEntity, http.StatusTooManyRequests:
			return apiErr.Status, errorResponse{Error: fallback, Message: err.Error()}
		}
		return http.StatusBadGateway, errorResponse{Error: fallback, Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: fallback, Message: err.Error()}
	}
}

// sentence は先頭の文字を大文字にする（エラー文字列は小文字始まりのため）
func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// writeServiceError writes err as JSON. 5xx errors are logged with the request id.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, body := errorStatus(err, fallback)
	if status >= http.StatusInternalServerError {
		logging.Error("request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a size-limited JSON body into v and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
