package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"go.uber.org/zap"
)

// maxJSONBody caps decoded request bodies.
const maxJSONBody = 1 << 20

// statusFor maps an application error to an HTTP status and a message safe
// to show to the caller.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, apperr.ErrPasswordMismatch):
		return http.StatusForbidden, "incorrect password"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, apperr.ErrExpired):
		return http.StatusGone, "link expired"
	case errors.Is(err, apperr.ErrStorage):
		return http.StatusBadGateway, "storage failure"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeError writes err with http.Error. Server-side failures are logged.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Int("status", code), zap.Error(err))
	}
	http.Error(w, msg, code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeBody(w, r, v); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return false
	}
	return true
}
