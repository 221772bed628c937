package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sistemapolicial/officer-registry/internal/auth"
	"github.com/sistemapolicial/officer-registry/internal/logging"
	"github.com/sistemapolicial/officer-registry/internal/officer"
)

// envelope is the JSON shape of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// writeJSON writes a success envelope wrapping data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		// Headers are already sent; nothing left to do but note it.
		slog.Error("json encode failed", "error", err)
	}
}

// writeMessage writes a failure envelope with just a message.
func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Message: message}) //nolint:errcheck
}

// respondError translates a domain error into an HTTP status and envelope.
// Internal errors are logged with full detail but answered with a generic
// message unless the server runs in development mode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		missing    *officer.MissingFieldsError
		invalid    *officer.ValidationError
		attachment *officer.InvalidAttachmentError
		duplicate  *officer.DuplicateError
	)

	switch {
	case errors.As(err, &missing):
		writeFailure(w, http.StatusBadRequest, missing.Error(), map[string]any{"missing_fields": missing.Fields})
	case errors.As(err, &invalid):
		writeFailure(w, http.StatusBadRequest, invalid.Error(), map[string]any{"field": invalid.Field})
	case errors.As(err, &attachment):
		writeMessage(w, http.StatusBadRequest, attachment.Error())
	case errors.As(err, &duplicate):
		writeFailure(w, http.StatusConflict, duplicate.Error(), map[string]any{"conflicts": duplicate.Conflicts})
	case errors.Is(err, officer.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "record not found")
	case errors.Is(err, officer.ErrUnavailable):
		writeMessage(w, http.StatusServiceUnavailable, "service temporarily unavailable, try again")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, auth.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, "missing or invalid session token")
	default:
		logging.FromContext(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message := "internal server error"
		if s.cfg.Development() {
			message = err.Error()
		}
		writeMessage(w, http.StatusInternalServerError, message)
	}
}

// writeFailure writes a failure envelope with a message and structured detail.
func writeFailure(w http.ResponseWriter, status int, message string, detail any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Message: message, Error: detail}) //nolint:errcheck
}
