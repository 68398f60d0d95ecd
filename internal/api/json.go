package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ncdash/internal/apperr"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// decodeJSON reads a bounded JSON body into v. It writes the 400 response
// itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// statusFor maps an operation error to its HTTP status.
func statusFor(err error) int {
	var verrs validation.Errors
	switch {
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrDatasetNotFound),
		errors.Is(err, apperr.ErrSessionNotFound),
		errors.Is(err, apperr.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidRequest),
		errors.Is(err, apperr.ErrInvalidDataset),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrCycle),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrBackend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes the mapped status. Client errors carry the
// error text; server errors a generic message.
func writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusBadGateway:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, status, errorBody("internal error"))
	case status == http.StatusBadGateway:
		slog.Warn(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, status, errorBody(err.Error()))
	default:
		writeJSON(w, status, errorBody(err.Error()))
	}
}
