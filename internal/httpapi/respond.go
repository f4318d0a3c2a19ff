package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"barber-reservation-api/internal/middleware"
	"barber-reservation-api/internal/slogx"
)

const maxBody = 1 << 20

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:   "validation_failed",
		Message: "Some fields are invalid.",
		Fields:  fields,
	})
}

// writeInternal logs err and answers with a generic 500. Storage details
// never reach the client.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).ErrorContext(r.Context(), "request failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong, please try again.")
}

func unauthorized(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required.")
}

func authFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, middleware.ErrUnauthenticated) {
		unauthorized(w, r)
		return
	}
	writeInternal(w, r, err)
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many attempts, slow down.")
}

// decode reads a JSON body into dst. It writes the error response itself and
// reports whether the caller may continue.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst)
	if err == nil {
		return true
	}
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body is too large.")
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, "bad_request", "Request body is empty.")
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "Request body is not valid JSON.")
	}
	return false
}
