package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julianstephens/habitd/internal/errors"
	"github.com/julianstephens/habitd/internal/logger"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func decodePayload[T any](r *http.Request) (T, error) {
	var v T
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, errors.Newf(errors.InvalidArgument, "failure decoding request payload: %v", err)
	}
	return v, nil
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind errors.Kind) int {
	switch kind {
	case errors.NotFound:
		return http.StatusNotFound
	case errors.Forbidden:
		return http.StatusForbidden
	case errors.Conflict:
		return http.StatusConflict
	case errors.InvalidArgument:
		return http.StatusBadRequest
	case errors.InvalidState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(w http.ResponseWriter, err error) {
	kind := errors.KindOf(err)
	code := StatusFor(kind)

	resp := errorResponse{Error: err.Error()}
	var e *errors.Error
	if errors.As(err, &e) {
		resp.Details = e.Details
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", code, "error", err)
		// Storage errors may leak internals
		resp = errorResponse{Error: http.StatusText(code)}
	} else {
		logger.Debug("Request rejected", "status", code, "kind", kind, "error", err)
	}
	respondWithJSON(w, code, resp)
}

func respondWithMessage(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, errorResponse{Error: msg})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("could not marshal JSON for response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logger.Error(fmt.Sprintf("could not write response: %v", err))
	}
}
