package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/outlierline/internal/external/statsapi"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps upstream errors onto an HTTP status and a client-safe message.
// The wrapped error may carry upstream URLs and stays in the log.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, statsapi.ErrUnknownTeam):
		return http.StatusNotFound, "unknown team"
	case errors.Is(err, statsapi.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, statsapi.ErrInvalidPayload):
		return http.StatusBadGateway, "invalid outlier payload from upstream"
	case errors.Is(err, statsapi.ErrUpstream):
		return http.StatusBadGateway, "upstream request failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
