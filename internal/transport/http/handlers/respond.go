package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/vedran77/konekt/pkg/validator"
)

// All command responses share the {success, message?, ...payload} envelope.

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeSuccess(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func writeValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeError(w, http.StatusBadRequest, errs.First())
}

// storageStatus distinguishes connectivity failures (503) from everything
// else (500) for the generic fallback path.
func storageStatus(err error) int {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
