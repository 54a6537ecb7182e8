package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps classified errors to HTTP statuses. Messages stay
// generic unless the error is flagged user-safe.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "unauthorized"
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, services.ErrPersonAlreadyClaimed):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
		message = apperrors.ErrServiceUnavailable.Error()
	}

	writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}

func decodeBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", apperrors.ErrValidation)
	}
	return nil
}
