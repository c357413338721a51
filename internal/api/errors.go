package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fakturo/invoice-mailer/internal/dispatch"
	"github.com/fakturo/invoice-mailer/internal/invoice"
	"github.com/fakturo/invoice-mailer/internal/sender"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps service-layer errors onto the HTTP taxonomy:
// validation 400, not-found 404, forbidden 403, everything else 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatch.ErrValidation):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, invoice.ErrInvalidTransition):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, sender.ErrNoDomainConfigured):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, invoice.ErrNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, dispatch.ErrForbidden):
		writeJSONError(w, err.Error(), http.StatusForbidden)
	case isValidationError(err):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

func isValidationError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "required"))
}
