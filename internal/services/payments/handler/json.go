package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"stripe-payment-gateway/internal/services/payments"
	"stripe-payment-gateway/internal/services/payments/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}

// writeAppError renders err using its kind; only the safe message is exposed.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *payments.Error
	if errors.As(err, &appErr) {
		writeError(w, appErr.Kind.Status(), appErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return json.NewDecoder(r.Body).Decode(dst)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
