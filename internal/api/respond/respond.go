package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/curionet/curio/internal/model"
)

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// WriteError writes a standardized error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteDomainError maps a domain error to its HTTP status via the error
// taxonomy and writes it.
func WriteDomainError(w http.ResponseWriter, err error) {
	WriteError(w, StatusOf(err), err.Error())
}

// StatusOf resolves the HTTP status for a domain error.
func StatusOf(err error) int {
	if errors.Is(err, model.ErrNotFound) {
		return http.StatusNotFound
	}
	switch model.KindOf(err) {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindAuthorization:
		return http.StatusForbidden
	case model.KindState:
		return http.StatusConflict
	case model.KindCapacity:
		return http.StatusTooManyRequests
	case model.KindPayment:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
