package response

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "payments-dashboard/errors"
)

// SendJSON encodes and sends a JSON response
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// Message sends a bare {"message": ...} body with the given status
func Message(w http.ResponseWriter, statusCode int, message string) {
	SendJSON(w, statusCode, map[string]string{"message": message})
}

// Error maps an application error kind onto an HTTP status and sends the
// error's message
func Error(w http.ResponseWriter, err error) {
	Message(w, StatusCode(err), apperrors.MessageOf(err))
}

// StatusCode resolves the HTTP status for an application error
func StatusCode(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.Invalid:
		return http.StatusBadRequest
	case apperrors.Unauthorized:
		return http.StatusUnauthorized
	case apperrors.Forbidden:
		return http.StatusForbidden
	case apperrors.NotFound:
		return http.StatusNotFound
	case apperrors.Conflict:
		return http.StatusConflict
	case apperrors.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
