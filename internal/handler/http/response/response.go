package response

import (
	"encoding/json"
	"net/http"
)

// Response is the error envelope.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Message is a body that carries only a message.
type Message struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fallback := Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "ENCODING_ERROR",
				Message: "Failed to encode response",
			},
		}
		_ = json.NewEncoder(w).Encode(fallback)
	}
}

// Success responses
func OK(w http.ResponseWriter, payload interface{}) {
	writeJSON(w, http.StatusOK, payload)
}

func Created(w http.ResponseWriter, payload interface{}) {
	writeJSON(w, http.StatusCreated, payload)
}

func SuccessWithMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Message{Message: message})
}

// Error responses
func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, Response{
		Success: false,
		Message: message,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	writeError(w, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func ValidationError(w http.ResponseWriter, message string, details map[string]string) {
	writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", message, details)
}

// Conflict uses 400 so clients treat a taken email like any other rejected
// field.
func Conflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "CONFLICT", message, nil)
}

func Unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, "FORBIDDEN", message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func Timeout(w http.ResponseWriter, message string) {
	writeError(w, http.StatusGatewayTimeout, "TIMEOUT", message, nil)
}

// StatusClientClosedRequest is the nginx convention for a client that went away.
const StatusClientClosedRequest = 499

func Canceled(w http.ResponseWriter, message string) {
	writeError(w, StatusClientClosedRequest, "REQUEST_CANCELED", message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}
