package web

// errors.go provides unified error response handling for the web layer.
//
// Errors are logged with their technical detail and the request ID, then
// returned as the operator message of core.MapError: JSON for API routes and
// clients asking for it, plain text otherwise.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/holidaycal/internal/core"
	"github.com/JonMunkholm/holidaycal/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status of a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrRunInProgress):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrRunNotFound), errors.Is(err, core.ErrCountryNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and answers with its operator message.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	respondMessage(w, r, userMsg, statusCode)
}

// writeError answers with a message that has no underlying error, such as a
// malformed request.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message, action string) {
	logging.FromContext(r.Context()).Warn("request rejected",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"code", code,
		"message", message,
	)
	respondMessage(w, r, core.UserMessage{Message: message, Action: action, Code: code}, statusCode)
}

func respondMessage(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	if wantsJSON(r) {
		respondErrorJSON(w, msg, statusCode)
	} else {
		respondErrorText(w, msg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorText writes a plain text error response.
func respondErrorText(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
