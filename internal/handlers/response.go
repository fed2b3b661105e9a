package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// ErrorResponse is the body of every non-2xx answer from the console API.
// Code is the snake-cased status text so the UI can branch without parsing
// the message.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON encodes body with the given status
func WriteJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode JSON response", "status", status, "error", err)
	}
}

// WriteError answers with an ErrorResponse
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: message, Code: statusCode(status)}, logger)
}

func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
