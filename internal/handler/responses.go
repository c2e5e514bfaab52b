package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages
const (
	ErrMsgInvalidRequest        = "Invalid request. Please check your inputs."
	ErrMsgInvalidRequestSummary = "Request validation failed"
	ErrMsgMissingQueryParam     = "Missing required query parameter: %s"
	ErrMsgGenericServerError    = "Something went wrong"
	ErrMsgPlayerNotFoundError   = "Player not found"
	ErrMsgItemNotFoundError     = "Item not found"
	ErrMsgGroupNotFoundError    = "Group not found"
	ErrMsgNotADefenseError      = "That item is not a defense"
	ErrMsgNoStockError          = "You don't have that item"
	ErrMsgMaintenanceError      = "The game is under maintenance. Please try again later."
)
