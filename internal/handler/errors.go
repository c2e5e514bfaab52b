package handler

import (
	"errors"
	"net/http"

	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/logger"
)

// mapServiceErrorToUserMessage converts a domain error into an HTTP status
// and a user-facing message without leaking internals.
func mapServiceErrorToUserMessage(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound, ErrMsgPlayerNotFoundError
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, ErrMsgItemNotFoundError
	case errors.Is(err, domain.ErrGroupNotFound):
		return http.StatusNotFound, ErrMsgGroupNotFoundError
	case errors.Is(err, domain.ErrNotADefense):
		return http.StatusBadRequest, ErrMsgNotADefenseError
	case errors.Is(err, domain.ErrNoStock):
		return http.StatusConflict, ErrMsgNoStockError
	case errors.Is(err, domain.ErrAlreadyMember):
		return http.StatusConflict, domain.ErrMsgAlreadyMember
	case errors.Is(err, domain.ErrNotGroupMember):
		return http.StatusConflict, domain.ErrMsgNotGroupMember
	case errors.Is(err, domain.ErrMaintenance):
		return http.StatusServiceUnavailable, ErrMsgMaintenanceError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequest
	default:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}
}

// respondServiceError logs and maps a service error to the client
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	logger.FromContext(r.Context()).Error(opName+" failed", "error", err)
	status, msg := mapServiceErrorToUserMessage(err)
	respondError(w, status, msg)
}
