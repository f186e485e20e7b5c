package web

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-transfers/components/admin"
	"github.com/goliatone/go-transfers/components/chat"
	"github.com/goliatone/go-transfers/components/session"
)

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, admin.ErrInvalidCredentials),
		errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, chat.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, admin.ErrNotFound),
		errors.Is(err, admin.ErrUnknownCollection),
		errors.Is(err, chat.ErrUserNotFound),
		errors.Is(err, chat.ErrConversationNotFound),
		errors.Is(err, chat.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, admin.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, admin.ErrInvalidStatus),
		errors.Is(err, admin.ErrUnknownAction),
		errors.Is(err, admin.ErrInvalidPromotion),
		errors.Is(err, admin.ErrInvalidCurrency),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrSelfConversation),
		errors.Is(err, session.ErrInvalidRole):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error string `json:"error"`
}
