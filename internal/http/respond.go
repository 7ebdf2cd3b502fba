package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pending"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleError maps storefront and backend failures to HTTP status codes.
func handleError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	respondError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	var invalid *domain.InvalidCheckoutState
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "invalid_checkout_state"
	case errors.Is(err, pending.ErrNotInCart):
		return http.StatusNotFound, "not_in_cart"
	case errors.Is(err, pending.ErrAlreadyPending):
		return http.StatusConflict, "already_pending"
	case errors.Is(err, pending.ErrClosed), errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable, "session_closed"
	case errors.Is(err, session.ErrMissingToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, backend.ErrMalformedPayload):
		return http.StatusBadGateway, "bad_gateway"
	}

	switch code := backend.StatusCode(err); {
	case code == http.StatusUnauthorized:
		return http.StatusUnauthorized, "unauthenticated"
	case code == http.StatusForbidden:
		return http.StatusForbidden, "permission_denied"
	case code == http.StatusNotFound:
		return http.StatusNotFound, "not_found"
	case code == http.StatusConflict:
		return http.StatusConflict, "already_exists"
	case code >= 400 && code < 500:
		return http.StatusBadRequest, "invalid_argument"
	case code >= 500:
		return http.StatusBadGateway, "bad_gateway"
	}
	return http.StatusInternalServerError, "internal_error"
}
