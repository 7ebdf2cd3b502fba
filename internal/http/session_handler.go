package http

import (
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/session"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions Sessions
	log      *zap.Logger
}

func NewSessionHandler(sessions Sessions, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		log:      log,
	}
}

// GET /api/v1/me
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, getSession(r.Context()).User())
}

// POST /api/v1/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := getSession(r.Context()).User()
	if err := h.sessions.End(r.Context(), user.ID); err != nil && !errors.Is(err, session.ErrNoSession) {
		// Logout still succeeds; the cart error was recorded on the way out.
		h.log.Warn("logout flushed with errors", zap.String("user_id", user.ID), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
