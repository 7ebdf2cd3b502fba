package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const failurePath = "/failure"

type CheckoutHandler struct{}

func NewCheckoutHandler() *CheckoutHandler {
	return &CheckoutHandler{}
}

type ConfirmationResponseDTO struct {
	Success    bool          `json:"success"`
	Order      *domain.Order `json:"order,omitempty"`
	RedirectTo string        `json:"redirectTo"`
	RedirectIn int           `json:"redirectInSeconds"`
}

type FailureResponseDTO struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// navigation records what a workflow asked the user agent to do.
type navigation struct {
	url   string
	delay time.Duration
	err   error
}

func (n *navigation) Redirect(url string) { n.url = url }

func (n *navigation) RedirectAfter(d time.Duration, url string) {
	n.delay = d
	n.url = url
}

func (n *navigation) Fail(err error) { n.err = err }

func (n *navigation) failureURL() string {
	return failurePath + "?reason=" + url.QueryEscape(failureReason(n.err))
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	nav := &navigation{}

	// The failure is already routed through nav.
	_ = s.Checkout().InitiateCurrent(r.Context(), s.User().ID, nav)
	if nav.err != nil {
		http.Redirect(w, r, nav.failureURL(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, nav.url, http.StatusSeeOther)
}

// GET /checkout/success?session_id=
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	nav := &navigation{}

	outcome, _ := s.Payment().Resolve(r.Context(), r.URL.Query().Get("session_id"), nav)
	if nav.err != nil {
		http.Redirect(w, r, nav.failureURL(), http.StatusSeeOther)
		return
	}

	seconds := int(math.Ceil(nav.delay.Seconds()))
	w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", seconds, nav.url))
	respondJSON(w, http.StatusOK, ConfirmationResponseDTO{
		Success:    outcome.Success,
		Order:      outcome.Order,
		RedirectTo: nav.url,
		RedirectIn: seconds,
	})
}

// GET /failure
func (h *CheckoutHandler) Failure(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, FailureResponseDTO{
		Message: "Something went wrong with your order. Your cart has not been charged.",
		Reason:  r.URL.Query().Get("reason"),
	})
}

func failureReason(err error) string {
	var (
		invalid   *domain.InvalidCheckoutState
		initiate  *domain.PaymentInitiationError
		confirmed *domain.ConfirmationError
	)
	switch {
	case errors.As(err, &invalid):
		return "invalid_checkout_state"
	case errors.As(err, &initiate):
		return "payment_initiation_failed"
	case errors.As(err, &confirmed):
		return "confirmation_failed"
	}
	return "unknown"
}
