// Package checkout turns the current cart into a payment session and hands
// the user off to the payment processor.
package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/mirror"
	"go.uber.org/zap"
)

var (
	ErrNoPaymentURL      = errors.New("backend returned no payment url")
	ErrInvalidPaymentURL = errors.New("backend returned an invalid payment url")
)

type Backend interface {
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error)
}

type Store interface {
	Snapshot() domain.Cart
	Clear()
}

// Navigator performs the user-facing outcome of a checkout attempt.
type Navigator interface {
	// Redirect is a full navigation away from the storefront.
	Redirect(url string)
	// Fail shows the terminal failure view.
	Fail(err error)
}

type Initiator struct {
	backend Backend
	store   Store
	mirror  mirror.Mirror
	log     *zap.Logger
}

func NewInitiator(backend Backend, store Store, m mirror.Mirror, log *zap.Logger) *Initiator {
	return &Initiator{
		backend: backend,
		store:   store,
		mirror:  m,
		log:     log,
	}
}

// InitiateCurrent checks out the Store's current snapshot.
func (i *Initiator) InitiateCurrent(ctx context.Context, userID string, nav Navigator) error {
	return i.Initiate(ctx, i.store.Snapshot(), userID, nav)
}

// Initiate requests a payment session for cart and redirects to it. The local
// cart is cleared only once a usable payment URL is in hand; on any failure
// it is left as it was.
func (i *Initiator) Initiate(ctx context.Context, cart domain.Cart, userID string, nav Navigator) error {
	req, err := BuildRequest(cart, userID)
	if err != nil {
		i.log.Info("checkout rejected before payment request", zap.String("user_id", userID), zap.Error(err))
		nav.Fail(err)
		return err
	}

	session, err := i.backend.CreateCheckoutSession(ctx, req)
	if err == nil {
		err = validatePaymentURL(session.URL)
	}
	if err != nil {
		perr := &domain.PaymentInitiationError{Err: err}
		i.log.Warn("payment session creation failed", zap.String("user_id", userID), zap.Error(err))
		nav.Fail(perr)
		return perr
	}

	i.store.Clear()
	if err := i.mirror.MarkCleared(ctx, userID); err != nil {
		i.log.Warn("cart mirror update failed", zap.String("user_id", userID), zap.Error(err))
	}
	i.log.Info("checkout handed off to payment processor",
		zap.String("user_id", userID),
		zap.Int("items", len(req.Items)))
	nav.Redirect(session.URL)
	return nil
}

func validatePaymentURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrNoPaymentURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return ErrInvalidPaymentURL
	}
	return nil
}
