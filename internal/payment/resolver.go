// Package payment resolves the outcome of an external payment session once
// the user returns from the payment processor.
package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/mirror"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultDisplayDelay = 3 * time.Second
	DefaultTimeout      = 15 * time.Second
	// OrdersPath is the order history route shown after a confirmed payment.
	OrdersPath = "/api/v1/orders"
)

var (
	ErrMissingSession = errors.New("payment session id is missing")
	ErrNotConfirmed   = errors.New("payment was not confirmed")
)

type Backend interface {
	ConfirmPayment(ctx context.Context, sessionID string) (domain.ConfirmationOutcome, error)
	GetOrderBySession(ctx context.Context, sessionID string) (domain.Order, error)
}

type Store interface {
	Clear()
}

// Navigator performs the user-facing outcome of a confirmation.
type Navigator interface {
	// RedirectAfter shows the success view and moves to url after d.
	RedirectAfter(d time.Duration, url string)
	// Fail shows the terminal failure view.
	Fail(err error)
}

type Config struct {
	DisplayDelay time.Duration
	// Timeout bounds one shared confirmation exchange. It does not follow
	// the cancellation of whichever caller started the exchange.
	Timeout time.Duration
	// MirrorKey is the key of the session's "cart cleared" flag.
	MirrorKey string
}

// Resolver confirms payment sessions for one user session. Concurrent calls
// for the same session id share one backend exchange.
type Resolver struct {
	backend Backend
	store   Store
	mirror  mirror.Mirror
	cfg     Config
	log     *zap.Logger
	group   singleflight.Group
}

func NewResolver(backend Backend, store Store, m mirror.Mirror, cfg Config, log *zap.Logger) *Resolver {
	if cfg.DisplayDelay <= 0 {
		cfg.DisplayDelay = DefaultDisplayDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Resolver{
		backend: backend,
		store:   store,
		mirror:  m,
		cfg:     cfg,
		log:     log,
	}
}

// Resolve confirms sessionID with the backend. The backend owns the order
// state; a failure here is reported, never retried.
func (r *Resolver) Resolve(ctx context.Context, sessionID string, nav Navigator) (domain.ConfirmationOutcome, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		err := &domain.ConfirmationError{Err: ErrMissingSession}
		nav.Fail(err)
		return domain.ConfirmationOutcome{}, err
	}

	v, err, shared := r.group.Do(sessionID, func() (interface{}, error) {
		// Followers share this call, so one caller going away must not
		// fail it for the rest.
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.Timeout)
		defer cancel()
		return r.confirm(flightCtx, sessionID)
	})
	if err != nil {
		r.log.Warn("payment confirmation failed",
			zap.String("session_id", sessionID),
			zap.Bool("shared", shared),
			zap.Error(err))
		nav.Fail(err)
		return domain.ConfirmationOutcome{}, err
	}

	outcome := v.(domain.ConfirmationOutcome)
	nav.RedirectAfter(r.cfg.DisplayDelay, OrdersPath)
	return outcome, nil
}

func (r *Resolver) confirm(ctx context.Context, sessionID string) (domain.ConfirmationOutcome, error) {
	outcome, err := r.backend.ConfirmPayment(ctx, sessionID)
	if err != nil {
		return domain.ConfirmationOutcome{}, &domain.ConfirmationError{SessionID: sessionID, Err: err}
	}
	if !outcome.Success {
		return domain.ConfirmationOutcome{}, &domain.ConfirmationError{SessionID: sessionID, Err: ErrNotConfirmed}
	}

	if outcome.Order == nil {
		order, err := r.backend.GetOrderBySession(ctx, sessionID)
		if err != nil {
			r.log.Info("order lookup after confirmation failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
		} else {
			outcome.Order = &order
		}
	}

	r.store.Clear()
	if err := r.mirror.MarkCleared(ctx, r.cfg.MirrorKey); err != nil {
		r.log.Warn("cart mirror update failed", zap.String("key", r.cfg.MirrorKey), zap.Error(err))
	}

	fields := []zap.Field{zap.String("session_id", sessionID)}
	if outcome.Order != nil {
		fields = append(fields, zap.String("order_id", outcome.Order.ID))
	}
	r.log.Info("payment confirmed", fields...)
	return outcome, nil
}
