// Package session owns the per-user cart state: one Store, one pending-delete
// manager and the checkout and payment workflows bound to them.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/mirror"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/pending"
	"go.uber.org/zap"
)

type Session struct {
	user     domain.User
	store    *cart.Store
	gateway  *cart.SyncGateway
	pending  *pending.Manager
	checkout *checkout.Initiator
	payment  *payment.Resolver
	mirror   mirror.Mirror
	log      *zap.Logger

	mu       sync.Mutex
	token    string
	lastSeen time.Time
}

func (s *Session) User() domain.User             { return s.user }
func (s *Session) Store() *cart.Store            { return s.store }
func (s *Session) Pending() *pending.Manager     { return s.pending }
func (s *Session) Checkout() *checkout.Initiator { return s.checkout }
func (s *Session) Payment() *payment.Resolver    { return s.payment }

// AddItem adds quantity of productID on the backend and reloads the cart. A
// line still inside its undo window is restored first.
func (s *Session) AddItem(ctx context.Context, productID string, quantity int) error {
	if s.pending.State(productID) == pending.StatePendingRemoval {
		s.pending.Undo(productID)
	}
	if err := s.gateway.AddItem(ctx, productID, quantity); err != nil {
		s.log.Warn("add to cart failed", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	return s.store.Load(ctx)
}

// RecentlyCheckedOut reports the mirror's "cart cleared" hint. Mirror
// failures read as false.
func (s *Session) RecentlyCheckedOut(ctx context.Context) bool {
	ok, err := s.mirror.Cleared(ctx, s.user.ID)
	if err != nil {
		s.log.Warn("cart mirror read failed", zap.Error(err))
		return false
	}
	return ok
}

func (s *Session) touch(token string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.lastSeen = now
}

func (s *Session) seen() (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.lastSeen
}
