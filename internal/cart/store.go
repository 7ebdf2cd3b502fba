// Package cart holds the canonical local view of a user's cart.
package cart

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

const ErrMsgLoadFailed = "Failed to load cart"

// State is an observable snapshot of the Store.
type State struct {
	Cart    domain.Cart
	Loading bool
	Error   string
}

// Store owns the local cart. Every change of the item set goes through Mutate,
// which recomputes the total under the same lock, so no reader ever sees
// items and total out of step.
type Store struct {
	mu      sync.Mutex
	gateway Gateway
	log     *zap.Logger

	cart     domain.Cart
	inflight int
	loadSeq  uint64
	applied  uint64
	err      string
	hidden   map[string]struct{}
}

func NewStore(gateway Gateway, log *zap.Logger) *Store {
	return &Store{
		gateway: gateway,
		log:     log,
		cart:    domain.NewCart(nil),
		hidden:  make(map[string]struct{}),
	}
}

// Load replaces the local cart with the gateway's. On failure the previous
// cart stays in place and the error is recorded on the Store.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.inflight++
	s.loadSeq++
	seq := s.loadSeq
	s.err = ""
	s.mu.Unlock()

	fetched, err := s.gateway.FetchCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if err != nil {
		s.log.Warn("cart load failed, keeping last known cart", zap.Error(err))
		s.err = ErrMsgLoadFailed
		return err
	}
	// A slower, older response must not overwrite a newer one.
	if seq < s.applied {
		return nil
	}
	s.applied = seq

	visible := make([]domain.CartLineItem, 0, len(fetched.Items))
	for _, item := range fetched.Items {
		if _, ok := s.hidden[item.Product.ID]; ok {
			continue
		}
		visible = append(visible, item)
	}
	s.cart = domain.NewCart(dedupe(visible))
	return nil
}

// Mutate applies transform to a copy of the items and recomputes the total
// from the result. transform must not retain the slice it is given.
func (s *Store) Mutate(transform func([]domain.CartLineItem) []domain.CartLineItem) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateLocked(transform)
}

func (s *Store) mutateLocked(transform func([]domain.CartLineItem) []domain.CartLineItem) domain.Cart {
	current := make([]domain.CartLineItem, len(s.cart.Items))
	copy(current, s.cart.Items)
	s.cart = domain.NewCart(dedupe(transform(current)))
	return domain.NewCart(s.cart.Items)
}

// TakeHidden removes productID from the cart and keeps it out of subsequent
// loads until Unhide, in one critical section. It returns the removed line.
func (s *Store) TakeHidden(productID string) (domain.CartLineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cart.Find(productID)
	if !ok {
		return domain.CartLineItem{}, false
	}
	s.hidden[productID] = struct{}{}
	s.mutateLocked(func(items []domain.CartLineItem) []domain.CartLineItem {
		return without(items, productID)
	})
	return item, true
}

// Restore appends item at the end of the cart unless it is already there.
func (s *Store) Restore(item domain.CartLineItem) domain.Cart {
	return s.Mutate(func(items []domain.CartLineItem) []domain.CartLineItem {
		return append(items, item)
	})
}

func (s *Store) Clear() {
	s.Mutate(func([]domain.CartLineItem) []domain.CartLineItem { return nil })
}

// Reset returns the Store to its initial state, as on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = domain.NewCart(nil)
	s.err = ""
	s.hidden = make(map[string]struct{})
}

// Unhide lets productID show up in loads again. Loads already in flight may
// have been fetched before the line changed on the backend, so their results
// are dropped.
func (s *Store) Unhide(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hidden, productID)
	s.loadSeq++
	s.applied = s.loadSeq
}

func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

func (s *Store) ClearError() {
	s.SetError("")
}

func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.NewCart(s.cart.Items)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Cart:    domain.NewCart(s.cart.Items),
		Loading: s.inflight > 0,
		Error:   s.err,
	}
}

func without(items []domain.CartLineItem, productID string) []domain.CartLineItem {
	out := items[:0]
	for _, item := range items {
		if item.Product.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// dedupe keeps the first line for each product id.
func dedupe(items []domain.CartLineItem) []domain.CartLineItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.CartLineItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.Product.ID]; ok {
			continue
		}
		seen[item.Product.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
