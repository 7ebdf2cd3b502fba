package pending

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// fakeClock implements Clock; timers fire only from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// serverCart implements cart.Gateway over an in-memory server-side cart.
type serverCart struct {
	m         sync.Mutex
	items     []domain.CartLineItem
	removeErr error
	removals  map[string]int
	fetches   int
}

func newServerCart(items ...domain.CartLineItem) *serverCart {
	return &serverCart{items: items, removals: make(map[string]int)}
}

func (s *serverCart) FetchCart(context.Context) (domain.Cart, error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.fetches++
	return domain.NewCart(s.items), nil
}

func (s *serverCart) RemoveItem(_ context.Context, productID string) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.removals[productID]++
	if s.removeErr != nil {
		return &domain.SyncError{Op: "remove " + productID, Err: s.removeErr}
	}
	kept := s.items[:0]
	for _, item := range s.items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return nil
}

func (s *serverCart) add(item domain.CartLineItem) {
	s.m.Lock()
	defer s.m.Unlock()
	s.items = append(s.items, item)
}

func (s *serverCart) removalCount(productID string) int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.removals[productID]
}

func (s *serverCart) fetchCount() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.fetches
}

func line(id, price string, qty int) domain.CartLineItem {
	return domain.CartLineItem{
		Product: domain.Product{
			ID:    id,
			Name:  "product " + id,
			Price: decimal.NewNullDecimal(decimal.RequireFromString(price)),
		},
		Quantity: qty,
	}
}
