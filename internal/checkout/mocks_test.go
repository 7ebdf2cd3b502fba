package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// mockBackend implements Backend for testing
type mockBackend struct {
	mu      sync.Mutex
	session domain.CheckoutSession
	err     error
	calls   int
	last    domain.CheckoutRequest
}

func (b *mockBackend) CreateCheckoutSession(_ context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.last = req
	return b.session, b.err
}

// mockStore implements Store for testing
type mockStore struct {
	cart    domain.Cart
	cleared int
}

func (s *mockStore) Snapshot() domain.Cart { return s.cart }

func (s *mockStore) Clear() {
	s.cleared++
	s.cart = domain.NewCart(nil)
}

// recordingNavigator captures what the user would see
type recordingNavigator struct {
	redirects []string
	failures  []error
}

func (n *recordingNavigator) Redirect(url string) { n.redirects = append(n.redirects, url) }
func (n *recordingNavigator) Fail(err error)      { n.failures = append(n.failures, err) }

// mockMirror implements mirror.Mirror for testing
type mockMirror struct {
	marked map[string]bool
	err    error
}

func newMockMirror() *mockMirror { return &mockMirror{marked: map[string]bool{}} }

func (m *mockMirror) MarkCleared(_ context.Context, key string) error {
	if m.err != nil {
		return m.err
	}
	m.marked[key] = true
	return nil
}

func (m *mockMirror) Cleared(_ context.Context, key string) (bool, error) {
	return m.marked[key], nil
}

func (m *mockMirror) Forget(_ context.Context, key string) error {
	delete(m.marked, key)
	return nil
}

func line(id, name, price string, qty int) domain.CartLineItem {
	p := domain.Product{ID: id, Name: name}
	if price != "" {
		p.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	return domain.CartLineItem{Product: p, Quantity: qty}
}
