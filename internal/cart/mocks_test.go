package cart

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// mockGateway implements Gateway for testing
type mockGateway struct {
	m       sync.Mutex
	cart    domain.Cart
	err     error
	fetches int
	// block, when set, holds FetchCart until a value is sent.
	block chan struct{}
}

func (g *mockGateway) FetchCart(ctx context.Context) (domain.Cart, error) {
	if g.block != nil {
		<-g.block
	}
	g.m.Lock()
	defer g.m.Unlock()
	g.fetches++
	if g.err != nil {
		return domain.Cart{}, &domain.SyncError{Op: "fetch", Err: g.err}
	}
	return domain.NewCart(g.cart.Items), nil
}

func (g *mockGateway) RemoveItem(context.Context, string) error {
	return nil
}

// mockBackend implements Backend for testing
type mockBackend struct {
	items     []domain.CartLineItem
	err       error
	removedID string
	addedID   string
	addedQty  int
}

func (b *mockBackend) GetCart(context.Context) ([]domain.CartLineItem, error) {
	return b.items, b.err
}

func (b *mockBackend) AddToCart(_ context.Context, productID string, quantity int) error {
	b.addedID, b.addedQty = productID, quantity
	return b.err
}

func (b *mockBackend) RemoveFromCart(_ context.Context, productID string) error {
	b.removedID = productID
	return b.err
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
