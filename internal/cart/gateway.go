package cart

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Gateway is the narrow view of the backend cart resource the Store and the
// pending-delete manager depend on. Every error it returns is a
// *domain.SyncError.
type Gateway interface {
	FetchCart(ctx context.Context) (domain.Cart, error)
	RemoveItem(ctx context.Context, productID string) error
}

// Backend is the subset of backend.Client used by SyncGateway.
type Backend interface {
	GetCart(ctx context.Context) ([]domain.CartLineItem, error)
	AddToCart(ctx context.Context, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, productID string) error
}

// SyncGateway adapts the backend client and normalizes its failures into
// SyncError so no transport error leaks past this package.
type SyncGateway struct {
	backend Backend
}

func NewSyncGateway(b Backend) *SyncGateway {
	return &SyncGateway{backend: b}
}

func (g *SyncGateway) FetchCart(ctx context.Context) (domain.Cart, error) {
	items, err := g.backend.GetCart(ctx)
	if err != nil {
		return domain.Cart{}, &domain.SyncError{Op: "fetch", Err: err}
	}
	return domain.NewCart(items), nil
}

func (g *SyncGateway) RemoveItem(ctx context.Context, productID string) error {
	if err := g.backend.RemoveFromCart(ctx, productID); err != nil {
		return &domain.SyncError{Op: "remove " + productID, Err: err}
	}
	return nil
}

func (g *SyncGateway) AddItem(ctx context.Context, productID string, quantity int) error {
	if err := g.backend.AddToCart(ctx, productID, quantity); err != nil {
		return &domain.SyncError{Op: "add " + productID, Err: err}
	}
	return nil
}
