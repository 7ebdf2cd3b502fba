package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// GetCart fetches GET /cart. A body whose "items" is missing or not an array
// is reported as ErrMalformedPayload rather than an empty cart.
func (c *Client) GetCart(ctx context.Context) ([]domain.CartLineItem, error) {
	var raw struct {
		Items json.RawMessage `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw.Items)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: cart items missing or not an array", ErrMalformedPayload)
	}
	var items []domain.CartLineItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: decode cart items: %v", ErrMalformedPayload, err)
	}
	return items, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) error {
	return c.do(ctx, http.MethodPost, "/cart", addToCartRequest{ProductID: productID, Quantity: quantity}, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil, nil)
}
