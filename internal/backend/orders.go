package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type updateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAllOrders is the admin view over every user's orders.
func (c *Client) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	if err := c.do(ctx, http.MethodGet, "/orders/all", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(orderID), updateOrderStatusRequest{Status: status}, nil)
}
