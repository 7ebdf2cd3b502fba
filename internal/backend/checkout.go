package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type confirmPaymentRequest struct {
	SessionID string `json:"sessionId"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	var session domain.CheckoutSession
	err := c.do(ctx, http.MethodPost, "/checkout", req, &session)
	return session, err
}

func (c *Client) ConfirmPayment(ctx context.Context, sessionID string) (domain.ConfirmationOutcome, error) {
	var outcome domain.ConfirmationOutcome
	err := c.do(ctx, http.MethodPost, "/checkout/confirm-payment", confirmPaymentRequest{SessionID: sessionID}, &outcome)
	return outcome, err
}

func (c *Client) GetOrderBySession(ctx context.Context, sessionID string) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodGet, "/orders/session/"+url.PathEscape(sessionID), nil, &order)
	return order, err
}
