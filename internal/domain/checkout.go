package domain

import "github.com/shopspring/decimal"

// NormalizedLineItem is the exact line shape the checkout endpoint expects.
type NormalizedLineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

type CheckoutRequest struct {
	Items  []NormalizedLineItem `json:"items"`
	UserID string               `json:"userId"`
}

type CheckoutSession struct {
	URL string `json:"url"`
}

type ConfirmationOutcome struct {
	Success bool   `json:"success"`
	Order   *Order `json:"order,omitempty"`
}
