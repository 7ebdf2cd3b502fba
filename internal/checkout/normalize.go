package checkout

import (
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const unknownName = "Unknown"

// BuildRequest validates cart and userID and builds a fresh checkout request.
// It never touches the network.
func BuildRequest(cart domain.Cart, userID string) (domain.CheckoutRequest, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.CheckoutRequest{}, &domain.InvalidCheckoutState{Reason: "user id is missing"}
	}
	if cart.IsEmpty() {
		return domain.CheckoutRequest{}, &domain.InvalidCheckoutState{Reason: "cart is empty"}
	}
	items, err := Normalize(cart.Items)
	if err != nil {
		return domain.CheckoutRequest{}, err
	}
	return domain.CheckoutRequest{Items: items, UserID: userID}, nil
}

// Normalize reshapes cart lines into checkout lines. A line without a usable
// price fails the whole batch; it is never priced at zero.
func Normalize(items []domain.CartLineItem) ([]domain.NormalizedLineItem, error) {
	out := make([]domain.NormalizedLineItem, 0, len(items))
	for i, item := range items {
		p := item.Product
		if p.ID == "" {
			return nil, &domain.InvalidCheckoutState{Reason: fmt.Sprintf("line %d has no product id", i+1)}
		}
		if !p.Price.Valid {
			return nil, &domain.InvalidCheckoutState{Reason: fmt.Sprintf("product %s has no price", p.ID)}
		}
		if p.Price.Decimal.IsNegative() {
			return nil, &domain.InvalidCheckoutState{Reason: fmt.Sprintf("product %s has a negative price", p.ID)}
		}
		if item.Quantity < 1 {
			return nil, &domain.InvalidCheckoutState{Reason: fmt.Sprintf("product %s has quantity %d", p.ID, item.Quantity)}
		}

		name := p.Name
		if name == "" {
			name = unknownName
		}
		out = append(out, domain.NormalizedLineItem{
			ProductID: p.ID,
			Name:      name,
			Price:     p.Price.Decimal,
			Quantity:  item.Quantity,
			Image:     p.Image,
		})
	}
	return out, nil
}
