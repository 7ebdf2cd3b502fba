package domain

import "github.com/shopspring/decimal"

type CartLineItem struct {
	Product  Product `json:"productId"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price * quantity. A missing price counts as zero here; checkout
// refuses such items instead.
func (i CartLineItem) Subtotal() decimal.Decimal {
	if !i.Product.Price.Valid {
		return decimal.Zero
	}
	return i.Product.Price.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the local view of the user's cart. TotalAmount is always derived
// from Items via Total and never patched incrementally.
type Cart struct {
	Items       []CartLineItem  `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func Total(items []CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// NewCart copies items and computes the total.
func NewCart(items []CartLineItem) Cart {
	copied := make([]CartLineItem, len(items))
	copy(copied, items)
	return Cart{Items: copied, TotalAmount: Total(copied)}
}

func (c Cart) Find(productID string) (CartLineItem, bool) {
	for _, item := range c.Items {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return CartLineItem{}, false
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
