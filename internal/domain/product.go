package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is a product snapshot as the backend reported it when the item was
// added or last synced. Price and stock may be stale.
type Product struct {
	ID    string              `json:"_id"`
	Name  string              `json:"name"`
	Price decimal.NullDecimal `json:"price"`
	Image string              `json:"image,omitempty"`
	Stock int                 `json:"stock"`
}

// UnmarshalJSON accepts both the document style "_id" and a plain "id".
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Product(aux.plain)
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

func (u User) IsAdmin() bool {
	return u.Role == "admin"
}
