package model

import (
	"time"
)

type Product struct {
	ID         string    `json:"id"`
	Code       string    `json:"id_product"` // External device code, globally unique
	CustomerID string    `json:"customer_id"`
	Customer   *User     `json:"customer,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID is the product's owner.
func (p *Product) OwnedBy(userID string) bool {
	return p.CustomerID == userID
}
