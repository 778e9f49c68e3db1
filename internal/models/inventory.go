package models

import "time"

type MovementType string

const (
	MovementSale    MovementType = "sale"
	MovementRestock MovementType = "restock"
)

type StockMovement struct {
	ID        string       `json:"id"`
	ProductID string       `json:"product_id"`
	VariantID string       `json:"variant_id,omitempty"`
	Type      MovementType `json:"type"`
	Quantity  int          `json:"quantity"`
	PrevStock int          `json:"prev_stock"`
	NewStock  int          `json:"new_stock"`
	Reference string       `json:"reference"` // ID commande ou bon d'achat
	CreatedAt time.Time    `json:"created_at"`
}
