package models

import "time"

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseReceived  PurchaseStatus = "received"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

type PurchaseItem struct {
	ProductID string  `json:"product_id" binding:"required"`
	VariantID string  `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	CostPrice float64 `json:"cost_price" binding:"required,gt=0"`
}

// PurchaseOrder : bon de commande fournisseur (entrée de stock).
type PurchaseOrder struct {
	ID          string         `json:"id"`
	SupplierID  string         `json:"supplier_id"`
	Items       []PurchaseItem `json:"items"`
	TotalAmount float64        `json:"total_amount"`
	Status      PurchaseStatus `json:"status"`
	ReceivedAt  *time.Time     `json:"received_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type PurchaseInput struct {
	SupplierID string         `json:"supplier_id" binding:"required"`
	Items      []PurchaseItem `json:"items" binding:"required,min=1,dive"`
	Status     PurchaseStatus `json:"status" binding:"omitempty,oneof=pending received"`
}

// PurchaseTotal = somme quantité x coût.
func PurchaseTotal(items []PurchaseItem) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.CostPrice
	}
	return total
}
