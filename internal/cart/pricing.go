package cart

import "pos_back_end/internal/models"

// UnitPrice : prix de la variante s'il est défini, sinon prix de base du produit.
func UnitPrice(item models.CartItem) float64 {
	if v, ok := item.SelectedVariant(); ok && v.Price != nil {
		return *v.Price
	}
	return item.Price
}

func UnitCost(item models.CartItem) float64 {
	if v, ok := item.SelectedVariant(); ok && v.CostPrice != nil {
		return *v.CostPrice
	}
	return item.CostPrice
}

// DisplayName ajoute le nom de variante au nom du produit ("T-Shirt (M / Blue)").
func DisplayName(item models.CartItem) string {
	if v, ok := item.SelectedVariant(); ok && v.Name != "" {
		return item.Name + " (" + v.Name + ")"
	}
	return item.Name
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	TaxRate  float64 `json:"tax_rate"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Cost     float64 `json:"cost"`
	Profit   float64 `json:"profit"`
	Items    int     `json:"items"`
}

// Compute calcule les montants d'un encaissement.
// taxRate est un pourcentage ; profit = total - coût - taxe.
func Compute(items []models.CartItem, taxRate float64) Totals {
	t := Totals{TaxRate: taxRate}
	for _, item := range items {
		qty := float64(item.Quantity)
		t.Subtotal += UnitPrice(item) * qty
		t.Cost += UnitCost(item) * qty
		t.Items += item.Quantity
	}
	t.Tax = t.Subtotal * taxRate / 100
	t.Total = t.Subtotal + t.Tax
	t.Profit = t.Total - t.Cost - t.Tax
	return t
}
