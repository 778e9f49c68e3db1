package models

// CartItem : un produit du panier avec sa quantité et la variante choisie.
// L'identité d'une ligne est le couple (ID produit, SelectedVariantID).
type CartItem struct {
	Product
	Quantity          int    `json:"quantity"`
	SelectedVariantID string `json:"selected_variant_id,omitempty"`
}

// SelectedVariant retourne la variante choisie si elle existe dans le produit.
func (i *CartItem) SelectedVariant() (*ProductVariant, bool) {
	return i.Product.Variant(i.SelectedVariantID)
}

func (i CartItem) Clone() CartItem {
	out := i
	out.Product = i.Product.Clone()
	return out
}
