package cart

import (
	"errors"

	"pos_back_end/internal/models"
)

// Un produit décliné se vend toujours par variante.
var (
	ErrUnknownVariant  = errors.New("variante inconnue pour ce produit")
	ErrItemNotFound    = errors.New("article absent du panier")
	ErrVariantRequired = errors.New("variante requise pour ce produit")
	ErrOutOfStock      = errors.New("variante en rupture de stock")
)

// Key identifie une ligne du panier : le même produit avec deux variantes
// différentes donne deux lignes distinctes.
type Key struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
}

func KeyOf(item models.CartItem) Key {
	return Key{ProductID: item.ID, VariantID: item.SelectedVariantID}
}

type Cart struct {
	Items []models.CartItem `json:"items"`
}

func (c *Cart) find(k Key) int {
	for i := range c.Items {
		if KeyOf(c.Items[i]) == k {
			return i
		}
	}
	return -1
}

// AddItem ajoute une unité du produit (et de la variante choisie).
func (c *Cart) AddItem(p models.Product, variantID string) error {
	if variantID == "" && p.HasVariants() {
		return ErrVariantRequired
	}
	if variantID != "" {
		v, ok := p.Variant(variantID)
		if !ok {
			return ErrUnknownVariant
		}
		if v.Stock <= 0 {
			return ErrOutOfStock
		}
	}

	k := Key{ProductID: p.ID, VariantID: variantID}
	if i := c.find(k); i >= 0 {
		c.Items[i].Quantity++
		return nil
	}

	c.Items = append(c.Items, models.CartItem{
		Product:           p.Clone(),
		Quantity:          1,
		SelectedVariantID: variantID,
	})
	return nil
}

func (c *Cart) RemoveItem(k Key) bool {
	i := c.find(k)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// UpdateQuantity fixe la quantité d'une ligne. Une quantité <= 0 supprime la ligne.
func (c *Cart) UpdateQuantity(k Key, quantity int) bool {
	i := c.find(k)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = quantity
	return true
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Total = somme prix effectif x quantité.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += UnitPrice(item) * float64(item.Quantity)
	}
	return total
}

// Count retourne le nombre d'unités.
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Snapshot copie les lignes pour une commande.
func (c Cart) Snapshot() []models.CartItem {
	out := make([]models.CartItem, len(c.Items))
	for i, item := range c.Items {
		out[i] = item.Clone()
	}
	return out
}
