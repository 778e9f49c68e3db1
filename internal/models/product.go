package models

import "time"

// LowStockThreshold sert de seuil quand un produit n'a pas de niveau minimum défini.
const LowStockThreshold = 10

type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	Barcode       string           `json:"barcode"`
	Category      string           `json:"category"`
	Price         float64          `json:"price"`      // prix de vente de base
	CostPrice     float64          `json:"cost_price"` // prix d'achat de base
	Stock         int              `json:"stock"`      // somme des stocks variantes si variantes
	MinStockLevel int              `json:"min_stock_level"`
	Image         string           `json:"image,omitempty"`
	Images        []string         `json:"images,omitempty"`
	SupplierID    string           `json:"supplier_id,omitempty"`
	Variants      []ProductVariant `json:"variants,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ProductVariant : combinaison taille/couleur. Price et CostPrice remplacent
// ceux du produit quand ils sont définis.
type ProductVariant struct {
	ID        string   `json:"id"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
	Name      string   `json:"name"` // ex: "M / Blue"
	SKU       string   `json:"sku"`
	Barcode   string   `json:"barcode"`
	Price     *float64 `json:"price,omitempty"`
	CostPrice *float64 `json:"cost_price,omitempty"`
	Stock     int      `json:"stock"`
}

func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// Variant retourne la variante d'identifiant id.
func (p *Product) Variant(id string) (*ProductVariant, bool) {
	if id == "" {
		return nil, false
	}
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

func (p *Product) IsLowStock() bool {
	threshold := p.MinStockLevel
	if threshold <= 0 {
		threshold = LowStockThreshold
	}
	return p.Stock < threshold
}

// SyncStock recalcule le stock produit à partir des variantes.
func (p *Product) SyncStock() {
	if !p.HasVariants() {
		return
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	p.Stock = total
}

// Clone copie le produit en profondeur (variantes, images, pointeurs de prix).
func (p Product) Clone() Product {
	out := p
	if p.Images != nil {
		out.Images = append([]string(nil), p.Images...)
	}
	if p.Variants != nil {
		out.Variants = make([]ProductVariant, len(p.Variants))
		for i, v := range p.Variants {
			out.Variants[i] = v.clone()
		}
	}
	return out
}

func (v ProductVariant) clone() ProductVariant {
	out := v
	if v.Price != nil {
		price := *v.Price
		out.Price = &price
	}
	if v.CostPrice != nil {
		cost := *v.CostPrice
		out.CostPrice = &cost
	}
	return out
}

// ProductInput : formulaire de création / modification d'un produit.
type ProductInput struct {
	Name          string         `json:"name" binding:"required"`
	SKU           string         `json:"sku" binding:"omitempty,min=3"`
	Barcode       string         `json:"barcode" binding:"omitempty,min=8"`
	Category      string         `json:"category" binding:"required"`
	Price         float64        `json:"price" binding:"required,gt=0"`
	CostPrice     float64        `json:"cost_price" binding:"required,gt=0"`
	Stock         int            `json:"stock" binding:"min=0"`
	MinStockLevel int            `json:"min_stock_level" binding:"min=0"`
	Image         string         `json:"image" binding:"omitempty,url"`
	Images        []string       `json:"images" binding:"omitempty,dive,url"`
	SupplierID    string         `json:"supplier_id"`
	HasVariants   bool           `json:"has_variants"`
	Variants      []VariantInput `json:"variants" binding:"omitempty,dive"`
}

type VariantInput struct {
	ID        string   `json:"id"`
	Size      string   `json:"size" binding:"required"`
	Color     string   `json:"color" binding:"required"`
	Name      string   `json:"name"`
	SKU       string   `json:"sku" binding:"omitempty,min=3"`
	Barcode   string   `json:"barcode" binding:"omitempty,min=8"`
	Price     *float64 `json:"price" binding:"omitempty,gt=0"`
	CostPrice *float64 `json:"cost_price" binding:"omitempty,gt=0"`
	Stock     int      `json:"stock" binding:"min=0"`
}
