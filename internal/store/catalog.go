package store

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"pos_back_end/internal/models"
)

func newPurchaseID() string {
	return fmt.Sprintf("PO-%06d", rand.IntN(1_000_000))
}

// NewSKU : "SKU-" suivi de 6 caractères alphanumériques.
func NewSKU() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return "SKU-" + string(b)
}

// NewBarcode : 12 chiffres.
func NewBarcode() string {
	return fmt.Sprintf("%012d", rand.Int64N(1_000_000_000_000))
}

// ProductFromInput construit un produit à partir du formulaire.
// SKU et code-barres manquants sont générés ; avec variantes, le stock est leur somme.
func ProductFromInput(in models.ProductInput) models.Product {
	p := models.Product{
		Name:          strings.TrimSpace(in.Name),
		SKU:           strings.TrimSpace(in.SKU),
		Barcode:       strings.TrimSpace(in.Barcode),
		Category:      strings.TrimSpace(in.Category),
		Price:         in.Price,
		CostPrice:     in.CostPrice,
		Stock:         in.Stock,
		MinStockLevel: in.MinStockLevel,
		Image:         in.Image,
		Images:        in.Images,
		SupplierID:    in.SupplierID,
	}
	if p.SKU == "" {
		p.SKU = NewSKU()
	}
	if p.Barcode == "" {
		p.Barcode = NewBarcode()
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}

	if in.HasVariants {
		for _, vi := range in.Variants {
			v := models.ProductVariant{
				ID:        vi.ID,
				Size:      vi.Size,
				Color:     vi.Color,
				Name:      vi.Name,
				SKU:       vi.SKU,
				Barcode:   vi.Barcode,
				Price:     vi.Price,
				CostPrice: vi.CostPrice,
				Stock:     vi.Stock,
			}
			if v.ID == "" {
				v.ID = uuid.NewString()
			}
			if v.Name == "" {
				v.Name = variantName(v.Size, v.Color)
			}
			if v.SKU == "" {
				v.SKU = variantSKU(p.SKU, v.Size, v.Color)
			}
			if v.Barcode == "" {
				v.Barcode = variantBarcode(p.Barcode, v.Size, v.Color)
			}
			p.Variants = append(p.Variants, v)
		}
		p.SyncStock()
	}
	return p
}

// VariantRequest : paramètres de génération de la grille taille x couleur.
type VariantRequest struct {
	BaseSKU     string                  `json:"base_sku" binding:"required"`
	BaseBarcode string                  `json:"base_barcode" binding:"required"`
	Price       float64                 `json:"price" binding:"required,gt=0"`
	CostPrice   float64                 `json:"cost_price" binding:"required,gt=0"`
	Sizes       []string                `json:"sizes" binding:"required,min=1"`
	Colors      []string                `json:"colors" binding:"required,min=1"`
	Existing    []models.ProductVariant `json:"existing"`
}

// GenerateVariants crée une variante par couple taille/couleur absent de Existing.
// Les variantes héritent du prix et du coût de base, avec un stock à 0.
func GenerateVariants(req VariantRequest) []models.ProductVariant {
	type pair struct{ size, color string }
	existing := make(map[pair]struct{}, len(req.Existing))
	for _, v := range req.Existing {
		existing[pair{v.Size, v.Color}] = struct{}{}
	}

	out := []models.ProductVariant{}
	for _, size := range req.Sizes {
		size = strings.TrimSpace(size)
		for _, color := range req.Colors {
			color = strings.TrimSpace(color)
			if size == "" || color == "" {
				continue
			}
			if _, ok := existing[pair{size, color}]; ok {
				continue
			}
			existing[pair{size, color}] = struct{}{}

			price, cost := req.Price, req.CostPrice
			out = append(out, models.ProductVariant{
				ID:        uuid.NewString(),
				Size:      size,
				Color:     color,
				Name:      variantName(size, color),
				SKU:       variantSKU(req.BaseSKU, size, color),
				Barcode:   variantBarcode(req.BaseBarcode, size, color),
				Price:     &price,
				CostPrice: &cost,
			})
		}
	}
	return out
}

func variantName(size, color string) string {
	return size + " / " + color
}

// SKU-123-M-BLU
func variantSKU(base, size, color string) string {
	code := []rune(strings.ToUpper(color))
	if len(code) > 3 {
		code = code[:3]
	}
	return fmt.Sprintf("%s-%s-%s", base, size, string(code))
}

func variantBarcode(base, size, color string) string {
	initial := ""
	if r := []rune(color); len(r) > 0 {
		initial = string(r[0])
	}
	return base + size + initial
}
