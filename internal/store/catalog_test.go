package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos_back_end/internal/models"
)

func TestGenerateVariants(t *testing.T) {
	variants := GenerateVariants(VariantRequest{
		BaseSKU:     "SKU-TS",
		BaseBarcode: "12345678",
		Price:       25,
		CostPrice:   10,
		Sizes:       []string{"S", "M"},
		Colors:      []string{"Blue", "Red"},
		Existing:    []models.ProductVariant{{Size: "S", Color: "Blue"}},
	})

	require.Len(t, variants, 3)
	v := variants[0]
	assert.Equal(t, "S / Red", v.Name)
	assert.Equal(t, "SKU-TS-S-RED", v.SKU)
	assert.Equal(t, "12345678SR", v.Barcode)
	assert.InDelta(t, 25.0, *v.Price, 1e-9)
	assert.InDelta(t, 10.0, *v.CostPrice, 1e-9)
	assert.Zero(t, v.Stock)
	assert.NotEmpty(t, v.ID)

	assert.Equal(t, "SKU-TS-M-BLU", variants[1].SKU)
	assert.Equal(t, "M / Red", variants[2].Name)
}

func TestProductFromInput(t *testing.T) {
	p := ProductFromInput(models.ProductInput{
		Name:        "  Hoodie ",
		Category:    "Clothing",
		Price:       50,
		CostPrice:   20,
		Stock:       99,
		HasVariants: true,
		Variants: []models.VariantInput{
			{Size: "M", Color: "Black", Stock: 3},
			{Size: "L", Color: "Black", Name: "Large black", Stock: 4},
		},
	})

	assert.Equal(t, "Hoodie", p.Name)
	assert.Regexp(t, `^SKU-[A-Z0-9]{6}$`, p.SKU)
	assert.Regexp(t, `^\d{12}$`, p.Barcode)
	assert.Equal(t, 7, p.Stock)
	require.Len(t, p.Variants, 2)
	assert.Equal(t, "M / Black", p.Variants[0].Name)
	assert.Equal(t, p.SKU+"-M-BLA", p.Variants[0].SKU)
	assert.Equal(t, p.Barcode+"MB", p.Variants[0].Barcode)
	assert.Equal(t, "Large black", p.Variants[1].Name)
	assert.Nil(t, p.Variants[0].Price)
}

func TestProductFromInputWithoutVariants(t *testing.T) {
	p := ProductFromInput(models.ProductInput{
		Name: "Pen", SKU: "PEN-01", Barcode: "99887766", Category: "Office",
		Price: 2, CostPrice: 1, Stock: 40,
		Images: []string{"https://img.test/pen.png"},
		// ignorées sans HasVariants
		Variants: []models.VariantInput{{Size: "S", Color: "Red"}},
	})

	assert.Equal(t, "PEN-01", p.SKU)
	assert.Equal(t, 40, p.Stock)
	assert.Empty(t, p.Variants)
	assert.Equal(t, "https://img.test/pen.png", p.Image)
}
