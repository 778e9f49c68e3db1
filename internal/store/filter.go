package store

import (
	"strings"

	"pos_back_end/internal/models"
)

// AllCategories désactive le filtre par catégorie.
const AllCategories = "All"

// FilterProducts : recherche insensible à la casse sur nom, SKU et code-barres.
func FilterProducts(products []models.Product, query, category string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Product{}
	for _, p := range products {
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.SKU), q) &&
			!strings.Contains(strings.ToLower(p.Barcode), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func FilterSuppliers(suppliers []models.Supplier, query string) []models.Supplier {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Supplier{}
	for _, sp := range suppliers {
		if q == "" ||
			strings.Contains(strings.ToLower(sp.Name), q) ||
			strings.Contains(strings.ToLower(sp.ContactPerson), q) {
			out = append(out, sp)
		}
	}
	return out
}

func FilterOrders(orders []models.Order, query string) []models.Order {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Order{}
	for _, o := range orders {
		if q == "" || strings.Contains(strings.ToLower(o.ID), q) {
			out = append(out, o)
		}
	}
	return out
}

// ByIDs indexe les produits par ID.
func ByIDs(products []models.Product) map[string]models.Product {
	out := make(map[string]models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out
}
