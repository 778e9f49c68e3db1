// Package report calcule les indicateurs du tableau de bord et des rapports
// à partir de l'historique des ventes et du catalogue.
package report

import (
	"slices"

	"pos_back_end/internal/cart"
	"pos_back_end/internal/models"
)

const (
	ChartSize     = 7
	LowStockLimit = 8
	TopProducts   = 5
)

// Stats : orders et products sont pris tels quels.
func Stats(orders []models.Order, products []models.Product) models.DashboardStats {
	stats := models.DashboardStats{TotalOrders: len(orders)}
	for _, o := range orders {
		stats.TotalSales += o.Total
		stats.TotalProfit += o.Profit
	}
	for _, p := range products {
		if p.IsLowStock() {
			stats.LowStockCount++
		}
	}
	return stats
}

// SalesChart prend les ventes les plus récentes (orders trié du plus récent au plus ancien)
// et les restitue dans l'ordre chronologique, étiquetées par jour de la semaine.
func SalesChart(orders []models.Order) []models.SalesPoint {
	n := min(len(orders), ChartSize)
	points := make([]models.SalesPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		o := orders[i]
		points = append(points, models.SalesPoint{
			Name:    o.CreatedAt.Weekday().String()[:3],
			Revenue: o.Total,
			Profit:  o.Profit,
		})
	}
	return points
}

// LowStock : les premiers produits sous leur niveau minimum.
func LowStock(products []models.Product, limit int) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if len(out) == limit {
			break
		}
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

type CategorySales struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

type Report struct {
	TotalSales     float64                   `json:"total_sales"`
	TotalProfit    float64                   `json:"total_profit"`
	TotalOrders    int                       `json:"total_orders"`
	PaymentMethods []models.PaymentBreakdown `json:"payment_methods"`
	Categories     []CategorySales           `json:"categories"`
	TopProducts    []models.ProductSales     `json:"top_products"`
	Inventory      models.InventoryValuation `json:"inventory"`
}

func Build(orders []models.Order, products []models.Product) Report {
	r := Report{
		TotalOrders:    len(orders),
		PaymentMethods: PaymentBreakdown(orders),
		Categories:     CategoryBreakdown(orders),
		TopProducts:    TopSellers(orders, TopProducts),
		Inventory:      Valuation(products),
	}
	for _, o := range orders {
		r.TotalSales += o.Total
		r.TotalProfit += o.Profit
	}
	return r
}

// PaymentBreakdown : chiffre d'affaires et nombre de ventes par moyen de paiement.
// Les moyens sans chiffre d'affaires sont omis.
func PaymentBreakdown(orders []models.Order) []models.PaymentBreakdown {
	byMethod := make(map[models.PaymentMethod]*models.PaymentBreakdown, len(models.PaymentMethods))
	for _, m := range models.PaymentMethods {
		byMethod[m] = &models.PaymentBreakdown{Method: m, Label: m.Label()}
	}
	for _, o := range orders {
		if b, ok := byMethod[o.PaymentMethod]; ok {
			b.Revenue += o.Total
			b.Count++
		}
	}

	out := []models.PaymentBreakdown{}
	for _, m := range models.PaymentMethods {
		if b := byMethod[m]; b.Revenue > 0 {
			out = append(out, *b)
		}
	}
	return out
}

// CategoryBreakdown : ventes hors taxe par catégorie, triées par chiffre d'affaires décroissant.
func CategoryBreakdown(orders []models.Order) []CategorySales {
	idx := map[string]int{}
	out := []CategorySales{}
	for _, o := range orders {
		for _, item := range o.Items {
			i, ok := idx[item.Category]
			if !ok {
				i = len(out)
				idx[item.Category] = i
				out = append(out, CategorySales{Category: item.Category})
			}
			out[i].Revenue += cart.UnitPrice(item) * float64(item.Quantity)
		}
	}
	slices.SortStableFunc(out, func(a, b CategorySales) int {
		return compareDesc(a.Revenue, b.Revenue)
	})
	return out
}

// TopSellers agrège les lignes par produit avec le prix et le coût effectifs de la variante vendue.
func TopSellers(orders []models.Order, limit int) []models.ProductSales {
	idx := map[string]int{}
	out := []models.ProductSales{}
	for _, o := range orders {
		for _, item := range o.Items {
			i, ok := idx[item.ID]
			if !ok {
				i = len(out)
				idx[item.ID] = i
				out = append(out, models.ProductSales{ProductID: item.ID, Name: item.Name})
			}
			qty := float64(item.Quantity)
			price, cost := cart.UnitPrice(item), cart.UnitCost(item)
			out[i].Quantity += item.Quantity
			out[i].Revenue += price * qty
			out[i].Profit += (price - cost) * qty
		}
	}
	slices.SortStableFunc(out, func(a, b models.ProductSales) int {
		return compareDesc(a.Revenue, b.Revenue)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Valuation : valeur du stock au coût et au prix de vente.
// Les produits à variantes sont valorisés variante par variante.
func Valuation(products []models.Product) models.InventoryValuation {
	var v models.InventoryValuation
	for _, p := range products {
		if !p.HasVariants() {
			v.CostValue += p.CostPrice * float64(p.Stock)
			v.SaleValue += p.Price * float64(p.Stock)
			continue
		}
		for _, pv := range p.Variants {
			line := models.CartItem{Product: p, SelectedVariantID: pv.ID}
			v.CostValue += cart.UnitCost(line) * float64(pv.Stock)
			v.SaleValue += cart.UnitPrice(line) * float64(pv.Stock)
		}
	}
	v.PotentialProfit = v.SaleValue - v.CostValue
	return v
}

// PeriodTotals : chiffre d'affaires et profit d'une sélection de ventes.
type PeriodTotals struct {
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
	Count   int     `json:"count"`
}

func Period(orders []models.Order) PeriodTotals {
	t := PeriodTotals{Count: len(orders)}
	for _, o := range orders {
		t.Revenue += o.Total
		t.Profit += o.Profit
	}
	return t
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
