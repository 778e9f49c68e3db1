// Package mockdata génère le jeu de démonstration du point de vente et simule
// la latence d'un service distant.
package mockdata

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"pos_back_end/internal/models"
	"pos_back_end/internal/store"
	"pos_back_end/internal/utils"
)

const (
	SupplierCount = 5
	ProductCount  = 50
	OrderCount    = 20
	PurchaseCount = 10

	mockTaxRate = 0.1
)

type Options struct {
	Seed            uint64
	Now             time.Time
	AdminPassword   string
	CashierPassword string
}

// Generate produit un jeu de données déterministe pour une graine donnée.
func Generate(opts Options) (store.Dataset, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	g := &generator{f: gofakeit.New(opts.Seed), now: opts.Now}

	users, err := g.users(opts.AdminPassword, opts.CashierPassword)
	if err != nil {
		return store.Dataset{}, err
	}
	suppliers := g.suppliers()
	products := g.products(suppliers)

	return store.Dataset{
		Users:     users,
		Suppliers: suppliers,
		Products:  products,
		Orders:    g.orders(products, users),
		Purchases: g.purchases(products, suppliers),
	}, nil
}

type generator struct {
	f   *gofakeit.Faker
	now time.Time
}

func (g *generator) users(adminPassword, cashierPassword string) ([]models.User, error) {
	seed := []struct {
		id, name, email, role, password string
	}{
		{"1", "Admin User", "admin@pos.com", models.RoleAdmin, adminPassword},
		{"2", "Jane Cashier", "jane@pos.com", models.RoleCashier, cashierPassword},
	}

	users := make([]models.User, 0, len(seed))
	for _, u := range seed {
		hash, err := utils.HashPassword(u.password)
		if err != nil {
			return nil, fmt.Errorf("hash mot de passe %s: %w", u.email, err)
		}
		users = append(users, models.User{
			ID:       u.id,
			Name:     u.name,
			Email:    u.email,
			Password: hash,
			Role:     u.role,
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", u.email),
		})
	}
	return users, nil
}

func (g *generator) suppliers() []models.Supplier {
	out := make([]models.Supplier, SupplierCount)
	for i := range out {
		out[i] = models.Supplier{
			ID:            g.f.UUID(),
			Name:          g.f.Company(),
			ContactPerson: g.f.Name(),
			Email:         g.f.Email(),
			Phone:         g.f.Phone(),
			Address:       g.f.Street(),
		}
	}
	return out
}

func (g *generator) products(suppliers []models.Supplier) []models.Product {
	out := make([]models.Product, ProductCount)
	for i := range out {
		price := round2(g.f.Price(10, 200))
		out[i] = models.Product{
			ID:            g.f.UUID(),
			Name:          g.f.ProductName(),
			SKU:           "SKU-" + g.alphanumeric(6),
			Barcode:       g.f.DigitN(12),
			Category:      g.f.ProductCategory(),
			Price:         price,
			CostPrice:     price * g.f.Float64Range(0.4, 0.7),
			Stock:         g.f.IntRange(0, 100),
			MinStockLevel: models.LowStockThreshold,
			Image:         fmt.Sprintf("https://loremflickr.com/640/480/fashion?lock=%d", g.f.IntRange(1, 10000)),
			SupplierID:    suppliers[g.f.IntRange(0, len(suppliers)-1)].ID,
			CreatedAt:     g.recent(90),
		}
	}
	return out
}

// Les ventes générées utilisent un taux fixe de 10 %.
func (g *generator) orders(products []models.Product, users []models.User) []models.Order {
	out := make([]models.Order, OrderCount)
	for i := range out {
		picked := g.pick(len(products), 1, 5)
		items := make([]models.CartItem, len(picked))
		var subtotal, cost float64
		for j, idx := range picked {
			p := products[idx]
			qty := g.f.IntRange(1, 3)
			items[j] = models.CartItem{Product: p.Clone(), Quantity: qty}
			subtotal += p.Price * float64(qty)
			cost += p.CostPrice * float64(qty)
		}
		tax := subtotal * mockTaxRate
		total := subtotal + tax

		out[i] = models.Order{
			ID:            g.f.UUID(),
			Items:         items,
			Subtotal:      subtotal,
			Tax:           tax,
			Total:         total,
			Profit:        total - cost - tax,
			PaymentMethod: models.PaymentMethods[g.f.IntRange(0, len(models.PaymentMethods)-1)],
			CreatedAt:     g.recent(30),
			CashierID:     users[g.f.IntRange(0, len(users)-1)].ID,
			Status:        models.OrderCompleted,
		}
	}
	return out
}

func (g *generator) purchases(products []models.Product, suppliers []models.Supplier) []models.PurchaseOrder {
	out := make([]models.PurchaseOrder, PurchaseCount)
	for i := range out {
		picked := g.pick(len(products), 1, 8)
		items := make([]models.PurchaseItem, len(picked))
		for j, idx := range picked {
			items[j] = models.PurchaseItem{
				ProductID: products[idx].ID,
				Quantity:  g.f.IntRange(10, 50),
				CostPrice: products[idx].CostPrice,
			}
		}
		receivedAt := g.recent(15)

		out[i] = models.PurchaseOrder{
			ID:          "PO-" + g.f.DigitN(6),
			SupplierID:  suppliers[g.f.IntRange(0, len(suppliers)-1)].ID,
			Items:       items,
			TotalAmount: models.PurchaseTotal(items),
			Status:      models.PurchaseReceived,
			ReceivedAt:  &receivedAt,
			CreatedAt:   g.recent(20),
		}
	}
	return out
}

// pick tire entre lo et hi indices distincts dans [0, n).
func (g *generator) pick(n, lo, hi int) []int {
	k := min(g.f.IntRange(lo, hi), n)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := g.f.IntRange(i, n-1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

func (g *generator) recent(days int) time.Time {
	return g.f.DateRange(g.now.Add(-time.Duration(days)*24*time.Hour), g.now)
}

func (g *generator) alphanumeric(n int) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[g.f.IntRange(0, len(alphabet)-1)]
	}
	return string(b)
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
