package store

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"pos_back_end/internal/models"
)

// checkLine vérifie qu'une ligne de vente ou d'achat désigne un stock réel :
// la variante d'un produit décliné, le produit lui-même sinon.
// Doit être appelé avec s.mu verrouillé.
func (s *Store) checkLine(productID, variantID string) error {
	i := s.productIndex(productID)
	if i < 0 {
		return ErrNotFound
	}
	p := &s.products[i]
	switch {
	case variantID == "" && p.HasVariants():
		return ErrVariantRequired
	case variantID != "":
		if _, ok := p.Variant(variantID); !ok {
			return ErrNotFound
		}
	}
	return nil
}

// adjustStock applique delta au produit (ou à sa variante) et enregistre le mouvement.
// Le stock ne descend jamais sous zéro. La ligne doit avoir passé checkLine,
// et s.mu être verrouillé.
func (s *Store) adjustStock(productID, variantID string, delta int, kind models.MovementType, ref string) {
	i := s.productIndex(productID)
	if i < 0 {
		return
	}
	p := &s.products[i]

	var prev, next int
	if v, ok := p.Variant(variantID); ok {
		prev = v.Stock
		v.Stock = max(0, v.Stock+delta)
		next = v.Stock
		p.SyncStock()
	} else {
		prev = p.Stock
		p.Stock = max(0, p.Stock+delta)
		next = p.Stock
	}

	s.movements = append(s.movements, models.StockMovement{
		ID:        uuid.NewString(),
		ProductID: productID,
		VariantID: variantID,
		Type:      kind,
		Quantity:  next - prev,
		PrevStock: prev,
		NewStock:  next,
		Reference: ref,
		CreatedAt: s.now(),
	})
}

// ListMovements retourne les mouvements, du plus récent au plus ancien.
// productID vide = tous les produits.
func (s *Store) ListMovements(_ context.Context, productID string) []models.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.StockMovement{}
	for i := len(s.movements) - 1; i >= 0; i-- {
		if productID == "" || s.movements[i].ProductID == productID {
			out = append(out, s.movements[i])
		}
	}
	return out
}

// LowStock retourne les produits sous leur niveau minimum.
func (s *Store) LowStock(_ context.Context) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Product{}
	for _, p := range s.products {
		if p.IsLowStock() {
			out = append(out, p.Clone())
		}
	}
	return out
}

// --- Ventes ---

// CreateOrder enregistre la vente et décrémente le stock vendu.
func (s *Store) CreateOrder(_ context.Context, o models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.orders, func(x models.Order) bool { return x.ID == o.ID }) {
		return models.Order{}, ErrDuplicateID
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	if o.Status == "" {
		o.Status = models.OrderCompleted
	}
	for _, item := range o.Items {
		if err := s.checkLine(item.ID, item.SelectedVariantID); err != nil {
			return models.Order{}, err
		}
	}

	for _, item := range o.Items {
		s.adjustStock(item.ID, item.SelectedVariantID, -item.Quantity, models.MovementSale, o.ID)
	}

	s.orders = append(s.orders, o.Clone())
	return o, nil
}

// ListOrders retourne l'historique trié du plus récent au plus ancien.
func (s *Store) ListOrders(_ context.Context) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	slices.SortStableFunc(out, func(a, b models.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *Store) GetOrder(_ context.Context, id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return models.Order{}, ErrNotFound
}

// --- Achats ---

// CreatePurchase enregistre un bon d'achat. Reçu, il réapprovisionne le stock.
func (s *Store) CreatePurchase(_ context.Context, po models.PurchaseOrder) (models.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.supplierIndex(po.SupplierID) < 0 {
		return models.PurchaseOrder{}, ErrNotFound
	}
	for _, item := range po.Items {
		if err := s.checkLine(item.ProductID, item.VariantID); err != nil {
			return models.PurchaseOrder{}, err
		}
	}
	if po.ID == "" {
		po.ID = newPurchaseID()
	}
	if slices.ContainsFunc(s.purchases, func(x models.PurchaseOrder) bool { return x.ID == po.ID }) {
		return models.PurchaseOrder{}, ErrDuplicateID
	}

	now := s.now()
	if po.CreatedAt.IsZero() {
		po.CreatedAt = now
	}
	if po.Status == "" {
		po.Status = models.PurchaseReceived
	}
	po.Items = slices.Clone(po.Items)
	po.TotalAmount = models.PurchaseTotal(po.Items)

	if po.Status == models.PurchaseReceived {
		po.ReceivedAt = &now
		s.restock(po)
	}

	s.purchases = append(s.purchases, po)
	return po, nil
}

// ReceivePurchase passe un bon en attente à reçu.
func (s *Store) ReceivePurchase(_ context.Context, id string) (models.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.purchases, func(x models.PurchaseOrder) bool { return x.ID == id })
	if i < 0 {
		return models.PurchaseOrder{}, ErrNotFound
	}
	po := &s.purchases[i]
	if po.Status != models.PurchasePending {
		return *po, ErrInvalidStatus
	}
	// le catalogue a pu changer depuis la création du bon
	for _, item := range po.Items {
		if err := s.checkLine(item.ProductID, item.VariantID); err != nil {
			return *po, err
		}
	}

	now := s.now()
	po.Status = models.PurchaseReceived
	po.ReceivedAt = &now
	s.restock(*po)
	return *po, nil
}

func (s *Store) restock(po models.PurchaseOrder) {
	for _, item := range po.Items {
		s.adjustStock(item.ProductID, item.VariantID, item.Quantity, models.MovementRestock, po.ID)
	}
}

func (s *Store) ListPurchases(_ context.Context) []models.PurchaseOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.purchases)
	slices.SortStableFunc(out, func(a, b models.PurchaseOrder) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
