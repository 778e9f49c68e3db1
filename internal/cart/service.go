package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"pos_back_end/internal/models"
)

// Catalog résout les produits ajoutés au panier.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (models.Product, error)
	// FindByBarcode retourne le produit et l'ID de variante ("" pour le code du produit).
	FindByBarcode(ctx context.Context, code string) (models.Product, string, error)
}

// Service applique les opérations panier sur le Store. Le verrou couvre
// chaque lecture-modification-écriture.
type Service struct {
	mu      sync.Mutex
	store   Store
	catalog Catalog
	log     *zap.Logger
}

func NewService(store Store, catalog Catalog, log *zap.Logger) *Service {
	return &Service{store: store, catalog: catalog, log: log}
}

func (s *Service) Get(ctx context.Context, userID string) (Cart, error) {
	return s.store.Load(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID, productID, variantID string) (Cart, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	return s.add(ctx, userID, p, variantID)
}

// Scan ajoute le produit (ou la variante) correspondant au code-barres lu.
func (s *Service) Scan(ctx context.Context, userID, code string) (Cart, error) {
	p, variantID, err := s.catalog.FindByBarcode(ctx, code)
	if err != nil {
		return Cart{}, err
	}
	return s.add(ctx, userID, p, variantID)
}

func (s *Service) add(ctx context.Context, userID string, p models.Product, variantID string) (Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) error {
		return c.AddItem(p, variantID)
	})
}

func (s *Service) Remove(ctx context.Context, userID string, k Key) (Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) error {
		if !c.RemoveItem(k) {
			return ErrItemNotFound
		}
		return nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, userID string, k Key, quantity int) (Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) error {
		if !c.UpdateQuantity(k, quantity) {
			return ErrItemNotFound
		}
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx, userID); err != nil {
		return err
	}
	s.log.Debug("🛒 panier vidé", zap.String("user_id", userID))
	return nil
}

func (s *Service) Subscribe(ctx context.Context, userID string) (<-chan string, func()) {
	return s.store.Subscribe(ctx, userID)
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(*Cart) error) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&c); err != nil {
		return c, err
	}
	if err := s.store.Save(ctx, userID, c); err != nil {
		s.log.Error("❌ sauvegarde panier", zap.String("user_id", userID), zap.Error(err))
		return Cart{}, err
	}
	return c, nil
}
