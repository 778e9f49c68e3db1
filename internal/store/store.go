// Package store est le dépôt en mémoire du point de vente : catalogue,
// fournisseurs, bons d'achat, historique des ventes, mouvements de stock et comptes.
// Rien n'y est persisté.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pos_back_end/internal/models"
)

var (
	ErrNotFound     = errors.New("ressource introuvable")
	ErrDuplicateSKU = errors.New("SKU déjà utilisé")
	ErrDuplicateID  = errors.New("identifiant déjà utilisé")
)

// ErrInvalidStatus : le bon d'achat n'est plus en attente.
var ErrInvalidStatus = errors.New("statut du bon d'achat invalide")

// ErrVariantRequired : une ligne sans variante sur un produit décliné.
var ErrVariantRequired = errors.New("variante requise pour ce produit")

// Dataset : contenu initial du dépôt.
type Dataset struct {
	Users     []models.User
	Products  []models.Product
	Suppliers []models.Supplier
	Purchases []models.PurchaseOrder
	Orders    []models.Order
}

type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	products  []models.Product
	suppliers []models.Supplier
	purchases []models.PurchaseOrder
	orders    []models.Order
	movements []models.StockMovement
	users     []models.User
}

func New() *Store {
	return &Store{now: time.Now}
}

// NewSeeded charge un jeu de données tel quel, sans mouvement de stock.
func NewSeeded(ds Dataset) *Store {
	s := New()
	for _, p := range ds.Products {
		s.products = append(s.products, p.Clone())
	}
	s.suppliers = append(s.suppliers, ds.Suppliers...)
	for _, po := range ds.Purchases {
		po.Items = slices.Clone(po.Items)
		s.purchases = append(s.purchases, po)
	}
	for _, o := range ds.Orders {
		s.orders = append(s.orders, o.Clone())
	}
	s.users = append(s.users, ds.Users...)
	return s
}

// --- Produits ---

func (s *Store) ListProducts(_ context.Context) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) productIndex(id string) int {
	return slices.IndexFunc(s.products, func(p models.Product) bool { return p.ID == id })
}

func (s *Store) GetProduct(_ context.Context, id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.productIndex(id)
	if i < 0 {
		return models.Product{}, ErrNotFound
	}
	return s.products[i].Clone(), nil
}

// FindByBarcode cherche d'abord le code du produit puis ceux des variantes.
func (s *Store) FindByBarcode(_ context.Context, code string) (models.Product, string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Product{}, "", ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Barcode == code {
			return p.Clone(), "", nil
		}
	}
	for _, p := range s.products {
		for _, v := range p.Variants {
			if v.Barcode == code {
				return p.Clone(), v.ID, nil
			}
		}
	}
	return models.Product{}, "", ErrNotFound
}

func (s *Store) skuTaken(sku, exceptID string) bool {
	for _, p := range s.products {
		if p.ID != exceptID && strings.EqualFold(p.SKU, sku) {
			return true
		}
	}
	return false
}

func (s *Store) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.skuTaken(p.SKU, "") {
		return models.Product{}, ErrDuplicateSKU
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if s.productIndex(p.ID) >= 0 {
		return models.Product{}, ErrDuplicateID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	p.SyncStock()

	s.products = append(s.products, p.Clone())
	return p, nil
}

// UpdateProduct remplace le produit en conservant son ID et sa date de création.
func (s *Store) UpdateProduct(_ context.Context, id string, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return models.Product{}, ErrNotFound
	}
	if s.skuTaken(p.SKU, id) {
		return models.Product{}, ErrDuplicateSKU
	}

	p.ID = id
	p.CreatedAt = s.products[i].CreatedAt
	p.SyncStock()

	s.products[i] = p.Clone()
	return p, nil
}

// SetProductImages ajoute des URLs d'images ; la première devient l'image principale si besoin.
func (s *Store) SetProductImages(_ context.Context, id string, urls ...string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return models.Product{}, ErrNotFound
	}
	p := &s.products[i]
	p.Images = append(p.Images, urls...)
	if p.Image == "" && len(urls) > 0 {
		p.Image = urls[0]
	}
	return p.Clone(), nil
}

// Categories retourne les catégories distinctes triées.
func (s *Store) Categories(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}

// --- Fournisseurs ---

func (s *Store) ListSuppliers(_ context.Context) []models.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.suppliers)
}

func (s *Store) supplierIndex(id string) int {
	return slices.IndexFunc(s.suppliers, func(sp models.Supplier) bool { return sp.ID == id })
}

func (s *Store) GetSupplier(_ context.Context, id string) (models.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.supplierIndex(id)
	if i < 0 {
		return models.Supplier{}, ErrNotFound
	}
	return s.suppliers[i], nil
}

func (s *Store) CreateSupplier(_ context.Context, sp models.Supplier) (models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	s.suppliers = append(s.suppliers, sp)
	return sp, nil
}

func (s *Store) UpdateSupplier(_ context.Context, id string, sp models.Supplier) (models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.supplierIndex(id)
	if i < 0 {
		return models.Supplier{}, ErrNotFound
	}
	sp.ID = id
	s.suppliers[i] = sp
	return sp, nil
}

// --- Utilisateurs ---

func (s *Store) UserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *Store) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}
