package mockdata

import (
	"context"
	"time"

	"pos_back_end/internal/models"
	"pos_back_end/internal/report"
)

// Latency : délais simulés par appel.
type Latency struct {
	Products  time.Duration
	Orders    time.Duration
	Suppliers time.Duration
	Purchases time.Duration
	Login     time.Duration
	Stats     time.Duration
}

func DefaultLatency() Latency {
	return Latency{
		Products:  500 * time.Millisecond,
		Orders:    600 * time.Millisecond,
		Suppliers: 400 * time.Millisecond,
		Purchases: 500 * time.Millisecond,
		Login:     800 * time.Millisecond,
		Stats:     400 * time.Millisecond,
	}
}

// Source : données servies après le délai.
type Source interface {
	ListProducts(ctx context.Context) []models.Product
	ListOrders(ctx context.Context) []models.Order
	ListSuppliers(ctx context.Context) []models.Supplier
	ListPurchases(ctx context.Context) []models.PurchaseOrder
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

// Service simule un back-office distant : chaque lecture attend son délai
// puis renvoie les données complètes, sans filtre ni pagination.
type Service struct {
	src     Source
	latency Latency
}

func NewService(src Source, latency Latency) *Service {
	return &Service{src: src, latency: latency}
}

func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	if err := sleep(ctx, s.latency.Products); err != nil {
		return nil, err
	}
	return s.src.ListProducts(ctx), nil
}

// Orders : du plus récent au plus ancien.
func (s *Service) Orders(ctx context.Context) ([]models.Order, error) {
	if err := sleep(ctx, s.latency.Orders); err != nil {
		return nil, err
	}
	return s.src.ListOrders(ctx), nil
}

func (s *Service) Suppliers(ctx context.Context) ([]models.Supplier, error) {
	if err := sleep(ctx, s.latency.Suppliers); err != nil {
		return nil, err
	}
	return s.src.ListSuppliers(ctx), nil
}

func (s *Service) Purchases(ctx context.Context) ([]models.PurchaseOrder, error) {
	if err := sleep(ctx, s.latency.Purchases); err != nil {
		return nil, err
	}
	return s.src.ListPurchases(ctx), nil
}

// Login retourne le compte associé à l'email ; le mot de passe est vérifié par l'appelant.
func (s *Service) Login(ctx context.Context, email string) (models.User, bool, error) {
	if err := sleep(ctx, s.latency.Login); err != nil {
		return models.User{}, false, err
	}
	u, err := s.src.UserByEmail(ctx, email)
	if err != nil {
		return models.User{}, false, nil
	}
	return u, true, nil
}

func (s *Service) Stats(ctx context.Context) (models.DashboardStats, error) {
	if err := sleep(ctx, s.latency.Stats); err != nil {
		return models.DashboardStats{}, err
	}
	return report.Stats(s.src.ListOrders(ctx), s.src.ListProducts(ctx)), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
