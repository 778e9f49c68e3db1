// Package checkout implémente l'encaissement : choix du moyen de paiement,
// paiement simulé puis écran de succès, une session par caissier.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"pos_back_end/internal/cart"
	"pos_back_end/internal/models"
	"pos_back_end/internal/store"
)

type Step string

const (
	StepPayment Step = "payment"
	StepSuccess Step = "success"
)

const (
	DefaultDelay = 1500 * time.Millisecond
	maxIDRetries = 5
)

var (
	ErrNoPaymentMethod   = errors.New("aucun moyen de paiement sélectionné")
	ErrInvalidMethod     = errors.New("moyen de paiement invalide")
	ErrEmptyCart         = errors.New("panier vide")
	ErrPaymentInProgress = errors.New("paiement déjà en cours")
	ErrInvalidStep       = errors.New("étape d'encaissement invalide")
)

// Session : état de la fenêtre d'encaissement d'un caissier.
type Session struct {
	Step       Step                 `json:"step"`
	Method     models.PaymentMethod `json:"payment_method,omitempty"`
	Processing bool                 `json:"processing"`
	Order      *models.Order        `json:"order,omitempty"`
}

type Carts interface {
	Get(ctx context.Context, userID string) (cart.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type Settings interface {
	Get(ctx context.Context) (models.Settings, error)
}

type Orders interface {
	CreateOrder(ctx context.Context, o models.Order) (models.Order, error)
}

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	carts    Carts
	settings Settings
	orders   Orders
	log      *zap.Logger

	delay time.Duration
	now   func() time.Time
	newID func() string
}

type Option func(*Manager)

func WithDelay(d time.Duration) Option {
	return func(m *Manager) { m.delay = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

func NewManager(carts Carts, settings Settings, orders Orders, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		carts:    carts,
		settings: settings,
		orders:   orders,
		log:      log,
		delay:    DefaultDelay,
		now:      time.Now,
		newID:    NewTransactionID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewTransactionID : "TRX-" suivi d'un entier inférieur à un million.
func NewTransactionID() string {
	return fmt.Sprintf("TRX-%d", rand.IntN(1_000_000))
}

// session doit être appelé avec m.mu verrouillé.
func (m *Manager) session(userID string) *Session {
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{Step: StepPayment}
		m.sessions[userID] = s
	}
	return s
}

func (m *Manager) State(userID string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.session(userID)
}

// Preview calcule les montants du panier courant avec le taux de taxe du magasin.
func (m *Manager) Preview(ctx context.Context, userID string) (cart.Totals, error) {
	c, err := m.carts.Get(ctx, userID)
	if err != nil {
		return cart.Totals{}, err
	}
	st, err := m.settings.Get(ctx)
	if err != nil {
		return cart.Totals{}, err
	}
	return cart.Compute(c.Items, st.TaxRate), nil
}

func (m *Manager) SelectMethod(userID string, method models.PaymentMethod) (Session, error) {
	if !method.Valid() {
		return Session{}, ErrInvalidMethod
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(userID)
	if s.Step != StepPayment {
		return *s, ErrInvalidStep
	}
	if s.Processing {
		return *s, ErrPaymentInProgress
	}
	s.Method = method
	return *s, nil
}

// Pay simule le paiement : attente du délai puis création de la vente.
// Le panier est figé au début de l'appel.
func (m *Manager) Pay(ctx context.Context, userID string) (Session, error) {
	m.mu.Lock()
	s := m.session(userID)
	switch {
	case s.Step != StepPayment:
		m.mu.Unlock()
		return *s, ErrInvalidStep
	case s.Processing:
		m.mu.Unlock()
		return *s, ErrPaymentInProgress
	case s.Method == "":
		m.mu.Unlock()
		return *s, ErrNoPaymentMethod
	}
	s.Processing = true
	method := s.Method
	m.mu.Unlock()

	order, err := m.process(ctx, userID, method)

	m.mu.Lock()
	defer m.mu.Unlock()
	s.Processing = false
	if err != nil {
		return *s, err
	}
	s.Step = StepSuccess
	s.Order = &order

	m.log.Info("✅ Paiement simulé",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("method", string(method)),
		zap.Float64("total", order.Total),
	)
	return *s, nil
}

func (m *Manager) process(ctx context.Context, userID string, method models.PaymentMethod) (models.Order, error) {
	c, err := m.carts.Get(ctx, userID)
	if err != nil {
		return models.Order{}, err
	}
	if c.IsEmpty() {
		return models.Order{}, ErrEmptyCart
	}
	st, err := m.settings.Get(ctx)
	if err != nil {
		return models.Order{}, err
	}
	items := c.Snapshot()

	if err := wait(ctx, m.delay); err != nil {
		return models.Order{}, err
	}

	totals := cart.Compute(items, st.TaxRate)
	order := models.Order{
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Profit:        totals.Profit,
		PaymentMethod: method,
		CreatedAt:     m.now(),
		CashierID:     userID,
		Status:        models.OrderCompleted,
	}

	for range maxIDRetries {
		order.ID = m.newID()
		saved, err := m.orders.CreateOrder(ctx, order)
		if errors.Is(err, store.ErrDuplicateID) {
			continue
		}
		if err != nil {
			return models.Order{}, fmt.Errorf("enregistrement vente: %w", err)
		}
		return saved, nil
	}
	return models.Order{}, fmt.Errorf("enregistrement vente: %w", store.ErrDuplicateID)
}

// Close ferme la fenêtre. Après un succès, le panier est vidé et la session
// repart à zéro ; pendant le choix du paiement, seul le moyen choisi est oublié.
func (m *Manager) Close(ctx context.Context, userID string) (Session, error) {
	m.mu.Lock()
	s := m.session(userID)
	if s.Processing {
		m.mu.Unlock()
		return *s, ErrPaymentInProgress
	}
	if s.Step != StepSuccess {
		s.Method = ""
		out := *s
		m.mu.Unlock()
		return out, nil
	}
	m.mu.Unlock()

	if err := m.carts.Clear(ctx, userID); err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return *m.session(userID), nil
}

func wait(ctx context.Context, d time.Duration) error {
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
