package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pos_back_end/internal/cache"
	"pos_back_end/internal/cart"
	"pos_back_end/internal/checkout"
	"pos_back_end/internal/config"
	"pos_back_end/internal/handlers"
	"pos_back_end/internal/mockdata"
	"pos_back_end/internal/models"
	"pos_back_end/internal/report"
	"pos_back_end/internal/routes"
	"pos_back_end/internal/services"
	"pos_back_end/internal/settings"
	"pos_back_end/internal/store"
	"pos_back_end/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ptr(v float64) *float64 { return &v }

type env struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
	admin  string
	jane   string
}

func dataset(t *testing.T) store.Dataset {
	t.Helper()
	adminHash, err := utils.HashPassword("admin123")
	require.NoError(t, err)
	janeHash, err := utils.HashPassword("cashier123")
	require.NoError(t, err)

	return store.Dataset{
		Users: []models.User{
			{ID: "1", Name: "Admin User", Email: "admin@pos.com", Password: adminHash, Role: models.RoleAdmin},
			{ID: "2", Name: "Jane Cashier", Email: "jane@pos.com", Password: janeHash, Role: models.RoleCashier},
		},
		Products: []models.Product{
			{
				ID: "p1", Name: "T-Shirt", SKU: "SKU-TSHIRT", Barcode: "111111111111", Category: "Apparel",
				Price: 100, CostPrice: 60, Stock: 10, MinStockLevel: 5,
				Variants: []models.ProductVariant{
					{ID: "v1", Size: "M", Color: "Red", Name: "M / Red", SKU: "SKU-TSHIRT-M-RED", Barcode: "222222222222",
						Price: ptr(120), CostPrice: ptr(70), Stock: 10},
				},
			},
			{ID: "p2", Name: "Mug", SKU: "SKU-MUG", Barcode: "333333333333", Category: "Home",
				Price: 10, CostPrice: 4, Stock: 3, MinStockLevel: 10},
		},
		Suppliers: []models.Supplier{
			{ID: "s1", Name: "Acme Supply", ContactPerson: "John Doe", Email: "john@acme.test", Phone: "0123456789", Address: "1 Main St"},
		},
	}
}

func newEnv(t *testing.T, opts ...func(*handlers.Deps)) *env {
	t.Helper()

	cfg := config.LoadEnv()
	cfg.JWT.Secret = "test_secret"
	log := zap.NewNop()

	db := store.NewSeeded(dataset(t))
	st := settings.NewMemoryStore()
	carts := cart.NewService(cart.NewMemoryStore(), db, log)

	var seq atomic.Int64
	checkouts := checkout.NewManager(carts, st, db, log,
		checkout.WithDelay(0),
		checkout.WithIDGenerator(func() string { return fmt.Sprintf("TRX-%d", seq.Add(1)) }),
	)

	deps := handlers.Deps{
		Config:   cfg,
		Log:      log,
		Store:    db,
		Mock:     mockdata.NewService(db, mockdata.Latency{}),
		Carts:    carts,
		Checkout: checkouts,
		Settings: st,
		Search:   services.NewProductIndex(nil, "", log),
		Images:   services.NewImageStore(nil, "", "", false),
		Mailer:   services.NewMailer(config.SMTPConfig{}, log),
		Tokens:   cache.NewBlacklist(nil, log),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h := handlers.New(deps)

	r := gin.New()
	routes.RegisterRoutes(r, h)

	e := &env{t: t, router: r, store: db}
	e.admin = e.login("admin@pos.com", "admin123")
	e.jane = e.login("jane@pos.com", "cashier123")
	return e
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) login(email, password string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type cartResponse struct {
	Items  []models.CartItem `json:"items"`
	Count  int               `json:"count"`
	Totals cart.Totals       `json:"totals"`
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","redis":false,"elasticsearch":false,"minio":false,"smtp":false}`, w.Body.String())
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "jane@pos.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@pos.com", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "details")

	w = e.do(http.MethodGet, "/api/users/me", e.jane, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "jane@pos.com", me["email"])
	assert.NotContains(t, me, "password")

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/users/me", "", nil).Code)

	token := e.login("jane@pos.com", "cashier123")
	assert.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/users/me", token, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/users/me", e.jane, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/users", e.jane, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/users", e.admin, nil).Code)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	e := newEnv(t)

	// Deux unités de la variante : même ligne, quantité 2
	for range 2 {
		w := e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p1", "variant_id": "v1"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w := e.do(http.MethodGet, "/api/pos/cart", e.jane, nil)
	c := decode[cartResponse](t, w)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 2, c.Count)
	assert.InDelta(t, 240, c.Totals.Subtotal, 1e-9)
	assert.InDelta(t, 24, c.Totals.Tax, 1e-9)
	assert.InDelta(t, 264, c.Totals.Total, 1e-9)
	assert.InDelta(t, 100, c.Totals.Profit, 1e-9)

	// Le panier est propre à chaque caissier
	other := decode[cartResponse](t, e.do(http.MethodGet, "/api/pos/cart", e.admin, nil))
	assert.Empty(t, other.Items)

	w = e.do(http.MethodPost, "/api/pos/checkout/pay", e.jane, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/pos/checkout/method", e.jane, gin.H{"payment_method": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/pos/checkout/method", e.jane, gin.H{"payment_method": "card"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/pos/checkout/pay", e.jane, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decode[checkout.Session](t, w)
	assert.Equal(t, checkout.StepSuccess, session.Step)
	require.NotNil(t, session.Order)
	assert.Equal(t, "TRX-1", session.Order.ID)
	assert.InDelta(t, 264, session.Order.Total, 1e-9)
	assert.Equal(t, models.PaymentCard, session.Order.PaymentMethod)

	// Second paiement refusé tant que la fenêtre n'est pas fermée
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/api/pos/checkout/pay", e.jane, nil).Code)

	p := decode[models.Product](t, e.do(http.MethodGet, "/api/products/p1", e.jane, nil))
	v, ok := p.Variant("v1")
	require.True(t, ok)
	assert.Equal(t, 8, v.Stock)
	assert.Equal(t, 8, p.Stock)

	w = e.do(http.MethodPost, "/api/pos/checkout/close", e.jane, nil)
	require.Equal(t, http.StatusOK, w.Code)
	session = decode[checkout.Session](t, w)
	assert.Equal(t, checkout.StepPayment, session.Step)
	assert.Empty(t, session.Method)

	c = decode[cartResponse](t, e.do(http.MethodGet, "/api/pos/cart", e.jane, nil))
	assert.Empty(t, c.Items)

	// Panier vide : paiement refusé
	e.do(http.MethodPost, "/api/pos/checkout/method", e.jane, gin.H{"payment_method": "cash"})
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/pos/checkout/pay", e.jane, nil).Code)

	// Close pendant le choix : le moyen est oublié
	session = decode[checkout.Session](t, e.do(http.MethodPost, "/api/pos/checkout/close", e.jane, nil))
	assert.Empty(t, session.Method)
}

func TestCartEditing(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/pos/cart/scan", e.jane, gin.H{"barcode": "222222222222"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := decode[cartResponse](t, w)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "v1", c.Items[0].SelectedVariantID)

	assert.Equal(t, http.StatusNotFound,
		e.do(http.MethodPost, "/api/pos/cart/scan", e.jane, gin.H{"barcode": "999999999999"}).Code)
	assert.Equal(t, http.StatusNotFound,
		e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p1", "variant_id": "v9"}).Code)

	// Produit décliné : jamais de ligne sans variante, ni au clic ni au scan
	assert.Equal(t, http.StatusBadRequest,
		e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p1"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		e.do(http.MethodPost, "/api/pos/cart/scan", e.jane, gin.H{"barcode": "111111111111"}).Code)

	e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p2"})

	w = e.do(http.MethodPut, "/api/pos/cart/items/p2", e.jane, gin.H{"quantity": 5})
	c = decode[cartResponse](t, w)
	assert.Equal(t, 6, c.Count)

	// Quantité 0 : la ligne disparaît
	w = e.do(http.MethodPut, "/api/pos/cart/items/p1", e.jane, gin.H{"variant_id": "v1", "quantity": 0})
	c = decode[cartResponse](t, w)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ID)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/pos/cart/items/p1?variant_id=v1", e.jane, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/pos/cart/items/p2", e.jane, nil).Code)

	e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p2"})
	c = decode[cartResponse](t, e.do(http.MethodDelete, "/api/pos/cart", e.jane, nil))
	assert.Empty(t, c.Items)
	assert.Zero(t, c.Totals.Total)
}

func TestProducts(t *testing.T) {
	e := newEnv(t)

	list := decode[[]models.Product](t, e.do(http.MethodGet, "/api/products?q=mug", e.jane, nil))
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ID)

	list = decode[[]models.Product](t, e.do(http.MethodGet, "/api/products?category=Apparel", e.jane, nil))
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ID)

	list = decode[[]models.Product](t, e.do(http.MethodGet, "/api/products?q=zzz", e.jane, nil))
	assert.Empty(t, list)

	categories := decode[[]string](t, e.do(http.MethodGet, "/api/products/categories", e.jane, nil))
	assert.Equal(t, []string{"All", "Apparel", "Home"}, categories)

	low := decode[[]models.Product](t, e.do(http.MethodGet, "/api/products/low-stock", e.jane, nil))
	require.Len(t, low, 1)
	assert.Equal(t, "p2", low[0].ID)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/products/nope", e.jane, nil).Code)
}

func TestProductWrites(t *testing.T) {
	e := newEnv(t)
	input := gin.H{"name": "Cap", "category": "Apparel", "price": 25, "cost_price": 10, "stock": 5, "min_stock_level": 2}

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/products", e.jane, input).Code)

	w := e.do(http.MethodPost, "/api/products", e.admin, input)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Product](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Regexp(t, `^SKU-[A-Z0-9]{6}$`, created.SKU)
	assert.Len(t, created.Barcode, 12)

	input["sku"] = "sku-mug"
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/api/products", e.admin, input).Code)

	input["sku"] = "SKU-CAP"
	input["price"] = 0
	w = e.do(http.MethodPost, "/api/products", e.admin, input)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "details")

	update := gin.H{"name": "Big Mug", "sku": "SKU-MUG", "category": "Home", "price": 12, "cost_price": 5, "stock": 3}
	w = e.do(http.MethodPut, "/api/products/p2", e.admin, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Big Mug", decode[models.Product](t, w).Name)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/products/nope", e.admin, update).Code)

	w = e.do(http.MethodPost, "/api/products/variants/generate", e.admin, gin.H{
		"base_sku": "SKU-CAP", "base_barcode": "444444444444", "price": 25, "cost_price": 10,
		"sizes": []string{"S", "L"}, "colors": []string{"Blue"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	variants := decode[[]models.ProductVariant](t, w)
	require.Len(t, variants, 2)
	assert.Equal(t, "S / Blue", variants[0].Name)
	assert.Equal(t, "SKU-CAP-S-BLU", variants[0].SKU)

	w = e.do(http.MethodPost, "/api/products/p1/images", e.admin, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSuppliersAndPurchases(t *testing.T) {
	e := newEnv(t)

	list := decode[[]models.Supplier](t, e.do(http.MethodGet, "/api/suppliers?q=john", e.jane, nil))
	require.Len(t, list, 1)

	bad := gin.H{"name": "X", "contact_person": "Y", "email": "nope", "phone": "123", "address": "Z"}
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/suppliers", e.admin, bad).Code)

	good := gin.H{"name": "Globex", "contact_person": "Hank", "email": "hank@globex.test", "phone": "0987654321", "address": "2 Elm St"}
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/suppliers", e.jane, good).Code)
	w := e.do(http.MethodPost, "/api/suppliers", e.admin, good)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Reçu par défaut : le stock augmente tout de suite
	w = e.do(http.MethodPost, "/api/purchases", e.admin, gin.H{
		"supplier_id": "s1",
		"items":       []gin.H{{"product_id": "p2", "quantity": 10, "cost_price": 4}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	po := decode[models.PurchaseOrder](t, w)
	assert.Equal(t, models.PurchaseReceived, po.Status)
	assert.InDelta(t, 40, po.TotalAmount, 1e-9)
	assert.Equal(t, 13, decode[models.Product](t, e.do(http.MethodGet, "/api/products/p2", e.jane, nil)).Stock)

	w = e.do(http.MethodPost, "/api/purchases", e.admin, gin.H{
		"supplier_id": "s1",
		"status":      "pending",
		"items":       []gin.H{{"product_id": "p1", "variant_id": "v1", "quantity": 5, "cost_price": 70}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pending := decode[models.PurchaseOrder](t, w)
	assert.Equal(t, 10, decode[models.Product](t, e.do(http.MethodGet, "/api/products/p1", e.jane, nil)).Stock)

	w = e.do(http.MethodPost, "/api/purchases/"+pending.ID+"/receive", e.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 15, decode[models.Product](t, e.do(http.MethodGet, "/api/products/p1", e.jane, nil)).Stock)
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/api/purchases/"+pending.ID+"/receive", e.admin, nil).Code)

	w = e.do(http.MethodPost, "/api/purchases", e.admin, gin.H{
		"supplier_id": "s1",
		"items":       []gin.H{{"product_id": "p1", "quantity": 5, "cost_price": 60}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, 15, decode[models.Product](t, e.do(http.MethodGet, "/api/products/p1", e.jane, nil)).Stock)

	movements := decode[[]models.StockMovement](t, e.do(http.MethodGet, "/api/products/p1/movements", e.jane, nil))
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementRestock, movements[0].Type)
	assert.Equal(t, pending.ID, movements[0].Reference)

	w = e.do(http.MethodPost, "/api/purchases", e.admin, gin.H{
		"supplier_id": "nope",
		"items":       []gin.H{{"product_id": "p2", "quantity": 1, "cost_price": 4}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	all := decode[[]models.PurchaseOrder](t, e.do(http.MethodGet, "/api/purchases?supplier_id=s1", e.jane, nil))
	assert.Len(t, all, 2)
}

func TestSettings(t *testing.T) {
	e := newEnv(t)

	st := decode[models.Settings](t, e.do(http.MethodGet, "/api/settings", e.jane, nil))
	assert.Equal(t, models.DefaultSettings(), st)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, "/api/settings", e.jane, gin.H{"tax_rate": 5}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, "/api/settings", e.admin, gin.H{"tax_rate": 150}).Code)

	w := e.do(http.MethodPut, "/api/settings", e.admin, gin.H{"tax_rate": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st = decode[models.Settings](t, w)
	assert.InDelta(t, 5, st.TaxRate, 1e-9)
	assert.Equal(t, models.DefaultSettings().StoreName, st.StoreName)

	e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p2"})
	totals := decode[cart.Totals](t, e.do(http.MethodGet, "/api/pos/checkout/preview", e.jane, nil))
	assert.InDelta(t, 0.5, totals.Tax, 1e-9)

	st = decode[models.Settings](t, e.do(http.MethodPost, "/api/settings/reset", e.admin, nil))
	assert.Equal(t, models.DefaultSettings(), st)
}

func TestOrdersAndReceipts(t *testing.T) {
	e := newEnv(t)

	e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p2"})
	e.do(http.MethodPost, "/api/pos/checkout/method", e.jane, gin.H{"payment_method": "cash"})
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/pos/checkout/pay", e.jane, nil).Code)

	var list struct {
		Orders []models.Order      `json:"orders"`
		Totals report.PeriodTotals `json:"totals"`
	}
	w := e.do(http.MethodGet, "/api/orders", e.jane, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Orders, 1)
	assert.Equal(t, 1, list.Totals.Count)
	assert.InDelta(t, 11, list.Totals.Revenue, 1e-9)

	w = e.do(http.MethodGet, "/api/orders?q=TRX-9", e.jane, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Orders)
	assert.Zero(t, list.Totals.Count)

	w = e.do(http.MethodGet, "/api/orders/TRX-1/receipt?format=text", e.jane, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MY RETAIL POS")
	assert.Contains(t, w.Body.String(), "#TRX-1")

	w = e.do(http.MethodGet, "/api/orders/TRX-1/receipt?format=html", e.jane, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = e.do(http.MethodGet, "/api/orders/TRX-1/receipt/qr", e.jane, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = e.do(http.MethodPost, "/api/orders/TRX-1/receipt/email", e.jane, gin.H{"email": "client@shop.test"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/orders/TRX-404/receipt", e.jane, nil).Code)
}

func TestDashboardAndReports(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/dashboard", e.jane, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		Stats    models.DashboardStats `json:"stats"`
		LowStock []models.Product      `json:"low_stock"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Equal(t, 1, dash.Stats.LowStockCount)
	assert.Len(t, dash.LowStock, 1)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/reports", e.jane, nil).Code)
	w = e.do(http.MethodGet, "/api/reports", e.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rep := decode[report.Report](t, w)
	assert.Zero(t, rep.TotalOrders)
	// variante 10 x 70 + mug 3 x 4 au coût
	assert.InDelta(t, 712, rep.Inventory.CostValue, 1e-9)
}

func TestCartWebSocketRequiresAuth(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/pos/cart/ws", "", nil).Code)
}

func withElastic(t *testing.T, handler http.HandlerFunc) func(*handlers.Deps) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return func(d *handlers.Deps) {
		d.Search = services.NewProductIndex(client, "pos_products", d.Log)
	}
}

func TestListProductsUsesSearchIndex(t *testing.T) {
	e := newEnv(t, withElastic(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"p2"},{"_id":"ghost"},{"_id":"p1"}]}}`))
	}))

	// Ordre de pertinence conservé, IDs inconnus ignorés
	list := decode[[]models.Product](t, e.do(http.MethodGet, "/api/products?q=tasse", e.jane, nil))
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID)
	assert.Equal(t, "p1", list[1].ID)

	list = decode[[]models.Product](t, e.do(http.MethodGet, "/api/products?q=tasse&category=Apparel", e.jane, nil))
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ID)
}

func TestListProductsFallsBackWhenSearchFails(t *testing.T) {
	e := newEnv(t, withElastic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))

	list := decode[[]models.Product](t, e.do(http.MethodGet, "/api/products?q=mug", e.jane, nil))
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ID)
}

func TestCartWebSocketPushesUpdates(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+e.jane)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/pos/cart/ws", header)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "connected", msg["type"])

	e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p2"})

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "cart_updated", msg["type"])
	assert.EqualValues(t, 1, msg["count"])

	e.do(http.MethodDelete, "/api/pos/cart", e.jane, nil)

	msg = nil
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "cart_cleared", msg["type"])
	assert.EqualValues(t, 0, msg["count"])
}

func TestOutOfStockVariantRefused(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.store.GetProduct(ctx, "p1")
	require.NoError(t, err)
	p.Variants[0].Stock = 0
	_, err = e.store.UpdateProduct(ctx, "p1", p)
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p1", "variant_id": "v1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = e.do(http.MethodPost, "/api/pos/cart/scan", e.jane, gin.H{"barcode": "222222222222"})
	assert.Equal(t, http.StatusConflict, w.Code)

	c := decode[cartResponse](t, e.do(http.MethodGet, "/api/pos/cart", e.jane, nil))
	assert.Empty(t, c.Items)
}

// flakySettings échoue à la demande.
type flakySettings struct {
	settings.Store
	fail atomic.Bool
}

func (f *flakySettings) Get(ctx context.Context) (models.Settings, error) {
	if f.fail.Load() {
		return models.Settings{}, errors.New("settings indisponibles")
	}
	return f.Store.Get(ctx)
}

func TestCartWebSocketLogsPayloadErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	st := &flakySettings{Store: settings.NewMemoryStore()}
	e := newEnv(t, func(d *handlers.Deps) {
		d.Log = zap.New(core)
		d.Settings = st
	})
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+e.jane)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/pos/cart/ws", header)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "connected", msg["type"])

	st.fail.Store(true)
	e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p2"})
	assert.Eventually(t, func() bool {
		return logs.FilterMessage("⚠️ Calcul panier WebSocket").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// la connexion survit à l'erreur
	st.fail.Store(false)
	e.do(http.MethodPost, "/api/pos/cart/items", e.jane, gin.H{"product_id": "p2"})
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "cart_updated", msg["type"])
	assert.EqualValues(t, 2, msg["count"])
}
