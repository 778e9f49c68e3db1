package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pos_back_end/internal/handlers"
	"pos_back_end/internal/middleware"
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handler) {
	r.Use(cors.New(corsConfig(h.Config.Server.CORSOrigins)))

	r.GET("/health", h.Health)

	api := r.Group("/api")

	// Auth
	api.POST("/auth/login", middleware.LoginRateLimit(h.Redis), h.Login)

	auth := api.Group("", middleware.AuthRequired(h.Config.JWT.Secret, h.Tokens, h.Log))
	admin := auth.Group("", middleware.RequireAdmin)

	auth.POST("/auth/logout", h.Logout)

	// Users
	auth.GET("/users/me", h.Me)
	admin.GET("/users", h.ListUsers)

	// Caisse : panier
	pos := auth.Group("/pos")
	pos.GET("/cart", h.GetCart)
	pos.DELETE("/cart", h.ClearCart)
	pos.POST("/cart/items", h.AddToCart)
	pos.PUT("/cart/items/:productId", h.UpdateCartItem)
	pos.DELETE("/cart/items/:productId", h.RemoveCartItem)
	pos.POST("/cart/scan", middleware.ScanRateLimit(h.Redis), h.ScanBarcode)
	pos.GET("/cart/ws", h.CartWebSocket)

	// Caisse : encaissement
	pos.GET("/checkout", h.CheckoutState)
	pos.GET("/checkout/preview", h.CheckoutPreview)
	pos.POST("/checkout/method", h.SelectPaymentMethod)
	pos.POST("/checkout/pay", h.Pay)
	pos.POST("/checkout/close", h.CloseCheckout)

	// Produits
	auth.GET("/products", h.ListProducts)
	auth.GET("/products/categories", h.GetCategories)
	auth.GET("/products/low-stock", h.LowStockProducts)
	auth.GET("/products/:id", h.GetProduct)
	auth.GET("/products/:id/movements", h.StockMovements)
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.POST("/products/variants/generate", h.GenerateVariants)
	admin.POST("/products/:id/images", h.UploadProductImage)

	// Fournisseurs & achats
	auth.GET("/suppliers", h.ListSuppliers)
	auth.GET("/suppliers/:id", h.GetSupplier)
	admin.POST("/suppliers", h.CreateSupplier)
	admin.PUT("/suppliers/:id", h.UpdateSupplier)

	auth.GET("/purchases", h.ListPurchases)
	admin.POST("/purchases", h.CreatePurchase)
	admin.POST("/purchases/:id/receive", h.ReceivePurchase)

	// Ventes
	auth.GET("/orders", h.ListOrders)
	auth.GET("/orders/:id", h.GetOrder)
	auth.GET("/orders/:id/receipt", h.GetReceipt)
	auth.GET("/orders/:id/receipt/qr", h.GetReceiptQR)
	auth.POST("/orders/:id/receipt/email", h.EmailReceipt)

	// Tableau de bord & rapports
	auth.GET("/dashboard", h.Dashboard)
	admin.GET("/reports", h.Reports)

	// Réglages
	auth.GET("/settings", h.GetSettings)
	admin.PUT("/settings", h.UpdateSettings)
	admin.POST("/settings/reset", h.ResetSettings)
}

// corsConfig : sans origine configurée, toutes les origines sont acceptées (sans cookies).
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
