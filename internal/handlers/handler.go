// Package handlers expose l'API HTTP du point de vente.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pos_back_end/internal/cache"
	"pos_back_end/internal/cart"
	"pos_back_end/internal/checkout"
	"pos_back_end/internal/config"
	"pos_back_end/internal/mockdata"
	"pos_back_end/internal/services"
	"pos_back_end/internal/settings"
	"pos_back_end/internal/store"
)

// Deps : dépendances injectées dans les handlers.
// Search, Images et Mailer peuvent être désactivés (client nil).
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    *store.Store
	Mock     *mockdata.Service
	Carts    *cart.Service
	Checkout *checkout.Manager
	Settings settings.Store
	Search   *services.ProductIndex
	Images   *services.ImageStore
	Mailer   *services.Mailer
	Tokens   *cache.Blacklist
	Redis    *redis.Client
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	return &Handler{Deps: d}
}

// badRequest : erreur de validation du formulaire.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
}

// respondError traduit les erreurs métier en code HTTP.
func (h *Handler) respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, store.ErrDuplicateSKU):
		c.JSON(http.StatusConflict, gin.H{"error": "Ce SKU existe déjà"})
	case errors.Is(err, store.ErrInvalidStatus):
		c.JSON(http.StatusConflict, gin.H{"error": "Statut de commande fournisseur invalide"})
	case errors.Is(err, cart.ErrUnknownVariant):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Variante inconnue"})
	case errors.Is(err, cart.ErrVariantRequired), errors.Is(err, store.ErrVariantRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Choisissez une variante"})
	case errors.Is(err, cart.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Variante en rupture de stock"})
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Article absent du panier"})
	case errors.Is(err, checkout.ErrNoPaymentMethod),
		errors.Is(err, checkout.ErrInvalidMethod),
		errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrPaymentInProgress),
		errors.Is(err, checkout.ErrInvalidStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Requête annulée"})
	default:
		h.Log.Error("❌ Erreur interne", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
	}
}

// Health : état des services optionnels.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"redis":         h.Redis != nil,
		"elasticsearch": h.Search.Enabled(),
		"minio":         h.Images.Enabled(),
		"smtp":          h.Mailer.Enabled(),
	})
}
