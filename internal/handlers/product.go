package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_back_end/internal/models"
	"pos_back_end/internal/store"
)

const (
	searchLimit  = 50
	maxImageSize = 5 << 20 // 5 MB
)

// ListProducts : catalogue complet, filtré par ?q= et ?category=.
// La recherche texte passe par Elasticsearch quand il est disponible.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	products, err := h.Mock.Products(ctx)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	category := c.Query("category")

	if query != "" && h.Search.Enabled() {
		if found, ok := h.searchProducts(ctx, products, query); ok {
			c.JSON(http.StatusOK, store.FilterProducts(found, "", category))
			return
		}
	}
	c.JSON(http.StatusOK, store.FilterProducts(products, query, category))
}

// searchProducts garde l'ordre de pertinence ; false = repli sur le filtre en mémoire.
func (h *Handler) searchProducts(ctx context.Context, products []models.Product, query string) ([]models.Product, bool) {
	ids, err := h.Search.Search(ctx, query, searchLimit)
	if err != nil {
		h.Log.Warn("⚠️ Recherche Elasticsearch indisponible, filtre en mémoire", zap.Error(err))
		return nil, false
	}

	byID := store.ByIDs(products)
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, true
}

func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.Store.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Produit non trouvé")
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetCategories : "All" en tête, comme le filtre de la caisse.
func (h *Handler) GetCategories(c *gin.Context) {
	categories := append([]string{store.AllCategories}, h.Store.Categories(c.Request.Context())...)
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) LowStockProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.LowStock(c.Request.Context()))
}

func (h *Handler) StockMovements(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.Store.GetProduct(ctx, id); err != nil {
		h.respondError(c, err, "Produit non trouvé")
		return
	}
	c.JSON(http.StatusOK, h.Store.ListMovements(ctx, id))
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.Store.CreateProduct(c.Request.Context(), store.ProductFromInput(input))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	h.reindex(c.Request.Context(), p)

	h.Log.Info("✅ Produit créé", zap.String("product_id", p.ID), zap.String("sku", p.SKU))
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.Store.UpdateProduct(c.Request.Context(), c.Param("id"), store.ProductFromInput(input))
	if err != nil {
		h.respondError(c, err, "Produit non trouvé")
		return
	}
	h.reindex(c.Request.Context(), p)

	c.JSON(http.StatusOK, p)
}

// GenerateVariants : grille taille x couleur à partir du SKU et du code-barres de base.
func (h *Handler) GenerateVariants(c *gin.Context) {
	var req store.VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, store.GenerateVariants(req))
}

// UploadProductImage : envoi multipart "file" vers MinIO puis ajout au produit.
func (h *Handler) UploadProductImage(c *gin.Context) {
	if !h.Images.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stockage d'images non configuré"})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.Store.GetProduct(ctx, id); err != nil {
		h.respondError(c, err, "Produit non trouvé")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier manquant"})
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image trop volumineuse (5 MB max)"})
		return
	}

	url, err := h.Images.Upload(ctx, id, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.Log.Warn("❌ Erreur upload image", zap.String("product_id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Upload impossible", "details": err.Error()})
		return
	}

	p, err := h.Store.SetProductImages(ctx, id, url)
	if err != nil {
		h.respondError(c, err, "Produit non trouvé")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "✅ Image uploadée avec succès",
		"image_url": url,
		"product":   p,
	})
}

// reindex met à jour l'index de recherche ; un échec n'empêche pas l'écriture.
func (h *Handler) reindex(ctx context.Context, p models.Product) {
	if !h.Search.Enabled() {
		return
	}
	if err := h.Search.Index(ctx, p); err != nil {
		h.Log.Warn("⚠️ Indexation produit", zap.String("product_id", p.ID), zap.Error(err))
	}
}
