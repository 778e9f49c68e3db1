package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_back_end/internal/models"
)

// ListPurchases : ?supplier_id= restreint à un fournisseur.
func (h *Handler) ListPurchases(c *gin.Context) {
	purchases, err := h.Mock.Purchases(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	supplierID := c.Query("supplier_id")
	if supplierID == "" {
		c.JSON(http.StatusOK, purchases)
		return
	}
	out := []models.PurchaseOrder{}
	for _, po := range purchases {
		if po.SupplierID == supplierID {
			out = append(out, po)
		}
	}
	c.JSON(http.StatusOK, out)
}

// CreatePurchase : un bon reçu (statut par défaut) réapprovisionne immédiatement.
func (h *Handler) CreatePurchase(c *gin.Context) {
	var input models.PurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	po, err := h.Store.CreatePurchase(c.Request.Context(), models.PurchaseOrder{
		SupplierID: input.SupplierID,
		Items:      input.Items,
		Status:     input.Status,
	})
	if err != nil {
		h.respondError(c, err, "Fournisseur ou produit non trouvé")
		return
	}

	h.Log.Info("📦 Bon d'achat créé",
		zap.String("purchase_id", po.ID),
		zap.String("status", string(po.Status)),
		zap.Float64("total", po.TotalAmount),
	)
	c.JSON(http.StatusCreated, po)
}

func (h *Handler) ReceivePurchase(c *gin.Context) {
	po, err := h.Store.ReceivePurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Bon d'achat non trouvé")
		return
	}
	h.Log.Info("📦 Bon d'achat reçu", zap.String("purchase_id", po.ID))
	c.JSON(http.StatusOK, po)
}
