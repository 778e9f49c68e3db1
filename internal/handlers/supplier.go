package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_back_end/internal/models"
	"pos_back_end/internal/store"
)

// ListSuppliers : filtre ?q= sur le nom ou le contact.
func (h *Handler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.Mock.Suppliers(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, store.FilterSuppliers(suppliers, c.Query("q")))
}

func (h *Handler) GetSupplier(c *gin.Context) {
	sp, err := h.Store.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Fournisseur non trouvé")
		return
	}
	c.JSON(http.StatusOK, sp)
}

func supplierFromInput(in models.SupplierInput) models.Supplier {
	return models.Supplier{
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		Address:       strings.TrimSpace(in.Address),
	}
}

func (h *Handler) CreateSupplier(c *gin.Context) {
	var input models.SupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	sp, err := h.Store.CreateSupplier(c.Request.Context(), supplierFromInput(input))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	h.Log.Info("✅ Fournisseur créé", zap.String("supplier_id", sp.ID))
	c.JSON(http.StatusCreated, sp)
}

func (h *Handler) UpdateSupplier(c *gin.Context) {
	var input models.SupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	sp, err := h.Store.UpdateSupplier(c.Request.Context(), c.Param("id"), supplierFromInput(input))
	if err != nil {
		h.respondError(c, err, "Fournisseur non trouvé")
		return
	}
	c.JSON(http.StatusOK, sp)
}
