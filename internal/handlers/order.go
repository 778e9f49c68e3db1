package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_back_end/internal/receipt"
	"pos_back_end/internal/report"
	"pos_back_end/internal/services"
	"pos_back_end/internal/store"
)

type receiptEmailInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ListOrders : historique filtré par ?q= (ID de transaction) avec les totaux de la sélection.
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.Mock.Orders(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	filtered := store.FilterOrders(orders, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"orders": filtered,
		"totals": report.Period(filtered),
	})
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.Store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Commande non trouvée")
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) buildReceipt(c *gin.Context) (receipt.Receipt, bool) {
	ctx := c.Request.Context()
	o, err := h.Store.GetOrder(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Commande non trouvée")
		return receipt.Receipt{}, false
	}
	st, err := h.Settings.Get(ctx)
	if err != nil {
		h.respondError(c, err, "")
		return receipt.Receipt{}, false
	}
	return receipt.Build(o, st), true
}

// GetReceipt : ?format=text|html, JSON par défaut.
func (h *Handler) GetReceipt(c *gin.Context) {
	r, ok := h.buildReceipt(c)
	if !ok {
		return
	}

	switch c.Query("format") {
	case "text":
		c.String(http.StatusOK, r.Text())
	case "html":
		html, err := r.HTML()
		if err != nil {
			h.respondError(c, err, "")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	default:
		c.JSON(http.StatusOK, r)
	}
}

func (h *Handler) GetReceiptQR(c *gin.Context) {
	r, ok := h.buildReceipt(c)
	if !ok {
		return
	}
	png, err := r.QRCode()
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// EmailReceipt envoie le ticket au client par SMTP.
func (h *Handler) EmailReceipt(c *gin.Context) {
	var input receiptEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	r, ok := h.buildReceipt(c)
	if !ok {
		return
	}

	if err := h.Mailer.SendReceipt(c.Request.Context(), input.Email, r); err != nil {
		if errors.Is(err, services.ErrMailerDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Envoi d'email non configuré"})
			return
		}
		h.Log.Warn("❌ Erreur envoi ticket", zap.String("order_id", r.TransactionID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur lors de l'envoi de l'email"})
		return
	}

	h.Log.Info("📧 Ticket envoyé", zap.String("order_id", r.TransactionID))
	c.JSON(http.StatusOK, gin.H{"message": "Ticket envoyé"})
}
