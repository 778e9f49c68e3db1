package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos_back_end/internal/models"
)

type methodInput struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
}

func (h *Handler) CheckoutState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Checkout.State(c.GetString("user_id")))
}

// CheckoutPreview : montants affichés avant paiement.
func (h *Handler) CheckoutPreview(c *gin.Context) {
	totals, err := h.Checkout.Preview(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *Handler) SelectPaymentMethod(c *gin.Context) {
	var input methodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.Checkout.SelectMethod(c.GetString("user_id"), input.PaymentMethod)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, session)
}

// Pay bloque pendant le délai de paiement simulé.
func (h *Handler) Pay(c *gin.Context) {
	session, err := h.Checkout.Pay(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) CloseCheckout(c *gin.Context) {
	session, err := h.Checkout.Close(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, session)
}
