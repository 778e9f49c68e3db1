package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos_back_end/internal/cart"
)

type cartItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id"`
}

type quantityInput struct {
	VariantID string `json:"variant_id"`
	Quantity  *int   `json:"quantity" binding:"required"`
}

type scanInput struct {
	Barcode string `json:"barcode" binding:"required"`
}

// cartPayload : lignes, nombre d'unités et montants au taux de taxe courant.
func (h *Handler) cartPayload(c *gin.Context, ct cart.Cart) (gin.H, error) {
	st, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return gin.H{
		"items":  ct.Snapshot(),
		"count":  ct.Count(),
		"totals": cart.Compute(ct.Items, st.TaxRate),
	}, nil
}

func (h *Handler) respondCart(c *gin.Context, ct cart.Cart, err error) {
	if err != nil {
		h.respondError(c, err, "Produit non trouvé")
		return
	}
	payload, err := h.cartPayload(c, ct)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) GetCart(c *gin.Context) {
	ct, err := h.Carts.Get(c.Request.Context(), c.GetString("user_id"))
	h.respondCart(c, ct, err)
}

func (h *Handler) AddToCart(c *gin.Context) {
	var input cartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	ct, err := h.Carts.Add(c.Request.Context(), c.GetString("user_id"), input.ProductID, input.VariantID)
	h.respondCart(c, ct, err)
}

// ScanBarcode : ajout au panier depuis la douchette.
func (h *Handler) ScanBarcode(c *gin.Context) {
	var input scanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	ct, err := h.Carts.Scan(c.Request.Context(), c.GetString("user_id"), input.Barcode)
	if err != nil {
		h.respondError(c, err, "Aucun produit pour ce code-barres")
		return
	}
	h.respondCart(c, ct, nil)
}

// UpdateCartItem : une quantité <= 0 retire la ligne.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var input quantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	key := cart.Key{ProductID: c.Param("productId"), VariantID: input.VariantID}
	ct, err := h.Carts.UpdateQuantity(c.Request.Context(), c.GetString("user_id"), key, *input.Quantity)
	h.respondCart(c, ct, err)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	key := cart.Key{ProductID: c.Param("productId"), VariantID: c.Query("variant_id")}
	ct, err := h.Carts.Remove(c.Request.Context(), c.GetString("user_id"), key)
	h.respondCart(c, ct, err)
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Carts.Clear(c.Request.Context(), c.GetString("user_id")); err != nil {
		h.respondError(c, err, "")
		return
	}
	h.respondCart(c, cart.Cart{}, nil)
}
