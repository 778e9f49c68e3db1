package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos_back_end/internal/report"
)

// Dashboard : indicateurs, graphique des dernières ventes et alertes de stock.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.Mock.Stats(ctx)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":     stats,
		"sales":     report.SalesChart(h.Store.ListOrders(ctx)),
		"low_stock": report.LowStock(h.Store.ListProducts(ctx), report.LowStockLimit),
	})
}

func (h *Handler) Reports(c *gin.Context) {
	ctx := c.Request.Context()
	orders, err := h.Mock.Orders(ctx)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	products, err := h.Mock.Products(ctx)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, report.Build(orders, products))
}
