package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_back_end/internal/models"
)

func (h *Handler) GetSettings(c *gin.Context) {
	st, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, st)
}

// UpdateSettings applique uniquement les champs envoyés.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch models.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	st, err := h.Settings.Update(c.Request.Context(), patch)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	h.Log.Info("⚙️ Réglages mis à jour", zap.String("user_id", c.GetString("user_id")))
	c.JSON(http.StatusOK, st)
}

func (h *Handler) ResetSettings(c *gin.Context) {
	st, err := h.Settings.Reset(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, st)
}
