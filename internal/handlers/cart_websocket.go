package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Les origines sont déjà filtrées par le middleware CORS
		return true
	},
}

// CartWebSocket pousse le panier du caissier à chaque modification
// (autre onglet, autre caisse connectée au même compte).
func (h *Handler) CartWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("❌ Erreur upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	events, unsubscribe := h.Carts.Subscribe(ctx, userID)
	defer unsubscribe()

	// Lecture en tâche de fond : détecte la fermeture côté client
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Synchronisation panier activée"}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			ct, err := h.Carts.Get(ctx, userID)
			if err != nil {
				h.Log.Warn("⚠️ Lecture panier WebSocket", zap.String("user_id", userID), zap.Error(err))
				continue
			}
			payload, err := h.cartPayload(c, ct)
			if err != nil {
				h.Log.Warn("⚠️ Calcul panier WebSocket", zap.String("user_id", userID), zap.Error(err))
				continue
			}
			payload["type"] = "cart_" + event
			if err := conn.WriteJSON(payload); err != nil {
				h.Log.Debug("❌ Erreur envoi WebSocket", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
