package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_back_end/internal/utils"
)

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login : connexion d'un caissier ou d'un admin, retourne un JWT.
func (h *Handler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, found, err := h.Mock.Login(c.Request.Context(), input.Email)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil {
		h.Log.Warn("⚠️ Hash de mot de passe illisible", zap.String("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user, h.Config.JWT.Secret, h.Config.JWT.TTL)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	h.Log.Info("🔑 Connexion", zap.String("user_id", user.ID), zap.String("role", user.Role))
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout révoque le token courant jusqu'à son expiration.
func (h *Handler) Logout(c *gin.Context) {
	exp, _ := c.Get("token_exp")
	expiresAt, _ := exp.(time.Time)

	if err := h.Tokens.Revoke(c.Request.Context(), c.GetString("token_id"), time.Until(expiresAt)); err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// Me : profil de l'utilisateur connecté.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err, "Utilisateur non trouvé")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.ListUsers(c.Request.Context()))
}
