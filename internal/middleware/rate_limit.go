package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	LoginMaxAttempts = 5
	ScanMaxRequests  = 120 // Par minute et par caissier

	LoginCooldown = 15 * time.Minute
	ScanWindow    = 1 * time.Minute
)

// LoginRateLimit limite les tentatives de connexion par email.
// Sans Redis, le middleware laisse tout passer.
func LoginRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(input.Email))
		key := "login_attempts:" + email
		cooldownKey := "login_cooldown:" + email

		if ttl := rdb.TTL(ctx, cooldownKey).Val(); ttl > 0 {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		attempts, _ := rdb.Get(ctx, key).Int()
		if attempts >= LoginMaxAttempts {
			rdb.Set(ctx, cooldownKey, "1", LoginCooldown)
			rdb.Del(ctx, key)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			pipe := rdb.Pipeline()
			pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, LoginCooldown)
			_, _ = pipe.Exec(ctx)
		case http.StatusOK:
			rdb.Del(ctx, key, cooldownKey)
		}
	}
}

// ScanRateLimit limite les scans de code-barres (douchette qui s'emballe).
func ScanRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if rdb == nil || userID == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "scan_requests:" + userID

		requests, _ := rdb.Get(ctx, key).Int()
		if requests >= ScanMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de scans. Réessayez dans 1 minute",
				"retry_after": int(ScanWindow.Seconds()),
			})
			c.Abort()
			return
		}

		pipe := rdb.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ScanWindow)
		_, _ = pipe.Exec(ctx)

		c.Header("X-RateLimit-Limit", strconv.Itoa(ScanMaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(ScanMaxRequests-requests-1))
		c.Next()
	}
}
