package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pos_back_end/internal/cache"
	"pos_back_end/internal/models"
	"pos_back_end/internal/utils"
)

const secret = "test_secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(secret, nil, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	r.GET("/admin", AuthRequired(secret, nil, zap.NewNop()), RequireAdmin, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(models.User{ID: "1", Email: "a@pos.com", Role: role}, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := protectedRouter()

	assert.Equal(t, http.StatusUnauthorized, do(r, "GET", "/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "GET", "/me", "Token abc", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "GET", "/me", "Bearer not.a.jwt", "").Code)

	w := do(r, "GET", "/me", "Bearer "+token(t, models.RoleCashier), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"1","role":"cashier"}`, w.Body.String())
}

func TestAuthRequiredRejectsOtherSecret(t *testing.T) {
	tok, err := utils.GenerateJWT(models.User{ID: "1", Role: models.RoleAdmin}, "other", time.Hour)
	require.NoError(t, err)

	w := do(protectedRouter(), "GET", "/me", "Bearer "+tok, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsRevokedToken(t *testing.T) {
	blacklist := cache.NewBlacklist(nil, zap.NewNop())
	tok := token(t, models.RoleCashier)
	claims, err := utils.ParseJWT(tok, secret)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthRequired(secret, blacklist, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token_id": c.GetString("token_id")})
	})

	w := do(r, "GET", "/me", "Bearer "+tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), claims.ID)

	require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, do(r, "GET", "/me", "Bearer "+tok, "").Code)
}

func TestRequireAdmin(t *testing.T) {
	r := protectedRouter()

	assert.Equal(t, http.StatusForbidden, do(r, "GET", "/admin", "Bearer "+token(t, models.RoleCashier), "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "GET", "/admin", "Bearer "+token(t, models.RoleAdmin), "").Code)
}

func loginRouter(rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.POST("/login", LoginRateLimit(rdb), func(c *gin.Context) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&in)
		if in.Password != "good" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": in.Email})
	})
	return r
}

func TestLoginRateLimitBlocksAfterFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := loginRouter(rdb)

	bad := `{"email":"jane@pos.com","password":"bad"}`
	for i := 0; i < LoginMaxAttempts; i++ {
		assert.Equal(t, http.StatusUnauthorized, do(r, "POST", "/login", "", bad).Code)
	}

	w := do(r, "POST", "/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, mr.Exists("login_cooldown:jane@pos.com"))

	// Même le bon mot de passe est bloqué pendant le cooldown
	good := `{"email":"JANE@pos.com","password":"good"}`
	assert.Equal(t, http.StatusTooManyRequests, do(r, "POST", "/login", "", good).Code)

	mr.FastForward(LoginCooldown + time.Second)
	assert.Equal(t, http.StatusOK, do(r, "POST", "/login", "", good).Code)
}

func TestLoginRateLimitResetsOnSuccess(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := loginRouter(rdb)

	do(r, "POST", "/login", "", `{"email":"jane@pos.com","password":"bad"}`)
	assert.True(t, mr.Exists("login_attempts:jane@pos.com"))

	w := do(r, "POST", "/login", "", `{"email":"jane@pos.com","password":"good"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, mr.Exists("login_attempts:jane@pos.com"))
}

func TestLoginRateLimitWithoutRedis(t *testing.T) {
	r := loginRouter(nil)
	for i := 0; i < LoginMaxAttempts+2; i++ {
		assert.Equal(t, http.StatusUnauthorized, do(r, "POST", "/login", "", `{"email":"x@pos.com","password":"bad"}`).Code)
	}
}

func TestScanRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, rdb.Set(context.Background(), "scan_requests:1", ScanMaxRequests-1, time.Minute).Err())

	r := gin.New()
	r.POST("/scan", func(c *gin.Context) { c.Set("user_id", "1") }, ScanRateLimit(rdb), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := do(r, "POST", "/scan", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusTooManyRequests, do(r, "POST", "/scan", "", "").Code)
}
