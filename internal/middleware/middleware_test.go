package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ocelo_loyalty_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	staff := engine.Group("/staff", AuthMiddleware(), RoleAuthMiddleware("staff"))
	staff.GET("", func(c *gin.Context) { c.String(http.StatusOK, Subject(c)) })
	return engine
}

func doGet(engine *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthAndRoleMiddleware(t *testing.T) {
	utils.InitJWT("middleware-secret", time.Hour)
	engine := newProtectedEngine()

	w := doGet(engine, "/staff", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doGet(engine, "/staff", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), utils.ErrCodeUnauthorized)

	customerToken, _, err := utils.GenerateAccessToken("user_1", "customer")
	require.NoError(t, err)
	w = doGet(engine, "/staff", customerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	staffToken, _, err := utils.GenerateAccessToken("admin", "staff")
	require.NoError(t, err)
	w = doGet(engine, "/staff", staffToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(2)
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	limiter.nowFunc = func() time.Time { return now }

	engine := gin.New()
	engine.POST("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, post())
	assert.Equal(t, http.StatusNoContent, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	now = now.Add(31 * time.Second)
	assert.Equal(t, http.StatusNoContent, post())
}
