package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"covid-testing-server/internal/config"
	"covid-testing-server/internal/models"
	"covid-testing-server/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

func tokenFor(t *testing.T, id string, role models.Role) string {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:                 testSecret,
		JWTRefreshSecret:          "refresh",
		JWTExpirationMinutes:      5,
		JWTRefreshExpirationHours: 1,
	}
	access, _, err := utils.GenerateTokens(&models.User{BaseModel: models.BaseModel{ID: id}, Role: role}, cfg)
	require.NoError(t, err)
	return access
}

func newGuardedRouter(roles ...models.Role) *gin.Engine {
	r := gin.New()
	r.GET("/guarded", AuthMiddleware(testSecret), RoleAuthMiddleware(roles...), func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		role, _ := GetUserRoleFromContext(c)
		c.String(http.StatusOK, id+":"+string(role))
	})
	return r
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing", "", ""},
		{"no scheme", "abc123", ""},
		{"basic auth", "Basic abc123", ""},
		{"only bearer", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			assert.Equal(t, tt.want, extractBearerToken(c))
		})
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	r := newGuardedRouter(models.RoleDoctor)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r := newGuardedRouter(models.RoleDoctor)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestRoleAuthMiddleware(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want int
	}{
		{"allowed doctor", models.RoleDoctor, http.StatusOK},
		{"tester refused", models.RoleTester, http.StatusForbidden},
		{"patient refused", models.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newGuardedRouter(models.RoleDoctor)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, "user-9", tt.role))

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "user-9:DOCTOR", w.Body.String())
			}
		})
	}
}

func TestRoleAuthMiddleware_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/", RoleAuthMiddleware(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestLoggerAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), Recovery(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 2)
	assert.Equal(t, int64(http.StatusOK), requests[0].ContextMap()["status"])
	assert.Equal(t, int64(http.StatusInternalServerError), requests[1].ContextMap()["status"])
}
