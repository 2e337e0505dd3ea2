package middleware

import (
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
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Environment: "test"},
		JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
		Security: config.SecurityConfig{
			SessionCookieName: "session_id",
			SessionCookieTTL:  time.Hour,
		},
	}
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSessionIssuesToken(t *testing.T) {
	engine := gin.New()
	engine.GET("/", Session(testConfig()), func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionTokenFromContext(c))
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Body.String()
	assert.Len(t, token, 36)
	assert.Equal(t, token, rec.Header().Get(SessionHeader))

	cookie := rec.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "session_id="+token)
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Lax")
}

func TestSessionReusesToken(t *testing.T) {
	engine := gin.New()
	engine.GET("/", Session(testConfig()), func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionTokenFromContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "from-header")
	rec := serve(engine, req)
	assert.Equal(t, "from-header", rec.Body.String())
	assert.Empty(t, rec.Header().Get("Set-Cookie"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "from-cookie"})
	rec = serve(engine, req)
	assert.Equal(t, "from-cookie", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, strings.Repeat("x", 65))
	rec = serve(engine, req)
	assert.Len(t, rec.Body.String(), 36)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	jwtManager := auth.NewJWTManager(cfg)

	engine := gin.New()
	engine.GET("/me", AuthMiddleware(jwtManager), func(c *gin.Context) {
		id, ok := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok, "admin": IsAdminFromContext(c)})
	})
	engine.GET("/admin", AuthMiddleware(jwtManager), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	userToken, err := jwtManager.GenerateAccessToken(5, "buyer@example.com", false)
	require.NoError(t, err)
	adminToken, err := jwtManager.GenerateAccessToken(1, "admin@example.com", true)
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized},
		{"bad token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "/me", "Bearer " + userToken, http.StatusOK},
		{"lowercase scheme", "/me", "bearer " + userToken, http.StatusOK},
		{"non admin", "/admin", "Bearer " + userToken, http.StatusForbidden},
		{"admin", "/admin", "Bearer " + adminToken, http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := serve(engine, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	jwtManager := auth.NewJWTManager(testConfig())

	engine := gin.New()
	engine.GET("/", OptionalAuthMiddleware(jwtManager), func(c *gin.Context) {
		if _, ok := GetUserIDFromContext(c); ok {
			c.String(http.StatusOK, "user")
			return
		}
		c.String(http.StatusOK, "guest")
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "guest", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired-or-garbage")
	rec = serve(engine, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest", rec.Body.String())

	token, err := jwtManager.GenerateAccessToken(9, "buyer@example.com", false)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = serve(engine, req)
	assert.Equal(t, "user", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	engine := gin.New()
	engine.Use(RateLimit(client, 2, logger.Discard()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// another client has its own window
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	rec = serve(engine, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// the limiter fails open
	mr.Close()
	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = serve(engine, req)
	assert.Equal(t, "abc-123", rec.Body.String())
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.Security.CORSAllowedOrigins = []string{"https://shop.example.com", "*.partner.test"}
	cfg.Security.CORSAllowedMethods = []string{"GET", "POST"}

	engine := gin.New()
	engine.Use(CORS(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		origin  string
		allowed bool
	}{
		{"https://shop.example.com", true},
		{"https://a.partner.test", true},
		{"https://evil.test", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", tc.origin)
		rec := serve(engine, req)
		if tc.allowed {
			assert.Equal(t, tc.origin, rec.Header().Get("Access-Control-Allow-Origin"), tc.origin)
		} else {
			assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), tc.origin)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := serve(engine, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestRequestSizeLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestSizeLimit(8))
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	engine := gin.New()
	engine.Use(Timeout(time.Second))
	engine.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
