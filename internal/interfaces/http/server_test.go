package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
	"github.com/your-org/storefront-backend/internal/testutil"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	handler nethttp.Handler
	db      *gorm.DB
	cfg     *config.Config
	jwt     *auth.JWTManager
	mr      *miniredis.Miniredis
	product *catalog.Product
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func newTestEnv(t *testing.T, rateLimit int) *testEnv {
	t.Helper()

	gateway := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req payment.CreateOrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payment.RazorpayOrder{
			ID: "order_test123", Entity: "order", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created",
		})
	}))
	t.Cleanup(gateway.Close)

	mr := miniredis.RunT(t)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "storefront-test", Version: "test", Environment: "test"},
		Server: config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		Redis:  config.RedisConfig{Host: mr.Host(), Port: mr.Port(), PoolSize: 4},
		JWT:    config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
		Security: config.SecurityConfig{
			BcryptCost:         4,
			RateLimitPerMinute: rateLimit,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Session-ID"},
			SessionCookieName:  "session_id",
			SessionCookieTTL:   24 * time.Hour,
		},
		Payment: config.PaymentConfig{
			KeyID: "rzp_test_key", KeySecret: "rzp_test_secret", BaseURL: gateway.URL, Currency: "INR", Timeout: 2 * time.Second,
		},
		Order: config.OrderConfig{
			NumberPrefix: "ORD", TotalTolerance: decimal.RequireFromString("0.01"), CourierPartner: "BlueDart Express",
		},
		Company: config.CompanyConfig{Name: "Storefront Pvt Ltd"},
	}

	db := testutil.NewDB(t,
		&user.User{}, &catalog.Product{}, &catalog.PriceTier{},
		&cart.Cart{}, &cart.CartItem{},
		&order.Order{}, &order.OrderItem{}, &order.OrderStatusHistory{},
	)

	product := &catalog.Product{
		SKU: "CEM-50", Name: "Cement", BasePrice: decimal.RequireFromString("250.00"),
		TaxRate: decimal.RequireFromString("18"), IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)

	log := logger.Discard()
	redisClient, err := redis.NewConnection(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	users := user.NewService(db, auth.NewPasswordManager(cfg), log)
	products := catalog.NewService(db, redisClient.GetClient(), time.Minute, log)
	pricer := pricing.NewResolver(products)
	cartService := cart.NewService(db, pricer, log)
	paymentService := payment.NewService(cfg, payment.NewRazorpayGateway(cfg.Payment), log)
	orderService := order.NewService(db, cfg, products, paymentService, email.NewEmailService(cfg, users, log), log)
	jwtManager := auth.NewJWTManager(cfg)

	server := NewServer(cfg, log, redisClient.GetClient(), jwtManager,
		&routes.Handlers{
			Cart:       handlers.NewCartHandler(cartService),
			Order:      handlers.NewOrderHandler(orderService, pdf.NewService(cfg)),
			Payment:    handlers.NewPaymentHandler(paymentService),
			AdminOrder: handlers.NewAdminOrderHandler(orderService),
		},
		handlers.NewHealthHandler(cfg, map[string]handlers.HealthChecker{"redis": redisClient}),
	)

	return &testEnv{
		handler: server.Handler(),
		db:      db,
		cfg:     cfg,
		jwt:     jwtManager,
		mr:      mr,
		product: product,
	}
}

func (e *testEnv) token(t *testing.T, userID uint, admin bool) string {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken(userID, fmt.Sprintf("user%d@example.com", userID), admin)
	require.NoError(t, err)
	return token
}

type requestOption func(*nethttp.Request)

func withToken(token string) requestOption {
	return func(r *nethttp.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withSession(session string) requestOption {
	return func(r *nethttp.Request) { r.Header.Set("X-Session-ID", session) }
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeCart(t *testing.T, env envelope) cart.CartView {
	t.Helper()
	var view cart.CartView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

func checkoutBody() gin.H {
	return gin.H{
		"subtotal":         "500.00",
		"discount":         "0",
		"cgst":             "45.00",
		"sgst":             "45.00",
		"delivery_charges": "0",
		"total":            "590.00",
		"delivery_address": "12 MG Road, Bengaluru",
		"delivery_option":  "standard",
		"payment_method":   "upi",
	}
}

func TestGuestCartFlow(t *testing.T) {
	env := newTestEnv(t, 1000)

	rec, body := env.do(t, nethttp.MethodPost, "/api/v1/cart/items", gin.H{"product_id": env.product.ID, "quantity": 2})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	session := rec.Header().Get("X-Session-ID")
	require.NotEmpty(t, session)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "session_id="+session)

	view := decodeCart(t, body)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.TotalItems)
	assert.True(t, view.TotalPrice.Equal(decimal.RequireFromString("500")))

	// same session keeps the same cart and folds the line
	rec, body = env.do(t, nethttp.MethodPost, "/api/v1/cart/items", gin.H{"product_id": env.product.ID, "quantity": 1}, withSession(session))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, session, rec.Header().Get("X-Session-ID"))
	view = decodeCart(t, body)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)

	itemPath := fmt.Sprintf("/api/v1/cart/items/%d", view.Items[0].ID)
	rec, body = env.do(t, nethttp.MethodPut, itemPath, gin.H{"quantity": 5}, withSession(session))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, 5, decodeCart(t, body).TotalItems)

	// another session cannot touch the line
	rec, body = env.do(t, nethttp.MethodDelete, itemPath, nil, withSession("someone-else"))
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body.Code)

	rec, body = env.do(t, nethttp.MethodDelete, itemPath, nil, withSession(session))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, body).Items)

	rec, _ = env.do(t, nethttp.MethodDelete, "/api/v1/cart", nil, withSession(session))
	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestCartErrorMapping(t *testing.T) {
	env := newTestEnv(t, 1000)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown product", nethttp.MethodPost, "/api/v1/cart/items", gin.H{"product_id": 9999, "quantity": 1}, nethttp.StatusNotFound, "not_found"},
		{"zero quantity", nethttp.MethodPost, "/api/v1/cart/items", gin.H{"product_id": env.product.ID, "quantity": 0}, nethttp.StatusBadRequest, "invalid_argument"},
		{"malformed body", nethttp.MethodPost, "/api/v1/cart/items", "{", nethttp.StatusBadRequest, "invalid_argument"},
		{"bad item id", nethttp.MethodPut, "/api/v1/cart/items/abc", gin.H{"quantity": 1}, nethttp.StatusBadRequest, "invalid_argument"},
		{"missing item", nethttp.MethodDelete, "/api/v1/cart/items/424242", nil, nethttp.StatusNotFound, "not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := env.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestMergeThenCheckout(t *testing.T) {
	env := newTestEnv(t, 1000)
	buyer := env.token(t, 7, false)

	rec, _ := env.do(t, nethttp.MethodPost, "/api/v1/cart/items", gin.H{"product_id": env.product.ID, "quantity": 2})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	session := rec.Header().Get("X-Session-ID")

	rec, body := env.do(t, nethttp.MethodPost, "/api/v1/cart/merge", nil, withSession(session), withToken(buyer))
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	merged := decodeCart(t, body)
	assert.Equal(t, 2, merged.TotalItems)
	require.NotNil(t, merged.UserID)
	assert.Equal(t, uint(7), *merged.UserID)

	rec, body = env.do(t, nethttp.MethodPost, "/api/v1/orders", checkoutBody(), withToken(buyer))
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	var created order.Order
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Regexp(t, `^ORD\d{12}$`, created.OrderNumber)
	assert.Equal(t, order.OrderStatusPending, created.Status)
	require.Len(t, created.Items, 1)
	assert.Equal(t, 2, created.Items[0].Quantity)

	// cart emptied by checkout
	rec, body = env.do(t, nethttp.MethodGet, "/api/v1/cart", nil, withToken(buyer))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, body).Items)

	rec, body = env.do(t, nethttp.MethodGet, "/api/v1/orders?page=1&limit=10", nil, withToken(buyer))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var list order.OrderListResponse
	require.NoError(t, json.Unmarshal(body.Data, &list))
	require.Len(t, list.Orders, 1)
	assert.EqualValues(t, 1, list.Pagination.Total)

	rec, _ = env.do(t, nethttp.MethodGet, "/api/v1/orders/"+created.OrderNumber, nil, withToken(buyer))
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	rec, body = env.do(t, nethttp.MethodGet, "/api/v1/orders/"+created.OrderNumber, nil, withToken(env.token(t, 8, false)))
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body.Code)
}

func TestCheckoutRejectsInconsistentTotals(t *testing.T) {
	env := newTestEnv(t, 1000)
	buyer := env.token(t, 7, false)

	req := checkoutBody()
	req["items"] = []gin.H{{"product_id": env.product.ID, "quantity": 2}}
	req["total"] = "600.00"

	rec, body := env.do(t, nethttp.MethodPost, "/api/v1/orders", req, withToken(buyer))
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_argument", body.Code)

	var count int64
	require.NoError(t, env.db.Model(&order.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckoutWithBadPaymentSignature(t *testing.T) {
	env := newTestEnv(t, 1000)

	req := checkoutBody()
	req["items"] = []gin.H{{"product_id": env.product.ID, "quantity": 2}}
	req["payment_method"] = "card"
	req["payment"] = gin.H{
		"razorpay_order_id":   "order_test123",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "deadbeef",
	}

	rec, body := env.do(t, nethttp.MethodPost, "/api/v1/orders", req, withToken(env.token(t, 7, false)))
	assert.Equal(t, nethttp.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "signature_invalid", body.Code)
	assert.Equal(t, "payment verification failed", body.Error)
}

func TestPaymentEndpoints(t *testing.T) {
	env := newTestEnv(t, 1000)
	buyer := env.token(t, 7, false)

	rec, body := env.do(t, nethttp.MethodPost, "/api/v1/payment/intent", gin.H{"amount": "499.99"}, withToken(buyer))
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	var intent payment.Intent
	require.NoError(t, json.Unmarshal(body.Data, &intent))
	assert.Equal(t, "order_test123", intent.IntentID)
	assert.EqualValues(t, 49999, intent.AmountMinor)
	assert.Equal(t, "rzp_test_key", intent.KeyID)

	rec, body = env.do(t, nethttp.MethodPost, "/api/v1/payment/intent", gin.H{"amount": "0"}, withToken(buyer))
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_argument", body.Code)

	good := payment.Sign(env.cfg.Payment.KeySecret, "order_test123", "pay_1")
	rec, _ = env.do(t, nethttp.MethodPost, "/api/v1/payment/verify", gin.H{
		"razorpay_order_id": "order_test123", "razorpay_payment_id": "pay_1", "razorpay_signature": good,
	}, withToken(buyer))
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	rec, body = env.do(t, nethttp.MethodPost, "/api/v1/payment/verify", gin.H{
		"razorpay_order_id": "order_test123", "razorpay_payment_id": "pay_2", "razorpay_signature": good,
	}, withToken(buyer))
	assert.Equal(t, nethttp.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "signature_invalid", body.Code)

	env.cfg.Payment.KeyID = ""
	env.cfg.Payment.KeySecret = ""
	rec, body = env.do(t, nethttp.MethodPost, "/api/v1/payment/intent", gin.H{"amount": "10"}, withToken(buyer))
	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service_unavailable", body.Code)
}

func TestAdminOrderStatus(t *testing.T) {
	env := newTestEnv(t, 1000)
	buyer := env.token(t, 7, false)
	admin := env.token(t, 1, true)

	req := checkoutBody()
	req["items"] = []gin.H{{"product_id": env.product.ID, "quantity": 2}}
	rec, body := env.do(t, nethttp.MethodPost, "/api/v1/orders", req, withToken(buyer))
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	var created order.Order
	require.NoError(t, json.Unmarshal(body.Data, &created))

	statusPath := "/api/v1/admin/orders/" + created.OrderNumber + "/status"

	rec, _ = env.do(t, nethttp.MethodPut, statusPath, gin.H{"status": "shipped"}, withToken(buyer))
	assert.Equal(t, nethttp.StatusForbidden, rec.Code)

	rec, body = env.do(t, nethttp.MethodPut, statusPath, gin.H{"status": "shipped", "comment": "handed to courier"}, withToken(admin))
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	var updated order.Order
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	assert.Equal(t, order.OrderStatusShipped, updated.Status)
	assert.NotNil(t, updated.ShippedAt)
	require.Len(t, updated.StatusHistory, 2)
	require.NotNil(t, updated.StatusHistory[1].ChangedBy)
	assert.Equal(t, uint(1), *updated.StatusHistory[1].ChangedBy)

	rec, body = env.do(t, nethttp.MethodPut, statusPath, gin.H{"status": "lost"}, withToken(admin))
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_argument", body.Code)

	rec, body = env.do(t, nethttp.MethodGet, "/api/v1/admin/orders?status=shipped", nil, withToken(admin))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var list order.OrderListResponse
	require.NoError(t, json.Unmarshal(body.Data, &list))
	assert.Len(t, list.Orders, 1)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, 1000)

	rec, body := env.do(t, nethttp.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", body.Code)

	rec, _ = env.do(t, nethttp.MethodGet, "/api/v1/orders", nil, withToken("garbage"))
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, nethttp.MethodPost, "/api/v1/cart/merge", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
}

func TestHealthAndReadiness(t *testing.T) {
	env := newTestEnv(t, 1000)

	rec, _ := env.do(t, nethttp.MethodGet, "/health", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	rec, _ = env.do(t, nethttp.MethodGet, "/ready", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	env.mr.Close()
	rec, _ = env.do(t, nethttp.MethodGet, "/ready", nil)
	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, 3)

	for i := 0; i < 3; i++ {
		rec, _ := env.do(t, nethttp.MethodGet, "/health", nil)
		require.Equal(t, nethttp.StatusOK, rec.Code)
	}

	rec, body := env.do(t, nethttp.MethodGet, "/health", nil)
	assert.Equal(t, nethttp.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", body.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, 1000)

	req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	preflight := httptest.NewRequest(nethttp.MethodOptions, "/api/v1/cart", nil)
	preflight.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, preflight)
	assert.Equal(t, nethttp.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
