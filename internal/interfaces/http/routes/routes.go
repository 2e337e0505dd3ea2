// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Handlers bundles every endpoint group
type Handlers struct {
	Cart       *handlers.CartHandler
	Order      *handlers.OrderHandler
	Payment    *handlers.PaymentHandler
	AdminOrder *handlers.AdminOrderHandler
}

// SetupRoutes registers the versioned API
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager, cfg *config.Config) {
	SetupCartRoutes(rg, h.Cart, jwtManager, cfg)
	SetupOrderRoutes(rg, h.Order, jwtManager)
	SetupPaymentRoutes(rg, h.Payment, jwtManager)
	SetupAdminRoutes(rg, h.AdminOrder, jwtManager)
}

// SetupCartRoutes sets up cart routes; they work for guest sessions and signed-in users alike
func SetupCartRoutes(rg *gin.RouterGroup, cartHandler *handlers.CartHandler, jwtManager *auth.JWTManager, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.Session(cfg))
	{
		guest := cart.Group("")
		guest.Use(middleware.OptionalAuthMiddleware(jwtManager))
		{
			guest.GET("", cartHandler.GetCart)
			guest.DELETE("", cartHandler.ClearCart)
			guest.POST("/items", cartHandler.AddItem)
			guest.PUT("/items/:id", cartHandler.UpdateItem)
			guest.DELETE("/items/:id", cartHandler.RemoveItem)
		}

		// Merge runs right after sign-in, with both the session token and the bearer token
		signedIn := cart.Group("")
		signedIn.Use(middleware.AuthMiddleware(jwtManager))
		{
			signedIn.POST("/merge", cartHandler.MergeCart)
		}
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, orderHandler *handlers.OrderHandler, jwtManager *auth.JWTManager) {
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(jwtManager))
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:number", orderHandler.GetOrder)
		orders.GET("/:number/invoice", orderHandler.DownloadInvoice)
	}
}

// SetupPaymentRoutes sets up payment related routes
func SetupPaymentRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, jwtManager *auth.JWTManager) {
	payment := rg.Group("/payment")
	payment.Use(middleware.AuthMiddleware(jwtManager))
	{
		payment.POST("/intent", paymentHandler.CreateIntent)
		payment.POST("/verify", paymentHandler.VerifyPayment)
	}
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, adminOrderHandler *handlers.AdminOrderHandler, jwtManager *auth.JWTManager) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.AdminMiddleware())
	{
		orders := admin.Group("/orders")
		{
			orders.GET("", adminOrderHandler.ListOrders)
			orders.PUT("/:number/status", adminOrderHandler.UpdateOrderStatus)
		}
	}
}
