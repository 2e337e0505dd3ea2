// internal/interfaces/http/handlers/admin_order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// AdminOrderHandler handles back-office order endpoints
type AdminOrderHandler struct {
	orderService *order.Service
}

// NewAdminOrderHandler creates a new admin order handler
func NewAdminOrderHandler(orderService *order.Service) *AdminOrderHandler {
	return &AdminOrderHandler{
		orderService: orderService,
	}
}

// ListOrders handles GET /admin/orders
func (h *AdminOrderHandler) ListOrders(c *gin.Context) {
	var req order.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.UserID = 0

	list, err := h.orderService.ListOrders(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Orders retrieved successfully", list)
}

// UpdateOrderStatus handles PUT /admin/orders/:number/status
func (h *AdminOrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req order.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(c)
	req.OrderNumber = c.Param("number")
	req.ChangedBy = &adminID

	updated, err := h.orderService.Advance(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Order status updated successfully", updated)
}
