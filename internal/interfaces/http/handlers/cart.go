// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.GetCart(c.Request.Context(), identityFor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart retrieved successfully", view)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), identityFor(c), req.ProductID, req.Variant, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item added to cart successfully", view)
}

// UpdateItem handles PUT /cart/items/:id. A quantity of zero removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.SetItemQuantity(c.Request.Context(), identityFor(c), itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart item updated successfully", view)
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	view, err := h.cartService.RemoveItem(c.Request.Context(), identityFor(c), itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item removed from cart successfully", view)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	view, err := h.cartService.Clear(c.Request.Context(), identityFor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart cleared successfully", view)
}

// MergeCart handles POST /cart/merge: the anonymous session cart is folded into the signed-in user's cart
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	session := cart.NewSessionIdentity(middleware.GetSessionTokenFromContext(c))

	view, err := h.cartService.MergeSessionCart(c.Request.Context(), session, cart.NewUserIdentity(userID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart merged successfully", view)
}

// identityFor prefers the authenticated user over the anonymous session
func identityFor(c *gin.Context) cart.Identity {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return cart.NewUserIdentity(userID)
	}
	return cart.NewSessionIdentity(middleware.GetSessionTokenFromContext(c))
}

func parseItemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, domainErrors.InvalidArgument("invalid cart item id"))
		return 0, false
	}
	return uint(id), true
}
