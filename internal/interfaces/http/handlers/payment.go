// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/payment"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *payment.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreateIntent handles POST /payment/intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req payment.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Payment intent created successfully", intent)
}

// VerifyPayment handles POST /payment/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req payment.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := h.paymentService.VerifyPayment(c.Request.Context(), req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Payment verified successfully", gin.H{
		"razorpay_order_id":   req.RazorpayOrderID,
		"razorpay_payment_id": req.RazorpayPaymentID,
		"verified":            true,
	})
}
