// internal/domain/payment/service.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
)

const currencyPlaces = 2

// Intent is a created payment intent the client completes with the gateway
type Intent struct {
	IntentID    string `json:"razorpay_order_id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	KeyID       string `json:"key_id"`
}

// CreateIntentRequest represents the payment intent request body
type CreateIntentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// VerifyRequest represents the payment verification request body
type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// Service coordinates payment intents and confirmation checks
type Service struct {
	gateway Gateway
	config  *config.Config
	logger  *logrus.Logger
}

// NewService creates a new payment service
func NewService(cfg *config.Config, gateway Gateway, logger *logrus.Logger) *Service {
	return &Service{
		gateway: gateway,
		config:  cfg,
		logger:  logger,
	}
}

// CreatePaymentIntent registers amount (in major units) with the gateway
func (s *Service) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*Intent, error) {
	if !amount.IsPositive() {
		return nil, domainErrors.InvalidArgument("amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(currencyPlaces)) {
		return nil, domainErrors.InvalidArgument("amount must have at most %d decimal places", currencyPlaces)
	}
	if !s.config.PaymentConfigured() {
		return nil, domainErrors.ServiceUnavailable("payment gateway is not configured")
	}

	minor := amount.Shift(currencyPlaces).IntPart()
	req := &CreateOrderRequest{
		Amount:   minor,
		Currency: s.config.Payment.Currency,
		Receipt:  newReceipt(),
	}

	rzpOrder, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		s.logger.WithError(err).WithField("receipt", req.Receipt).Error("Payment intent creation failed")
		return nil, domainErrors.External(err, "payment gateway request failed")
	}

	s.logger.WithFields(logrus.Fields{
		"intent_id": rzpOrder.ID,
		"amount":    minor,
		"currency":  req.Currency,
	}).Info("Payment intent created")

	return &Intent{
		IntentID:    rzpOrder.ID,
		AmountMinor: minor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		KeyID:       s.config.Payment.KeyID,
	}, nil
}

// VerifyPayment checks the gateway signature over intentID and paymentID.
// It has no side effects; recording the payment is up to the caller.
func (s *Service) VerifyPayment(ctx context.Context, intentID, paymentID, signature string) error {
	intentID = strings.TrimSpace(intentID)
	paymentID = strings.TrimSpace(paymentID)
	signature = strings.TrimSpace(signature)
	if intentID == "" || paymentID == "" || signature == "" {
		return domainErrors.InvalidArgument("intent id, payment id and signature are required")
	}
	if s.config.Payment.KeySecret == "" {
		return domainErrors.ServiceUnavailable("payment gateway is not configured")
	}

	expected := Sign(s.config.Payment.KeySecret, intentID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		s.logger.WithFields(logrus.Fields{
			"intent_id":  intentID,
			"payment_id": paymentID,
		}).Warn("Payment signature mismatch")
		return domainErrors.SignatureInvalid("payment verification failed")
	}
	return nil
}

// Sign returns hex(HMAC-SHA256(secret, intentID|paymentID)), the gateway's checkout signature
func Sign(secret, intentID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newReceipt() string {
	return "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
