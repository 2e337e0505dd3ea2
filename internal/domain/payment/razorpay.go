// internal/domain/payment/razorpay.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
)

// Gateway creates payment intents with the external payment provider
type Gateway interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*RazorpayOrder, error)
}

// RazorpayGateway talks to the Razorpay orders API
type RazorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewRazorpayGateway creates a new Razorpay client. Calls are bounded by the configured timeout and never retried.
func NewRazorpayGateway(cfg config.PaymentConfig) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// RazorpayOrder is the gateway's view of a payment intent
type RazorpayOrder struct {
	ID        string                 `json:"id"`
	Entity    string                 `json:"entity"`
	Amount    int64                  `json:"amount"`
	Currency  string                 `json:"currency"`
	Receipt   string                 `json:"receipt"`
	Status    string                 `json:"status"`
	Notes     map[string]interface{} `json:"notes"`
	CreatedAt int64                  `json:"created_at"`
}

// CreateOrderRequest is the body of POST /orders. Amount is in minor units.
type CreateOrderRequest struct {
	Amount   int64                  `json:"amount"`
	Currency string                 `json:"currency"`
	Receipt  string                 `json:"receipt"`
	Notes    map[string]interface{} `json:"notes,omitempty"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder creates order in Razorpay
func (r *RazorpayGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*RazorpayOrder, error) {
	response, err := r.makeAPICall(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return nil, err
	}

	var razorpayOrder RazorpayOrder
	if err := json.Unmarshal(response, &razorpayOrder); err != nil {
		return nil, fmt.Errorf("failed to parse Razorpay order response: %w", err)
	}
	if razorpayOrder.ID == "" {
		return nil, fmt.Errorf("razorpay order response has no id")
	}

	return &razorpayOrder, nil
}

// makeAPICall makes HTTP calls to Razorpay API
func (r *RazorpayGateway) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var body io.Reader
	if data != nil {
		reqBody, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr razorpayError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("API call failed with status %d: %s (%s)", resp.StatusCode, apiErr.Error.Description, apiErr.Error.Code)
		}
		return nil, fmt.Errorf("API call failed with status %d", resp.StatusCode)
	}

	return respBody, nil
}
