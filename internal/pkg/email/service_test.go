package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

type stubRecipients map[uint]*user.User

func (s stubRecipients) GetUserByID(_ context.Context, id uint) (*user.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, domainErrors.NotFound("user not found")
}

type failingRecipients struct{}

func (failingRecipients) GetUserByID(context.Context, uint) (*user.User, error) {
	return nil, errors.New("connection refused")
}

func newTestService(t *testing.T, enabled bool, recipients RecipientLookup) (*EmailService, *[]*Email) {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "Storefront"},
		Email: config.EmailConfig{
			Enabled:   enabled,
			FromEmail: "orders@storefront.test",
			FromName:  "Storefront Orders",
			AdminBCC:  []string{"ops@storefront.test"},
		},
	}
	svc := NewEmailService(cfg, recipients, logger.Discard())

	var sent []*Email
	svc.send = func(e *Email) error {
		sent = append(sent, e)
		return nil
	}
	return svc, &sent
}

func sampleOrder() *order.Order {
	scheduled := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	return &order.Order{
		OrderNumber:     "ORD123456789012",
		UserID:          7,
		Subtotal:        decimal.RequireFromString("500"),
		Discount:        decimal.Zero,
		CGST:            decimal.RequireFromString("45"),
		SGST:            decimal.RequireFromString("45"),
		DeliveryCharges: decimal.Zero,
		Total:           decimal.RequireFromString("590"),
		DeliveryAddress: "12 MG Road, Bengaluru",
		DeliveryOption:  "standard",
		ScheduledDate:   &scheduled,
		PaymentMethod:   order.PaymentMethodUPI,
		PaymentStatus:   order.PaymentStatusPending,
		CreatedAt:       time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		Items: []order.OrderItem{{
			ProductName: "Cement <50kg>",
			SKU:         "CEM-50",
			Variant:     "OPC 53",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("250"),
			LineTotal:   decimal.RequireFromString("500"),
		}},
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	svc, sent := newTestService(t, true, stubRecipients{
		7: {ID: 7, Email: "buyer@example.com", FirstName: "Asha", LastName: "Rao"},
	})

	require.NoError(t, svc.SendOrderConfirmation(context.Background(), sampleOrder()))
	require.Len(t, *sent, 1)

	msg := (*sent)[0]
	assert.Equal(t, []string{"buyer@example.com"}, msg.To)
	assert.Equal(t, []string{"ops@storefront.test"}, msg.BCC)
	assert.Equal(t, "Order Confirmation - ORD123456789012", msg.Subject)
	assert.Equal(t, EmailTypeOrderConfirmation, msg.Type)

	body := msg.HTMLContent
	assert.Contains(t, body, "Hello Asha Rao")
	assert.Contains(t, body, "ORD123456789012")
	assert.Contains(t, body, "18 Oct 2026")
	assert.Contains(t, body, "scheduled for 02 Nov 2026")
	assert.Contains(t, body, "₹590.00")
	assert.Contains(t, body, "(OPC 53)")
	assert.Contains(t, body, "Cement &lt;50kg&gt;")
}

func TestSendOrderConfirmationWithoutCustomerStillNotifiesAdmins(t *testing.T) {
	svc, sent := newTestService(t, true, stubRecipients{})

	require.NoError(t, svc.SendOrderConfirmation(context.Background(), sampleOrder()))
	require.Len(t, *sent, 1)
	assert.Empty(t, (*sent)[0].To)
	assert.Equal(t, []string{"ops@storefront.test"}, (*sent)[0].Recipients())
	assert.Contains(t, (*sent)[0].HTMLContent, "Hello Customer")
}

func TestSendOrderConfirmationLookupFailure(t *testing.T) {
	svc, sent := newTestService(t, true, failingRecipients{})

	err := svc.SendOrderConfirmation(context.Background(), sampleOrder())
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, *sent)
}

func TestSendEmailDisabledIsNoop(t *testing.T) {
	svc, sent := newTestService(t, false, stubRecipients{7: {ID: 7, Email: "buyer@example.com"}})

	require.NoError(t, svc.SendOrderConfirmation(context.Background(), sampleOrder()))
	assert.Empty(t, *sent)
}

func TestSendEmailPropagatesTransportError(t *testing.T) {
	svc, _ := newTestService(t, true, stubRecipients{})
	svc.send = func(*Email) error { return errors.New("454 TLS not available") }

	err := svc.SendEmail(context.Background(), &Email{To: []string{"a@example.com"}, Type: EmailTypeOrderConfirmation})
	assert.ErrorContains(t, err, "454 TLS not available")
}

func TestSendEmailHonoursCancelledContext(t *testing.T) {
	svc, sent := newTestService(t, true, stubRecipients{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.SendEmail(ctx, &Email{To: []string{"a@example.com"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *sent)
}

func TestBuildMessageKeepsBccOffHeaders(t *testing.T) {
	svc, _ := newTestService(t, true, stubRecipients{})

	raw := string(svc.buildMessage(&Email{
		To:          []string{"buyer@example.com"},
		BCC:         []string{"ops@storefront.test"},
		Subject:     "Order Confirmation - ORD1",
		HTMLContent: "<p>hi</p>",
	}))

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found)
	assert.Equal(t, "<p>hi</p>", body)
	assert.Contains(t, headers, `From: "Storefront Orders" <orders@storefront.test>`)
	assert.Contains(t, headers, "To: buyer@example.com")
	assert.Contains(t, headers, "Subject: Order Confirmation - ORD1")
	assert.NotContains(t, headers, "ops@storefront.test")
}
