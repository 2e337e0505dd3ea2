package pdf

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

func testService() *Service {
	return NewService(&config.Config{
		Company: config.CompanyConfig{
			Name:  "Storefront Pvt Ltd",
			Email: "billing@storefront.test",
			GSTIN: "29ABCDE1234F1Z5",
		},
	})
}

func sampleOrder() *order.Order {
	txn := "pay_123"
	return &order.Order{
		OrderNumber:     "ORD000000000042",
		Status:          order.OrderStatusShipped,
		Subtotal:        decimal.RequireFromString("500"),
		Discount:        decimal.RequireFromString("20"),
		CGST:            decimal.RequireFromString("43.2"),
		SGST:            decimal.RequireFromString("43.2"),
		DeliveryCharges: decimal.RequireFromString("50"),
		Total:           decimal.RequireFromString("616.4"),
		DeliveryAddress: "Plot 4 & 5, Industrial Area",
		DeliveryOption:  "express",
		PaymentMethod:   order.PaymentMethodCard,
		PaymentStatus:   order.PaymentStatusPaid,
		TransactionID:   &txn,
		TrackingNumber:  "TRK0000000001",
		CourierPartner:  "BlueDart Express",
		CreatedAt:       time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC),
		Items: []order.OrderItem{{
			ProductName: "Cement",
			SKU:         "CEM-50",
			Variant:     "OPC 53",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("250"),
			LineTotal:   decimal.RequireFromString("500"),
			TaxRate:     decimal.RequireFromString("18"),
		}},
	}
}

func TestGenerateHTML(t *testing.T) {
	svc := testService()
	o := sampleOrder()

	html, err := svc.generateHTML(InvoiceData{
		InvoiceNumber: InvoiceNumber(o),
		InvoiceDate:   "18 Oct 2026",
		Order:         o,
		Company:       svc.config.Company,
	})
	require.NoError(t, err)

	body := string(html)
	assert.Contains(t, body, "INV-ORD000000000042")
	assert.Contains(t, body, "GSTIN: 29ABCDE1234F1Z5")
	assert.Contains(t, body, "01 Oct 2026")
	assert.Contains(t, body, "Plot 4 &amp; 5, Industrial Area")
	assert.Contains(t, body, "(ref pay_123)")
	assert.Contains(t, body, "TRK0000000001 via BlueDart Express")
	assert.Contains(t, body, "-₹20.00")
	assert.Contains(t, body, "₹616.40")
	assert.Contains(t, body, "Total GST: ₹86.40")
	assert.Contains(t, body, "18.00")
}

func TestGenerateHTMLOmitsEmptyOptionalRows(t *testing.T) {
	svc := testService()
	o := sampleOrder()
	o.Discount = decimal.Zero
	o.TransactionID = nil
	o.TrackingNumber = ""

	html, err := svc.generateHTML(InvoiceData{InvoiceNumber: InvoiceNumber(o), Order: o, Company: svc.config.Company})
	require.NoError(t, err)

	body := string(html)
	assert.NotContains(t, body, "Discount")
	assert.NotContains(t, body, "(ref ")
	assert.NotContains(t, body, "Tracking:")
}

func TestGenerateInvoiceUsesRenderer(t *testing.T) {
	svc := testService()
	var rendered []byte
	svc.renderer = func(html []byte) ([]byte, error) {
		rendered = html
		return []byte("%PDF-1.4"), nil
	}

	buf, err := svc.GenerateInvoice(sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", buf.String())
	assert.Contains(t, string(rendered), "TAX INVOICE")

	svc.renderer = func([]byte) ([]byte, error) { return nil, errors.New("wkhtmltopdf not found") }
	_, err = svc.GenerateInvoice(sampleOrder())
	assert.ErrorContains(t, err, "wkhtmltopdf not found")
}
