// internal/domain/order/entity.go
package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPacked,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus validates a caller-supplied status value
func ParseOrderStatus(value string) (OrderStatus, error) {
	candidate := OrderStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range orderStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", domainErrors.InvalidArgument("invalid order status %q", value)
}

// IsTerminal reports whether no further progress is expected from the status
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// PaymentMethod is how the purchaser settles the order
type PaymentMethod string

const (
	PaymentMethodCreditTerms PaymentMethod = "credit-terms"
	PaymentMethodUPI         PaymentMethod = "upi"
	PaymentMethodCard        PaymentMethod = "card"
	PaymentMethodNetBanking  PaymentMethod = "netbanking"
	PaymentMethodLC          PaymentMethod = "lc"
	PaymentMethodAdvance     PaymentMethod = "advance"
)

var paymentMethods = []PaymentMethod{
	PaymentMethodCreditTerms,
	PaymentMethodUPI,
	PaymentMethodCard,
	PaymentMethodNetBanking,
	PaymentMethodLC,
	PaymentMethodAdvance,
}

// ParsePaymentMethod validates a caller-supplied payment method
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	candidate := PaymentMethod(strings.ToLower(strings.TrimSpace(value)))
	for _, method := range paymentMethods {
		if method == candidate {
			return method, nil
		}
	}
	return "", domainErrors.InvalidArgument("invalid payment method %q", value)
}

// Order represents the order entity. Number, money fields and items never change after creation.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:32" json:"order_number"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	Status      OrderStatus `gorm:"not null;size:20;index" json:"status"`

	// Financial Information
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	CGST            decimal.Decimal `gorm:"column:cgst;type:numeric(12,2);not null" json:"cgst"`
	SGST            decimal.Decimal `gorm:"column:sgst;type:numeric(12,2);not null" json:"sgst"`
	DeliveryCharges decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_charges"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	// Delivery
	DeliveryAddress string     `gorm:"type:text;not null" json:"delivery_address"`
	DeliveryOption  string     `gorm:"not null;size:50" json:"delivery_option"`
	ScheduledDate   *time.Time `json:"scheduled_date,omitempty"`

	// Payment
	PaymentMethod   PaymentMethod `gorm:"not null;size:20" json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"not null;size:20" json:"payment_status"`
	TransactionID   *string       `gorm:"size:100" json:"transaction_id,omitempty"`
	PaymentIntentID *string       `gorm:"size:100;uniqueIndex" json:"payment_intent_id,omitempty"`

	// Shipping Information
	TrackingNumber string `gorm:"size:50" json:"tracking_number"`
	CourierPartner string `gorm:"size:100" json:"courier_partner"`

	// Timestamps
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	PackedAt    *time.Time `json:"packed_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is a line priced at order creation
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;size:255" json:"product_name"`
	SKU         string          `gorm:"column:sku;not null;size:100" json:"sku"`
	Variant     string          `gorm:"not null;size:100" json:"variant,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	TaxRate     decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"tax_rate"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"size:20" json:"from_status,omitempty"`
	ToStatus   OrderStatus `gorm:"not null;size:20" json:"to_status"`
	Comment    string      `gorm:"type:text" json:"comment"`
	ChangedBy  *uint       `gorm:"index" json:"changed_by,omitempty"` // User ID who made the change
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// milestone returns the column and current value of the timestamp recorded when status is first reached
func (o *Order) milestone(status OrderStatus) (string, *time.Time, bool) {
	switch status {
	case OrderStatusConfirmed:
		return "confirmed_at", o.ConfirmedAt, true
	case OrderStatusPacked:
		return "packed_at", o.PackedAt, true
	case OrderStatusShipped:
		return "shipped_at", o.ShippedAt, true
	case OrderStatusDelivered:
		return "delivered_at", o.DeliveredAt, true
	}
	return "", nil, false
}

// TaxTotal is the sum of both GST components
func (o *Order) TaxTotal() decimal.Decimal {
	return o.CGST.Add(o.SGST)
}
