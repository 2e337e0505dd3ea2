// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxNumberAttempts = 5
	defaultPageSize   = 20
	maxPageSize       = 100
)

// Notifier sends the order confirmation to the purchaser
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *Order) error
}

// PaymentVerifier checks a client-submitted payment confirmation
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, intentID, paymentID, signature string) error
}

// Service handles order business logic
type Service struct {
	db       *gorm.DB
	config   *config.Config
	pricer   *pricing.Resolver
	payments PaymentVerifier
	notifier Notifier
	logger   *logrus.Logger

	nextNumber func() (string, error)
}

// NewService creates a new order service. notifier may be nil.
// Orders are always priced from the database, never from the catalog cache.
func NewService(db *gorm.DB, cfg *config.Config, products *catalog.Service, payments PaymentVerifier, notifier Notifier, logger *logrus.Logger) *Service {
	return &Service{
		db:         db,
		config:     cfg,
		pricer:     pricing.NewResolver(products.Uncached()),
		payments:   payments,
		notifier:   notifier,
		logger:     logger,
		nextNumber: NewNumberGenerator(cfg.Order.NumberPrefix).Next,
	}
}

// LineRequest is one explicitly requested order line
type LineRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity"`
}

// PaymentConfirmation is the gateway callback payload submitted by the client
type PaymentConfirmation struct {
	IntentID  string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// CreateOrderRequest represents order creation data.
// Items may be empty, in which case the user's cart is consumed.
type CreateOrderRequest struct {
	Items           []LineRequest        `json:"items"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	Discount        decimal.Decimal      `json:"discount"`
	CGST            decimal.Decimal      `json:"cgst"`
	SGST            decimal.Decimal      `json:"sgst"`
	DeliveryCharges decimal.Decimal      `json:"delivery_charges"`
	Total           decimal.Decimal      `json:"total"`
	DeliveryAddress string               `json:"delivery_address"`
	DeliveryOption  string               `json:"delivery_option"`
	ScheduledDate   string               `json:"scheduled_date,omitempty"` // YYYY-MM-DD or RFC3339
	PaymentMethod   string               `json:"payment_method"`
	Payment         *PaymentConfirmation `json:"payment,omitempty"`
}

// ListOrdersRequest represents order list query parameters
type ListOrdersRequest struct {
	UserID uint   `form:"-"`
	Status string `form:"status"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
}

// OrderListResponse represents orders with pagination
type OrderListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CreateOrder prices the requested lines (or the user's cart) at current catalog prices,
// stores the order and empties the cart in one transaction.
func (s *Service) CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*Order, error) {
	if userID == 0 {
		return nil, domainErrors.InvalidArgument("an authenticated user is required to place an order")
	}

	draft, err := s.draftOrder(userID, req)
	if err != nil {
		return nil, err
	}

	// A confirmation is verified before anything is written
	if req.Payment != nil {
		if err := s.payments.VerifyPayment(ctx, req.Payment.IntentID, req.Payment.PaymentID, req.Payment.Signature); err != nil {
			return nil, err
		}
		paymentID := req.Payment.PaymentID
		intentID := req.Payment.IntentID
		draft.PaymentStatus = PaymentStatusPaid
		draft.TransactionID = &paymentID
		draft.PaymentIntentID = &intentID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := req.Items
		var source *cart.Cart
		if len(lines) == 0 {
			locked, err := cart.LockForCheckout(tx, cart.NewUserIdentity(userID))
			if err != nil {
				return err
			}
			source = locked
			lines = make([]LineRequest, 0, len(source.Items))
			for _, item := range source.Items {
				lines = append(lines, LineRequest{ProductID: item.ProductID, Variant: item.Variant, Quantity: item.Quantity})
			}
		}
		if len(lines) == 0 {
			return domainErrors.InvalidArgument("order has no items")
		}

		items, err := s.priceLines(ctx, lines)
		if err != nil {
			return err
		}
		if err := s.checkTotals(req, items); err != nil {
			return err
		}

		if err := s.insertOrder(tx, draft); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = draft.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		history := OrderStatusHistory{
			OrderID:   draft.ID,
			ToStatus:  OrderStatusPending,
			Comment:   "Order created",
			ChangedBy: &userID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		if source != nil {
			return cart.ClearItems(tx, source.ID)
		}
		return nil
	})
	if err != nil {
		return nil, domainErrors.Classify(err, "failed to create order")
	}

	created, err := s.GetOrderByNumber(ctx, draft.OrderNumber)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_number":   created.OrderNumber,
		"user_id":        userID,
		"items":          len(created.Items),
		"total":          created.Total.StringFixed(2),
		"payment_status": created.PaymentStatus,
	}).Info("Order created")

	s.notify(ctx, created)
	return created, nil
}

// GetOrder returns an order owned by userID
func (s *Service) GetOrder(ctx context.Context, userID uint, orderNumber string) (*Order, error) {
	return s.findOrder(s.db.WithContext(ctx).Where("order_number = ? AND user_id = ?", orderNumber, userID))
}

// GetOrderByNumber retrieves a single order by order number regardless of owner
func (s *Service) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.findOrder(s.db.WithContext(ctx).Where("order_number = ?", orderNumber))
}

// ListOrders retrieves orders with filtering and pagination. A zero UserID lists every user's orders.
func (s *Service) ListOrders(ctx context.Context, req *ListOrdersRequest) (*OrderListResponse, error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	query := s.db.WithContext(ctx).Model(&Order{})
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.Status != "" {
		status, err := ParseOrderStatus(req.Status)
		if err != nil {
			return nil, err
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, domainErrors.Internal(err, "failed to count orders")
	}

	var orders []Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, domainErrors.Internal(err, "failed to retrieve orders")
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// Private helper methods

func (s *Service) findOrder(query *gorm.DB) (*Order, error) {
	var o Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NotFound("order not found")
		}
		return nil, domainErrors.Internal(err, "failed to retrieve order")
	}
	return &o, nil
}

// draftOrder validates the caller-supplied fields and builds the unsaved order
func (s *Service) draftOrder(userID uint, req *CreateOrderRequest) (*Order, error) {
	method, err := ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	address := strings.TrimSpace(req.DeliveryAddress)
	if address == "" {
		return nil, domainErrors.InvalidArgument("delivery address is required")
	}
	option := strings.TrimSpace(req.DeliveryOption)
	if option == "" {
		return nil, domainErrors.InvalidArgument("delivery option is required")
	}

	amounts := map[string]decimal.Decimal{
		"subtotal":         req.Subtotal,
		"discount":         req.Discount,
		"cgst":             req.CGST,
		"sgst":             req.SGST,
		"delivery_charges": req.DeliveryCharges,
		"total":            req.Total,
	}
	for name, amount := range amounts {
		if amount.IsNegative() {
			return nil, domainErrors.InvalidArgument("%s cannot be negative", name)
		}
	}

	var scheduled *time.Time
	if req.ScheduledDate != "" {
		t, err := parseScheduledDate(req.ScheduledDate)
		if err != nil {
			return nil, err
		}
		scheduled = &t
	}

	tracking, err := newTrackingNumber()
	if err != nil {
		return nil, domainErrors.Internal(err, "failed to assign tracking number")
	}

	return &Order{
		UserID:          userID,
		Status:          OrderStatusPending,
		Subtotal:        req.Subtotal.Round(pricing.CurrencyPlaces),
		Discount:        req.Discount.Round(pricing.CurrencyPlaces),
		CGST:            req.CGST.Round(pricing.CurrencyPlaces),
		SGST:            req.SGST.Round(pricing.CurrencyPlaces),
		DeliveryCharges: req.DeliveryCharges.Round(pricing.CurrencyPlaces),
		Total:           req.Total.Round(pricing.CurrencyPlaces),
		DeliveryAddress: address,
		DeliveryOption:  option,
		ScheduledDate:   scheduled,
		PaymentMethod:   method,
		PaymentStatus:   PaymentStatusPending,
		TrackingNumber:  tracking,
		CourierPartner:  s.config.Order.CourierPartner,
	}, nil
}

func parseScheduledDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domainErrors.InvalidArgument("scheduled date %q must be YYYY-MM-DD", value)
}

// priceLines snapshots every line at the current catalog price
func (s *Service) priceLines(ctx context.Context, lines []LineRequest) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, domainErrors.InvalidArgument("quantity for product %d must be at least 1", line.ProductID)
		}
		variant := strings.TrimSpace(line.Variant)
		if len(variant) > cart.MaxVariantLength {
			return nil, domainErrors.InvalidArgument("variant must be at most %d characters", cart.MaxVariantLength)
		}

		quote, err := s.pricer.ResolvePrice(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}

		items = append(items, OrderItem{
			ProductID:   quote.Product.ID,
			ProductName: quote.Product.Name,
			SKU:         quote.Product.SKU,
			Variant:     variant,
			Quantity:    line.Quantity,
			UnitPrice:   quote.UnitPrice,
			LineTotal:   quote.LineTotal,
			TaxRate:     quote.Product.TaxRate,
		})
	}
	return items, nil
}

// checkTotals rejects caller-supplied figures that disagree with the priced lines
func (s *Service) checkTotals(req *CreateOrderRequest, items []OrderItem) error {
	tolerance := s.config.Order.TotalTolerance

	computed := decimal.Zero
	for _, item := range items {
		computed = computed.Add(item.LineTotal)
	}
	if req.Subtotal.Sub(computed).Abs().GreaterThan(tolerance) {
		return domainErrors.InvalidArgument("subtotal %s does not match item total %s",
			req.Subtotal.StringFixed(2), computed.StringFixed(2))
	}

	expected := req.Subtotal.Sub(req.Discount).Add(req.CGST).Add(req.SGST).Add(req.DeliveryCharges)
	if req.Total.Sub(expected).Abs().GreaterThan(tolerance) {
		return domainErrors.InvalidArgument("total %s does not match subtotal - discount + taxes + delivery = %s",
			req.Total.StringFixed(2), expected.StringFixed(2))
	}

	if s.config.Order.ValidateTax {
		hundred := decimal.NewFromInt(100)
		tax := decimal.Zero
		for _, item := range items {
			tax = tax.Add(item.LineTotal.Mul(item.TaxRate).Div(hundred))
		}
		tax = tax.Round(pricing.CurrencyPlaces)
		if req.CGST.Add(req.SGST).Sub(tax).Abs().GreaterThan(tolerance) {
			return domainErrors.InvalidArgument("tax %s does not match expected tax %s",
				req.CGST.Add(req.SGST).StringFixed(2), tax.StringFixed(2))
		}
	}
	return nil
}

// insertOrder stores the order under a fresh number, regenerating it on a unique-key collision.
// Each attempt runs in a savepoint so a collision does not abort the enclosing transaction.
func (s *Service) insertOrder(tx *gorm.DB, o *Order) error {
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		number, err := s.nextNumber()
		if err != nil {
			return domainErrors.Internal(err, "failed to generate order number")
		}
		o.ID = 0
		o.OrderNumber = number

		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Omit(clause.Associations).Create(o).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if o.PaymentIntentID != nil && s.paymentUsed(tx, *o.PaymentIntentID) {
			return domainErrors.InvalidArgument("payment already used")
		}

		s.logger.WithFields(logrus.Fields{
			"order_number": number,
			"attempt":      attempt,
		}).Warn("Order number collision, regenerating")
	}
	return domainErrors.Internal(nil, "could not allocate a unique order number after %d attempts", maxNumberAttempts)
}

func (s *Service) paymentUsed(tx *gorm.DB, intentID string) bool {
	var n int64
	if err := tx.Model(&Order{}).Where("payment_intent_id = ?", intentID).Count(&n).Error; err != nil {
		return false
	}
	return n > 0
}

// notify is best-effort: a failed confirmation never fails the order
func (s *Service) notify(ctx context.Context, o *Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendOrderConfirmation(ctx, o); err != nil {
		s.logger.WithError(err).WithField("order_number", o.OrderNumber).Warn("Failed to send order confirmation")
	}
}
