// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// RecipientLookup resolves the customer an order belongs to
type RecipientLookup interface {
	GetUserByID(ctx context.Context, id uint) (*user.User, error)
}

// EmailService sends order notifications over SMTP
type EmailService struct {
	config     *config.Config
	recipients RecipientLookup
	logger     *logrus.Logger
	templates  map[string]*template.Template
	send       func(*Email) error
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, recipients RecipientLookup, logger *logrus.Logger) *EmailService {
	s := &EmailService{
		config:     cfg,
		recipients: recipients,
		logger:     logger,
		templates: map[string]*template.Template{
			string(EmailTypeOrderConfirmation): template.Must(
				template.New(string(EmailTypeOrderConfirmation)).Parse(orderConfirmationTemplate),
			),
		},
	}
	s.send = s.sendSMTPEmail
	return s
}

// SendEmail delivers a message unless email is disabled
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if !s.config.Email.Enabled {
		s.logger.WithFields(logrus.Fields{
			"type":    email.Type,
			"subject": email.Subject,
		}).Debug("Email disabled, skipping send")
		return nil
	}

	if len(email.Recipients()) == 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.send(email); err != nil {
		return fmt.Errorf("failed to send %s email: %w", email.Type, err)
	}

	s.logger.WithFields(logrus.Fields{
		"type":       email.Type,
		"recipients": len(email.Recipients()),
	}).Info("Email sent")

	return nil
}

// SendOrderConfirmation mails the customer a summary of a new order, blind-copying the admins
func (s *EmailService) SendOrderConfirmation(ctx context.Context, o *order.Order) error {
	var to []string
	customerName := "Customer"

	customer, err := s.recipients.GetUserByID(ctx, o.UserID)
	switch {
	case err == nil:
		if customer.Email != "" {
			to = append(to, customer.Email)
		}
		customerName = customer.GetDisplayName()
	case errors.Is(err, domainErrors.ErrNotFound):
		// admins still hear about the order
	default:
		return fmt.Errorf("failed to look up order recipient: %w", err)
	}

	htmlContent, err := s.renderTemplate(string(EmailTypeOrderConfirmation), s.orderConfirmationData(o, customerName))
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          to,
		BCC:         s.config.Email.AdminBCC,
		Subject:     fmt.Sprintf("Order Confirmation - %s", o.OrderNumber),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
	})
}

func (s *EmailService) orderConfirmationData(o *order.Order, customerName string) OrderConfirmationData {
	data := OrderConfirmationData{
		SiteName:        s.config.App.Name,
		CustomerName:    customerName,
		OrderNumber:     o.OrderNumber,
		OrderDate:       o.CreatedAt.Format("02 Jan 2006"),
		Subtotal:        o.Subtotal.StringFixed(2),
		Discount:        o.Discount.StringFixed(2),
		CGST:            o.CGST.StringFixed(2),
		SGST:            o.SGST.StringFixed(2),
		DeliveryCharges: o.DeliveryCharges.StringFixed(2),
		Total:           o.Total.StringFixed(2),
		DeliveryAddress: o.DeliveryAddress,
		DeliveryOption:  o.DeliveryOption,
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		Year:            time.Now().Year(),
	}
	if o.ScheduledDate != nil {
		data.ScheduledDate = o.ScheduledDate.Format("02 Jan 2006")
	}
	for _, item := range o.Items {
		data.Items = append(data.Items, OrderItem{
			Name:      item.ProductName,
			SKU:       item.SKU,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}
	return data
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}
