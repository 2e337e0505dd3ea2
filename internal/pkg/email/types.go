// internal/pkg/email/types.go
package email

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	BCC         []string  `json:"bcc,omitempty"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// Recipients returns every envelope address, visible and blind
func (e *Email) Recipients() []string {
	all := make([]string, 0, len(e.To)+len(e.BCC))
	all = append(all, e.To...)
	return append(all, e.BCC...)
}

// OrderConfirmationData contains data for order confirmation email
type OrderConfirmationData struct {
	SiteName        string
	CustomerName    string
	OrderNumber     string
	OrderDate       string
	Items           []OrderItem
	Subtotal        string
	Discount        string
	CGST            string
	SGST            string
	DeliveryCharges string
	Total           string
	DeliveryAddress string
	DeliveryOption  string
	ScheduledDate   string
	PaymentMethod   string
	PaymentStatus   string
	Year            int
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name      string
	SKU       string
	Variant   string
	Quantity  int
	UnitPrice string
	LineTotal string
}
