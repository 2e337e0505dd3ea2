// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config   *config.Config
	invoice  *template.Template
	renderer func(html []byte) ([]byte, error)
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		invoice: template.Must(template.New("invoice").Funcs(template.FuncMap{
			"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
			"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
		}).Parse(invoiceTemplate)),
		renderer: renderWithWkhtmltopdf,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	Company       config.CompanyConfig
}

// GenerateInvoice generates a PDF invoice for an order
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.generateHTML(InvoiceData{
		InvoiceNumber: InvoiceNumber(o),
		InvoiceDate:   time.Now().Format("02 Jan 2006"),
		Order:         o,
		Company:       s.config.Company,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfBytes, err := s.renderer(htmlContent)
	if err != nil {
		return nil, err
	}

	return bytes.NewBuffer(pdfBytes), nil
}

// InvoiceNumber derives the invoice number from the order number
func InvoiceNumber(o *order.Order) string {
	return "INV-" + o.OrderNumber
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data InvoiceData) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.invoice.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// renderWithWkhtmltopdf converts HTML to PDF; the wkhtmltopdf binary must be on PATH or WKHTMLTOPDF_PATH
func renderWithWkhtmltopdf(html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}
