// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

// DownloadInvoice handles GET /orders/:number/invoice
func (h *OrderHandler) DownloadInvoice(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	o, err := h.orderService.GetOrder(c.Request.Context(), userID, c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	pdfBuffer, err := h.pdfService.GenerateInvoice(o)
	if err != nil {
		respondError(c, domainErrors.Internal(err, "failed to generate invoice"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", pdf.InvoiceNumber(o)))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
