// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
)

// statusForKind maps error kinds onto HTTP status codes
func statusForKind(kind domainErrors.Kind) int {
	switch kind {
	case domainErrors.KindInvalidArgument:
		return http.StatusBadRequest
	case domainErrors.KindNotFound:
		return http.StatusNotFound
	case domainErrors.KindSignatureInvalid:
		return http.StatusPaymentRequired
	case domainErrors.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case domainErrors.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the classified error as {"error", "code"} and records it for the request logger
func respondError(c *gin.Context, err error) {
	kind := domainErrors.KindOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusForKind(kind), gin.H{
		"error": domainErrors.MessageOf(err),
		"code":  kind,
	})
}

// respondBindError reports a malformed request body or query
func respondBindError(c *gin.Context, err error) {
	respondError(c, domainErrors.InvalidArgument("invalid request data: %s", err.Error()))
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
	})
}
