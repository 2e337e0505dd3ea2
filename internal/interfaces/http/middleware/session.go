// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
)

// SessionHeader carries the anonymous session token for clients that do not keep cookies
const SessionHeader = "X-Session-ID"

const maxSessionTokenLength = 64

// Session makes sure every request has an anonymous session token. An existing token is read from
// the X-Session-ID header or the session cookie; otherwise a new one is issued and returned in both.
func Session(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(SessionHeader))
		if token == "" {
			if cookie, err := c.Cookie(cfg.Security.SessionCookieName); err == nil {
				token = strings.TrimSpace(cookie)
			}
		}

		if token == "" || len(token) > maxSessionTokenLength {
			token = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(
				cfg.Security.SessionCookieName,
				token,
				int(cfg.Security.SessionCookieTTL.Seconds()),
				"/",
				"",
				cfg.IsProduction(),
				true,
			)
		}

		c.Header(SessionHeader, token)
		c.Set(contextSession, token)
		c.Next()
	}
}

// GetSessionTokenFromContext returns the anonymous session token set by Session
func GetSessionTokenFromContext(c *gin.Context) string {
	return c.GetString(contextSession)
}
