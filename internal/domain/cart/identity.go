package cart

import (
	"strings"

	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
)

// Identity names the owner of a cart: an authenticated user or an anonymous session
type Identity struct {
	UserID       *uint
	SessionToken string
}

// NewUserIdentity returns the identity of an authenticated user
func NewUserIdentity(userID uint) Identity {
	return Identity{UserID: &userID}
}

// NewSessionIdentity returns the identity of an anonymous session
func NewSessionIdentity(token string) Identity {
	return Identity{SessionToken: strings.TrimSpace(token)}
}

// IsUser reports whether the identity is an authenticated user
func (i Identity) IsUser() bool {
	return i.UserID != nil
}

// Validate checks that exactly one of the user id and the session token is set
func (i Identity) Validate() error {
	hasUser := i.UserID != nil && *i.UserID != 0
	hasSession := i.SessionToken != ""

	switch {
	case hasUser && hasSession:
		return domainErrors.InvalidArgument("identity must be either a user or a session, not both")
	case !hasUser && !hasSession:
		return domainErrors.InvalidArgument("user id or session token is required")
	case hasSession && len(i.SessionToken) > 64:
		return domainErrors.InvalidArgument("session token is too long")
	}
	return nil
}
