// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service reads and provisions user records. Sign-up and login live outside this service.
type Service struct {
	db        *gorm.DB
	passwords *auth.PasswordManager
	logger    *logrus.Logger
}

// NewService creates a new user service
func NewService(db *gorm.DB, passwords *auth.PasswordManager, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		passwords: passwords,
		logger:    logger,
	}
}

// CreateUserRequest provisions an account
type CreateUserRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsAdmin   bool
}

// GetUserByID returns an active user
func (s *Service) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NotFound("user not found")
		}
		return nil, domainErrors.Internal(err, "failed to load user %d", id)
	}
	return &u, nil
}

// GetUserByEmail returns an active user by email, case-insensitively
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NotFound("user not found")
		}
		return nil, domainErrors.Internal(err, "failed to load user")
	}
	return &u, nil
}

// EnsureUser creates the account unless one with the same email already exists
func (s *Service) EnsureUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, domainErrors.InvalidArgument("email is required")
	}

	existing, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, domainErrors.InvalidArgument("%s", err.Error())
	}

	u := &User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		IsActive:     true,
		IsAdmin:      req.IsAdmin,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.GetUserByEmail(ctx, email)
		}
		return nil, domainErrors.Internal(err, "failed to create user")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  u.ID,
		"is_admin": u.IsAdmin,
	}).Info("User provisioned")

	return u, nil
}

// Authenticate checks an email and password pair
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.InvalidArgument("invalid email or password")
		}
		return nil, err
	}
	if err := s.passwords.VerifyPassword(password, u.PasswordHash); err != nil {
		return nil, domainErrors.InvalidArgument("invalid email or password")
	}
	return u, nil
}
