// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
	"gorm.io/gorm"
)

// Lookup resolves products by identifier. A missing or inactive product
// yields a NotFound error, never a zero-valued product.
type Lookup interface {
	GetProduct(ctx context.Context, id uint) (*Product, error)
}

// Service reads products from the database with an optional Redis cache in front
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      *logrus.Logger
}

// NewService creates a new catalog service. redisClient may be nil to disable caching.
func NewService(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Uncached returns a lookup over the same database that bypasses the cache
func (s *Service) Uncached() *Service {
	return &Service{db: s.db, logger: s.logger}
}

// GetProduct returns an active product with its price tiers
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	if id == 0 {
		return nil, domainErrors.NotFound("product not found")
	}

	if cached, ok := s.getCached(ctx, id); ok {
		return cached, nil
	}

	var prod Product
	err := s.db.WithContext(ctx).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_quantity ASC")
		}).
		Where("id = ? AND is_active = ?", id, true).
		First(&prod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NotFound("product %d not found", id)
		}
		return nil, domainErrors.Internal(err, "failed to load product %d", id)
	}

	s.setCached(ctx, &prod)
	return &prod, nil
}

// Invalidate drops a cached product so the next lookup reads the database
func (s *Service) Invalidate(ctx context.Context, id uint) error {
	if s.redisClient == nil {
		return nil
	}
	return s.redisClient.Del(ctx, cacheKey(id)).Err()
}

func (s *Service) getCached(ctx context.Context, id uint) (*Product, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	data, err := s.redisClient.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).WithField("product_id", id).Warn("catalog cache read failed")
		}
		return nil, false
	}

	var prod Product
	if err := json.Unmarshal(data, &prod); err != nil {
		s.logger.WithError(err).WithField("product_id", id).Warn("discarding malformed catalog cache entry")
		return nil, false
	}
	return &prod, true
}

func (s *Service) setCached(ctx context.Context, prod *Product) {
	if s.redisClient == nil || s.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(prod)
	if err != nil {
		return
	}

	if err := s.redisClient.Set(ctx, cacheKey(prod.ID), data, s.cacheTTL).Err(); err != nil {
		s.logger.WithError(err).WithField("product_id", prod.ID).Warn("catalog cache write failed")
	}
}

func cacheKey(id uint) string {
	return fmt.Sprintf("catalog:product:%d", id)
}
