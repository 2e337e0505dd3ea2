// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	users  *user.Service
	logger *logrus.Logger
}

// NewMigration creates a new migration instance. users is only needed for seeding.
func NewMigration(db *gorm.DB, users *user.Service, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		users:  users,
		logger: logger,
	}
}

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&catalog.Product{},
		&catalog.PriceTier{},

		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the hot read paths
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Order history and admin listing
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",

		// Status history is read in insertion order per order
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order_created ON order_status_history(order_id, created_at)",

		// Tier selection
		"CREATE INDEX IF NOT EXISTS idx_price_tiers_product_min ON price_tiers(product_id, min_quantity)",

		// Stale anonymous carts
		"CREATE INDEX IF NOT EXISTS idx_carts_updated_at ON carts(updated_at)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	m.logger.WithField("count", len(indexes)).Info("Additional indexes ensured")
	return nil
}

// SeedInitialData inserts development accounts and a small tiered catalog
func (m *Migration) SeedInitialData(ctx context.Context) error {
	if err := m.seedUsers(ctx); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := m.seedProducts(ctx); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	m.logger.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedUsers(ctx context.Context) error {
	accounts := []user.CreateUserRequest{
		{Email: "admin@example.com", Password: "Admin12345", FirstName: "Admin", LastName: "User", IsAdmin: true},
		{Email: "test1@example.com", Password: "Test12345", FirstName: "Test", LastName: "User"},
	}

	for i := range accounts {
		u, err := m.users.EnsureUser(ctx, &accounts[i])
		if err != nil {
			return err
		}
		m.logger.WithFields(logrus.Fields{
			"user_id":  u.ID,
			"email":    u.Email,
			"is_admin": u.IsAdmin,
		}).Debug("Seed user ready")
	}

	return nil
}

func (m *Migration) seedProducts(ctx context.Context) error {
	upTo := func(n int) *int { return &n }

	products := []catalog.Product{
		{
			SKU: "CEM-OPC53-50", Name: "OPC 53 Grade Cement (50kg)",
			BasePrice: decimal.RequireFromString("420.00"), TaxRate: decimal.RequireFromString("28"), IsActive: true,
			Tiers: []catalog.PriceTier{
				{MinQuantity: 1, MaxQuantity: upTo(49), Price: decimal.RequireFromString("420.00")},
				{MinQuantity: 50, MaxQuantity: upTo(199), Price: decimal.RequireFromString("405.00")},
				{MinQuantity: 200, Price: decimal.RequireFromString("390.00")},
			},
		},
		{
			SKU: "TMT-FE550-12", Name: "TMT Bar Fe550 12mm (per rod)",
			BasePrice: decimal.RequireFromString("710.00"), TaxRate: decimal.RequireFromString("18"), IsActive: true,
			Tiers: []catalog.PriceTier{
				{MinQuantity: 1, MaxQuantity: upTo(99), Price: decimal.RequireFromString("710.00")},
				{MinQuantity: 100, Price: decimal.RequireFromString("684.50")},
			},
		},
		{
			SKU: "PVC-PIPE-4IN", Name: "PVC Pipe 4in (6m)",
			BasePrice: decimal.RequireFromString("1250.00"), TaxRate: decimal.RequireFromString("18"), IsActive: true,
		},
	}

	for i := range products {
		p := &products[i]
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Omit("Tiers").Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "sku"}},
				DoNothing: true,
			}).Create(p)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return nil
			}
			for j := range p.Tiers {
				p.Tiers[j].ProductID = p.ID
			}
			if len(p.Tiers) == 0 {
				return nil
			}
			return tx.Create(&p.Tiers).Error
		})
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
		}
	}

	return nil
}

// GetTableInfo logs row counts for every migrated table
func (m *Migration) GetTableInfo() error {
	for _, model := range Models() {
		var count int64
		if err := m.db.Model(model).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count %T: %w", model, err)
		}
		m.logger.WithFields(logrus.Fields{
			"model": fmt.Sprintf("%T", model),
			"rows":  count,
		}).Debug("Table info")
	}
	return nil
}
