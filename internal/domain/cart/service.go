// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxVariantLength matches the variant column size
const MaxVariantLength = 100

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	pricer *pricing.Resolver
	logger *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, pricer *pricing.Resolver, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		pricer: pricer,
		logger: logger,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// UpdateItemRequest represents update cart item request
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// ResolveCart returns the identity's cart, creating it on first access
func (s *Service) ResolveCart(ctx context.Context, identity Identity) (*Cart, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return resolveCart(s.db.WithContext(ctx), identity)
}

// GetCart returns the identity's cart priced at current catalog prices
func (s *Service) GetCart(ctx context.Context, identity Identity) (*CartView, error) {
	c, err := s.ResolveCart(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c.ID)
}

// AddItem adds quantity units of a product, merging into an existing line
func (s *Service) AddItem(ctx context.Context, identity Identity, productID uint, variant string, quantity int) (*CartView, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, domainErrors.InvalidArgument("quantity must be at least 1")
	}
	variant = strings.TrimSpace(variant)
	if len(variant) > MaxVariantLength {
		return nil, domainErrors.InvalidArgument("variant must be at most %d characters", MaxVariantLength)
	}

	// Product must exist before the line is written
	if _, err := s.pricer.ResolvePrice(ctx, productID, quantity); err != nil {
		return nil, err
	}

	var cartID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := resolveCart(tx, identity)
		if err != nil {
			return err
		}
		cartID = c.ID

		if err := upsertItem(tx, c.ID, productID, variant, quantity); err != nil {
			return err
		}
		return touchCart(tx, c.ID)
	})
	if err != nil {
		return nil, domainErrors.Classify(err, "failed to add item to cart")
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id":    cartID,
		"product_id": productID,
		"variant":    variant,
		"quantity":   quantity,
	}).Debug("Cart item added")

	return s.view(ctx, cartID)
}

// SetItemQuantity overwrites a line's quantity. Zero or less removes the line.
func (s *Service) SetItemQuantity(ctx context.Context, identity Identity, itemID uint, quantity int) (*CartView, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	var cartID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := resolveCart(tx, identity)
		if err != nil {
			return err
		}
		cartID = c.ID

		var item CartItem
		if err := tx.Where("id = ? AND cart_id = ?", itemID, c.ID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.NotFound("cart item not found")
			}
			return err
		}

		if quantity <= 0 {
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
		} else if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
			return err
		}
		return touchCart(tx, c.ID)
	})
	if err != nil {
		return nil, domainErrors.Classify(err, "failed to update cart item")
	}

	return s.view(ctx, cartID)
}

// RemoveItem deletes a line owned by the identity's cart
func (s *Service) RemoveItem(ctx context.Context, identity Identity, itemID uint) (*CartView, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	var cartID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := resolveCart(tx, identity)
		if err != nil {
			return err
		}
		cartID = c.ID

		result := tx.Where("id = ? AND cart_id = ?", itemID, c.ID).Delete(&CartItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainErrors.NotFound("cart item not found")
		}
		return touchCart(tx, c.ID)
	})
	if err != nil {
		return nil, domainErrors.Classify(err, "failed to remove cart item")
	}

	return s.view(ctx, cartID)
}

// Clear removes every line from the identity's cart. The cart itself is kept.
func (s *Service) Clear(ctx context.Context, identity Identity) (*CartView, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	var cartID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := resolveCart(tx, identity)
		if err != nil {
			return err
		}
		cartID = c.ID

		if err := ClearItems(tx, c.ID); err != nil {
			return err
		}
		return touchCart(tx, c.ID)
	})
	if err != nil {
		return nil, domainErrors.Classify(err, "failed to clear cart")
	}

	return s.view(ctx, cartID)
}

// MergeSessionCart folds an anonymous cart into a user's cart after login.
// Quantities of matching (product, variant) lines are summed and the anonymous cart is emptied.
func (s *Service) MergeSessionCart(ctx context.Context, session, user Identity) (*CartView, error) {
	if session.IsUser() || !user.IsUser() {
		return nil, domainErrors.InvalidArgument("merge requires a session cart and a user cart")
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	var targetID uint
	merged := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, err := resolveCart(tx, user)
		if err != nil {
			return err
		}
		targetID = target.ID

		var anon Cart
		err = tx.Preload("Items").Where("session_token = ?", session.SessionToken).First(&anon).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		for _, item := range anon.Items {
			if err := upsertItem(tx, target.ID, item.ProductID, item.Variant, item.Quantity); err != nil {
				return err
			}
			merged++
		}

		if err := ClearItems(tx, anon.ID); err != nil {
			return err
		}
		return touchCart(tx, target.ID)
	})
	if err != nil {
		return nil, domainErrors.Classify(err, "failed to merge session cart")
	}

	if merged > 0 {
		s.logger.WithFields(logrus.Fields{
			"cart_id": targetID,
			"user_id": *user.UserID,
			"lines":   merged,
		}).Info("Session cart merged into user cart")
	}

	return s.view(ctx, targetID)
}

// LockForCheckout loads the identity's cart and its lines inside tx, locking the cart row.
// A user without a cart gets an empty, unsaved cart.
func LockForCheckout(tx *gorm.DB, identity Identity) (*Cart, error) {
	var c Cart
	err := scopeTo(tx, identity).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Cart{UserID: identity.UserID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ClearItems deletes every line of a cart inside tx
func ClearItems(tx *gorm.DB, cartID uint) error {
	if cartID == 0 {
		return nil
	}
	return tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error
}

// Private helper methods

// resolveCart is an idempotent get-or-create: concurrent first access
// loses the insert race quietly and reads the winner's row.
func resolveCart(tx *gorm.DB, identity Identity) (*Cart, error) {
	candidate := Cart{UserID: identity.UserID}
	if !identity.IsUser() {
		token := identity.SessionToken
		candidate.SessionToken = &token
	}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
		return nil, domainErrors.Internal(err, "failed to create cart")
	}

	var c Cart
	if err := scopeTo(tx, identity).First(&c).Error; err != nil {
		return nil, domainErrors.Internal(err, "failed to load cart")
	}
	return &c, nil
}

func scopeTo(tx *gorm.DB, identity Identity) *gorm.DB {
	if identity.IsUser() {
		return tx.Where("user_id = ?", *identity.UserID)
	}
	return tx.Where("session_token = ?", identity.SessionToken)
}

// upsertItem inserts a line or adds to the quantity of the existing one in a single statement
func upsertItem(tx *gorm.DB, cartID, productID uint, variant string, quantity int) error {
	item := CartItem{
		CartID:    cartID,
		ProductID: productID,
		Variant:   variant,
		Quantity:  quantity,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "variant"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&item).Error
}

func touchCart(tx *gorm.DB, cartID uint) error {
	return tx.Model(&Cart{}).Where("id = ?", cartID).Update("updated_at", time.Now().UTC()).Error
}

// view prices every line at read time. Lines whose product no longer resolves
// are flagged unavailable and left out of the totals.
func (s *Service) view(ctx context.Context, cartID uint) (*CartView, error) {
	var c Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&c, cartID).Error
	if err != nil {
		return nil, domainErrors.Internal(err, "failed to load cart")
	}

	v := &CartView{
		CartID:     c.ID,
		UserID:     c.UserID,
		Items:      make([]CartItemView, 0, len(c.Items)),
		TotalPrice: decimal.Zero,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.SessionToken != nil {
		v.SessionToken = *c.SessionToken
	}

	for _, item := range c.Items {
		line := CartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: decimal.Zero,
			LineTotal: decimal.Zero,
		}

		quote, err := s.pricer.ResolvePrice(ctx, item.ProductID, item.Quantity)
		if err != nil {
			if !errors.Is(err, domainErrors.ErrNotFound) {
				return nil, err
			}
			line.Unavailable = true
			v.Items = append(v.Items, line)
			continue
		}

		line.ProductName = quote.Product.Name
		line.UnitPrice = quote.UnitPrice
		line.LineTotal = quote.LineTotal
		v.Items = append(v.Items, line)

		v.TotalItems += item.Quantity
		v.TotalPrice = v.TotalPrice.Add(quote.LineTotal)
	}

	return v, nil
}
