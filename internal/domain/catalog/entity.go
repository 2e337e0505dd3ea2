// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the read model the cart and order engine needs from the catalog
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SKU       string          `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	BasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"base_price"`
	TaxRate   decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"tax_rate"` // GST slab in percent
	IsActive  bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Tiers []PriceTier `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tiers,omitempty"`
}

// PriceTier is a quantity band with its own unit price (volume pricing)
type PriceTier struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	MinQuantity int             `gorm:"not null" json:"min_quantity"`
	MaxQuantity *int            `json:"max_quantity,omitempty"` // nil means open-ended
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
}

// TableName overrides
func (Product) TableName() string   { return "products" }
func (PriceTier) TableName() string { return "price_tiers" }

// Contains reports whether quantity falls inside the tier's band
func (t *PriceTier) Contains(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == nil || quantity <= *t.MaxQuantity
}

// Bounded reports whether the tier has an upper limit
func (t *PriceTier) Bounded() bool {
	return t.MaxQuantity != nil
}
