// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-identity basket. Exactly one of SessionToken or UserID is set.
type Cart struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionToken *string   `gorm:"uniqueIndex;size:64" json:"session_token,omitempty"`
	UserID       *uint     `gorm:"uniqueIndex" json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// CartItem is one (product, variant) line of a cart.
// An item without a variant stores the empty string so the line stays unique.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_line" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_line;index" json:"product_id"`
	Variant   string    `gorm:"not null;size:100;uniqueIndex:idx_cart_items_line" json:"variant"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Cart) TableName() string {
	return "carts"
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// CartView is a cart priced against the current catalog
type CartView struct {
	CartID       uint            `json:"cart_id"`
	SessionToken string          `json:"session_token,omitempty"`
	UserID       *uint           `json:"user_id,omitempty"`
	Items        []CartItemView  `json:"items"`
	TotalItems   int             `json:"total_items"` // Sum of quantities over available lines
	TotalPrice   decimal.Decimal `json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CartItemView is a priced cart line
type CartItemView struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Variant     string          `json:"variant,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Unavailable bool            `json:"unavailable,omitempty"` // product no longer sold
}
