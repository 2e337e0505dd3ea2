// internal/domain/pricing/resolver.go
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
)

// CurrencyPlaces is the number of fraction digits kept on money amounts
const CurrencyPlaces = 2

// Quote is the resolved price of a product at a given quantity
type Quote struct {
	Product   *catalog.Product `json:"-"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	LineTotal decimal.Decimal  `json:"line_total"`
}

// Resolver prices line items against the current catalog
type Resolver struct {
	catalog catalog.Lookup
}

// NewResolver creates a new pricing resolver
func NewResolver(lookup catalog.Lookup) *Resolver {
	return &Resolver{catalog: lookup}
}

// ResolvePrice looks the product up and prices quantity units of it
func (r *Resolver) ResolvePrice(ctx context.Context, productID uint, quantity int) (*Quote, error) {
	if quantity < 1 {
		return nil, domainErrors.InvalidArgument("quantity must be at least 1")
	}

	prod, err := r.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return Price(prod, quantity), nil
}

// Price prices quantity units of an already loaded product
func Price(prod *catalog.Product, quantity int) *Quote {
	unit := UnitPrice(prod, quantity)
	return &Quote{
		Product:   prod,
		Quantity:  quantity,
		UnitPrice: unit,
		LineTotal: LineTotal(unit, quantity),
	}
}

// UnitPrice picks the tier covering quantity, or the base price when none does
func UnitPrice(prod *catalog.Product, quantity int) decimal.Decimal {
	if tier := selectTier(prod.Tiers, quantity); tier != nil {
		return tier.Price.Round(CurrencyPlaces)
	}
	return prod.BasePrice.Round(CurrencyPlaces)
}

// LineTotal multiplies exactly and rounds to currency precision
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(CurrencyPlaces)
}

// selectTier returns the most specific tier containing quantity.
// Bounded tiers beat open-ended ones, narrower beats wider, higher minimum breaks ties.
func selectTier(tiers []catalog.PriceTier, quantity int) *catalog.PriceTier {
	var best *catalog.PriceTier
	for i := range tiers {
		tier := &tiers[i]
		if !tier.Contains(quantity) {
			continue
		}
		if best == nil || moreSpecific(tier, best) {
			best = tier
		}
	}
	return best
}

func moreSpecific(a, b *catalog.PriceTier) bool {
	if a.Bounded() != b.Bounded() {
		return a.Bounded()
	}
	if a.Bounded() {
		widthA := *a.MaxQuantity - a.MinQuantity
		widthB := *b.MaxQuantity - b.MinQuantity
		if widthA != widthB {
			return widthA < widthB
		}
	}
	return a.MinQuantity > b.MinQuantity
}
