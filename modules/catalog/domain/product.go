// Package domain contains catalog entities: products as the ecommerce store knows
// them and their mapping to CRM products.
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// Product is a read-only view of the ecommerce store's product record.
// Its price is the only unit price the bridge trusts.
type Product struct {
	ID       int64
	Name     string
	Price    types.Money
	Weight   *decimal.Decimal
	Category string
}

// ResolvedLineItem is an order line priced from the catalog and linked to its CRM product.
type ResolvedLineItem struct {
	CatalogProductID int64
	CRMProductID     string
	Name             string
	Quantity         int64
	UnitPrice        types.Money
	Total            types.Money
}

// NewResolvedLineItem prices quantity units of p.
func NewResolvedLineItem(p *Product, m *ProductMapping, quantity int64) (ResolvedLineItem, error) {
	if quantity <= 0 {
		return ResolvedLineItem{}, ErrInvalidQuantity
	}
	name := p.Name
	if name == "" {
		name = m.Name
	}
	total, err := p.Price.Multiply(quantity)
	if err != nil {
		return ResolvedLineItem{}, fmt.Errorf("pricing product %d: %w", p.ID, err)
	}
	return ResolvedLineItem{
		CatalogProductID: p.ID,
		CRMProductID:     m.CRMProductID,
		Name:             name,
		Quantity:         quantity,
		UnitPrice:        p.Price,
		Total:            total,
	}, nil
}

// MaxLineQuantity caps one order line. Larger values are typing errors or abuse.
const MaxLineQuantity = 10_000

// CoerceQuantity turns a requested quantity ("2", "2.0", "3.7") into a positive integer
// no larger than MaxLineQuantity, truncating any fractional part.
func CoerceQuantity(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidQuantity
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, ErrInvalidQuantity
	}
	n := d.Truncate(0)
	if !n.IsPositive() || n.GreaterThan(decimal.NewFromInt(MaxLineQuantity)) {
		return 0, ErrInvalidQuantity
	}
	return n.IntPart(), nil
}
