// Package promo loads percentage promo codes from gzipped files and applies them at checkout.
package promo

import (
	"context"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

const (
	// MinCodeLength and MaxCodeLength bound an acceptable promo code.
	MinCodeLength = 4
	MaxCodeLength = 32
)

// DefaultPercent applies to file entries that carry no explicit percentage.
var DefaultPercent = decimal.NewFromInt(10)

// Promotion is a resolved promo code.
type Promotion struct {
	Code    string
	Percent decimal.Decimal
}

// Discount returns round2(subtotal * percent / 100), never more than subtotal.
func (p Promotion) Discount(subtotal decimal.Decimal) decimal.Decimal {
	d := model.RoundMoney(subtotal.Mul(p.Percent).Div(decimal.NewFromInt(100)))
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}

// Catalog answers promo code lookups. Safe for concurrent use.
type Catalog interface {
	// Lookup normalises code to upper case and returns its promotion,
	// or model.ErrInvalidPromoLength / model.ErrInvalidPromoCode.
	Lookup(code string) (Promotion, error)

	// Size returns the number of known codes.
	Size() int
}

// Set is the content of a single promo file.
type Set interface {
	// Percent returns the discount percentage for code.
	Percent(code string) (decimal.Decimal, bool)

	// Size returns the number of codes in the set.
	Size() int

	// Range calls fn for every code in the set.
	Range(fn func(code string, percent decimal.Decimal))
}

// Loader reads a gzipped promo file.
type Loader interface {
	Load(ctx context.Context, path string) (Set, error)
}
