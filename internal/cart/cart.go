// Package cart holds the session-scoped cart that feeds checkout.
package cart

import (
	"github.com/shopspring/decimal"
)

// Item is a cart line with the price and stock snapshot taken when it was added.
type Item struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Variant      *string         `json:"variant,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Slug         string          `json:"slug,omitempty"`
	StockCeiling int             `json:"stockCeiling"`
	MOQ          int             `json:"moq"`
}

// LineTotal is the unit price multiplied by the quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i Item) matches(id string, variant *string) bool {
	if i.ID != id {
		return false
	}
	if i.Variant == nil || variant == nil {
		return i.Variant == nil && variant == nil
	}
	return *i.Variant == *variant
}

// Store is the append/update/remove/clear contract over session carts.
type Store interface {
	// Items returns a copy of the session's lines in insertion order.
	Items(sessionID string) []Item

	// Add appends a line or merges its quantity into an existing line with the same id and variant.
	Add(sessionID string, item Item) ([]Item, error)

	// Update sets the quantity of an existing line. Zero removes it.
	Update(sessionID, id string, variant *string, quantity int) ([]Item, error)

	// Remove deletes a line.
	Remove(sessionID, id string, variant *string) ([]Item, error)

	// Clear destroys the session cart.
	Clear(sessionID string)
}

// Subtotal sums unit price times quantity over all lines.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
