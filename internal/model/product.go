package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents an item in the storefront catalogue.
type Product struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	Slug          string           `json:"slug" db:"slug"`
	Name          string           `json:"name" db:"name"`
	Category      string           `json:"category" db:"category"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	StockQuantity int              `json:"stockQuantity" db:"stock_quantity"`
	MOQ           int              `json:"moq" db:"moq"`
	ImageURL      string           `json:"imageUrl,omitempty" db:"image_url"`
	Metadata      map[string]any   `json:"metadata,omitempty" db:"metadata"`
	Variants      []ProductVariant `json:"variants,omitempty" db:"-"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
}

// PreorderShipping returns the fulfilment hint stored in the product metadata, if any.
func (p *Product) PreorderShipping() any {
	if p == nil || p.Metadata == nil {
		return nil
	}
	return p.Metadata["preorder_shipping"]
}

// ProductVariant is a purchasable configuration of a product with its own price and stock.
type ProductVariant struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	ProductID     uuid.UUID        `json:"productId" db:"product_id"`
	Name          string           `json:"name" db:"name"`
	Price         *decimal.Decimal `json:"price,omitempty" db:"price"`
	StockQuantity int              `json:"stockQuantity" db:"stock_quantity"`
}
