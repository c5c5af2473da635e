package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the single record kept per contact email.
type Customer struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	Email          string           `json:"email" db:"email"`
	Phone          string           `json:"phone" db:"phone"`
	FullName       string           `json:"fullName" db:"full_name"`
	FirstName      string           `json:"firstName" db:"first_name"`
	LastName       string           `json:"lastName" db:"last_name"`
	UserID         *uuid.UUID       `json:"userId,omitempty" db:"user_id"`
	DefaultAddress *ShippingDetails `json:"defaultAddress,omitempty" db:"default_address"`
	TotalOrders    int              `json:"totalOrders" db:"total_orders"`
	TotalSpent     decimal.Decimal  `json:"totalSpent" db:"total_spent"`
	LastOrderAt    *time.Time       `json:"lastOrderAt,omitempty" db:"last_order_at"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

// CustomerUpsert is the contact snapshot taken from an order.
type CustomerUpsert struct {
	Email     string
	Phone     string
	FullName  string
	FirstName string
	LastName  string
	UserID    *uuid.UUID
	Address   ShippingDetails
}
