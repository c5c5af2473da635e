package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByRef retrieves a product and its variants by UUID or slug. Returns nil when absent.
	GetByRef(ctx context.Context, ref string) (*model.Product, error)

	// GetByIDs retrieves multiple products, metadata included, in one round trip.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// ResolveSlugs maps each known slug to its product ID. Unknown slugs are absent from the result.
	ResolveSlugs(ctx context.Context, slugs []string) (map[string]uuid.UUID, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// A duplicate order number yields model.ErrDuplicateOrderNumber.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByNumber retrieves an order by its order number along with its items.
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, []model.OrderItem, error)

	// MarkPaid moves a pending order to paid and decrements stock in one statement.
	// Returns nil when the order was not pending, so only one caller ever sees the transition.
	MarkPaid(ctx context.Context, orderNumber, paymentReference string) (*model.Order, error)

	// MarkFailed moves a pending order to failed. Reports whether the transition happened.
	MarkFailed(ctx context.Context, orderNumber, reason string) (bool, error)
}

// CustomerRepository defines the interface for customer data access operations.
type CustomerRepository interface {
	// Upsert creates or updates the customer keyed by lower-cased email.
	Upsert(ctx context.Context, c model.CustomerUpsert) (*model.Customer, error)

	// RecordPaidOrder adds a paid order to the customer's lifetime statistics.
	RecordPaidOrder(ctx context.Context, email string, total decimal.Decimal) error

	// GetByEmail retrieves a customer. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
}
