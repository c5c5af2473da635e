package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const pgUniqueViolation = "23505"

const orderColumns = `id, order_number, user_id, email, phone, status, payment_status, currency,
	subtotal, tax_total, shipping_total, discount_total, total, shipping_method, payment_method,
	shipping_address, billing_address, metadata, payment_reference, paid_at, created_at, updated_at`

// markPaidQuery flips payment_status and reserves stock in one statement. The WHERE clause on
// payment_status makes a concurrent second caller match zero rows after the first commits, so its
// stock CTEs see no lines.
const markPaidQuery = `
	WITH paid AS (
		UPDATE orders
		SET payment_status = 'paid',
			status = CASE WHEN status = 'pending' THEN 'processing' ELSE status END,
			payment_reference = $2,
			paid_at = NOW(),
			updated_at = NOW()
		WHERE order_number = $1 AND payment_status = 'pending'
		RETURNING ` + orderColumns + `
	),
	lines AS (
		SELECT oi.product_id, oi.variant_name, SUM(oi.quantity) AS quantity
		FROM order_items oi
		JOIN paid ON paid.id = oi.order_id
		GROUP BY oi.product_id, oi.variant_name
	),
	product_stock AS (
		UPDATE products p
		SET stock_quantity = GREATEST(p.stock_quantity - l.quantity, 0),
			updated_at = NOW()
		FROM (SELECT product_id, SUM(quantity) AS quantity FROM lines GROUP BY product_id) l
		WHERE p.id = l.product_id
		RETURNING p.id
	),
	variant_stock AS (
		UPDATE product_variants v
		SET stock_quantity = GREATEST(v.stock_quantity - l.quantity, 0)
		FROM lines l
		WHERE v.product_id = l.product_id
			AND l.variant_name IS NOT NULL
			AND v.name = l.variant_name
		RETURNING v.id
	)
	SELECT ` + orderColumns + ` FROM paid
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.Email,
		&o.Phone,
		&o.Status,
		&o.PaymentStatus,
		&o.Currency,
		&o.Subtotal,
		&o.TaxTotal,
		&o.ShippingTotal,
		&o.DiscountTotal,
		&o.Total,
		&o.ShippingMethod,
		&o.PaymentMethod,
		&o.ShippingAddress,
		&o.BillingAddress,
		&o.Metadata,
		&o.PaymentReference,
		&o.PaidAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, user_id, email, phone, status, payment_status, currency,
			subtotal, tax_total, shipping_total, discount_total, total, shipping_method, payment_method,
			shipping_address, billing_address, metadata, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.Email,
		order.Phone,
		order.Status,
		order.PaymentStatus,
		order.Currency,
		order.Subtotal,
		order.TaxTotal,
		order.ShippingTotal,
		order.DiscountTotal,
		order.Total,
		order.ShippingMethod,
		order.PaymentMethod,
		order.ShippingAddress,
		order.BillingAddress,
		order.Metadata,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			r.logger.Warn().
				Str("order_number", order.OrderNumber).
				Str("constraint", pgErr.ConstraintName).
				Msg("order number collision")
			return model.ErrDuplicateOrderNumber
		}
		r.logger.Error().
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (
			id, order_id, product_id, product_name, variant_name, quantity, unit_price, total_price, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.VariantName,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
			item.Metadata,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByNumber retrieves an order by its order number along with its items.
func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, []model.OrderItem, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, variant_name, quantity, unit_price, total_price, metadata
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, order.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_number", orderNumber).
			Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.VariantName,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.Metadata,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, items, nil
}

// MarkPaid moves a pending order to paid and decrements stock in one statement.
func (r *orderRepository) MarkPaid(ctx context.Context, orderNumber, paymentReference string) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, markPaidQuery, orderNumber, paymentReference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Info().
				Str("order_number", orderNumber).
				Msg("order not pending, paid transition skipped")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to mark order paid")
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	r.logger.Info().
		Str("order_number", orderNumber).
		Str("payment_reference", paymentReference).
		Msg("order marked paid and stock decremented")

	return order, nil
}

// MarkFailed moves a pending order to failed.
func (r *orderRepository) MarkFailed(ctx context.Context, orderNumber, reason string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = 'failed',
			metadata = metadata || jsonb_build_object('payment_failure', $2::text),
			updated_at = NOW()
		WHERE order_number = $1 AND payment_status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, orderNumber, reason)
	if err != nil {
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to mark order failed")
		return false, fmt.Errorf("failed to mark order failed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
