package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const customerColumns = `id, email, phone, full_name, first_name, last_name, user_id, default_address,
	total_orders, total_spent, last_order_at, created_at, updated_at`

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID,
		&c.Email,
		&c.Phone,
		&c.FullName,
		&c.FirstName,
		&c.LastName,
		&c.UserID,
		&c.DefaultAddress,
		&c.TotalOrders,
		&c.TotalSpent,
		&c.LastOrderAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert creates or refreshes the customer keyed by lower-cased email.
// An existing user link is kept when the incoming order is a guest checkout.
func (r *customerRepository) Upsert(ctx context.Context, c model.CustomerUpsert) (*model.Customer, error) {
	query := `
		INSERT INTO customers (email, phone, full_name, first_name, last_name, user_id, default_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			phone = EXCLUDED.phone,
			full_name = EXCLUDED.full_name,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			user_id = COALESCE(EXCLUDED.user_id, customers.user_id),
			default_address = EXCLUDED.default_address,
			updated_at = NOW()
		RETURNING ` + customerColumns

	email := strings.ToLower(strings.TrimSpace(c.Email))
	customer, err := scanCustomer(r.pool.QueryRow(ctx, query,
		email,
		c.Phone,
		c.FullName,
		c.FirstName,
		c.LastName,
		c.UserID,
		c.Address,
	))
	if err != nil {
		r.logger.Error().Err(err).Str("email", email).Msg("failed to upsert customer")
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	r.logger.Debug().
		Str("customer_id", customer.ID.String()).
		Str("email", email).
		Msg("customer upserted")

	return customer, nil
}

// RecordPaidOrder adds a paid order to the customer's lifetime statistics.
func (r *customerRepository) RecordPaidOrder(ctx context.Context, email string, total decimal.Decimal) error {
	query := `
		UPDATE customers
		SET total_orders = total_orders + 1,
			total_spent = total_spent + $2,
			last_order_at = NOW(),
			updated_at = NOW()
		WHERE email = $1
	`

	email = strings.ToLower(strings.TrimSpace(email))
	tag, err := r.pool.Exec(ctx, query, email, total)
	if err != nil {
		r.logger.Error().Err(err).Str("email", email).Msg("failed to record paid order")
		return fmt.Errorf("failed to record paid order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("email", email).Msg("no customer record for paid order")
	}

	return nil
}

// GetByEmail retrieves a customer by email.
func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	customer, err := scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("email", email).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}
	return customer, nil
}
