package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/migrate"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container and applies the embedded migrations.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	require.NoError(t, migrate.Up(ctx, pool, zerolog.Nop()))

	return pool
}

type seedVariant struct {
	name  string
	price *decimal.Decimal
	stock int
}

// seedProduct inserts a product with optional variants and returns its ID.
func seedProduct(t *testing.T, pool *pgxpool.Pool, slug, name, price string, stock int, variants ...seedVariant) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO products (slug, name, category, price, stock_quantity, moq, image_url, metadata)
		VALUES ($1, $2, 'apparel', $3, $4, 1, $5, '{"preorder_shipping":"2 weeks"}')
		RETURNING id`,
		slug, name, decimal.RequireFromString(price), stock, "https://cdn.example.com/"+slug+".png",
	).Scan(&id)
	require.NoError(t, err)

	for _, v := range variants {
		_, err := pool.Exec(ctx,
			`INSERT INTO product_variants (product_id, name, price, stock_quantity) VALUES ($1, $2, $3, $4)`,
			id, v.name, v.price, v.stock)
		require.NoError(t, err)
	}

	return id
}

func stockOf(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int {
	t.Helper()
	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func variantStockOf(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID, name string) int {
	t.Helper()
	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock_quantity FROM product_variants WHERE product_id = $1 AND name = $2`,
		productID, name).Scan(&stock)
	require.NoError(t, err)
	return stock
}
